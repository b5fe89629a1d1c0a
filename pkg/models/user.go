package models

import "encoding/json"

// User represents the logged-in portal user (the session record)
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	// Other profile fields, flattened into the JSON object
	Extra map[string]interface{} `json:"-"`
}

var userKeys = []string{"id", "name", "email"}

// MarshalJSON implements json.Marshaler
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return marshalWithExtra(plain(u), u.Extra)
}

// UnmarshalJSON implements json.Unmarshaler
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, userKeys...)
	if err != nil {
		return err
	}
	*u = User(p)
	u.Extra = extra
	return nil
}
