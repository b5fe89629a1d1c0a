package models

import (
	"encoding/json"
	"time"
)

// Registration records a student signing up for a test
type Registration struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"studentId"`
	StudentName      string    `json:"studentName,omitempty"`
	Email            string    `json:"email,omitempty"`
	TestName         string    `json:"testName"`
	PreferredDate    string    `json:"preferredDate,omitempty"` // As entered by the student
	RegistrationDate time.Time `json:"registrationDate"`

	// Other caller-supplied fields, flattened into the JSON object
	Extra map[string]interface{} `json:"-"`
}

// RegistrationInput is a registration as supplied by the caller, without the
// generated ID and RegistrationDate.
type RegistrationInput struct {
	StudentID     string
	StudentName   string
	Email         string
	TestName      string
	PreferredDate string
	Extra         map[string]interface{}
}

// NewRegistration builds the stored record from the caller's input
func NewRegistration(in RegistrationInput, id string, date time.Time) Registration {
	return Registration{
		ID:               id,
		StudentID:        in.StudentID,
		StudentName:      in.StudentName,
		Email:            in.Email,
		TestName:         in.TestName,
		PreferredDate:    in.PreferredDate,
		RegistrationDate: date,
		Extra:            in.Extra,
	}
}

// PreferredTime parses PreferredDate. Both RFC 3339 timestamps and plain
// dates (2006-01-02) are accepted.
func (r Registration) PreferredTime() (time.Time, bool) {
	if r.PreferredDate == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, r.PreferredDate); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", r.PreferredDate); err == nil {
		return t, true
	}
	return time.Time{}, false
}

var registrationKeys = []string{
	"id", "studentId", "studentName", "email", "testName",
	"preferredDate", "registrationDate",
}

// MarshalJSON implements json.Marshaler
func (r Registration) MarshalJSON() ([]byte, error) {
	type plain Registration
	return marshalWithExtra(struct {
		plain
		RegistrationDate isoTime `json:"registrationDate"`
	}{plain(r), isoTime(r.RegistrationDate)}, r.Extra)
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Registration) UnmarshalJSON(data []byte) error {
	type plain Registration
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, registrationKeys...)
	if err != nil {
		return err
	}
	*r = Registration(p)
	r.Extra = extra
	return nil
}
