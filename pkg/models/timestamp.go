package models

import (
	"time"
)

// isoLayout is RFC 3339 with exactly three fractional digits
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// isoTime encodes a timestamp in UTC with exactly three fractional digits,
// so records written here and by the portal front end look the same
type isoTime time.Time

// MarshalJSON implements json.Marshaler
func (t isoTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(isoLayout) + `"`), nil
}
