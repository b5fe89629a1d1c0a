package models

import (
	"encoding/json"
	"time"
)

// TestResult records one finished test attempt
type TestResult struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"studentId"`
	StudentName    string    `json:"studentName,omitempty"`
	TestName       string    `json:"testName,omitempty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     float64   `json:"percentage"`
	TimeUsed       float64   `json:"timeUsed"` // Duration in seconds
	Date           time.Time `json:"date"`

	// Other caller-supplied fields, flattened into the JSON object
	Extra map[string]interface{} `json:"-"`
}

// TestResultInput is a test result as supplied by the caller. It has no ID or
// Date: both are assigned once, when the result is saved.
type TestResultInput struct {
	StudentID      string
	StudentName    string
	TestName       string
	Score          int
	TotalQuestions int
	Percentage     float64
	TimeUsed       float64
	Extra          map[string]interface{}
}

// NewTestResult builds the stored record from the caller's input
func NewTestResult(in TestResultInput, id string, date time.Time) TestResult {
	return TestResult{
		ID:             id,
		StudentID:      in.StudentID,
		StudentName:    in.StudentName,
		TestName:       in.TestName,
		Score:          in.Score,
		TotalQuestions: in.TotalQuestions,
		Percentage:     in.Percentage,
		TimeUsed:       in.TimeUsed,
		Date:           date,
		Extra:          in.Extra,
	}
}

var testResultKeys = []string{
	"id", "studentId", "studentName", "testName", "score",
	"totalQuestions", "percentage", "timeUsed", "date",
}

// MarshalJSON implements json.Marshaler
func (r TestResult) MarshalJSON() ([]byte, error) {
	type plain TestResult
	return marshalWithExtra(struct {
		plain
		Date isoTime `json:"date"`
	}{plain(r), isoTime(r.Date)}, r.Extra)
}

// UnmarshalJSON implements json.Unmarshaler
func (r *TestResult) UnmarshalJSON(data []byte) error {
	type plain TestResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, testResultKeys...)
	if err != nil {
		return err
	}
	*r = TestResult(p)
	r.Extra = extra
	return nil
}
