package models

// TestStats summarizes a user's test results
type TestStats struct {
	TotalTests   int     `json:"totalTests"`
	AverageScore int     `json:"averageScore"` // Rounded mean percentage
	BestScore    float64 `json:"bestScore"`
	TotalTime    float64 `json:"totalTime"` // Seconds
}
