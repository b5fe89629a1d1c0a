package database

import (
	"math"
	"time"

	"github.com/example/examportal/internal/idgen"
	"github.com/example/examportal/pkg/models"
)

// TestResultsKey is the storage key of the test result collection
const TestResultsKey = "testResults"

// TestResultIDPrefix prefixes generated test result IDs
const TestResultIDPrefix = "TEST"

// TestResultRepository handles storage of test results. The collection is
// append-only and kept in insertion order.
//
// Save is a read-modify-write of the whole collection and is not atomic: the
// repository assumes a single writer per store namespace.
type TestResultRepository struct {
	store *KeyValueStore
	ids   *idgen.Generator
	now   func() time.Time
}

// NewTestResultRepository creates a new repository instance
func NewTestResultRepository(store *KeyValueStore) *TestResultRepository {
	return &TestResultRepository{
		store: store,
		ids:   idgen.New(),
		now:   time.Now,
	}
}

// GetAll returns all test results in insertion order
func (r *TestResultRepository) GetAll() []models.TestResult {
	results := GetOr(r.store, TestResultsKey, []models.TestResult{})
	if results == nil {
		return []models.TestResult{}
	}
	return results
}

// GetByUserID returns the test results of a user, in insertion order
func (r *TestResultRepository) GetByUserID(userID string) []models.TestResult {
	var results []models.TestResult
	for _, result := range r.GetAll() {
		if result.StudentID == userID {
			results = append(results, result)
		}
	}
	if results == nil {
		return []models.TestResult{}
	}
	return results
}

// Save appends a new test result with a generated ID and the current time.
// It returns the record and whether it was persisted. Nothing is written
// while the stored collection can't be read.
func (r *TestResultRepository) Save(in models.TestResultInput) (models.TestResult, bool) {
	result := models.NewTestResult(in, r.ids.Generate(TestResultIDPrefix), stamp(r.now()))
	return result, appendRecord(r.store, TestResultsKey, result)
}

// GetUserStats returns aggregate statistics of a user's test results
func (r *TestResultRepository) GetUserStats(userID string) models.TestStats {
	results := r.GetByUserID(userID)
	if len(results) == 0 {
		return models.TestStats{}
	}

	var totalScore float64
	var totalTime float64
	bestScore := results[0].Percentage
	for _, result := range results {
		totalScore += result.Percentage
		totalTime += result.TimeUsed
		if result.Percentage > bestScore {
			bestScore = result.Percentage
		}
	}

	return models.TestStats{
		TotalTests:   len(results),
		AverageScore: roundHalfUp(totalScore / float64(len(results))),
		BestScore:    bestScore,
		TotalTime:    totalTime,
	}
}

// roundHalfUp rounds .5 towards positive infinity
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// stamp normalizes a save time to UTC with millisecond precision, the
// resolution of ISO-8601 timestamps written by the portal front end
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
