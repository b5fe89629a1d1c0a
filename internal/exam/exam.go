package exam

import (
	"strings"
	"time"

	"github.com/example/examportal/pkg/models"
)

// QuestionType represents different types of questions
type QuestionType string

const (
	// MultipleChoice is answered by picking one of the options
	MultipleChoice QuestionType = "multiple_choice"
	// TextInput is answered by typing; case and surrounding spaces are ignored
	TextInput QuestionType = "text_input"
)

// Question is a single test question. Answer holds the correct option text,
// so shuffling options never invalidates it.
type Question struct {
	Prompt  string
	Options []string
	Answer  string
	Type    QuestionType
}

// Test is a named list of questions
type Test struct {
	Name      string
	Questions []Question
}

// Attempt is one student's answers to a test
type Attempt struct {
	Test        Test
	StudentID   string
	StudentName string
	Answers     []string // One per question; missing answers count as wrong
	Started     time.Time
	Finished    time.Time
}

// ResultSaver stores graded attempts
type ResultSaver interface {
	Save(in models.TestResultInput) (models.TestResult, bool)
}

// Module grades attempts and stores the results
type Module struct {
	results ResultSaver
}

// NewModule creates a new testing module
func NewModule(results ResultSaver) *Module {
	return &Module{results: results}
}

// Submit grades the attempt and saves it as a test result
func (m *Module) Submit(attempt Attempt) (models.TestResult, bool) {
	return m.results.Save(Grade(attempt))
}

// Grade scores an attempt
func Grade(attempt Attempt) models.TestResultInput {
	score := 0
	for i, q := range attempt.Test.Questions {
		if i < len(attempt.Answers) && q.IsCorrect(attempt.Answers[i]) {
			score++
		}
	}
	total := len(attempt.Test.Questions)

	// Whole seconds
	var timeUsed float64
	if d := attempt.Finished.Sub(attempt.Started); d > 0 {
		timeUsed = float64(d / time.Second)
	}

	return models.TestResultInput{
		StudentID:      attempt.StudentID,
		StudentName:    attempt.StudentName,
		TestName:       attempt.Test.Name,
		Score:          score,
		TotalQuestions: total,
		Percentage:     Percentage(score, total),
		TimeUsed:       timeUsed,
	}
}

// IsCorrect checks an answer against the question
func (q Question) IsCorrect(answer string) bool {
	if q.Type == TextInput {
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.Answer))
	}
	return answer == q.Answer
}

// Percentage returns score out of total as a percentage, 0 for an empty test
func Percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}
