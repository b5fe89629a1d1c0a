package excel

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/examportal/pkg/models"
)

type memoryStore struct {
	saved []models.RegistrationInput
}

func (m *memoryStore) IsRegistered(userID, testName string) bool {
	for _, in := range m.saved {
		if in.StudentID == userID && in.TestName == testName {
			return true
		}
	}
	return false
}

func (m *memoryStore) Save(in models.RegistrationInput) (models.Registration, bool) {
	m.saved = append(m.saved, in)
	return models.NewRegistration(in, "REG000000000", time.Now()), true
}

func TestImportFromCSV(t *testing.T) {
	data := `student_id,name,email,test,date
S1,Ann,ann@example.com,Algebra,2024-04-01
S2,Bob,,Algebra,
S1,Ann,ann@example.com,Algebra,2024-04-02
,,,,
S3,Cid,not-an-email,Physics,
S4,Dee,dee@example.com,,
`
	store := &memoryStore{}
	result, err := importFromCSV(strings.NewReader(data), DefaultImportConfig(), store)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, []string{
		`Row 6: invalid email "not-an-email"`,
		"Row 7: test name cannot be empty",
	}, result.Errors)

	require.Len(t, store.saved, 2)
	assert.Equal(t, models.RegistrationInput{
		StudentID:     "S1",
		StudentName:   "Ann",
		Email:         "ann@example.com",
		TestName:      "Algebra",
		PreferredDate: "2024-04-01",
	}, store.saved[0])
	assert.Equal(t, "S2", store.saved[1].StudentID)
}

func TestImportFromExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Student", "Name", "Email", "Test", "Date"},
		{"S1", "Ann", "ann@example.com", "Algebra", "2024-04-01"},
		{"S2", "Bob", "bob@example.com", "Physics", ""},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	config := DefaultImportConfig()
	config.FilePath = path
	store := &memoryStore{}
	result, err := ImportRegistrations(config, store)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Physics", store.saved[1].TestName)
}

func TestImportUnsupportedFormat(t *testing.T) {
	config := DefaultImportConfig()
	config.FilePath = "registrations.txt"
	_, err := ImportRegistrations(config, &memoryStore{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func sampleReport() Report {
	date := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	return Report{
		Results: []models.TestResult{
			{ID: "TEST000000001", TestName: "Algebra", Score: 8, TotalQuestions: 10, Percentage: 80, TimeUsed: 10, Date: date},
			{ID: "TEST000000002", TestName: "Physics", Score: 9, TotalQuestions: 10, Percentage: 90, TimeUsed: 20, Date: date},
		},
		Registrations: []models.Registration{
			{ID: "REG000000001", TestName: "Chemistry", StudentName: "Ann", Email: "ann@example.com", PreferredDate: "2024-04-01", RegistrationDate: date},
		},
		Stats:    models.TestStats{TotalTests: 2, AverageScore: 85, BestScore: 90, TotalTime: 30},
		Location: time.UTC,
	}
}

func TestExportToCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exportToCSV(&buf, sampleReport()))

	expected := `Results
ID,Test,Score,Total Questions,Percentage,Time Used (s),Date,Time
TEST000000001,Algebra,8,10,80,10,"March 5, 2024",02:30 PM
TEST000000002,Physics,9,10,90,20,"March 5, 2024",02:30 PM
Registrations
ID,Test,Student,Email,Preferred Date,Registered On
REG000000001,Chemistry,Ann,ann@example.com,"April 1, 2024","March 5, 2024"
Summary
Total Tests,Average Score,Best Score,Total Time (s)
2,85,90,30
`
	assert.Equal(t, expected, buf.String())
}

func TestExportToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, ExportReport(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	results, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, resultsHeader, results[0])
	assert.Equal(t, "Algebra", results[1][1])

	registrations, err := f.GetRows(registrationsSheet)
	require.NoError(t, err)
	require.Len(t, registrations, 2)
	assert.Equal(t, "April 1, 2024", registrations[1][4])
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "85", formatNumber(85))
	assert.Equal(t, "72.5", formatNumber(72.5))
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "33.33", formatNumber(100.0/3))
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 4, columnToIndex("e"))
	assert.Equal(t, 26, columnToIndex("AA"))
}
