package excel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/example/examportal/internal/validation"
	"github.com/example/examportal/pkg/models"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv
var ErrUnsupportedFormat = errors.New("unsupported file format")

// errSkipRow marks rows that are silently ignored (blank rows)
var errSkipRow = errors.New("skipping row")

// RegistrationStore is the part of the registration repository the importer
// needs
type RegistrationStore interface {
	IsRegistered(userID, testName string) bool
	Save(in models.RegistrationInput) (models.Registration, bool)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath            string // Path to the Excel or CSV file
	StudentIDColumn     string // Column with the student ID
	StudentNameColumn   string // Column with the student name
	EmailColumn         string // Column with the email
	TestNameColumn      string // Column with the test name
	PreferredDateColumn string // Column with the preferred test date
	SheetName           string // Name of the sheet to import
	StartRow            int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		StudentIDColumn:     "A",
		StudentNameColumn:   "B",
		EmailColumn:         "C",
		TestNameColumn:      "D",
		PreferredDateColumn: "E",
		SheetName:           "Sheet1",
		StartRow:            2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Duplicates     int // Rows for a student already registered for the test
	Errors         []string
}

// ImportRegistrations imports registrations from an Excel or CSV file.
// Rows for a student who is already registered for the test are skipped.
func ImportRegistrations(config ImportConfig, store RegistrationStore) (*ImportResult, error) {
	rows, err := readRows(config.FilePath, config.SheetName)
	if err != nil {
		return nil, err
	}
	return importRows(rows, config, store), nil
}

// importFromCSV imports registrations from CSV data
func importFromCSV(r io.Reader, config ImportConfig, store RegistrationStore) (*ImportResult, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return importRows(rows, config, store), nil
}

func importRows(rows [][]string, config ImportConfig, store RegistrationStore) *ImportResult {
	result := &ImportResult{
		Errors: make([]string, 0),
	}

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}

		err := processRow(row, config, store, result)
		if errors.Is(err, errSkipRow) {
			continue
		}
		result.TotalProcessed++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result
}

// processRow validates a single row and saves it as a registration
func processRow(row []string, config ImportConfig, store RegistrationStore, result *ImportResult) error {
	in := models.RegistrationInput{
		StudentID:     cell(row, config.StudentIDColumn),
		StudentName:   cell(row, config.StudentNameColumn),
		Email:         cell(row, config.EmailColumn),
		TestName:      cell(row, config.TestNameColumn),
		PreferredDate: cell(row, config.PreferredDateColumn),
	}

	if in.StudentID == "" && in.StudentName == "" && in.Email == "" && in.TestName == "" {
		return errSkipRow
	}
	if in.StudentID == "" {
		return fmt.Errorf("student ID cannot be empty")
	}
	if in.TestName == "" {
		return fmt.Errorf("test name cannot be empty")
	}
	if in.Email != "" && !validation.ValidateEmail(in.Email) {
		return fmt.Errorf("invalid email %q", in.Email)
	}

	if store.IsRegistered(in.StudentID, in.TestName) {
		result.Duplicates++
		return nil
	}
	if _, ok := store.Save(in); !ok {
		return fmt.Errorf("failed to save registration")
	}
	result.Created++
	return nil
}

// cell returns the trimmed value of column in row, or "" when out of range
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
