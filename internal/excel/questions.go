package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/examportal/internal/exam"
)

// OptionSeparator splits the options cell of a question row
const OptionSeparator = "|"

// LoadTest reads a test from an Excel or CSV file. The test is named after
// the file. After a header row each row holds a prompt, the correct answer
// and optional choices joined by OptionSeparator. Rows without choices are
// text input questions.
func LoadTest(path string) (exam.Test, error) {
	rows, err := readRows(path, DefaultImportConfig().SheetName)
	if err != nil {
		return exam.Test{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	test := exam.Test{Name: name}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		q, ok, err := questionFromRow(row)
		if err != nil {
			return exam.Test{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		if ok {
			test.Questions = append(test.Questions, q)
		}
	}
	if len(test.Questions) == 0 {
		return exam.Test{}, fmt.Errorf("no questions in %s", path)
	}
	return test, nil
}

func questionFromRow(row []string) (exam.Question, bool, error) {
	q := exam.Question{
		Prompt: cell(row, "A"),
		Answer: cell(row, "B"),
		Type:   exam.TextInput,
	}
	options := cell(row, "C")
	if q.Prompt == "" && q.Answer == "" && options == "" {
		return q, false, nil
	}
	if q.Prompt == "" {
		return q, false, fmt.Errorf("question cannot be empty")
	}
	if q.Answer == "" {
		return q, false, fmt.Errorf("answer cannot be empty")
	}
	if options == "" {
		return q, true, nil
	}

	q.Type = exam.MultipleChoice
	for _, opt := range strings.Split(options, OptionSeparator) {
		if opt = strings.TrimSpace(opt); opt != "" {
			q.Options = append(q.Options, opt)
		}
	}
	for _, opt := range q.Options {
		if opt == q.Answer {
			return q, true, nil
		}
	}
	return q, false, fmt.Errorf("answer %q is not one of the options", q.Answer)
}

// readRows returns every row of the file at path; sheet picks the worksheet
// of an Excel file
func readRows(path, sheet string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		return readCSV(file)
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to get rows: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}
