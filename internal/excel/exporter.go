package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/examportal/internal/ui"
	"github.com/example/examportal/pkg/models"
)

const (
	resultsSheet       = "Results"
	registrationsSheet = "Registrations"
)

var (
	resultsHeader       = []string{"ID", "Test", "Score", "Total Questions", "Percentage", "Time Used (s)", "Date", "Time"}
	registrationsHeader = []string{"ID", "Test", "Student", "Email", "Preferred Date", "Registered On"}
)

// Report is the data exported for one student
type Report struct {
	Results       []models.TestResult
	Registrations []models.Registration
	Stats         models.TestStats
	Location      *time.Location // Time zone for dates; local time when nil
}

// ExportReport writes the report to path as .xlsx (one sheet per collection)
// or .csv (one section per collection)
func ExportReport(path string, report Report) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return exportToExcel(path, report)
	case ".csv":
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		if err := exportToCSV(file, report); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func exportToExcel(path string, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	// A missing sheet surfaces as an error from SetSheetRow below
	f.SetSheetName("Sheet1", resultsSheet)
	f.NewSheet(registrationsSheet)

	if err := writeSheet(f, resultsSheet, resultsHeader, resultRows(report)); err != nil {
		return err
	}
	if err := writeSheet(f, registrationsSheet, registrationsHeader, registrationRows(report)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	for i, values := range append([][]string{header}, rows...) {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// exportToCSV writes each collection as a section: a title row, a header row
// and the records, followed by a summary section
func exportToCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)

	sections := []struct {
		title  string
		header []string
		rows   [][]string
	}{
		{resultsSheet, resultsHeader, resultRows(report)},
		{registrationsSheet, registrationsHeader, registrationRows(report)},
		{"Summary", []string{"Total Tests", "Average Score", "Best Score", "Total Time (s)"}, [][]string{{
			fmt.Sprint(report.Stats.TotalTests),
			fmt.Sprint(report.Stats.AverageScore),
			formatNumber(report.Stats.BestScore),
			formatNumber(report.Stats.TotalTime),
		}}},
	}

	for _, s := range sections {
		if err := writer.Write([]string{s.title}); err != nil {
			return err
		}
		if err := writer.Write(s.header); err != nil {
			return err
		}
		if err := writer.WriteAll(s.rows); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func resultRows(report Report) [][]string {
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		iso := r.Date.Format(time.RFC3339Nano)
		rows = append(rows, []string{
			r.ID,
			r.TestName,
			fmt.Sprint(r.Score),
			fmt.Sprint(r.TotalQuestions),
			formatNumber(r.Percentage),
			formatNumber(r.TimeUsed),
			ui.FormatDate(iso, report.Location),
			ui.FormatTime(iso, report.Location),
		})
	}
	return rows
}

func registrationRows(report Report) [][]string {
	rows := make([][]string, 0, len(report.Registrations))
	for _, reg := range report.Registrations {
		preferred := reg.PreferredDate
		if t, ok := reg.PreferredTime(); ok {
			preferred = ui.FormatDate(t.Format(time.RFC3339), report.Location)
		}
		rows = append(rows, []string{
			reg.ID,
			reg.TestName,
			reg.StudentName,
			reg.Email,
			preferred,
			ui.FormatDate(reg.RegistrationDate.Format(time.RFC3339Nano), report.Location),
		})
	}
	return rows
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
