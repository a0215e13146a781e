package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet and column layout of the exchange format.
const (
	SheetCourses = "Courses"
	SheetMeta    = "Export Info"
)

// Canonical column headers. Import requires at least one of these in the
// first row; anything else is rejected as an unrecognized format.
const (
	ColumnID             = "ID"
	ColumnCourseName     = "Course Name"
	ColumnCredits        = "Credits"
	ColumnSemester       = "Semester"
	ColumnAcademicYear   = "Academic Year"
	ColumnFinalPercent   = "Final %"
	ColumnFinalLetter    = "Final Letter"
	ColumnClassification = "Classification"
)

var headers = []string{
	ColumnID,
	ColumnCourseName,
	ColumnCredits,
	ColumnSemester,
	ColumnAcademicYear,
	ColumnFinalPercent,
	ColumnFinalLetter,
	ColumnClassification,
}

var columnWidths = []float64{15, 30, 10, 10, 15, 10, 12, 20}

// ErrInvalidFormat indicates the workbook carries none of the canonical
// columns and cannot be imported at all.
var ErrInvalidFormat = errors.New("spreadsheet: no recognized columns in first row")

// ErrEmptyWorkbook indicates the workbook has no sheets or no data rows.
var ErrEmptyWorkbook = errors.New("spreadsheet: workbook contains no data")

// Record is the flat course shape carried by the exchange format.
// Assessments are not part of the export; round-tripped courses come back
// with an empty assessment list.
type Record struct {
	ID              string
	CourseName      string
	Credits         int
	Semester        int
	AcademicYear    string
	FinalPercentage float64
	LetterGrade     string
	Classification  string
}

// Meta describes the optional metadata sheet appended to exports.
type Meta struct {
	ExportedAt   time.Time
	TotalCourses int
	AppVersion   string
}

// Encode renders the records as an xlsx workbook. The final percentage is
// always written as text with one decimal place.
func Encode(records []Record, meta Meta) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), SheetCourses); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(SheetCourses, cell, header); err != nil {
			return nil, err
		}
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetColWidth(SheetCourses, column, column, columnWidths[i]); err != nil {
			return nil, err
		}
	}

	for row, record := range records {
		values := []interface{}{
			record.ID,
			record.CourseName,
			record.Credits,
			record.Semester,
			record.AcademicYear,
			strconv.FormatFloat(record.FinalPercentage, 'f', 1, 64),
			record.LetterGrade,
			record.Classification,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(SheetCourses, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := writeMeta(file, meta); err != nil {
		return nil, err
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return buffer.Bytes(), nil
}

func writeMeta(file *excelize.File, meta Meta) error {
	if _, err := file.NewSheet(SheetMeta); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Export Date", meta.ExportedAt.Format(time.RFC3339)},
		{"Total Courses", meta.TotalCourses},
		{"App Version", meta.AppVersion},
	}
	for i, pair := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(SheetMeta, cell, &pair); err != nil {
			return err
		}
	}

	return nil
}

// Decode reads course records from the first sheet of an xlsx workbook.
// Unknown columns are ignored and missing values fall back to defaults
// (credits 0, semester 1, final percentage 0, empty strings). Rows are
// returned as-is, including ones without a course name; filtering those is
// the caller's concern.
func Decode(data []byte) ([]Record, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	columns := mapColumns(rows[0])
	if len(columns) == 0 {
		return nil, ErrInvalidFormat
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, decodeRow(row, columns))
	}

	return records, nil
}

func mapColumns(headerRow []string) map[string]int {
	known := map[string]bool{}
	for _, header := range headers {
		known[header] = true
	}

	columns := map[string]int{}
	for i, cell := range headerRow {
		name := strings.TrimSpace(cell)
		if known[name] {
			columns[name] = i
		}
	}

	return columns
}

func decodeRow(row []string, columns map[string]int) Record {
	record := Record{Semester: 1}

	record.ID = cellValue(row, columns, ColumnID)
	record.CourseName = cellValue(row, columns, ColumnCourseName)
	record.AcademicYear = cellValue(row, columns, ColumnAcademicYear)
	record.LetterGrade = cellValue(row, columns, ColumnFinalLetter)
	record.Classification = cellValue(row, columns, ColumnClassification)

	if credits, err := strconv.Atoi(cellValue(row, columns, ColumnCredits)); err == nil {
		record.Credits = credits
	}
	if semester, err := strconv.Atoi(cellValue(row, columns, ColumnSemester)); err == nil {
		record.Semester = semester
	}
	if percentage, err := strconv.ParseFloat(cellValue(row, columns, ColumnFinalPercent), 64); err == nil {
		record.FinalPercentage = percentage
	}

	return record
}

func cellValue(row []string, columns map[string]int, name string) string {
	index, ok := columns[name]
	if !ok || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// WorkbookFileName returns the per-scope archive file name, shortening the
// academic year the same way the exports do ("2024-2025" to "2024-25").
func WorkbookFileName(academicYear string, semester int) string {
	short := strings.Replace(academicYear, "-20", "-", 1)
	return fmt.Sprintf("%s_semester_%d.xlsx", short, semester)
}
