package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []Record{
		{
			ID:              "a1b2",
			CourseName:      "Algorithms",
			Credits:         15,
			Semester:        1,
			AcademicYear:    "2024-2025",
			FinalPercentage: 62.5,
			LetterGrade:     "B",
			Classification:  "Upper Second Class Honours",
		},
		{
			CourseName:      "Databases",
			Credits:         20,
			Semester:        2,
			AcademicYear:    "2024-2025",
			FinalPercentage: 71,
			LetterGrade:     "A",
		},
	}

	data, err := Encode(records, Meta{ExportedAt: time.Now(), TotalCourses: 2, AppVersion: "v1.0"})
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	require.Equal(t, records[0], decoded[0])
	require.Equal(t, records[1], decoded[1])
}

func TestEncodeWritesPercentageAsOneDecimalText(t *testing.T) {
	data, err := Encode([]Record{{CourseName: "Networks", FinalPercentage: 71, Semester: 1}}, Meta{})
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	value, err := file.GetCellValue(SheetCourses, "F2")
	require.NoError(t, err)
	require.Equal(t, "71.0", value)
}

func TestDecodeRejectsUnrecognizedColumns(t *testing.T) {
	file := excelize.NewFile()
	require.NoError(t, file.SetSheetRow("Sheet1", "A1", &[]interface{}{"Alpha", "Beta"}))
	require.NoError(t, file.SetSheetRow("Sheet1", "A2", &[]interface{}{"x", "y"}))
	buffer, err := file.WriteToBuffer()
	require.NoError(t, err)

	_, err = Decode(buffer.Bytes())
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDecodeAppliesDefaultsForMissingFields(t *testing.T) {
	file := excelize.NewFile()
	require.NoError(t, file.SetSheetRow("Sheet1", "A1", &[]interface{}{ColumnCourseName, ColumnAcademicYear}))
	require.NoError(t, file.SetSheetRow("Sheet1", "A2", &[]interface{}{"Imported Course", "2023-2024"}))
	buffer, err := file.WriteToBuffer()
	require.NoError(t, err)

	records, err := Decode(buffer.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Imported Course", records[0].CourseName)
	require.Equal(t, 0, records[0].Credits)
	require.Equal(t, 1, records[0].Semester)
	require.Zero(t, records[0].FinalPercentage)
	require.Empty(t, records[0].LetterGrade)
}

func TestWorkbookFileName(t *testing.T) {
	require.Equal(t, "2024-25_semester_1.xlsx", WorkbookFileName("2024-2025", 1))
	require.Equal(t, "2030-31_semester_2.xlsx", WorkbookFileName("2030-2031", 2))
}
