package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/xuri/excelize/v2"
)

const attendanceSheet = "Attendance"

var attendanceHeaders = []string{"Student ID", "First Name", "Last Name", "Email", "Enrolled At", "Attended"}

// ExportAttendance renders the class roster with attendance flags as a spreadsheet
func (s *enrollmentService) ExportAttendance(ctx context.Context, classID, callerID string, format ExportFormat) (export *AttendanceExport, err error) {
	op := s.ops.WithOperation(ctx, "enrollment.export_attendance", callerID)
	defer func() { op.LogResult(classID, "class", err) }()

	if format == "" {
		format = ExportXLSX
	}
	if format != ExportXLSX && format != ExportCSV {
		return nil, invalid("format", "must be xlsx or csv", string(format))
	}

	class, _, err := requireClassManager(ctx, s.repo, classID, callerID, "export_attendance")
	if err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment().ListByClass(ctx, nil, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	rows := make([][]string, 0, len(enrollments))
	for _, enrollment := range enrollments {
		rows = append(rows, attendanceRow(enrollment))
	}

	var data []byte
	var contentType string
	switch format {
	case ExportCSV:
		data, err = writeAttendanceCSV(rows)
		contentType = "text/csv"
	default:
		data, err = writeAttendanceExcel(rows)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return nil, err
	}

	return &AttendanceExport{
		Filename:    fmt.Sprintf("attendance-%s.%s", class.RoomCode, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func attendanceRow(enrollment *models.Enrollment) []string {
	row := []string{enrollment.StudentID, "", "", "", enrollment.EnrolledAt.UTC().Format(time.RFC3339), strconv.FormatBool(enrollment.Attended)}
	if student := enrollment.Student; student != nil {
		row[1] = escapeSpreadsheetText(student.FirstName)
		row[2] = escapeSpreadsheetText(student.LastName)
		row[3] = escapeSpreadsheetText(student.Email)
	}
	return row
}

// escapeSpreadsheetText prefixes a quote to user text a spreadsheet would otherwise read as a formula
func escapeSpreadsheetText(value string) string {
	if value != "" && strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return "'" + value
	}
	return value
}

func writeAttendanceCSV(rows [][]string) ([]byte, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(attendanceHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return []byte(buf.String()), nil
}

func writeAttendanceExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for i, header := range attendanceHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(attendanceSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write Excel header: %w", err)
		}
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(attendanceSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write Excel row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
