package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestEnrollmentService_EnrollMarkLeavesOneAttendedRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	student := f.user(t, "student@example.com", models.RoleStudent)
	class := f.class(t, lecturer, "Networks", time.Now().Add(time.Hour))
	svc := f.enrollmentService()

	enrollment, created, err := svc.Enroll(ctx, class.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, enrollment.Attended)

	marked, err := svc.MarkAttendance(ctx, &MarkAttendanceRequest{ClassID: class.ID}, student.ID)
	require.NoError(t, err)
	assert.True(t, marked.Attended)
	assert.Equal(t, enrollment.ID, marked.ID)

	roster, err := svc.ListByClass(ctx, class.ID, lecturer.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.True(t, roster[0].Attended)
	assert.Equal(t, student.ID, roster[0].StudentID)

	assert.Equal(t, []events.EventType{
		events.EventClassScheduled,
		events.EventEnrollmentCreated,
		events.EventAttendanceMarked,
	}, f.publisher.EventTypes())
}

func TestEnrollmentService_DuplicateEnrollIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	student := f.user(t, "student@example.com", models.RoleStudent)
	class := f.class(t, lecturer, "Networks", time.Now().Add(time.Hour))
	svc := f.enrollmentService()

	first, created, err := svc.Enroll(ctx, class.ID, student.ID)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Enroll(ctx, class.ID, student.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	mine, err := svc.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	created1 := 0
	for _, eventType := range f.publisher.EventTypes() {
		if eventType == events.EventEnrollmentCreated {
			created1++
		}
	}
	assert.Equal(t, 1, created1)
}

func TestEnrollmentService_EnrollUnknownClass(t *testing.T) {
	f := newFixture(t)
	student := f.user(t, "student@example.com", models.RoleStudent)

	_, _, err := f.enrollmentService().Enroll(context.Background(), "missing", student.ID)
	assert.ErrorIs(t, err, ErrClassNotFound)

	_, _, err = f.enrollmentService().Enroll(context.Background(), " ", student.ID)
	assert.True(t, IsValidation(err))
}

func TestEnrollmentService_MarkWithoutEnrollmentIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	student := f.user(t, "student@example.com", models.RoleStudent)
	class := f.class(t, lecturer, "Networks", time.Now().Add(time.Hour))
	svc := f.enrollmentService()

	_, err := svc.MarkAttendance(ctx, &MarkAttendanceRequest{ClassID: class.ID}, student.ID)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	_, err = f.repo.Enrollment().GetByClassAndStudent(ctx, nil, class.ID, student.ID)
	assert.Error(t, err, "marking attendance must not create an enrollment")

	assert.NotContains(t, f.publisher.EventTypes(), events.EventAttendanceMarked)
}

func TestEnrollmentService_MarkingOthersNeedsClassManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	student := f.user(t, "student@example.com", models.RoleStudent)
	peer := f.user(t, "peer@example.com", models.RoleStudent)
	class := f.class(t, lecturer, "Networks", time.Now().Add(time.Hour))
	svc := f.enrollmentService()

	_, _, err := svc.Enroll(ctx, class.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.MarkAttendance(ctx, &MarkAttendanceRequest{ClassID: class.ID, StudentID: student.ID}, peer.ID)
	assert.True(t, IsForbidden(err))

	marked, err := svc.MarkAttendance(ctx, &MarkAttendanceRequest{ClassID: class.ID, StudentID: student.ID}, lecturer.ID)
	require.NoError(t, err)
	assert.True(t, marked.Attended)

	_, err = svc.MarkAttendance(ctx, &MarkAttendanceRequest{}, student.ID)
	assert.True(t, IsValidation(err))
}

func TestEnrollmentService_RosterIsForClassManagers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	student := f.user(t, "student@example.com", models.RoleStudent)
	class := f.class(t, lecturer, "Networks", time.Now().Add(time.Hour))

	_, err := f.enrollmentService().ListByClass(ctx, class.ID, student.ID)
	assert.True(t, IsForbidden(err))

	_, err = f.enrollmentService().ExportAttendance(ctx, class.ID, student.ID, ExportCSV)
	assert.True(t, IsForbidden(err))
}

func TestEnrollmentService_ExportAttendance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	ana := f.user(t, "ana@example.com", models.RoleStudent)
	ben := f.user(t, "ben@example.com", models.RoleStudent)
	class := f.class(t, lecturer, "Networks", time.Now().Add(time.Hour))
	svc := f.enrollmentService()

	for _, student := range []*models.User{ana, ben} {
		_, _, err := svc.Enroll(ctx, class.ID, student.ID)
		require.NoError(t, err)
	}
	_, err := svc.MarkAttendance(ctx, &MarkAttendanceRequest{ClassID: class.ID}, ana.ID)
	require.NoError(t, err)

	t.Run("csv", func(t *testing.T) {
		export, err := svc.ExportAttendance(ctx, class.ID, lecturer.ID, ExportCSV)
		require.NoError(t, err)
		assert.Equal(t, "text/csv", export.ContentType)
		assert.Equal(t, "attendance-"+class.RoomCode+".csv", export.Filename)

		records, err := csv.NewReader(bytes.NewReader(export.Data)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, attendanceHeaders, records[0])

		attended := map[string]string{}
		for _, record := range records[1:] {
			attended[record[3]] = record[5]
		}
		assert.Equal(t, map[string]string{"ana@example.com": "true", "ben@example.com": "false"}, attended)
	})

	t.Run("xlsx", func(t *testing.T) {
		export, err := svc.ExportAttendance(ctx, class.ID, lecturer.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "attendance-"+class.RoomCode+".xlsx", export.Filename)

		book, err := excelize.OpenReader(bytes.NewReader(export.Data))
		require.NoError(t, err)
		defer book.Close()

		rows, err := book.GetRows(attendanceSheet)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, attendanceHeaders, rows[0])
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := svc.ExportAttendance(ctx, class.ID, lecturer.ID, "pdf")
		assert.True(t, IsValidation(err))
	})
}

func TestEnrollmentService_ExportEscapesFormulaText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	class := f.class(t, lecturer, "Networks", time.Now().Add(time.Hour))
	svc := f.enrollmentService()

	mallory := &models.User{Email: "mallory@example.com", FirstName: `=HYPERLINK("http://evil.example.com")`, LastName: "+1", Role: models.RoleStudent}
	require.NoError(t, f.repo.User().Create(ctx, nil, mallory))
	_, _, err := svc.Enroll(ctx, class.ID, mallory.ID)
	require.NoError(t, err)

	export, err := svc.ExportAttendance(ctx, class.ID, lecturer.ID, ExportCSV)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(export.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `'=HYPERLINK("http://evil.example.com")`, records[1][1])
	assert.Equal(t, "'+1", records[1][2])
	assert.Equal(t, "mallory@example.com", records[1][3])

	export, err = svc.ExportAttendance(ctx, class.ID, lecturer.ID, ExportXLSX)
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer book.Close()

	formula, err := book.GetCellFormula(attendanceSheet, "B2")
	require.NoError(t, err)
	assert.Empty(t, formula)
	value, err := book.GetCellValue(attendanceSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, `'=HYPERLINK("http://evil.example.com")`, value)
}

func TestEscapeSpreadsheetText(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"Ada":        "Ada",
		"=1+1":       "'=1+1",
		"-2":         "'-2",
		"@SUM(A1)":   "'@SUM(A1)",
		"\tindented": "'\tindented",
		"a=b":        "a=b",
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeSpreadsheetText(in), "input %q", in)
	}
}
