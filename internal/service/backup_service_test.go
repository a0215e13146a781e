package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grademetrix-api/pkg/archive"
)

func TestBackupExportRestoreRoundTrip(t *testing.T) {
	source := newTestRepo(t)
	courses := NewCourseService(source, validator.New(), archive.DisabledStore{}, nil, testLogger())
	svc := NewBackupService(source, nil, testLogger())
	ctx := context.Background()

	_, _, err := courses.Save(ctx, saveRequest("Algorithms"))
	require.NoError(t, err)

	snapshot, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Equal(t, "1", snapshot.Version)
	require.Len(t, snapshot.Courses, 1)

	payload, err := json.Marshal(snapshot)
	require.NoError(t, err)

	target := newTestRepo(t)
	restorer := NewBackupService(target, nil, testLogger())

	summary, err := restorer.Restore(ctx, payload)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)

	restored, err := target.List(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	require.Equal(t, "Algorithms", restored[0].CourseName)
	require.Equal(t, 62.0, restored[0].FinalPercentage)
	require.Len(t, restored[0].Assessments, 2)
}

func TestBackupRestoreRecomputesFromAssessments(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewBackupService(repo, nil, testLogger())
	ctx := context.Background()

	// The snapshot claims an A, but the assessments only add up to 62.
	payload := []byte(`{
		"version": "1",
		"courses": [{
			"course_name": "Algorithms",
			"credits": 15,
			"semester": 1,
			"academic_year": "2024-2025",
			"final_percentage": 95,
			"letter_grade": "A",
			"assessments": [
				{"name": "Coursework", "full_marks": 100, "obtained_mark": 65, "weighting": 40},
				{"name": "Exam", "full_marks": 100, "obtained_mark": 60, "weighting": 60}
			]
		}]
	}`)

	_, err := svc.Restore(ctx, payload)
	require.NoError(t, err)

	courses, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, 62.0, courses[0].FinalPercentage)
	require.Equal(t, "B", courses[0].LetterGrade)
}

func TestBackupRestoreRejectsMalformedJSON(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewBackupService(repo, nil, testLogger())

	_, err := svc.Restore(context.Background(), []byte("{not json"))
	require.ErrorIs(t, err, ErrInvalidBackup)
}

func TestBackupRestoreRejectsSchemaViolation(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewBackupService(repo, nil, testLogger())

	// course_name missing.
	payload := []byte(`{
		"version": "1",
		"courses": [{"credits": 15, "semester": 1, "academic_year": "2024-2025"}]
	}`)

	_, err := svc.Restore(context.Background(), payload)
	require.ErrorIs(t, err, ErrInvalidBackup)
}
