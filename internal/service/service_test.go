package service

import (
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/models"
	"github.com/noah-isme/grademetrix-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

var testRepoSeq atomic.Int64

func newTestRepo(t *testing.T) repository.CourseRepository {
	t.Helper()
	// cache=shared keeps the in-memory database alive across pooled
	// connections; the sequence number keeps repos opened within the same
	// test from sharing a database.
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), testRepoSeq.Add(1))), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Course{}))
	return repository.NewCourseRepository(db)
}

func saveRequest(name string) dto.CourseSaveRequest {
	return dto.CourseSaveRequest{
		CourseName:   name,
		Credits:      15,
		Semester:     1,
		AcademicYear: "2024-2025",
		Assessments: []dto.AssessmentInput{
			{Name: "Coursework", FullMarks: 100, ObtainedMark: 65, Weighting: 40},
			{Name: "Exam", FullMarks: 100, ObtainedMark: 60, Weighting: 60},
		},
	}
}
