package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/grademetrix-api/internal/models"
	"github.com/noah-isme/grademetrix-api/internal/repository"
)

func seedCourse(t *testing.T, repo repository.CourseRepository, name string, percentage float64, credits int) models.Course {
	t.Helper()
	course := models.Course{
		CourseName:      name,
		AcademicYear:    "2024-2025",
		Semester:        1,
		Credits:         credits,
		FinalPercentage: percentage,
		LetterGrade:     "B",
		Classification:  "Upper Second Class Honours",
		Assessments:     datatypes.JSONSlice[models.Assessment]{},
	}
	_, err := repo.Upsert(context.Background(), &course)
	require.NoError(t, err)
	return course
}

func TestYearSummaryGateClosed(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewSummaryService(repo, nil, time.Minute, testLogger())

	seedCourse(t, repo, "Algorithms", 62, 15)

	summary, err := svc.YearSummary(context.Background(), "2024-2025")
	require.NoError(t, err)

	require.False(t, summary.Gate.Ready)
	require.Equal(t, 7, summary.Gate.CoursesNeeded)
	require.Equal(t, 105, summary.Gate.CreditsNeeded)
	require.Nil(t, summary.WAM)
	require.Empty(t, summary.Classification)
}

func TestYearSummaryGateOpen(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewSummaryService(repo, nil, time.Minute, testLogger())

	for i := 0; i < 8; i++ {
		seedCourse(t, repo, fmt.Sprintf("Course %d", i), 62, 15)
	}

	summary, err := svc.YearSummary(context.Background(), "2024-2025")
	require.NoError(t, err)

	require.True(t, summary.Gate.Ready)
	require.Equal(t, 120, summary.Gate.TotalCredits)
	require.NotNil(t, summary.WAM)
	require.Equal(t, 62.0, *summary.WAM)
	require.Equal(t, "Upper Second Class Honours", summary.Classification)
	require.NotNil(t, summary.BestCourse)
}

func TestYearSummaryCaching(t *testing.T) {
	repo := newTestRepo(t)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	svc := NewSummaryService(repo, cache, time.Minute, testLogger())
	ctx := context.Background()

	seedCourse(t, repo, "Algorithms", 62, 15)

	first, err := svc.YearSummary(ctx, "2024-2025")
	require.NoError(t, err)
	require.Equal(t, 1, first.Gate.CourseCount)

	// A write that bypasses invalidation leaves the cached view in place.
	seedCourse(t, repo, "Databases", 70, 15)

	stale, err := svc.YearSummary(ctx, "2024-2025")
	require.NoError(t, err)
	require.Equal(t, 1, stale.Gate.CourseCount)

	svc.InvalidateYear(ctx, "2024-2025")

	fresh, err := svc.YearSummary(ctx, "2024-2025")
	require.NoError(t, err)
	require.Equal(t, 2, fresh.Gate.CourseCount)
}

func TestSemesterSummaryBestCourse(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewSummaryService(repo, nil, time.Minute, testLogger())

	seedCourse(t, repo, "Algorithms", 62, 15)
	seedCourse(t, repo, "Databases", 71, 15)

	summary, err := svc.SemesterSummary(context.Background(), "2024-2025", 1)
	require.NoError(t, err)

	require.Equal(t, 2, summary.CourseCount)
	require.Equal(t, 30, summary.TotalCredits)
	require.Equal(t, 66.5, summary.WAM)
	require.NotNil(t, summary.BestCourse)
	require.Equal(t, "Databases", summary.BestCourse.CourseName)
}

func TestProgressionStageThreeWAMFloor(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewSummaryService(repo, nil, time.Minute, testLogger())

	for i := 0; i < 8; i++ {
		course := seedCourse(t, repo, fmt.Sprintf("Course %d", i), 45, 15)
		require.NotEmpty(t, course.ID)
	}

	response, err := svc.Progression(context.Background(), "2024-2025", 3)
	require.NoError(t, err)

	result := response.Result
	require.Equal(t, 120, result.TotalCredits)
	require.True(t, result.GradeFloorMet)
	require.False(t, result.MeetsRequirements)
	require.True(t, result.WAMShort)
	require.Equal(t, 45.0, result.WAM)
}
