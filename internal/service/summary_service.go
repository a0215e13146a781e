package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/grades"
	"github.com/noah-isme/grademetrix-api/internal/repository"
)

// SummaryService derives aggregate views (semester, year, progression)
// from the stored courses.
type SummaryService interface {
	SemesterSummary(ctx context.Context, academicYear string, semester int) (dto.SemesterSummaryResponse, error)
	YearSummary(ctx context.Context, academicYear string) (dto.YearSummaryResponse, error)
	Progression(ctx context.Context, academicYear string, stage int) (dto.ProgressionResponse, error)
	InvalidateYear(ctx context.Context, academicYear string)
	InvalidateAll(ctx context.Context)
}

type summaryService struct {
	repo     repository.CourseRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewSummaryService constructs the summary service. The cache client may be
// nil, in which case every call recomputes from the repository.
func NewSummaryService(repo repository.CourseRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) SummaryService {
	return &summaryService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "summary_service").Logger(),
	}
}

func yearSummaryCacheKey(academicYear string) string {
	return fmt.Sprintf("summary:year:%s", academicYear)
}

func (s *summaryService) SemesterSummary(ctx context.Context, academicYear string, semester int) (dto.SemesterSummaryResponse, error) {
	courses, err := s.repo.ListBySemester(ctx, academicYear, semester)
	if err != nil {
		return dto.SemesterSummaryResponse{}, err
	}

	summary := grades.Aggregate(courses)

	response := dto.SemesterSummaryResponse{
		AcademicYear: academicYear,
		Semester:     semester,
		CourseCount:  summary.CourseCount,
		TotalCredits: summary.TotalCredits,
		WAM:          summary.WAM,
		Courses:      dto.NewCourseResponseSlice(courses, grades.Description),
	}
	if summary.Best != nil {
		response.BestCourse = &dto.CourseHighlight{
			ID:              summary.Best.ID,
			CourseName:      summary.Best.CourseName,
			FinalPercentage: summary.Best.FinalPercentage,
			LetterGrade:     summary.Best.LetterGrade,
		}
	}

	return response, nil
}

// YearSummary computes the year view: the results gate, and, once the gate
// is open, the WAM, its classification and the best course. Results are
// cached per academic year and invalidated on any course mutation.
func (s *summaryService) YearSummary(ctx context.Context, academicYear string) (dto.YearSummaryResponse, error) {
	cacheKey := yearSummaryCacheKey(academicYear)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.YearSummaryResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return response, nil
			}
			s.logger.Warn().Str("key", cacheKey).Msg("discarding malformed cached summary")
		}
	}

	courses, err := s.repo.ListByYear(ctx, academicYear)
	if err != nil {
		return dto.YearSummaryResponse{}, err
	}

	summary := grades.Aggregate(courses)
	gate := grades.GateResults(courses)

	response := dto.YearSummaryResponse{
		AcademicYear: academicYear,
		Gate:         gate,
	}

	if gate.Ready {
		wam := summary.WAM
		response.WAM = &wam
		response.Classification = grades.Classify(wam)
		if summary.Best != nil {
			response.BestCourse = &dto.CourseHighlight{
				ID:              summary.Best.ID,
				CourseName:      summary.Best.CourseName,
				FinalPercentage: summary.Best.FinalPercentage,
				LetterGrade:     summary.Best.LetterGrade,
			}
		}
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache year summary")
			}
		}
	}

	return response, nil
}

func (s *summaryService) Progression(ctx context.Context, academicYear string, stage int) (dto.ProgressionResponse, error) {
	courses, err := s.repo.ListByYear(ctx, academicYear)
	if err != nil {
		return dto.ProgressionResponse{}, err
	}

	return dto.ProgressionResponse{
		AcademicYear: academicYear,
		Result:       grades.EvaluateProgression(courses, stage),
	}, nil
}

// InvalidateYear drops the cached summary for one academic year. Cache
// errors are logged only; the next read recomputes regardless.
func (s *summaryService) InvalidateYear(ctx context.Context, academicYear string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, yearSummaryCacheKey(academicYear)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("academic_year", academicYear).Msg("failed to invalidate year summary cache")
	}
}

// InvalidateAll drops every cached year summary. Imports touch an unknown
// set of years, so they flush the whole summary namespace.
func (s *summaryService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}

	iter := s.cache.Scan(ctx, 0, "summary:year:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", iter.Val()).Msg("failed to invalidate summary cache entry")
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("summary cache scan failed")
	}
}
