package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/grades"
	"github.com/noah-isme/grademetrix-api/internal/models"
	"github.com/noah-isme/grademetrix-api/internal/observability"
	"github.com/noah-isme/grademetrix-api/internal/repository"
	"github.com/noah-isme/grademetrix-api/pkg/archive"
	"github.com/noah-isme/grademetrix-api/pkg/spreadsheet"
)

// ErrCourseNotFound indicates the course record was not located.
var ErrCourseNotFound = errors.New("course not found")

// ErrEmptyCourseName indicates the course name was empty after sanitizing.
var ErrEmptyCourseName = errors.New("course name must not be empty")

// CourseService finalizes, lists and removes course records.
type CourseService interface {
	Save(ctx context.Context, payload dto.CourseSaveRequest) (dto.CourseResponse, bool, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
	ListScope(ctx context.Context, academicYear string, semester *int) ([]dto.CourseResponse, error)
	Delete(ctx context.Context, id string) (dto.CourseResponse, error)
}

type courseService struct {
	repo      repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	store     archive.Store
	notifier  ChangeNotifier
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(repo repository.CourseRepository, validator *validator.Validate, store archive.Store, notifier ChangeNotifier, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:      repo,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		store:     store,
		notifier:  notifier,
		logger:    logger.With().Str("component", "course_service").Logger(),
		now:       time.Now,
	}
}

// Save computes the course's final percentage, letter grade and
// classification from its assessments and upserts it by natural key. The
// reported flag is true when a new record was created. When folder
// persistence is active the per-semester workbook is rewritten as well;
// a workbook failure is logged but never fails the save.
func (s *courseService) Save(ctx context.Context, payload dto.CourseSaveRequest) (dto.CourseResponse, bool, error) {
	tracer := otel.Tracer("github.com/noah-isme/grademetrix-api/internal/service/course")
	ctx, span := tracer.Start(ctx, "course.save")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.CourseResponse{}, false, err
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.CourseName))
	if name == "" {
		span.SetStatus(codes.Error, "empty_course_name")
		return dto.CourseResponse{}, false, ErrEmptyCourseName
	}

	// Only assessments with a name and positive full marks are stored with
	// the course; nameless or markless rows are builder noise.
	stored := make([]models.Assessment, 0, len(payload.Assessments))
	for _, input := range payload.Assessments {
		if strings.TrimSpace(input.Name) == "" || input.FullMarks <= 0 {
			continue
		}
		stored = append(stored, models.Assessment{
			Name:         strings.TrimSpace(input.Name),
			FullMarks:    input.FullMarks,
			ObtainedMark: input.ObtainedMark,
			Weighting:    input.Weighting,
		})
	}

	final, _ := grades.FinalPercentage(assessmentsFromInputs(payload.Assessments))
	letter := grades.Letter(final)

	course := models.Course{
		CourseName:      name,
		AcademicYear:    strings.TrimSpace(payload.AcademicYear),
		Semester:        payload.Semester,
		Credits:         payload.Credits,
		FinalPercentage: final,
		LetterGrade:     letter,
		Classification:  grades.Classify(final),
		Assessments:     datatypes.JSONSlice[models.Assessment](stored),
	}

	created, err := s.repo.Upsert(ctx, &course)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert_failed")
		return dto.CourseResponse{}, false, err
	}

	result := "updated"
	if created {
		result = "created"
	}
	observability.CoursesSaved().WithLabelValues(result).Inc()
	span.SetAttributes(
		attribute.String("course.id", course.ID),
		attribute.Float64("course.final_percentage", final),
		attribute.Bool("course.created", created),
	)

	s.archiveSemester(ctx, course.AcademicYear, course.Semester)

	if s.notifier != nil {
		s.notifier.Publish(ChangeEvent{
			Action:       ChangeActionSaved,
			CourseID:     course.ID,
			AcademicYear: course.AcademicYear,
			Semester:     course.Semester,
			At:           s.now(),
		})
	}

	return dto.NewCourseResponse(course, grades.Description), created, nil
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses, grades.Description), nil
}

// ListScope narrows the listing to one academic year, optionally one
// semester of it.
func (s *courseService) ListScope(ctx context.Context, academicYear string, semester *int) ([]dto.CourseResponse, error) {
	var (
		courses []models.Course
		err     error
	)

	if semester != nil {
		courses, err = s.repo.ListBySemester(ctx, academicYear, *semester)
	} else {
		courses, err = s.repo.ListByYear(ctx, academicYear)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses, grades.Description), nil
}

// Delete removes the course and returns the record that was removed, so
// callers know which academic year to refresh.
func (s *courseService) Delete(ctx context.Context, id string) (dto.CourseResponse, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	observability.CoursesDeleted().Inc()
	s.archiveSemester(ctx, course.AcademicYear, course.Semester)

	if s.notifier != nil {
		s.notifier.Publish(ChangeEvent{
			Action:       ChangeActionDeleted,
			CourseID:     id,
			AcademicYear: course.AcademicYear,
			Semester:     course.Semester,
			At:           s.now(),
		})
	}

	return dto.NewCourseResponse(course, grades.Description), nil
}

// archiveSemester rewrites the per-year/semester workbook with every course
// currently in that scope.
func (s *courseService) archiveSemester(ctx context.Context, academicYear string, semester int) {
	if s.store == nil || !s.store.Available() {
		return
	}

	courses, err := s.repo.ListBySemester(ctx, academicYear, semester)
	if err != nil {
		s.logger.Warn().Err(err).Str("academic_year", academicYear).Int("semester", semester).Msg("failed to load courses for archive")
		return
	}

	records := make([]spreadsheet.Record, 0, len(courses))
	for _, course := range courses {
		records = append(records, recordFromCourse(course))
	}

	data, err := spreadsheet.Encode(records, spreadsheet.Meta{
		ExportedAt:   s.now(),
		TotalCourses: len(records),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode archive workbook")
		return
	}

	fileName := spreadsheet.WorkbookFileName(academicYear, semester)
	if err := s.store.SaveWorkbook(ctx, fileName, data); err != nil {
		s.logger.Warn().Err(err).Str("file", fileName).Msg("failed to write archive workbook")
		return
	}

	s.logger.Debug().Str("file", fileName).Int("courses", len(records)).Msg("archive workbook updated")
}

func recordFromCourse(course models.Course) spreadsheet.Record {
	return spreadsheet.Record{
		ID:              course.ID,
		CourseName:      course.CourseName,
		Credits:         course.Credits,
		Semester:        course.Semester,
		AcademicYear:    course.AcademicYear,
		FinalPercentage: course.FinalPercentage,
		LetterGrade:     course.LetterGrade,
		Classification:  course.Classification,
	}
}
