package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/grademetrix-api/internal/models"
)

// CourseRepository defines persistence operations for course records.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	ListByYear(ctx context.Context, academicYear string) ([]models.Course, error)
	ListBySemester(ctx context.Context, academicYear string, semester int) ([]models.Course, error)
	GetByID(ctx context.Context, id string) (models.Course, error)
	Upsert(ctx context.Context, course *models.Course) (created bool, err error)
	DeleteByID(ctx context.Context, id string) error
	Migrate(ctx context.Context) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Migrate ensures the backing store exists. It is idempotent and never
// touches existing rows.
func (r *courseRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.Course{})
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Order("academic_year ASC, semester ASC, course_name ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) ListByYear(ctx context.Context, academicYear string) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Where("academic_year = ?", academicYear).
		Order("semester ASC, course_name ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) ListBySemester(ctx context.Context, academicYear string, semester int) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Where("academic_year = ? AND semester = ?", academicYear, semester).
		Order("course_name ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

// Upsert inserts the course, or replaces the record sharing its natural key
// (course name, academic year, semester) entirely. The reported flag is true
// when a new record was created.
func (r *courseRepository) Upsert(ctx context.Context, course *models.Course) (bool, error) {
	key := course.Key()

	var existing models.Course
	err := r.db.WithContext(ctx).
		Where("course_name = ? AND academic_year = ? AND semester = ?", key.CourseName, key.AcademicYear, key.Semester).
		First(&existing).Error

	switch {
	case err == nil:
		course.ID = existing.ID
		course.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if course.ID == "" {
			course.ID = uuid.NewString()
		}
		if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

func (r *courseRepository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
