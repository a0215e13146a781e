package dto

import (
	"time"

	"github.com/noah-isme/grademetrix-api/internal/grades"
	"github.com/noah-isme/grademetrix-api/internal/models"
)

// AssessmentInput is one graded component supplied when building a course.
type AssessmentInput struct {
	Name         string  `json:"name" validate:"required"`
	FullMarks    float64 `json:"full_marks" validate:"gte=0"`
	ObtainedMark float64 `json:"obtained_mark" validate:"gte=0"`
	Weighting    float64 `json:"weighting" validate:"gte=0"`
}

// CourseSaveRequest finalizes a course entry from its assessments.
type CourseSaveRequest struct {
	CourseName   string            `json:"course_name" validate:"required"`
	Credits      int               `json:"credits" validate:"required,gt=0"`
	Semester     int               `json:"semester" validate:"required,oneof=1 2"`
	AcademicYear string            `json:"academic_year" validate:"required"`
	Assessments  []AssessmentInput `json:"assessments" validate:"omitempty,dive"`
}

// CourseResponse is returned to API clients when viewing courses.
type CourseResponse struct {
	ID               string            `json:"id"`
	CourseName       string            `json:"course_name"`
	Credits          int               `json:"credits"`
	Semester         int               `json:"semester"`
	AcademicYear     string            `json:"academic_year"`
	FinalPercentage  float64           `json:"final_percentage"`
	LetterGrade      string            `json:"letter_grade"`
	GradeDescription string            `json:"grade_description"`
	Classification   string            `json:"classification"`
	Assessments      []AssessmentInput `json:"assessments"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewCourseResponse converts a Course model into a DTO. The description
// function is injected so the DTO layer carries no grade semantics.
func NewCourseResponse(model models.Course, describe func(string) string) CourseResponse {
	assessments := make([]AssessmentInput, 0, len(model.Assessments))
	for _, assessment := range model.Assessments {
		assessments = append(assessments, AssessmentInput{
			Name:         assessment.Name,
			FullMarks:    assessment.FullMarks,
			ObtainedMark: assessment.ObtainedMark,
			Weighting:    assessment.Weighting,
		})
	}

	description := ""
	if describe != nil {
		description = describe(model.LetterGrade)
	}

	return CourseResponse{
		ID:               model.ID,
		CourseName:       model.CourseName,
		Credits:          model.Credits,
		Semester:         model.Semester,
		AcademicYear:     model.AcademicYear,
		FinalPercentage:  model.FinalPercentage,
		LetterGrade:      model.LetterGrade,
		GradeDescription: description,
		Classification:   model.Classification,
		Assessments:      assessments,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course, describe func(string) string) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course, describe))
	}

	return responses
}

// GradePreviewRequest carries assessments for a live calculation without
// persisting anything.
type GradePreviewRequest struct {
	Assessments []AssessmentInput `json:"assessments" validate:"required,min=1,dive"`
}

// WeightSummary reports how much assessment weight has been entered.
type WeightSummary struct {
	TotalWeight     float64 `json:"total_weight"`
	RemainingWeight float64 `json:"remaining_weight"`
	Status          string  `json:"status"`
	ExceededBy      float64 `json:"exceeded_by,omitempty"`
}

// Weight summary status values.
const (
	WeightStatusIncomplete = "incomplete"
	WeightStatusComplete   = "complete"
	WeightStatusExceeded   = "exceeded"
)

// GradePreviewResponse is the live calculator result.
type GradePreviewResponse struct {
	FinalPercentage  float64           `json:"final_percentage"`
	LetterGrade      string            `json:"letter_grade"`
	GradeDescription string            `json:"grade_description"`
	Weight           WeightSummary     `json:"weight"`
	Projection       grades.Projection `json:"projection"`
}
