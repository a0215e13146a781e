package dto

import "github.com/noah-isme/grademetrix-api/internal/grades"

// CourseHighlight summarizes one course inside an aggregate response.
type CourseHighlight struct {
	ID              string  `json:"id"`
	CourseName      string  `json:"course_name"`
	FinalPercentage float64 `json:"final_percentage"`
	LetterGrade     string  `json:"letter_grade"`
}

// SemesterSummaryResponse aggregates one semester of one academic year.
type SemesterSummaryResponse struct {
	AcademicYear string           `json:"academic_year"`
	Semester     int              `json:"semester"`
	CourseCount  int              `json:"course_count"`
	TotalCredits int              `json:"total_credits"`
	WAM          float64          `json:"wam"`
	BestCourse   *CourseHighlight `json:"best_course"`
	Courses      []CourseResponse `json:"courses"`
}

// YearSummaryResponse aggregates one academic year. WAM and classification
// are withheld (nil/empty) until the results gate is satisfied; the gate
// carries the progress figures to show instead.
type YearSummaryResponse struct {
	AcademicYear   string             `json:"academic_year"`
	Gate           grades.ResultsGate `json:"gate"`
	WAM            *float64           `json:"wam"`
	Classification string             `json:"classification,omitempty"`
	BestCourse     *CourseHighlight   `json:"best_course,omitempty"`
}

// ProgressionResponse reports progression-requirement status for one
// academic year at the selected study-year stage.
type ProgressionResponse struct {
	AcademicYear string                   `json:"academic_year"`
	Result       grades.ProgressionResult `json:"result"`
}
