package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Assessment is one graded component of a course. Assessments are only
// stored embedded in their course record; they have no standalone lifecycle.
type Assessment struct {
	Name         string  `json:"name"`
	FullMarks    float64 `json:"full_marks"`
	ObtainedMark float64 `json:"obtained_mark"`
	Weighting    float64 `json:"weighting"`
}

// Course is one completed or in-progress course record. The course
// collection is the single source of truth for every aggregate the API
// serves.
type Course struct {
	ID              string                          `gorm:"primaryKey;size:36" json:"id"`
	CourseName      string                          `gorm:"size:255;not null;uniqueIndex:idx_courses_natural_key" json:"course_name"`
	AcademicYear    string                          `gorm:"size:16;not null;uniqueIndex:idx_courses_natural_key" json:"academic_year"`
	Semester        int                             `gorm:"not null;uniqueIndex:idx_courses_natural_key" json:"semester"`
	Credits         int                             `gorm:"not null" json:"credits"`
	FinalPercentage float64                         `json:"final_percentage"`
	LetterGrade     string                          `gorm:"size:1" json:"letter_grade"`
	Classification  string                          `gorm:"size:64" json:"classification"`
	Assessments     datatypes.JSONSlice[Assessment] `json:"assessments"`
	CreatedAt       time.Time                       `json:"created_at"`
	UpdatedAt       time.Time                       `json:"updated_at"`
}

// CourseKey is the natural key identifying a logically unique course for
// merge purposes, distinct from the opaque storage ID.
type CourseKey struct {
	CourseName   string
	AcademicYear string
	Semester     int
}

// NewCourseKey builds a normalized natural key.
func NewCourseKey(courseName, academicYear string, semester int) CourseKey {
	return CourseKey{
		CourseName:   strings.TrimSpace(courseName),
		AcademicYear: strings.TrimSpace(academicYear),
		Semester:     semester,
	}
}

// Key returns the course's natural key.
func (c Course) Key() CourseKey {
	return NewCourseKey(c.CourseName, c.AcademicYear, c.Semester)
}
