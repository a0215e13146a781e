package grades

import "github.com/noah-isme/grademetrix-api/internal/models"

// Progression and results-gate thresholds.
const (
	CreditsRequired      = 120
	ProgressionWAMFloor  = 50.0
	MinCoursesForResults = 8
)

// WAMFloorStage is the first study-year stage that also carries a WAM
// requirement. Stages 1 and 2 only check credits and the grade floor.
const WAMFloorStage = 3

// passingLetters is the grade floor: exactly the D cutoff. E counts as a
// fail for progression even though it carries its own descriptive band.
var passingLetters = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// ProgressionResult reports whether one academic year's courses clear the
// progression requirements for the selected study-year stage, with the
// shortfall figures needed for display.
type ProgressionResult struct {
	Stage             int      `json:"stage"`
	TotalCredits      int      `json:"total_credits"`
	CreditsRequired   int      `json:"credits_required"`
	CreditsShort      int      `json:"credits_short"`
	GradeFloorMet     bool     `json:"grade_floor_met"`
	FailingCourses    []string `json:"failing_courses,omitempty"`
	WAM               float64  `json:"wam"`
	WAMRequired       float64  `json:"wam_required,omitempty"`
	WAMShort          bool     `json:"wam_short"`
	MeetsRequirements bool     `json:"meets_requirements"`
}

// EvaluateProgression checks the credit floor and grade floor common to all
// stages, plus the WAM floor for stage 3 and beyond. Stages above 3 use the
// stage-3 rules.
func EvaluateProgression(courses []models.Course, stage int) ProgressionResult {
	summary := Aggregate(courses)

	result := ProgressionResult{
		Stage:           stage,
		TotalCredits:    summary.TotalCredits,
		CreditsRequired: CreditsRequired,
		GradeFloorMet:   true,
		WAM:             summary.WAM,
	}

	if summary.TotalCredits < CreditsRequired {
		result.CreditsShort = CreditsRequired - summary.TotalCredits
	}

	for _, course := range courses {
		if !passingLetters[course.LetterGrade] {
			result.GradeFloorMet = false
			result.FailingCourses = append(result.FailingCourses, course.CourseName)
		}
	}

	result.MeetsRequirements = result.CreditsShort == 0 && result.GradeFloorMet

	if stage >= WAMFloorStage {
		result.WAMRequired = ProgressionWAMFloor
		result.WAMShort = summary.WAM < ProgressionWAMFloor
		result.MeetsRequirements = result.MeetsRequirements && !result.WAMShort
	}

	return result
}

// ResultsGate reports whether a year has enough completed courses for its
// overall WAM and classification to be shown at all.
type ResultsGate struct {
	Ready         bool `json:"ready"`
	CourseCount   int  `json:"course_count"`
	TotalCredits  int  `json:"total_credits"`
	CoursesNeeded int  `json:"courses_needed"`
	CreditsNeeded int  `json:"credits_needed"`
}

// GateResults applies the dual full-load gate: at least 8 courses AND at
// least 120 credits. Both conditions are checked independently; the course
// floor is a proxy for a full load and is not implied by the credit total.
func GateResults(courses []models.Course) ResultsGate {
	gate := ResultsGate{CourseCount: len(courses)}
	for _, course := range courses {
		gate.TotalCredits += course.Credits
	}

	if gate.CourseCount < MinCoursesForResults {
		gate.CoursesNeeded = MinCoursesForResults - gate.CourseCount
	}
	if gate.TotalCredits < CreditsRequired {
		gate.CreditsNeeded = CreditsRequired - gate.TotalCredits
	}

	gate.Ready = gate.CoursesNeeded == 0 && gate.CreditsNeeded == 0
	return gate
}
