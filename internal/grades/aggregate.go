package grades

import (
	"math"

	"github.com/noah-isme/grademetrix-api/internal/models"
)

// Summary aggregates a set of course records for one scope (a semester or a
// whole academic year).
type Summary struct {
	TotalCredits int
	WAM          float64
	CourseCount  int
	Best         *models.Course
}

// Aggregate computes total credits, the credit-weighted average mark and the
// best-performing course of the given records. The WAM is weighted strictly
// by credits, never by course count, and is rounded to one decimal place.
// Empty input yields the zero Summary with a nil Best; callers must render
// that as "no data" rather than 0%.
func Aggregate(courses []models.Course) Summary {
	summary := Summary{CourseCount: len(courses)}
	if len(courses) == 0 {
		return summary
	}

	var weightedScore float64
	best := 0
	for i, course := range courses {
		summary.TotalCredits += course.Credits
		weightedScore += course.FinalPercentage * float64(course.Credits)
		// Strict comparison keeps the first-encountered course on ties.
		if course.FinalPercentage > courses[best].FinalPercentage {
			best = i
		}
	}

	if summary.TotalCredits > 0 {
		summary.WAM = math.Round(weightedScore/float64(summary.TotalCredits)*10) / 10
	}

	summary.Best = &courses[best]
	return summary
}
