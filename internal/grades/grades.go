package grades

import "github.com/noah-isme/grademetrix-api/internal/models"

// PassMark is the percentage floor for a passing grade (letter D).
const PassMark = 40.0

// Letter grade cutoffs, evaluated high to low.
const (
	cutoffA = 70.0
	cutoffB = 60.0
	cutoffC = 50.0
	cutoffD = 40.0
	cutoffE = 30.0
)

// Contribution converts one assessment into its weighted contribution to the
// course's final percentage. An assessment only counts when it has positive
// full marks and a positive weighting; anything else is excluded, not an
// error. The mark is never clamped, so an obtained mark above full marks
// yields a contribution above the nominal weighting.
func Contribution(fullMarks, obtainedMark, weighting float64) (contribution, effectiveWeight float64) {
	if fullMarks <= 0 || weighting <= 0 {
		return 0, 0
	}

	percentage := (obtainedMark / fullMarks) * 100
	return percentage * (weighting / 100), weighting
}

// FinalPercentage sums the included contributions of the given assessments
// and reports the total weight that was counted. The result is not
// renormalized: with only 60% of the weight entered it represents marks
// banked so far, not a projected average. Empty input yields (0, 0).
func FinalPercentage(assessments []models.Assessment) (final, totalWeight float64) {
	for _, assessment := range assessments {
		contribution, weight := Contribution(assessment.FullMarks, assessment.ObtainedMark, assessment.Weighting)
		final += contribution
		totalWeight += weight
	}

	if totalWeight <= 0 {
		return 0, 0
	}

	return final, totalWeight
}

// Letter maps a percentage to its letter grade band.
func Letter(percentage float64) string {
	switch {
	case percentage >= cutoffA:
		return "A"
	case percentage >= cutoffB:
		return "B"
	case percentage >= cutoffC:
		return "C"
	case percentage >= cutoffD:
		return "D"
	case percentage >= cutoffE:
		return "E"
	default:
		return "F"
	}
}

var gradeDescriptions = map[string]string{
	"A": "Excellent (70% or more)",
	"B": "Very Good (60% to 69%)",
	"C": "Good (50% to 59%)",
	"D": "Satisfactory (40% to 49%)",
	"E": "Adequate - Fail (30% to 39%)",
	"F": "Inadequate (Below 30%)",
}

// Description returns the descriptive label for a letter grade. Unknown
// letters map to "Unknown" rather than failing.
func Description(letter string) string {
	if description, ok := gradeDescriptions[letter]; ok {
		return description
	}
	return "Unknown"
}

// Projection outcome values.
const (
	OutcomeGuaranteed = "guaranteed"
	OutcomeAchievable = "achievable"
	OutcomeImpossible = "impossible"
	OutcomeFailed     = "failed"
)

// Projection describes whether a pass is still reachable given the marks
// banked so far and the assessment weight not yet graded.
type Projection struct {
	Outcome         string  `json:"outcome"`
	RemainingWeight float64 `json:"remaining_weight"`
	NeededScore     float64 `json:"needed_score,omitempty"`
	MaxAchievable   float64 `json:"max_achievable,omitempty"`
}

// PassProjection evaluates the pass outlook for a course in progress.
// currentPercentage is the banked final percentage, totalWeight the weight
// already counted.
func PassProjection(currentPercentage, totalWeight float64) Projection {
	remaining := 100 - totalWeight

	if currentPercentage >= PassMark {
		return Projection{Outcome: OutcomeGuaranteed, RemainingWeight: remaining}
	}

	if remaining > 0 {
		needed := (PassMark - currentPercentage) / (remaining / 100)
		if needed <= 100 {
			return Projection{Outcome: OutcomeAchievable, RemainingWeight: remaining, NeededScore: needed}
		}
		return Projection{Outcome: OutcomeImpossible, RemainingWeight: remaining, MaxAchievable: currentPercentage + remaining}
	}

	return Projection{Outcome: OutcomeFailed, RemainingWeight: 0}
}
