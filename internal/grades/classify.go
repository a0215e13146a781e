package grades

// Degree classification labels.
const (
	ClassificationFirst       = "First Class Honours"
	ClassificationUpperSecond = "Upper Second Class Honours"
	ClassificationLowerSecond = "Lower Second Class Honours"
	ClassificationThird       = "Third Class Honours"
	ClassificationFail        = "Fail"
)

// Classify maps a weighted average mark to its degree classification.
func Classify(wam float64) string {
	switch {
	case wam >= 70:
		return ClassificationFirst
	case wam >= 60:
		return ClassificationUpperSecond
	case wam >= 50:
		return ClassificationLowerSecond
	case wam >= 40:
		return ClassificationThird
	default:
		return ClassificationFail
	}
}
