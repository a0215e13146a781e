package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/grades"
)

func TestCalculatorPreviewCompleteWeight(t *testing.T) {
	svc := NewCalculatorService(validator.New(), testLogger())

	preview, err := svc.Preview(context.Background(), dto.GradePreviewRequest{
		Assessments: []dto.AssessmentInput{
			{Name: "Coursework", FullMarks: 100, ObtainedMark: 65, Weighting: 40},
			{Name: "Exam", FullMarks: 100, ObtainedMark: 60, Weighting: 60},
		},
	})
	require.NoError(t, err)

	require.Equal(t, 62.0, preview.FinalPercentage)
	require.Equal(t, "B", preview.LetterGrade)
	require.Equal(t, "Very Good (60% to 69%)", preview.GradeDescription)
	require.Equal(t, dto.WeightStatusComplete, preview.Weight.Status)
	require.Equal(t, 0.0, preview.Weight.RemainingWeight)
	require.Equal(t, grades.OutcomeGuaranteed, preview.Projection.Outcome)
}

func TestCalculatorPreviewIncompleteWeightProjectsPass(t *testing.T) {
	svc := NewCalculatorService(validator.New(), testLogger())

	preview, err := svc.Preview(context.Background(), dto.GradePreviewRequest{
		Assessments: []dto.AssessmentInput{
			{Name: "Midterm", FullMarks: 50, ObtainedMark: 25, Weighting: 40},
		},
	})
	require.NoError(t, err)

	require.Equal(t, 20.0, preview.FinalPercentage)
	require.Equal(t, dto.WeightStatusIncomplete, preview.Weight.Status)
	require.Equal(t, 60.0, preview.Weight.RemainingWeight)
	require.Equal(t, grades.OutcomeAchievable, preview.Projection.Outcome)
	// 20 more points over 60% of remaining weight needs a 33.33 average.
	require.InDelta(t, 33.33, preview.Projection.NeededScore, 0.01)
}

func TestCalculatorPreviewExceededWeight(t *testing.T) {
	svc := NewCalculatorService(validator.New(), testLogger())

	preview, err := svc.Preview(context.Background(), dto.GradePreviewRequest{
		Assessments: []dto.AssessmentInput{
			{Name: "Coursework", FullMarks: 100, ObtainedMark: 80, Weighting: 70},
			{Name: "Exam", FullMarks: 100, ObtainedMark: 80, Weighting: 50},
		},
	})
	require.NoError(t, err)

	require.Equal(t, dto.WeightStatusExceeded, preview.Weight.Status)
	require.Equal(t, 20.0, preview.Weight.ExceededBy)
	require.Equal(t, 0.0, preview.Weight.RemainingWeight)
}

func TestCalculatorPreviewRejectsEmptyAssessments(t *testing.T) {
	svc := NewCalculatorService(validator.New(), testLogger())

	_, err := svc.Preview(context.Background(), dto.GradePreviewRequest{})
	require.Error(t, err)
}
