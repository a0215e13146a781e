package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/grades"
	"github.com/noah-isme/grademetrix-api/internal/models"
)

// CalculatorService evaluates assessments without persisting anything,
// backing the live calculator panel.
type CalculatorService interface {
	Preview(ctx context.Context, payload dto.GradePreviewRequest) (dto.GradePreviewResponse, error)
}

type calculatorService struct {
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCalculatorService constructs the calculator service.
func NewCalculatorService(validator *validator.Validate, logger zerolog.Logger) CalculatorService {
	return &calculatorService{
		validator: validator,
		logger:    logger.With().Str("component", "calculator_service").Logger(),
	}
}

func (s *calculatorService) Preview(_ context.Context, payload dto.GradePreviewRequest) (dto.GradePreviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradePreviewResponse{}, err
	}

	assessments := assessmentsFromInputs(payload.Assessments)
	final, totalWeight := grades.FinalPercentage(assessments)
	letter := grades.Letter(final)

	return dto.GradePreviewResponse{
		FinalPercentage:  final,
		LetterGrade:      letter,
		GradeDescription: grades.Description(letter),
		Weight:           weightSummary(totalWeight),
		Projection:       grades.PassProjection(final, totalWeight),
	}, nil
}

func weightSummary(totalWeight float64) dto.WeightSummary {
	summary := dto.WeightSummary{
		TotalWeight:     totalWeight,
		RemainingWeight: 100 - totalWeight,
	}

	switch {
	case totalWeight < 100:
		summary.Status = dto.WeightStatusIncomplete
	case totalWeight == 100:
		summary.Status = dto.WeightStatusComplete
		summary.RemainingWeight = 0
	default:
		summary.Status = dto.WeightStatusExceeded
		summary.RemainingWeight = 0
		summary.ExceededBy = totalWeight - 100
	}

	return summary
}

func assessmentsFromInputs(inputs []dto.AssessmentInput) []models.Assessment {
	assessments := make([]models.Assessment, 0, len(inputs))
	for _, input := range inputs {
		assessments = append(assessments, models.Assessment{
			Name:         input.Name,
			FullMarks:    input.FullMarks,
			ObtainedMark: input.ObtainedMark,
			Weighting:    input.Weighting,
		})
	}
	return assessments
}
