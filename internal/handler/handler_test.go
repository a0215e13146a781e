package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grademetrix-api/internal/dto"
)

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

// mockSummaryService records invalidations and serves canned summaries.
type mockSummaryService struct {
	yearResponse        dto.YearSummaryResponse
	semesterResponse    dto.SemesterSummaryResponse
	progressionResponse dto.ProgressionResponse
	err                 error
	invalidatedYears    []string
	invalidatedAll      int
}

func (m *mockSummaryService) SemesterSummary(_ context.Context, academicYear string, semester int) (dto.SemesterSummaryResponse, error) {
	if m.err != nil {
		return dto.SemesterSummaryResponse{}, m.err
	}
	response := m.semesterResponse
	response.AcademicYear = academicYear
	response.Semester = semester
	return response, nil
}

func (m *mockSummaryService) YearSummary(_ context.Context, academicYear string) (dto.YearSummaryResponse, error) {
	if m.err != nil {
		return dto.YearSummaryResponse{}, m.err
	}
	response := m.yearResponse
	response.AcademicYear = academicYear
	return response, nil
}

func (m *mockSummaryService) Progression(_ context.Context, academicYear string, stage int) (dto.ProgressionResponse, error) {
	if m.err != nil {
		return dto.ProgressionResponse{}, m.err
	}
	response := m.progressionResponse
	response.AcademicYear = academicYear
	response.Result.Stage = stage
	return response, nil
}

func (m *mockSummaryService) InvalidateYear(_ context.Context, academicYear string) {
	m.invalidatedYears = append(m.invalidatedYears, academicYear)
}

func (m *mockSummaryService) InvalidateAll(_ context.Context) {
	m.invalidatedAll++
}
