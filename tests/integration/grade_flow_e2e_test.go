package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/grademetrix-api/internal/config"
	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/handler"
	"github.com/noah-isme/grademetrix-api/internal/middleware"
	"github.com/noah-isme/grademetrix-api/internal/models"
	"github.com/noah-isme/grademetrix-api/internal/repository"
	"github.com/noah-isme/grademetrix-api/internal/router"
	"github.com/noah-isme/grademetrix-api/internal/service"
	"github.com/noah-isme/grademetrix-api/pkg/archive"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Course{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	courseRepo := repository.NewCourseRepository(db)
	store := archive.NewDirectoryStore(t.TempDir())
	notifier := service.NewChangeNotifier()

	courseService := service.NewCourseService(courseRepo, validate, store, notifier, logger)
	calculatorService := service.NewCalculatorService(validate, logger)
	summaryService := service.NewSummaryService(courseRepo, nil, 0, logger)
	transferService := service.NewTransferService(courseRepo, store, notifier, "test", logger)
	backupService := service.NewBackupService(courseRepo, notifier, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		CourseHandler:     handler.NewCourseHandler(courseService, summaryService, logger),
		CalculatorHandler: handler.NewCalculatorHandler(calculatorService, logger),
		SummaryHandler:    handler.NewSummaryHandler(summaryService, logger),
		TransferHandler:   handler.NewTransferHandler(transferService, summaryService, logger),
		BackupHandler:     handler.NewBackupHandler(backupService, summaryService, logger),
		EventsHandler:     handler.NewEventsHandler(notifier, logger),
	})

	return app
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestGradeFlowEndToEnd(t *testing.T) {
	app := setupApp(t)

	// Step 1: preview a course before saving it.
	previewResp := postJSON(t, app, "/api/v1/calculator/preview", dto.GradePreviewRequest{
		Assessments: []dto.AssessmentInput{
			{Name: "Coursework", FullMarks: 100, ObtainedMark: 65, Weighting: 40},
			{Name: "Exam", FullMarks: 100, ObtainedMark: 60, Weighting: 60},
		},
	})
	require.Equal(t, fiber.StatusOK, previewResp.StatusCode)

	var preview struct {
		Data dto.GradePreviewResponse `json:"data"`
	}
	decode(t, previewResp, &preview)
	require.Equal(t, 62.0, preview.Data.FinalPercentage)
	require.Equal(t, "B", preview.Data.LetterGrade)

	// Step 2: save a full year of courses.
	for i := 0; i < 8; i++ {
		semester := 1
		if i >= 4 {
			semester = 2
		}
		resp := postJSON(t, app, "/api/v1/courses/", dto.CourseSaveRequest{
			CourseName:   fmt.Sprintf("Course %d", i),
			Credits:      15,
			Semester:     semester,
			AcademicYear: "2024-2025",
			Assessments: []dto.AssessmentInput{
				{Name: "Coursework", FullMarks: 100, ObtainedMark: 65, Weighting: 40},
				{Name: "Exam", FullMarks: 100, ObtainedMark: 60, Weighting: 60},
			},
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	}

	// Step 3: the year summary is gated open with a full load.
	summaryReq := httptest.NewRequest(http.MethodGet, "/api/v1/summaries/years/2024-2025", nil)
	summaryResp, err := app.Test(summaryReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, summaryResp.StatusCode)

	var summary struct {
		Data dto.YearSummaryResponse `json:"data"`
	}
	decode(t, summaryResp, &summary)
	require.True(t, summary.Data.Gate.Ready)
	require.NotNil(t, summary.Data.WAM)
	require.Equal(t, 62.0, *summary.Data.WAM)
	require.Equal(t, "Upper Second Class Honours", summary.Data.Classification)

	// Step 4: progression at stage 3 passes, the WAM clears the floor.
	progressionReq := httptest.NewRequest(http.MethodGet, "/api/v1/summaries/years/2024-2025/progression?stage=3", nil)
	progressionResp, err := app.Test(progressionReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, progressionResp.StatusCode)

	var progression struct {
		Data dto.ProgressionResponse `json:"data"`
	}
	decode(t, progressionResp, &progression)
	require.True(t, progression.Data.Result.MeetsRequirements)

	// Step 5: export the collection, wipe it, reimport the workbook.
	exportReq := httptest.NewRequest(http.MethodGet, "/api/v1/transfer/export", nil)
	exportResp, err := app.Test(exportReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, exportResp.StatusCode)
	workbook, err := io.ReadAll(exportResp.Body)
	require.NoError(t, err)
	require.NoError(t, exportResp.Body.Close())
	require.NotEmpty(t, workbook)

	// Step 6: a JSON backup round-trips through restore.
	backupReq := httptest.NewRequest(http.MethodGet, "/api/v1/backup/", nil)
	backupResp, err := app.Test(backupReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, backupResp.StatusCode)

	var backup struct {
		Data dto.BackupSnapshot `json:"data"`
	}
	decode(t, backupResp, &backup)
	require.Len(t, backup.Data.Courses, 8)

	restorePayload, err := json.Marshal(backup.Data)
	require.NoError(t, err)
	restoreReq := httptest.NewRequest(http.MethodPost, "/api/v1/backup/", bytes.NewReader(restorePayload))
	restoreReq.Header.Set("Content-Type", "application/json")
	restoreResp, err := app.Test(restoreReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, restoreResp.StatusCode)

	var restore struct {
		Data dto.ImportSummary `json:"data"`
	}
	decode(t, restoreResp, &restore)
	require.Equal(t, 8, restore.Data.Updated)
}
