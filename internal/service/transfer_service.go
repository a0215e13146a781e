package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/grades"
	"github.com/noah-isme/grademetrix-api/internal/models"
	"github.com/noah-isme/grademetrix-api/internal/observability"
	"github.com/noah-isme/grademetrix-api/internal/repository"
	"github.com/noah-isme/grademetrix-api/pkg/archive"
	"github.com/noah-isme/grademetrix-api/pkg/spreadsheet"
)

// ErrNoCourses indicates an export was requested while the course
// collection is empty.
var ErrNoCourses = errors.New("no courses to export")

// TransferService moves the course collection in and out of the
// application as spreadsheet workbooks.
type TransferService interface {
	Export(ctx context.Context) (fileName string, data []byte, err error)
	Import(ctx context.Context, r io.Reader) (dto.ImportSummary, error)
	ImportArchive(ctx context.Context) (dto.BatchImportSummary, error)
}

type transferService struct {
	repo       repository.CourseRepository
	store      archive.Store
	notifier   ChangeNotifier
	appVersion string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTransferService constructs the transfer service.
func NewTransferService(repo repository.CourseRepository, store archive.Store, notifier ChangeNotifier, appVersion string, logger zerolog.Logger) TransferService {
	return &transferService{
		repo:       repo,
		store:      store,
		notifier:   notifier,
		appVersion: appVersion,
		logger:     logger.With().Str("component", "transfer_service").Logger(),
		now:        time.Now,
	}
}

// Export serializes every stored course into a single workbook. An empty
// collection is refused so the caller never downloads a headers-only file.
func (s *transferService) Export(ctx context.Context) (string, []byte, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(courses) == 0 {
		return "", nil, ErrNoCourses
	}

	records := make([]spreadsheet.Record, 0, len(courses))
	for _, course := range courses {
		records = append(records, recordFromCourse(course))
	}

	data, err := spreadsheet.Encode(records, spreadsheet.Meta{
		ExportedAt:   s.now(),
		TotalCourses: len(records),
		AppVersion:   s.appVersion,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode workbook: %w", err)
	}

	observability.TransferExports().Inc()

	fileName := fmt.Sprintf("grademetrix_%s.xlsx", s.now().Format("2006-01-02"))
	s.logger.Info().Str("file", fileName).Int("courses", len(records)).Msg("exported course workbook")

	return fileName, data, nil
}

// Import reads a workbook and upserts every row that carries a course name.
// Rows are matched by the (name, year, semester) natural key, so importing
// the same workbook twice updates rather than duplicates.
func (s *transferService) Import(ctx context.Context, r io.Reader) (dto.ImportSummary, error) {
	tracer := otel.Tracer("github.com/noah-isme/grademetrix-api/internal/service/transfer")
	ctx, span := tracer.Start(ctx, "transfer.import")
	defer span.End()

	data, err := io.ReadAll(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read_failed")
		return dto.ImportSummary{}, fmt.Errorf("failed to read upload: %w", err)
	}

	records, err := spreadsheet.Decode(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode_failed")
		return dto.ImportSummary{}, err
	}

	summary, err := s.importRecords(ctx, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "import_failed")
		return summary, err
	}

	span.SetAttributes(
		attribute.Int("transfer.imported", summary.Imported),
		attribute.Int("transfer.updated", summary.Updated),
		attribute.Int("transfer.skipped", summary.Skipped),
	)

	if s.notifier != nil && summary.Imported+summary.Updated > 0 {
		s.notifier.Publish(ChangeEvent{Action: ChangeActionImported, At: s.now()})
	}

	return summary, nil
}

// ImportArchive replays every workbook found in the archive folder.
// A workbook that cannot be decoded is reported and skipped; the rest of
// the batch still runs.
func (s *transferService) ImportArchive(ctx context.Context) (dto.BatchImportSummary, error) {
	if s.store == nil || !s.store.Available() {
		return dto.BatchImportSummary{}, archive.ErrUnavailable
	}

	files, err := s.store.ListWorkbooks(ctx)
	if err != nil {
		return dto.BatchImportSummary{}, err
	}

	batch := dto.BatchImportSummary{}
	for _, file := range files {
		data, err := s.store.ReadWorkbook(ctx, file)
		if err != nil {
			batch.Failures = append(batch.Failures, dto.FileImportError{File: file, Reason: err.Error()})
			continue
		}

		records, err := spreadsheet.Decode(data)
		if err != nil {
			batch.Failures = append(batch.Failures, dto.FileImportError{File: file, Reason: err.Error()})
			continue
		}

		summary, err := s.importRecords(ctx, records)
		if err != nil {
			batch.Failures = append(batch.Failures, dto.FileImportError{File: file, Reason: err.Error()})
			continue
		}

		batch.Files++
		batch.Totals.Add(summary)
	}

	if s.notifier != nil && batch.Totals.Imported+batch.Totals.Updated > 0 {
		s.notifier.Publish(ChangeEvent{Action: ChangeActionImported, At: s.now()})
	}

	s.logger.Info().
		Int("files", batch.Files).
		Int("imported", batch.Totals.Imported).
		Int("updated", batch.Totals.Updated).
		Int("failures", len(batch.Failures)).
		Msg("archive import finished")

	return batch, nil
}

func (s *transferService) importRecords(ctx context.Context, records []spreadsheet.Record) (dto.ImportSummary, error) {
	summary := dto.ImportSummary{}

	for _, record := range records {
		name := strings.TrimSpace(record.CourseName)
		if name == "" {
			summary.Skipped++
			observability.TransferRows().WithLabelValues("skipped").Inc()
			continue
		}

		final := record.FinalPercentage
		letter := record.LetterGrade
		if letter == "" {
			letter = grades.Letter(final)
		}
		classification := record.Classification
		if classification == "" {
			classification = grades.Classify(final)
		}

		course := models.Course{
			CourseName:      name,
			AcademicYear:    strings.TrimSpace(record.AcademicYear),
			Semester:        record.Semester,
			Credits:         record.Credits,
			FinalPercentage: final,
			LetterGrade:     letter,
			Classification:  classification,
			Assessments:     datatypes.JSONSlice[models.Assessment]{},
		}

		created, err := s.repo.Upsert(ctx, &course)
		if err != nil {
			return summary, fmt.Errorf("failed to import course %q: %w", name, err)
		}

		if created {
			summary.Imported++
			observability.TransferRows().WithLabelValues("imported").Inc()
		} else {
			summary.Updated++
			observability.TransferRows().WithLabelValues("updated").Inc()
		}
	}

	return summary, nil
}
