package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/grades"
	"github.com/noah-isme/grademetrix-api/internal/models"
	"github.com/noah-isme/grademetrix-api/internal/repository"
)

// ErrInvalidBackup indicates a restore payload failed schema validation.
var ErrInvalidBackup = errors.New("invalid backup payload")

// backupVersion tags snapshots so future format changes stay detectable.
const backupVersion = "1"

const backupSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "courses"],
  "properties": {
    "version": {"type": "string"},
    "exported_at": {"type": "string"},
    "courses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["course_name", "credits", "semester", "academic_year"],
        "properties": {
          "course_name": {"type": "string", "minLength": 1},
          "credits": {"type": "integer", "minimum": 1},
          "semester": {"type": "integer", "enum": [1, 2]},
          "academic_year": {"type": "string", "minLength": 1},
          "final_percentage": {"type": "number", "minimum": 0},
          "letter_grade": {"type": "string"},
          "classification": {"type": "string"},
          "assessments": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name"],
              "properties": {
                "name": {"type": "string"},
                "full_marks": {"type": "number", "minimum": 0},
                "obtained_mark": {"type": "number", "minimum": 0},
                "weighting": {"type": "number", "minimum": 0}
              }
            }
          }
        }
      }
    }
  }
}`

// BackupService dumps and restores the whole course collection as JSON.
type BackupService interface {
	Export(ctx context.Context) (dto.BackupSnapshot, error)
	Restore(ctx context.Context, data []byte) (dto.ImportSummary, error)
}

type backupService struct {
	repo     repository.CourseRepository
	notifier ChangeNotifier
	schema   *jsonschema.Schema
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBackupService constructs the backup service. It panics if the
// embedded snapshot schema does not compile, which is a build defect.
func NewBackupService(repo repository.CourseRepository, notifier ChangeNotifier, logger zerolog.Logger) BackupService {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("backup.json", strings.NewReader(backupSchema)); err != nil {
		panic(fmt.Sprintf("failed to register backup schema: %v", err))
	}
	schema := compiler.MustCompile("backup.json")

	return &backupService{
		repo:     repo,
		notifier: notifier,
		schema:   schema,
		logger:   logger.With().Str("component", "backup_service").Logger(),
		now:      time.Now,
	}
}

// Export dumps every stored course, assessments included, so a restore
// can rebuild the collection from scratch.
func (s *backupService) Export(ctx context.Context) (dto.BackupSnapshot, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return dto.BackupSnapshot{}, err
	}

	return dto.BackupSnapshot{
		Version:    backupVersion,
		ExportedAt: s.now().UTC().Format(time.RFC3339),
		Courses:    dto.NewCourseResponseSlice(courses, grades.Description),
	}, nil
}

// Restore validates the snapshot against the backup schema and upserts
// every course it carries. Final grades are recomputed from the stored
// assessments when the course has any, so a hand-edited snapshot cannot
// smuggle in an inconsistent grade.
func (s *backupService) Restore(ctx context.Context, data []byte) (dto.ImportSummary, error) {
	var raw interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	if err := s.schema.Validate(raw); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	var snapshot dto.BackupSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	summary := dto.ImportSummary{}
	for _, entry := range snapshot.Courses {
		name := strings.TrimSpace(entry.CourseName)
		if name == "" {
			summary.Skipped++
			continue
		}

		assessments := make([]models.Assessment, 0, len(entry.Assessments))
		for _, input := range entry.Assessments {
			assessments = append(assessments, models.Assessment{
				Name:         input.Name,
				FullMarks:    input.FullMarks,
				ObtainedMark: input.ObtainedMark,
				Weighting:    input.Weighting,
			})
		}

		final := entry.FinalPercentage
		letter := entry.LetterGrade
		classification := entry.Classification
		if len(assessments) > 0 {
			final, _ = grades.FinalPercentage(assessments)
			letter = grades.Letter(final)
			classification = grades.Classify(final)
		} else {
			if letter == "" {
				letter = grades.Letter(final)
			}
			if classification == "" {
				classification = grades.Classify(final)
			}
		}

		course := models.Course{
			CourseName:      name,
			AcademicYear:    strings.TrimSpace(entry.AcademicYear),
			Semester:        entry.Semester,
			Credits:         entry.Credits,
			FinalPercentage: final,
			LetterGrade:     letter,
			Classification:  classification,
			Assessments:     datatypes.JSONSlice[models.Assessment](assessments),
		}

		created, err := s.repo.Upsert(ctx, &course)
		if err != nil {
			return summary, fmt.Errorf("failed to restore course %q: %w", name, err)
		}

		if created {
			summary.Imported++
		} else {
			summary.Updated++
		}
	}

	if s.notifier != nil && summary.Imported+summary.Updated > 0 {
		s.notifier.Publish(ChangeEvent{Action: ChangeActionImported, At: s.now()})
	}

	s.logger.Info().
		Int("imported", summary.Imported).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Msg("backup restored")

	return summary, nil
}
