package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnavailable indicates no writable archive folder is active. Callers
// treat it as "feature off", not as a failure.
var ErrUnavailable = errors.New("archive: storage unavailable")

// Store is the capability interface for direct-folder persistence of
// workbook files. Implementations must be safe to call even when the
// underlying folder was never granted; Available reports which case holds.
type Store interface {
	Available() bool
	SaveWorkbook(ctx context.Context, fileName string, data []byte) error
	ReadWorkbook(ctx context.Context, fileName string) ([]byte, error)
	ListWorkbooks(ctx context.Context) ([]string, error)
}

// Detect probes the configured folder and selects the directory-backed
// store when it is writable, falling back to the disabled store otherwise.
// The probe never fails hard; a missing capability just disables archiving.
func Detect(dir string, logger zerolog.Logger) Store {
	log := logger.With().Str("component", "archive").Logger()

	if strings.TrimSpace(dir) == "" {
		log.Info().Msg("no archive folder configured, folder persistence disabled")
		return DisabledStore{}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("archive folder not creatable, folder persistence disabled")
		return DisabledStore{}
	}

	probe := filepath.Join(dir, ".grademetrix-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("archive folder not writable, folder persistence disabled")
		return DisabledStore{}
	}
	_ = os.Remove(probe)

	log.Info().Str("dir", dir).Msg("archive folder active")
	return &DirectoryStore{dir: dir}
}

// DirectoryStore persists workbooks into a local folder.
type DirectoryStore struct {
	dir string
}

// NewDirectoryStore builds a directory store without probing. Prefer Detect
// at startup.
func NewDirectoryStore(dir string) *DirectoryStore {
	return &DirectoryStore{dir: dir}
}

// Available always reports true for a directory store.
func (s *DirectoryStore) Available() bool { return true }

// SaveWorkbook writes the workbook, replacing any previous version.
func (s *DirectoryStore) SaveWorkbook(_ context.Context, fileName string, data []byte) error {
	path, err := s.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("archive: write %s: %w", fileName, err)
	}
	return nil
}

// ReadWorkbook loads a previously archived workbook.
func (s *DirectoryStore) ReadWorkbook(_ context.Context, fileName string) ([]byte, error) {
	path, err := s.resolve(fileName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", fileName, err)
	}
	return data, nil
}

// ListWorkbooks returns the xlsx file names in the folder, sorted.
func (s *DirectoryStore) ListWorkbooks(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("archive: list folder: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls") {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

func (s *DirectoryStore) resolve(fileName string) (string, error) {
	if fileName != filepath.Base(fileName) || fileName == "" || fileName == "." {
		return "", fmt.Errorf("archive: invalid workbook name %q", fileName)
	}
	return filepath.Join(s.dir, fileName), nil
}

// DisabledStore is the fallback when no folder capability is present. Every
// operation reports ErrUnavailable; the rest of the system keeps working
// through the download/upload endpoints instead.
type DisabledStore struct{}

// Available always reports false for the disabled store.
func (DisabledStore) Available() bool { return false }

// SaveWorkbook reports the missing capability.
func (DisabledStore) SaveWorkbook(context.Context, string, []byte) error { return ErrUnavailable }

// ReadWorkbook reports the missing capability.
func (DisabledStore) ReadWorkbook(context.Context, string) ([]byte, error) {
	return nil, ErrUnavailable
}

// ListWorkbooks reports the missing capability.
func (DisabledStore) ListWorkbooks(context.Context) ([]string, error) { return nil, ErrUnavailable }
