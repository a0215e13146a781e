package dto

// ImportSummary counts the outcome of one spreadsheet import.
type ImportSummary struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// Add accumulates another summary into this one.
func (s *ImportSummary) Add(other ImportSummary) {
	s.Imported += other.Imported
	s.Updated += other.Updated
	s.Skipped += other.Skipped
}

// FileImportError records a single file that failed during a batch import.
type FileImportError struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// BatchImportSummary reports a whole-folder import. Partial progress is
// kept even when individual files fail.
type BatchImportSummary struct {
	Files    int               `json:"files"`
	Totals   ImportSummary     `json:"totals"`
	Failures []FileImportError `json:"failures,omitempty"`
}

// BackupSnapshot is the JSON dump of the whole course collection.
type BackupSnapshot struct {
	Version    string           `json:"version"`
	ExportedAt string           `json:"exported_at"`
	Courses    []CourseResponse `json:"courses"`
}
