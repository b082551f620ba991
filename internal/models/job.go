package models

import "fmt"

// Stage is an ingestion job's state-machine state.
type Stage string

// Ingestion stages. Committed and Failed are terminal.
const (
	StageQueued       Stage = "queued"
	StageTransferring Stage = "transferring"
	StageUploaded     Stage = "uploaded"
	StageExtracting   Stage = "extracting"
	StageAnnotating   Stage = "annotating"
	StageCommitted    Stage = "committed"
	StageFailed       Stage = "failed"
)

// Terminal reports whether the stage is a terminal state.
func (s Stage) Terminal() bool {
	return s == StageCommitted || s == StageFailed
}

// FileSpec describes one file submitted for ingestion. FileRef is an opaque
// handle interpreted only by the transfer and extraction collaborators.
type FileSpec struct {
	FileRef          string `json:"file_ref"`
	DeclaredName     string `json:"declared_name"`
	DeclaredSize     int64  `json:"declared_size"`
	DeclaredMimeType string `json:"declared_mime_type"`
}

// BatchRequest submits one or more files for ingestion into a department.
type BatchRequest struct {
	Files         []FileSpec `json:"files"`
	Department    string     `json:"department"`
	TitleOverride string     `json:"title_override,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
}

// Validate checks that the request is well-formed. Department membership in
// the configured set is checked by the caller that knows the configuration.
func (r *BatchRequest) Validate() error {
	if len(r.Files) == 0 {
		return fmt.Errorf("batch contains no files")
	}
	if r.Department == "" {
		return fmt.Errorf("department is required")
	}
	for i, f := range r.Files {
		if f.FileRef == "" {
			return fmt.Errorf("file %d: file_ref is required", i)
		}
		if f.DeclaredName == "" {
			return fmt.Errorf("file %d: declared_name is required", i)
		}
	}
	return nil
}

// FileOutcome is the per-file result of a batch submission.
type FileOutcome struct {
	JobID        string `json:"job_id"`
	DeclaredName string `json:"declared_name"`
	Stage        Stage  `json:"stage"`
	DocumentID   string `json:"document_id,omitempty"`
	ErrorReason  string `json:"error_reason,omitempty"`
}

// BatchResult reports per-file outcomes plus an overall success flag that is
// true only when every file reached Committed.
type BatchResult struct {
	Outcomes     []FileOutcome `json:"outcomes"`
	AllCommitted bool          `json:"all_committed"`
}
