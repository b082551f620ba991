package pipeline

import "fmt"

// Stage-error kinds, used to classify why a job failed.
const (
	KindTransfer    = "transfer"
	KindExtraction  = "extraction"
	KindAnnotation  = "annotation"
	KindStoreCommit = "store-commit"
)

// StageError records which pipeline stage failed and why. It is stored on the
// job and surfaced in the per-file outcome; it never propagates to the batch
// caller as an error return.
type StageError struct {
	Kind string
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func transferError(err error) *StageError {
	return &StageError{Kind: KindTransfer, Err: err}
}

func extractionError(err error) *StageError {
	return &StageError{Kind: KindExtraction, Err: err}
}

func annotationError(err error) *StageError {
	return &StageError{Kind: KindAnnotation, Err: err}
}

func storeCommitError(err error) *StageError {
	return &StageError{Kind: KindStoreCommit, Err: err}
}
