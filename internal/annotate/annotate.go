// Package annotate defines the AI annotation collaborator and a deterministic
// rule-based implementation used when no external service is wired in.
package annotate

import "context"

// Annotation is the result of analyzing extracted document text.
type Annotation struct {
	Summary         string   `json:"summary"`
	ComplianceFlags []string `json:"compliance_flags,omitempty"`
}

// Service produces a summary and compliance flags for extracted text.
type Service interface {
	Annotate(ctx context.Context, text string) (Annotation, error)
}
