// Package transfer defines the file transfer collaborator and a local
// filesystem implementation.
package transfer

import "context"

// Progress is one update from an in-flight transfer. Percent is in [0,100].
// A non-nil Err means the transfer failed; no further updates follow.
type Progress struct {
	Percent int
	Err     error
}

// Sink accepts a file for transfer and reports progress until completion.
// The returned channel is closed when the transfer completes or fails.
type Sink interface {
	Begin(ctx context.Context, fileRef string) (<-chan Progress, error)
}
