// Package notify defines the notification event contract and sinks.
package notify

import (
	"context"
	"errors"
	"time"
)

// Event kinds emitted by the core.
const (
	KindDocumentsCommitted = "documents-committed"
)

// Event priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Event is a boundary signal to the notification collaborator. The core
// fires it and consumes no response.
type Event struct {
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Department string    `json:"department"`
	Priority   string    `json:"priority"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink delivers notification events. Emit is fire-and-forget from the
// pipeline's perspective; errors are logged by callers, never acted on.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// MultiSink fans an event out to every sink, continuing past failures.
type MultiSink []Sink

// Emit delivers to all sinks and returns the joined errors, if any.
func (m MultiSink) Emit(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
