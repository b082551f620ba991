package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metrodocs/kiroku/internal/models"
)

// MemoryStore is an in-memory, insertion-ordered document store. State lives
// only for the process lifetime. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []*models.Document
	byID map[string]*models.Document
	now  func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		byID: make(map[string]*models.Document),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create assigns an id, applies defaults, and inserts at the end of the collection.
func (s *MemoryStore) Create(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if input == nil {
		return nil, fmt.Errorf("nil document input")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	doc := &models.Document{
		ID:                       uuid.New().String(),
		Title:                    input.Title,
		Department:               input.Department,
		FileType:                 input.FileType,
		SizeBytes:                input.SizeBytes,
		UploadDate:               input.UploadDate,
		Version:                  input.Version,
		Status:                   input.Status,
		Tags:                     cloneStrings(input.Tags),
		Summary:                  input.Summary,
		AIAnnotationSummary:      input.AIAnnotationSummary,
		ComplianceFlags:          cloneStrings(input.ComplianceFlags),
		CrossDepartmentRelevance: cloneStrings(input.CrossDepartmentRelevance),
	}
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now
	}
	doc.LastModified = doc.UploadDate
	if doc.Version == "" {
		doc.Version = "1.0"
	}
	if doc.Status == "" {
		doc.Status = models.StatusActive
	}
	s.docs = append(s.docs, doc)
	s.byID[doc.ID] = doc
	return cloneDocument(doc), nil
}

// Update merges non-nil patch fields. The id is never changed.
func (s *MemoryStore) Update(ctx context.Context, id string, patch *models.DocumentUpdate) (*models.Document, error) {
	if patch == nil {
		return nil, fmt.Errorf("nil document update")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Department != nil {
		doc.Department = *patch.Department
	}
	if patch.FileType != nil {
		doc.FileType = *patch.FileType
	}
	if patch.Status != nil {
		doc.Status = *patch.Status
	}
	if patch.Tags != nil {
		doc.Tags = cloneStrings(*patch.Tags)
	}
	if patch.Summary != nil {
		doc.Summary = *patch.Summary
	}
	if patch.AIAnnotationSummary != nil {
		doc.AIAnnotationSummary = *patch.AIAnnotationSummary
	}
	doc.LastModified = s.now()
	return cloneDocument(doc), nil
}

// Delete removes the document from the collection.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(s.byID, id)
	for i, d := range s.docs {
		if d.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			break
		}
	}
	return nil
}

// AddVersion appends a version entry and advances the version tag.
func (s *MemoryStore) AddVersion(ctx context.Context, id string, entry models.VersionEntry) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("add version %s: %w", id, ErrNotFound)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	doc.Versions = append(doc.Versions, entry)
	doc.Version = entry.Version
	doc.LastModified = entry.Timestamp
	return cloneDocument(doc), nil
}

// AddComment appends a comment; comments are never deleted.
func (s *MemoryStore) AddComment(ctx context.Context, id string, comment models.Comment) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("add comment %s: %w", id, ErrNotFound)
	}
	if comment.Timestamp.IsZero() {
		comment.Timestamp = s.now()
	}
	doc.Comments = append(doc.Comments, comment)
	doc.LastModified = comment.Timestamp
	return cloneDocument(doc), nil
}

// ByID returns a copy of the document.
func (s *MemoryStore) ByID(ctx context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return cloneDocument(doc), nil
}

// Snapshot returns a deep copy of all documents in insertion order.
func (s *MemoryStore) Snapshot(ctx context.Context) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Document, len(s.docs))
	for i, d := range s.docs {
		out[i] = cloneDocument(d)
	}
	return out, nil
}

// Count returns the number of stored documents.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func cloneDocument(d *models.Document) *models.Document {
	out := *d
	out.Tags = cloneStrings(d.Tags)
	out.ComplianceFlags = cloneStrings(d.ComplianceFlags)
	out.CrossDepartmentRelevance = cloneStrings(d.CrossDepartmentRelevance)
	if d.Comments != nil {
		out.Comments = append([]models.Comment(nil), d.Comments...)
	}
	if d.Versions != nil {
		out.Versions = append([]models.VersionEntry(nil), d.Versions...)
	}
	return &out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
