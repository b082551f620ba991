package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/metrodocs/kiroku/internal/models"
)

func TestMemoryStore_CreateAndByID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	input := &models.DocumentInput{
		Title:           "Annual Budget Report",
		Department:      models.DepartmentFinance,
		FileType:        "pdf",
		SizeBytes:       2400000,
		Tags:            []string{"budget", "finance"},
		Summary:         "Budget figures for the year",
		ComplianceFlags: []string{"financial-audit"},
	}
	doc, err := s.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc.ID == "" {
		t.Error("expected assigned id")
	}
	if doc.Version != "1.0" || doc.Status != models.StatusActive {
		t.Errorf("defaults not applied: version=%q status=%q", doc.Version, doc.Status)
	}
	if doc.UploadDate.IsZero() || !doc.LastModified.Equal(doc.UploadDate) {
		t.Errorf("timestamps not set: upload=%v modified=%v", doc.UploadDate, doc.LastModified)
	}

	got, err := s.ByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if got.Title != input.Title || got.Department != input.Department ||
		got.FileType != input.FileType || got.SizeBytes != input.SizeBytes {
		t.Errorf("ByID() = %+v, want input fields echoed back", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "budget" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestMemoryStore_ByIDNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.ByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByID() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Update(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doc, _ := s.Create(ctx, &models.DocumentInput{Title: "Old", Department: models.DepartmentHR})

	title := "New"
	status := models.StatusArchived
	got, err := s.Update(ctx, doc.ID, &models.DocumentUpdate{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Title != "New" || got.Status != models.StatusArchived {
		t.Errorf("Update() = %+v", got)
	}
	if got.ID != doc.ID {
		t.Error("id must not change on update")
	}
	if got.Department != models.DepartmentHR {
		t.Error("unset fields must not change")
	}

	if _, err := s.Update(ctx, "missing", &models.DocumentUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doc, _ := s.Create(ctx, &models.DocumentInput{Title: "A", Department: models.DepartmentSafety})

	if err := s.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.ByID(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Error("document still present after delete")
	}
	if err := s.Delete(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestMemoryStore_AddVersion(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore(WithClock(func() time.Time { return base }))
	ctx := context.Background()
	doc, _ := s.Create(ctx, &models.DocumentInput{Title: "Spec", Department: models.DepartmentEngineering})

	later := base.Add(24 * time.Hour)
	got, err := s.AddVersion(ctx, doc.ID, models.VersionEntry{
		Version:           "1.1",
		Timestamp:         later,
		Author:            "meera",
		ChangeDescription: "Updated projections",
	})
	if err != nil {
		t.Fatalf("AddVersion() error = %v", err)
	}
	if got.Version != "1.1" {
		t.Errorf("version = %q, want 1.1", got.Version)
	}
	if !got.LastModified.Equal(later) {
		t.Errorf("last modified = %v, want %v", got.LastModified, later)
	}
	if len(got.Versions) != 1 || got.Versions[0].Author != "meera" {
		t.Errorf("versions = %+v", got.Versions)
	}

	if _, err := s.AddVersion(ctx, "missing", models.VersionEntry{Version: "2.0"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddVersion(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_AddComment(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doc, _ := s.Create(ctx, &models.DocumentInput{Title: "Spec", Department: models.DepartmentEngineering})

	for _, text := range []string{"first", "second"} {
		if _, err := s.AddComment(ctx, doc.ID, models.Comment{Author: "rajesh", Text: text}); err != nil {
			t.Fatalf("AddComment() error = %v", err)
		}
	}
	got, _ := s.ByID(ctx, doc.ID)
	if len(got.Comments) != 2 || got.Comments[0].Text != "first" || got.Comments[1].Text != "second" {
		t.Errorf("comments = %+v, want append-only order", got.Comments)
	}
	if got.Comments[0].Timestamp.IsZero() {
		t.Error("comment timestamp not filled")
	}

	if _, err := s.AddComment(ctx, "missing", models.Comment{Text: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddComment(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_SnapshotOrderAndIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	titles := []string{"one", "two", "three"}
	ids := make([]string, len(titles))
	for i, title := range titles {
		doc, _ := s.Create(ctx, &models.DocumentInput{Title: title, Department: models.DepartmentOperations})
		ids[i] = doc.ID
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	for i, title := range titles {
		if snap[i].Title != title {
			t.Errorf("snapshot[%d] = %q, want %q (insertion order)", i, snap[i].Title, title)
		}
	}

	// Mutations after the snapshot must not be visible in it.
	newTitle := "mutated"
	if _, err := s.Update(ctx, ids[0], &models.DocumentUpdate{Title: &newTitle}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, &models.DocumentInput{Title: "four", Department: models.DepartmentOperations}); err != nil {
		t.Fatal(err)
	}
	if len(snap) != 3 || snap[0].Title != "one" {
		t.Error("snapshot observed later mutations")
	}

	// Mutating a snapshot copy must not leak back into the store.
	snap[1].Tags = append(snap[1].Tags, "leaked")
	fresh, _ := s.ByID(ctx, ids[1])
	if len(fresh.Tags) != 0 {
		t.Error("snapshot mutation leaked into store")
	}
}
