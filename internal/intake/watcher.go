// Package intake watches a drop directory and submits settled files as
// ingestion batches. The first-level subdirectory a file lands in selects the
// owning department; files dropped at the root or in unknown subdirectories
// fall back to the default department.
package intake

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/metrodocs/kiroku/internal/models"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Submitter accepts ingestion batches. Satisfied by pipeline.Pipeline.
type Submitter interface {
	SubmitBatch(ctx context.Context, req *models.BatchRequest) (*models.BatchResult, error)
}

// Watcher converts filesystem drops into batch submissions. Writes are
// debounced per path so a file still being copied in settles before it is
// submitted.
type Watcher struct {
	root              string
	extensions        []string
	departments       map[string]bool
	defaultDepartment string
	submitter         Submitter
	debounce          time.Duration
	logger            *zap.Logger

	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	debounceMap map[string]*time.Timer
	ctx         context.Context
	started     bool
	done        chan struct{}
	stopOnce    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for watch events. Default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithExtensions restricts which files are submitted (empty = all).
func WithExtensions(exts []string) Option {
	return func(w *Watcher) { w.extensions = exts }
}

// WithDepartments sets the recognized department subdirectories and the
// fallback used for everything else.
func WithDepartments(departments []string, fallback string) Option {
	return func(w *Watcher) {
		w.departments = make(map[string]bool, len(departments))
		for _, d := range departments {
			w.departments[d] = true
		}
		w.defaultDepartment = fallback
	}
}

// WithDebounce overrides how long a file must be quiet before submission.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a drop-directory watcher rooted at root.
func NewWatcher(root string, submitter Submitter, opts ...Option) *Watcher {
	w := &Watcher{
		root:              filepath.Clean(root),
		submitter:         submitter,
		defaultDepartment: models.DepartmentOperations,
		debounce:          defaultDebounce,
		logger:            zap.NewNop(),
		debounceMap:       make(map[string]*time.Timer),
		done:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. The root is created if missing. Runs until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(w.root, 0755); err != nil {
		w.mu.Unlock()
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := addDirTree(watcher, w.root); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.ctx = ctx
	w.started = true
	w.mu.Unlock()

	w.logger.Debug("intake watching drop directory", zap.String("root", w.root))
	go w.run(ctx)
	return nil
}

func addDirTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("intake watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	switch ev.Op {
	case fsnotify.Create, fsnotify.Write:
		info, err := os.Stat(ev.Name)
		if err == nil && info.IsDir() {
			w.handleNewDirectory(ev.Name)
			return
		}
		if w.matchExtension(ev.Name) {
			w.debounceSubmit(ev.Name)
		}
	case fsnotify.Remove, fsnotify.Rename:
		w.cancelDebounce(ev.Name)
	}
}

// handleNewDirectory watches a directory created under the root and submits
// any files that arrived with it.
func (w *Watcher) handleNewDirectory(dir string) {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}
	if err := addDirTree(watcher, dir); err != nil {
		w.logger.Debug("intake failed to watch directory", zap.String("path", dir), zap.Error(err))
	}
	w.syncDirectory(dir)
}

// SyncExistingFiles submits files already present under the root. Call after
// Start to pick up drops that happened while the service was down.
func (w *Watcher) SyncExistingFiles() {
	w.syncDirectory(w.root)
}

func (w *Watcher) syncDirectory(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if w.matchExtension(path) {
			w.debounceSubmit(path)
		}
		return nil
	})
}

func (w *Watcher) matchExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range w.extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) debounceSubmit(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		ctx := w.ctx
		w.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			return
		}
		w.submit(ctx, path)
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

func (w *Watcher) submit(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.logger.Warn("intake skipping unreadable drop", zap.String("path", path), zap.Error(err))
		return
	}
	req := &models.BatchRequest{
		Files:      []models.FileSpec{w.fileSpec(path, info)},
		Department: w.departmentFor(path),
	}
	result, err := w.submitter.SubmitBatch(ctx, req)
	if err != nil {
		w.logger.Warn("intake submission rejected", zap.String("path", path), zap.Error(err))
		return
	}
	for _, out := range result.Outcomes {
		if out.Stage == models.StageCommitted {
			w.logger.Info("intake committed drop",
				zap.String("path", path),
				zap.String("document_id", out.DocumentID),
				zap.String("department", req.Department))
		} else {
			w.logger.Warn("intake drop failed",
				zap.String("path", path),
				zap.String("reason", out.ErrorReason))
		}
	}
}

func (w *Watcher) fileSpec(path string, info os.FileInfo) models.FileSpec {
	return models.FileSpec{
		FileRef:          path,
		DeclaredName:     filepath.Base(path),
		DeclaredSize:     info.Size(),
		DeclaredMimeType: mime.TypeByExtension(filepath.Ext(path)),
	}
}

// departmentFor maps a dropped file to a department by its first-level
// subdirectory under the root.
func (w *Watcher) departmentFor(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return w.defaultDepartment
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return w.defaultDepartment
	}
	if w.departments[parts[0]] {
		return parts[0]
	}
	return w.defaultDepartment
}

// Stop stops the watcher and cancels pending submissions.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
