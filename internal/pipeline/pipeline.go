// Package pipeline drives submitted files through the ingestion state machine:
// Queued -> Transferring -> Uploaded -> Extracting -> Annotating -> Committed,
// or Failed from any non-terminal stage.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/metrodocs/kiroku/internal/annotate"
	"github.com/metrodocs/kiroku/internal/extract"
	"github.com/metrodocs/kiroku/internal/models"
	"github.com/metrodocs/kiroku/internal/notify"
	"github.com/metrodocs/kiroku/internal/store"
	"github.com/metrodocs/kiroku/internal/transfer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrentJobs = 4

// Deps wires the collaborators a pipeline needs. Notifier is optional;
// everything else is required.
type Deps struct {
	Store     store.Store
	Transfer  transfer.Sink
	Extractor extract.Service
	Annotator annotate.Service
	Notifier  notify.Sink
}

// Pipeline ingests file batches and commits resulting documents to the store.
type Pipeline struct {
	store     store.Store
	transfer  transfer.Sink
	extractor extract.Service
	annotator annotate.Service
	notifier  notify.Sink

	relevance     map[string][]string
	maxConcurrent int
	logger        *zap.Logger
	now           func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a logger for stage events. Default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRelevanceMap overrides the compliance-flag -> departments mapping used
// to derive cross-department relevance at commit time.
func WithRelevanceMap(m map[string][]string) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.relevance = m
		}
	}
}

// WithMaxConcurrentJobs bounds how many jobs of one batch run in parallel.
func WithMaxConcurrentJobs(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxConcurrent = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline. Returns an error if a required collaborator is missing.
func New(deps Deps, opts ...Option) (*Pipeline, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("pipeline requires a document store")
	}
	if deps.Transfer == nil {
		return nil, fmt.Errorf("pipeline requires a transfer sink")
	}
	if deps.Extractor == nil {
		return nil, fmt.Errorf("pipeline requires an extraction service")
	}
	if deps.Annotator == nil {
		return nil, fmt.Errorf("pipeline requires an annotation service")
	}
	p := &Pipeline{
		store:         deps.Store,
		transfer:      deps.Transfer,
		extractor:     deps.Extractor,
		annotator:     deps.Annotator,
		notifier:      deps.Notifier,
		relevance:     DefaultRelevanceMap(),
		maxConcurrent: defaultMaxConcurrentJobs,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SubmitBatch runs one independent job per file and joins on all of them.
// One file's failure never blocks or rolls back its siblings. The returned
// result lists per-file outcomes in submission order; AllCommitted is true
// only when every file reached Committed, in which case one notification
// event is emitted for the batch.
func (p *Pipeline) SubmitBatch(ctx context.Context, req *models.BatchRequest) (*models.BatchResult, error) {
	if req == nil {
		return nil, fmt.Errorf("nil batch request")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch: %w", err)
	}

	outcomes := make([]models.FileOutcome, len(req.Files))
	g := new(errgroup.Group)
	g.SetLimit(p.maxConcurrent)
	for i, file := range req.Files {
		i, file := i, file
		g.Go(func() error {
			outcomes[i] = p.runJob(ctx, newJob(uuid.New().String(), file), req)
			return nil
		})
	}
	_ = g.Wait()

	committed := 0
	for _, out := range outcomes {
		if out.Stage == models.StageCommitted {
			committed++
		}
	}
	result := &models.BatchResult{
		Outcomes:     outcomes,
		AllCommitted: committed == len(outcomes),
	}
	if result.AllCommitted {
		p.emitBatchCommitted(ctx, committed, req.Department)
	}
	return result, nil
}

// runJob drives one file through every stage in order. Stage errors are
// recorded on the job and reflected in the outcome, never returned.
func (p *Pipeline) runJob(ctx context.Context, j *job, req *models.BatchRequest) models.FileOutcome {
	p.logger.Debug("job queued",
		zap.String("job_id", j.id),
		zap.String("file", j.file.DeclaredName))

	if err := p.runTransfer(ctx, j); err != nil {
		j.fail(transferError(err))
		p.logStageFailure(j)
		return j.outcome("")
	}
	if err := p.runExtraction(ctx, j); err != nil {
		j.fail(extractionError(err))
		p.logStageFailure(j)
		return j.outcome("")
	}
	if err := p.runAnnotation(ctx, j); err != nil {
		j.fail(annotationError(err))
		p.logStageFailure(j)
		return j.outcome("")
	}

	doc, err := p.commit(ctx, j, req)
	if err != nil {
		j.fail(storeCommitError(err))
		// A commit rejection means the pipeline and store disagree on the
		// document contract; log it louder than collaborator failures.
		p.logger.Error("document store rejected commit",
			zap.String("job_id", j.id),
			zap.String("file", j.file.DeclaredName),
			zap.Error(err))
		return j.outcome("")
	}
	if err := j.transition(models.StageCommitted); err != nil {
		j.fail(err)
		return j.outcome("")
	}
	p.logger.Info("document committed",
		zap.String("job_id", j.id),
		zap.String("document_id", doc.ID),
		zap.String("department", doc.Department))
	return j.outcome(doc.ID)
}

// runTransfer consumes the sink's progress stream until completion. Progress
// is monotonically non-decreasing and clamped to [0,100]; the job always
// passes through Transferring even when the sink reports 100 immediately.
func (p *Pipeline) runTransfer(ctx context.Context, j *job) error {
	if err := j.transition(models.StageTransferring); err != nil {
		return err
	}
	updates, err := p.transfer.Begin(ctx, j.file.FileRef)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				if j.progressPercent < 100 {
					return fmt.Errorf("transfer ended at %d%%", j.progressPercent)
				}
				return j.transition(models.StageUploaded)
			}
			if u.Err != nil {
				return u.Err
			}
			j.recordProgress(u.Percent)
		}
	}
}

func (p *Pipeline) runExtraction(ctx context.Context, j *job) error {
	if err := j.transition(models.StageExtracting); err != nil {
		return err
	}
	text, err := p.extractor.Extract(ctx, j.file.FileRef)
	if err != nil {
		return err
	}
	j.extractedText = text
	return nil
}

func (p *Pipeline) runAnnotation(ctx context.Context, j *job) error {
	if err := j.transition(models.StageAnnotating); err != nil {
		return err
	}
	ann, err := p.annotator.Annotate(ctx, j.extractedText)
	if err != nil {
		return err
	}
	j.summary = ann.Summary
	j.complianceFlags = ann.ComplianceFlags
	return nil
}

// commit builds the document from the completed job and hands it to the
// store. Cross-department relevance is derived here, exactly once.
func (p *Pipeline) commit(ctx context.Context, j *job, req *models.BatchRequest) (*models.Document, error) {
	title := req.TitleOverride
	if title == "" {
		title = j.file.DeclaredName
	}
	input := &models.DocumentInput{
		Title:                    title,
		Department:               req.Department,
		FileType:                 fileTypeFor(j.file),
		SizeBytes:                j.file.DeclaredSize,
		UploadDate:               p.now(),
		Tags:                     req.Tags,
		Summary:                  j.extractedText,
		AIAnnotationSummary:      j.summary,
		ComplianceFlags:          j.complianceFlags,
		CrossDepartmentRelevance: deriveRelevance(j.complianceFlags, req.Department, p.relevance),
	}
	return p.store.Create(ctx, input)
}

func (p *Pipeline) emitBatchCommitted(ctx context.Context, count int, department string) {
	if p.notifier == nil {
		return
	}
	event := notify.Event{
		Kind:       notify.KindDocumentsCommitted,
		Title:      "Documents Uploaded Successfully",
		Message:    fmt.Sprintf("%d document(s) have been uploaded and processed", count),
		Department: department,
		Priority:   notify.PriorityMedium,
		Timestamp:  p.now(),
	}
	if err := p.notifier.Emit(ctx, event); err != nil {
		p.logger.Warn("notification emit failed", zap.Error(err))
	}
}

func (p *Pipeline) logStageFailure(j *job) {
	p.logger.Warn("job failed",
		zap.String("job_id", j.id),
		zap.String("file", j.file.DeclaredName),
		zap.Error(j.err))
}

// fileTypeFor derives a short type tag from the declared name's extension,
// falling back to the MIME subtype.
func fileTypeFor(file models.FileSpec) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.DeclaredName)), "."); ext != "" {
		return ext
	}
	if i := strings.LastIndex(file.DeclaredMimeType, "/"); i >= 0 {
		return file.DeclaredMimeType[i+1:]
	}
	return ""
}
