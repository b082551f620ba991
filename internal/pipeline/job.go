package pipeline

import (
	"fmt"

	"github.com/metrodocs/kiroku/internal/models"
)

// legalTransitions is the per-job state machine. Progress updates mutate the
// job within Transferring; everything else moves through this table.
var legalTransitions = map[models.Stage][]models.Stage{
	models.StageQueued:       {models.StageTransferring, models.StageFailed},
	models.StageTransferring: {models.StageUploaded, models.StageFailed},
	models.StageUploaded:     {models.StageExtracting, models.StageFailed},
	models.StageExtracting:   {models.StageAnnotating, models.StageFailed},
	models.StageAnnotating:   {models.StageCommitted, models.StageFailed},
}

// job is the ephemeral per-file tracking record. It is owned exclusively by
// the pipeline and discarded once terminal.
type job struct {
	id              string
	file            models.FileSpec
	stage           models.Stage
	progressPercent int
	extractedText   string
	summary         string
	complianceFlags []string
	err             error
}

func newJob(id string, file models.FileSpec) *job {
	return &job{id: id, file: file, stage: models.StageQueued}
}

// transition moves the job to the target stage, rejecting moves the state
// machine does not allow (a programming error, not a runtime condition).
func (j *job) transition(to models.Stage) error {
	for _, allowed := range legalTransitions[j.stage] {
		if allowed == to {
			j.stage = to
			return nil
		}
	}
	return fmt.Errorf("illegal stage transition %s -> %s", j.stage, to)
}

// fail marks the job Failed with the given cause. Failing from a terminal
// state is ignored.
func (j *job) fail(err error) {
	if j.stage.Terminal() {
		return
	}
	j.stage = models.StageFailed
	j.err = err
}

// recordProgress applies a progress update: monotonically non-decreasing and
// clamped to [0,100].
func (j *job) recordProgress(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent > j.progressPercent {
		j.progressPercent = percent
	}
}

func (j *job) outcome(documentID string) models.FileOutcome {
	out := models.FileOutcome{
		JobID:        j.id,
		DeclaredName: j.file.DeclaredName,
		Stage:        j.stage,
		DocumentID:   documentID,
	}
	if j.err != nil {
		out.ErrorReason = j.err.Error()
	}
	return out
}
