package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/pipeline"
	"github.com/facemoji/facemoji/internal/task"
)

// Analyzer is the pipeline stage a job worker runs per frame.
type Analyzer interface {
	DetectAndClassify(ctx context.Context, image []byte) (*pipeline.DetectResult, error)
}

// Tracker creates jobs and runs one worker per job on the task runner.
type Tracker struct {
	store    *Store
	analyzer Analyzer
	runner   *task.Runner
	logger   *slog.Logger
}

func NewTracker(store *Store, analyzer Analyzer, runner *task.Runner, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:    store,
		analyzer: analyzer,
		runner:   runner,
		logger:   logger,
	}
}

// Create registers a pending job and schedules its worker. The worker runs
// detached from the caller's request context.
func (t *Tracker) Create(ctx context.Context, frames [][]byte, opts domain.JobOptions) (uuid.UUID, error) {
	if len(frames) == 0 {
		return uuid.Nil, domain.ErrEmptyJob
	}

	j := &domain.Job{
		ID:        uuid.New(),
		Status:    domain.JobPending,
		Frames:    frames,
		Options:   opts,
		CreatedAt: time.Now(),
	}

	if err := t.store.Save(ctx, j); err != nil {
		return uuid.Nil, err
	}

	workerCtx := context.WithoutCancel(ctx)
	_, err := t.runner.Submit(workerCtx, "job:"+j.ID.String(), func(taskCtx context.Context) error {
		t.process(taskCtx, j)
		return nil
	})
	if err != nil {
		j.Status = domain.JobFailed
		j.Error = "worker could not be scheduled"
		if saveErr := t.store.Save(ctx, j); saveErr != nil {
			t.logger.Error("failed to persist unschedulable job", "job_id", j.ID, "error", saveErr)
		}
		return uuid.Nil, err
	}

	t.logger.Info("job created", "job_id", j.ID, "frames", len(frames))
	return j.ID, nil
}

// Status returns the current job record.
func (t *Tracker) Status(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return t.store.Load(ctx, id)
}

// process runs every frame through the analyzer. Frame failures are recorded
// on the frame and never fail the job; only a store failure does.
func (t *Tracker) process(ctx context.Context, j *domain.Job) {
	j.Status = domain.JobProcessing
	if err := t.store.Save(ctx, j); err != nil {
		t.logger.Error("job store write failed", "job_id", j.ID, "error", err)
		t.finish(ctx, j, domain.JobFailed, "store unavailable")
		return
	}

	for i, frame := range j.Frames {
		j.Results = append(j.Results, t.processFrame(ctx, i, frame, j.Options))
	}

	t.finish(ctx, j, domain.JobComplete, "")
}

func (t *Tracker) processFrame(ctx context.Context, index int, frame []byte, opts domain.JobOptions) domain.FrameResult {
	result := domain.FrameResult{Index: index}

	analysis, err := t.analyzer.DetectAndClassify(ctx, frame)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	for _, fa := range analysis.Faces {
		if fa.Face.Confidence < opts.MinConfidence {
			continue
		}
		result.Faces = append(result.Faces, fa.Face)
		if result.Recommendation == nil {
			rec := fa.Recommendation
			result.Recommendation = &rec
		}
	}

	return result
}

// finish moves the job to a terminal state exactly once.
func (t *Tracker) finish(ctx context.Context, j *domain.Job, status domain.JobStatus, errMsg string) {
	if j.Status.Terminal() {
		return
	}

	j.Status = status
	j.Error = errMsg

	if err := t.store.Save(ctx, j); err != nil {
		t.logger.Error("failed to persist terminal job state", "job_id", j.ID, "status", status, "error", err)
		return
	}

	t.logger.Info("job finished", "job_id", j.ID, "status", status, "frames", len(j.Results))
}
