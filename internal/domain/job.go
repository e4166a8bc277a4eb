package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a batch job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobComplete   JobStatus = "complete"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s JobStatus) Terminal() bool {
	return s == JobComplete || s == JobFailed
}

// JobOptions are the per-job processing options supplied at creation.
type JobOptions struct {
	MinConfidence float64 `json:"min_confidence,omitempty"`
}

// FrameResult is the pipeline output for a single batch frame. A frame that
// failed to process carries Error and empty face data; it does not fail the job.
type FrameResult struct {
	Index          int               `json:"index"`
	Faces          []FaceObservation `json:"faces,omitempty"`
	Recommendation *Recommendation   `json:"recommendation,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Job is a tracked asynchronous multi-frame processing request. It is mutated
// only by the job tracker and expires from the store after its TTL regardless
// of status.
type Job struct {
	ID        uuid.UUID     `json:"id"`
	Status    JobStatus     `json:"status"`
	Frames    [][]byte      `json:"frames,omitempty"`
	Options   JobOptions    `json:"options"`
	Results   []FrameResult `json:"results,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"-"`
}
