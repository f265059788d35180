package models

import "time"

type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// RunParams selects what one pipeline run covers.
type RunParams struct {
	Symbol         string    `json:"symbol"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	IncludeInsider bool      `json:"include_insider"`
	Persist        bool      `json:"persist"`
	Publish        bool      `json:"publish"`
}

// Job tracks an asynchronous pipeline run.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Params    RunParams `json:"params"`
	RunID     string    `json:"run_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finished reports whether the job reached a terminal state.
func (j *Job) Finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}
