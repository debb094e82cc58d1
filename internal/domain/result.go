package domain

import (
	"fmt"
	"time"
)

// Status is the final outcome of one entity in a run.
type Status string

const (
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Stage identifies where in the pipeline an entity currently is, or
// where it stopped.
type Stage string

const (
	StagePending      Stage = "pending"
	StageReading      Stage = "reading"
	StageTransforming Stage = "transforming"
	StageWriting      Stage = "writing"
	StageDone         Stage = "done"
)

// SkipReason distinguishes configuration skips (clean) from dependency
// cascade skips (reported but not fatal).
type SkipReason string

const (
	SkipReasonNone       SkipReason = ""
	SkipReasonDisabled   SkipReason = "disabled_by_configuration"
	SkipReasonDependency SkipReason = "dependency_failed"
	SkipReasonNoStrategy SkipReason = "not_applicable"
)

// Result captures the outcome of one entity's pipeline. Once the
// orchestrator appends it to the run report it is never mutated again.
type Result struct {
	Entity     EntityName `json:"entity"`
	Status     Status     `json:"status"`
	Stage      Stage      `json:"stage"`
	SkipReason SkipReason `json:"skip_reason,omitempty"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Errors     []string   `json:"errors,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// NewResult returns a Result in its initial state.
func NewResult(entity EntityName) *Result {
	return &Result{Entity: entity, Status: StatusDone, Stage: StagePending}
}

// Fail marks the result failed at the given stage.
func (r *Result) Fail(stage Stage, err error) *Result {
	r.Status = StatusFailed
	r.Stage = stage
	r.Errors = append(r.Errors, err.Error())
	return r
}

// Skip marks the result skipped for the given reason.
func (r *Result) Skip(reason SkipReason) *Result {
	r.Status = StatusSkipped
	r.SkipReason = reason
	return r
}

// Warn records a non-fatal per-item problem.
func (r *Result) Warn(err error) {
	r.Warnings = append(r.Warnings, err.Error())
}

// RunReport aggregates the results of one save or restore run.
type RunReport struct {
	SessionID  string    `json:"session_id"`
	Mode       Mode      `json:"mode"`
	Owner      string    `json:"owner"`
	Repo       string    `json:"repo"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Results    []*Result `json:"results"`
}

// Append adds a finalized entity result.
func (rr *RunReport) Append(r *Result) {
	rr.Results = append(rr.Results, r)
}

// Failed reports whether any entity ended in StatusFailed. Skips, by
// configuration or by dependency cascade, do not count as failures on
// their own; the entity that caused the cascade already does.
func (rr *RunReport) Failed() bool {
	for _, r := range rr.Results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Summary returns a one-line digest suitable for logs.
func (rr *RunReport) Summary() string {
	var done, failed, skipped int
	for _, r := range rr.Results {
		switch r.Status {
		case StatusDone:
			done++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return fmt.Sprintf("%d done, %d failed, %d skipped", done, failed, skipped)
}
