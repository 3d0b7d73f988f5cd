package models

import (
	"time"

	"github.com/google/uuid"
)

// RunTrigger represents what started a run
type RunTrigger string

const (
	RunTriggerManual    RunTrigger = "manual"
	RunTriggerScheduled RunTrigger = "scheduled"
)

// RunStatus represents the status of a run
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusInProgress RunStatus = "in-progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Run represents one batch recomputation of the leaderboard
type Run struct {
	ID           string     `json:"id"`
	Org          string     `json:"org"`
	Trigger      RunTrigger `json:"trigger"`
	Status       RunStatus  `json:"status"`
	ErrorMessage *string    `json:"error_message"`
	Periods      []Period   `json:"periods"`
	Activities   int        `json:"activities"`
	Contributors int        `json:"contributors"`
	SkippedRepos []string   `json:"skipped_repos"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewRun creates a new Run with a generated UUID
func NewRun(org string, trigger RunTrigger) *Run {
	return &Run{
		ID:           uuid.New().String(),
		Org:          org,
		Trigger:      trigger,
		Status:       RunStatusPending,
		Periods:      make([]Period, 0),
		SkippedRepos: make([]string, 0),
		CreatedAt:    time.Now(),
	}
}

// IsPending checks if the run is pending
func (r *Run) IsPending() bool {
	return r.Status == RunStatusPending
}

// IsInProgress checks if the run is in progress
func (r *Run) IsInProgress() bool {
	return r.Status == RunStatusInProgress
}

// IsCompleted checks if the run is completed
func (r *Run) IsCompleted() bool {
	return r.Status == RunStatusCompleted
}

// IsFailed checks if the run is failed
func (r *Run) IsFailed() bool {
	return r.Status == RunStatusFailed
}

// MarkStarted marks the run as started
func (r *Run) MarkStarted() {
	now := time.Now()
	r.Status = RunStatusInProgress
	r.StartedAt = &now
}

// MarkCompleted marks the run as completed
func (r *Run) MarkCompleted() {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
}

// MarkFailed marks the run as failed and records the error
func (r *Run) MarkFailed(err error) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.CompletedAt = &now
	if err != nil {
		message := err.Error()
		r.ErrorMessage = &message
	}
}

// Duration returns how long the run took, or zero while it is still going
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}
