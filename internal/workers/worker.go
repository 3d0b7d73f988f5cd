package workers

import (
	"context"
	"sync/atomic"

	"github.com/alimgiray/leaderboard/internal/models"
)

// RepoJob asks a worker to ingest one repository
type RepoJob struct {
	Index  int
	Repo   string
	Issues []IssueRef
}

// IssueRef identifies an issue whose events should be ingested
type IssueRef struct {
	Number int
	Title  string
	Link   string
}

// RepoResult is what a worker produced for one RepoJob
type RepoResult struct {
	Index      int
	Repo       string
	Activities []models.AttributedActivity
	Err        error
}

// Worker interface defines the contract for all workers
type Worker interface {
	// Start consumes jobs until the channel is closed or ctx is done
	Start(ctx context.Context, jobs <-chan RepoJob, results chan<- RepoResult) error

	// GetWorkerID returns the unique identifier for this worker
	GetWorkerID() string
}

// BaseWorker provides common functionality for all workers
type BaseWorker struct {
	WorkerID string
	running  atomic.Bool
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(workerID string) *BaseWorker {
	return &BaseWorker{WorkerID: workerID}
}

// GetWorkerID returns the worker's unique identifier
func (w *BaseWorker) GetWorkerID() string {
	return w.WorkerID
}

// IsRunning checks if the worker is currently consuming jobs
func (w *BaseWorker) IsRunning() bool {
	return w.running.Load()
}

func (w *BaseWorker) setRunning(running bool) {
	w.running.Store(running)
}
