package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alimgiray/leaderboard/pkg/logger"
)

// SourceFactory builds a fresh RepoSource for each worker
type SourceFactory func() RepoSource

// IngestPool fans repository jobs out to a fixed number of workers
type IngestPool struct {
	size      int
	newSource SourceFactory
	org       string
	since     time.Time
	workers   []*RepoWorker
}

// NewIngestPool creates a pool of size workers, each with its own source
func NewIngestPool(size int, newSource SourceFactory, org string, since time.Time) *IngestPool {
	if size < 1 {
		size = 1
	}
	return &IngestPool{
		size:      size,
		newSource: newSource,
		org:       org,
		since:     since,
	}
}

// Run processes every job and returns the results in job order, regardless of
// which worker finished first.
func (p *IngestPool) Run(ctx context.Context, jobs []RepoJob) []RepoResult {
	workerCount := p.size
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}
	logger.Infof("Starting %d repository workers for %d repositories", workerCount, len(jobs))

	queue := make(chan RepoJob)
	results := make(chan RepoResult, len(jobs))

	var wg sync.WaitGroup
	p.workers = make([]*RepoWorker, 0, workerCount)
	for i := 0; i < workerCount; i++ {
		worker := NewRepoWorker(fmt.Sprintf("repo-%d", i+1), p.newSource(), p.org, p.since)
		p.workers = append(p.workers, worker)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := worker.Start(ctx, queue, results); err != nil {
				logger.WithError(err).WithField("worker", worker.GetWorkerID()).Warn("Worker stopped with error")
			}
		}()
	}

	submitted := 0
feed:
	for i, job := range jobs {
		job.Index = i
		select {
		case <-ctx.Done():
			break feed
		case queue <- job:
			submitted++
		}
	}
	close(queue)
	wg.Wait()
	close(results)

	ordered := make([]RepoResult, len(jobs))
	received := make([]bool, len(jobs))
	for result := range results {
		ordered[result.Index] = result
		received[result.Index] = true
	}
	for i := range ordered {
		if !received[i] {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("repository %s was not processed", jobs[i].Repo)
			}
			ordered[i] = RepoResult{Index: i, Repo: jobs[i].Repo, Err: err}
		}
	}

	logger.Infof("Repository workers finished, %d of %d jobs submitted", submitted, len(jobs))
	return ordered
}

// GetWorkerStatus returns whether each worker of the last run is still running
func (p *IngestPool) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool, len(p.workers))
	for _, worker := range p.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}
