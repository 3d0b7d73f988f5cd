package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alimgiray/leaderboard/internal/metrics"
	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ErrRunInProgress is returned when a run is requested while another is still going
var ErrRunInProgress = errors.New("a leaderboard run is already in progress")

const maxRunHistory = 50

// Generator produces the leaderboard artifacts
type Generator interface {
	Generate(ctx context.Context) (*RunReport, error)
}

type SchedulerService struct {
	generator Generator
	org       string
	interval  time.Duration

	mu      sync.Mutex
	running bool
	runs    []*models.Run
}

func NewSchedulerService(generator Generator, org string, interval time.Duration) *SchedulerService {
	return &SchedulerService{
		generator: generator,
		org:       org,
		interval:  interval,
	}
}

// StartScheduler runs the generator right away and then every interval until ctx is done
func (s *SchedulerService) StartScheduler(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		logger.WithField("interval", s.interval.String()).Info("Scheduler started")
		for {
			if _, err := s.RunNow(ctx, models.RunTriggerScheduled); err != nil && !errors.Is(err, ErrRunInProgress) {
				logger.WithError(err).Error("Scheduled leaderboard run failed")
			}

			select {
			case <-ctx.Done():
				logger.Info("Scheduler stopped")
				return
			case <-ticker.C:
			}
		}
	}()
}

// RunNow performs one run synchronously and records it in the history
func (s *SchedulerService) RunNow(ctx context.Context, trigger models.RunTrigger) (*models.Run, error) {
	run, err := s.begin(trigger)
	if err != nil {
		return nil, err
	}
	return run, s.execute(ctx, run)
}

// Trigger starts a run in the background and returns a snapshot of it as started
func (s *SchedulerService) Trigger(ctx context.Context, trigger models.RunTrigger) (models.Run, error) {
	run, err := s.begin(trigger)
	if err != nil {
		return models.Run{}, err
	}
	s.mu.Lock()
	snapshot := *run
	s.mu.Unlock()

	go func() {
		_ = s.execute(ctx, run)
	}()
	return snapshot, nil
}

func (s *SchedulerService) begin(trigger models.RunTrigger) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, ErrRunInProgress
	}
	s.running = true
	run := models.NewRun(s.org, trigger)
	run.MarkStarted()
	s.runs = append(s.runs, run)
	if len(s.runs) > maxRunHistory {
		s.runs = s.runs[len(s.runs)-maxRunHistory:]
	}
	return run, nil
}

func (s *SchedulerService) execute(ctx context.Context, run *models.Run) error {
	log := logger.WithFields(logrus.Fields{
		"run_id":  run.ID,
		"trigger": run.Trigger,
	})
	log.Info("Leaderboard run started")

	report, err := s.generator.Generate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false

	if err != nil {
		run.MarkFailed(err)
		metrics.Runs.WithLabelValues("failed").Inc()
		log.WithError(err).Error("Leaderboard run failed")
		return err
	}

	run.Activities = report.Activities
	run.Contributors = report.Contributors
	run.Periods = append(run.Periods, report.Periods...)
	run.SkippedRepos = append(run.SkippedRepos, report.SkippedRepos...)
	run.MarkCompleted()

	metrics.Runs.WithLabelValues("completed").Inc()
	metrics.RunDuration.Observe(run.Duration().Seconds())
	log.WithField("duration", run.Duration().String()).Info("Leaderboard run completed")
	return nil
}

// Runs returns copies of the recorded runs, newest first
func (s *SchedulerService) Runs() []models.Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := make([]models.Run, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		runs = append(runs, *s.runs[i])
	}
	return runs
}
