package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler is responsible for running background jobs
type Scheduler struct {
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	enabled   bool
	isRunning bool
	jobs      []Job
	wg        sync.WaitGroup

	// Mutex to prevent concurrent runs of the same job
	processingMutex sync.Mutex
	processing      map[string]bool

	tickers []*time.Ticker
}

func NewScheduler(logger *slog.Logger, enabled bool, jobs ...Job) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		enabled:    enabled,
		jobs:       jobs,
		processing: make(map[string]bool),
	}
}

// executeJobSafely runs a job only if its previous run has finished
func (s *Scheduler) executeJobSafely(job Job) {
	s.processingMutex.Lock()
	if s.processing[job.Name] {
		s.logger.Debug("Skipping job execution - previous run still in progress", slog.String("job", job.Name))
		s.processingMutex.Unlock()
		return
	}
	s.processing[job.Name] = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", job.Name),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.processing[job.Name] = false
		s.processingMutex.Unlock()
	}()

	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("Error executing job", slog.String("job", job.Name), slog.Any("error", err))
	}
}

// Start begins all background jobs
func (s *Scheduler) Start() error {
	if !s.enabled {
		s.logger.Info("Background jobs are disabled.")
		return nil
	}

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	s.logger.Info("Starting background jobs...", slog.Int("count", len(s.jobs)))
	s.isRunning = true

	for _, job := range s.jobs {
		s.startJob(job)
	}

	s.logger.Info("Background jobs started",
		slog.Bool("enabled", s.enabled),
		slog.Bool("isRunning", s.isRunning))

	return nil
}

func (s *Scheduler) startJob(job Job) {
	if job.Interval <= 0 {
		s.logger.Warn("Skipping job with non-positive interval", slog.String("job", job.Name))
		return
	}

	s.logger.Info("Starting job", slog.String("job", job.Name), slog.Duration("interval", job.Interval))
	ticker := time.NewTicker(job.Interval)
	s.tickers = append(s.tickers, ticker)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ticker.C:
				s.executeJobSafely(job)
			case <-s.ctx.Done():
				s.logger.Info("Job stopped", slog.String("job", job.Name))
				return
			}
		}
	}()
}

// Stop halts all background jobs and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")
	s.enabled = false

	for _, ticker := range s.tickers {
		ticker.Stop()
	}

	s.cancel()
	s.wg.Wait()
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}

// RunNow executes the named job once, outside its schedule.
func (s *Scheduler) RunNow(name string) bool {
	for _, job := range s.jobs {
		if job.Name == name {
			s.executeJobSafely(job)
			return true
		}
	}
	return false
}
