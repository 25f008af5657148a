package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ga4dash/internal/cache"
	"ga4dash/internal/pkg/async"
)

const CacheCleanupJobName = "cache_cleanup"

// CacheCleanupJob evicts expired entries from in-process caches. Stores with
// native expiry report zero removals.
type CacheCleanupJob struct {
	stores []cache.Cleaner
	logger *slog.Logger
}

func NewCacheCleanupJob(logger *slog.Logger, stores ...cache.Cleaner) *CacheCleanupJob {
	return &CacheCleanupJob{
		stores: stores,
		logger: logger,
	}
}

// Run cleans every store concurrently, continuing past failures. It returns
// the total number of removed entries.
func (j *CacheCleanupJob) Run(ctx context.Context) (int, error) {
	tasks := make([]async.Task, 0, len(j.stores))
	for i, store := range j.stores {
		store := store
		tasks = append(tasks, async.Task{
			Name: storeTaskName(i),
			Execute: func(ctx context.Context) (interface{}, error) {
				return store.CleanExpired(ctx)
			},
		})
	}

	results := async.NewPool(len(tasks)).Execute(ctx, tasks)

	var (
		total int
		errs  []error
	)
	for i := range j.stores {
		result := results[storeTaskName(i)]
		if result.Err != nil {
			errs = append(errs, result.Err)
			continue
		}
		if removed, ok := result.Data.(int); ok {
			total += removed
		}
	}

	if total > 0 {
		j.logger.Info("Cleaned up expired cache entries", slog.Int("removed_count", total))
	} else {
		j.logger.Debug("No expired cache entries to clean up")
	}

	return total, errors.Join(errs...)
}

func storeTaskName(i int) string {
	return fmt.Sprintf("store-%d", i)
}

// Job returns the scheduler entry for this cleanup.
func (j *CacheCleanupJob) Job(interval time.Duration) Job {
	return Job{
		Name:     CacheCleanupJobName,
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := j.Run(ctx)
			return err
		},
	}
}
