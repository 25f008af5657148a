// internal/pkg/async/pool.go
package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

type Task struct {
	Name    string
	Execute func(ctx context.Context) (interface{}, error)
}

type Result struct {
	Name string
	Data interface{}
	Err  error
}

type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Execute runs every task and returns all results keyed by task name,
// including failed ones.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	var mu sync.Mutex
	results := make(map[string]Result, len(tasks))

	workers := pool.New().WithMaxGoroutines(p.workerCount).WithContext(ctx)
	for _, task := range tasks {
		task := task
		workers.Go(func(ctx context.Context) error {
			data, err := task.Execute(ctx)
			mu.Lock()
			results[task.Name] = Result{Name: task.Name, Data: data, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = workers.Wait()

	return results
}

// ExecuteAll runs the tasks and fails on the first error. The context passed
// to the remaining tasks is cancelled as soon as one fails.
func (p *Pool) ExecuteAll(ctx context.Context, tasks []Task) (map[string]Result, error) {
	var mu sync.Mutex
	results := make(map[string]Result, len(tasks))

	workers := pool.New().
		WithMaxGoroutines(p.workerCount).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for _, task := range tasks {
		task := task
		workers.Go(func(ctx context.Context) error {
			data, err := task.Execute(ctx)
			if err != nil {
				return fmt.Errorf("error fetching %s: %w", task.Name, err)
			}
			mu.Lock()
			results[task.Name] = Result{Name: task.Name, Data: data}
			mu.Unlock()
			return nil
		})
	}

	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
