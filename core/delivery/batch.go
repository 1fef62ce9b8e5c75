package delivery

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ExecuteAll runs tasks concurrently, at most limit at a time (unbounded
// when limit <= 0). Each task succeeds or fails on its own; the returned map
// holds the error of every failed task keyed by task ID.
func (o *Orchestrator) ExecuteAll(ctx context.Context, tasks []*Task, limit int) map[string]error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs = make(map[string]error)
	)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, t := range tasks {
		g.Go(func() error {
			if err := o.Execute(ctx, t); err != nil {
				mu.Lock()
				errs[t.ID()] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
