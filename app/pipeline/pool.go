package pipeline

import (
	"context"
	"sync"
)

// RunPool drains tasks through a bounded pool of workers, joining with
// settled semantics: every task runs regardless of what the others do. The
// same primitive serves enrichment and lightweight persistence.
func RunPool(ctx context.Context, workers int, tasks []func(ctx context.Context)) {
	if workers < 1 {
		workers = 1
	}

	queue := make(chan func(ctx context.Context))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				task(ctx)
			}
		}()
	}

	for _, task := range tasks {
		queue <- task
	}
	close(queue)

	wg.Wait()
}
