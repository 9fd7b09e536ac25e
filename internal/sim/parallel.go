package sim

import (
	"context"
	"sync"
)

// Ensemble runs independent headless simulations concurrently, one
// goroutine per run, with consecutive seeds. Runs share no state.
type Ensemble struct {
	base      Headless
	numRuns   int
	seedStart int64
}

func NewEnsemble(base Headless, numRuns int, seedStart int64) *Ensemble {
	if numRuns < 0 {
		numRuns = 0
	}
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			h := e.base
			h.Config.Run.Seed = e.seedStart + int64(idx)
			results[idx], errs[idx] = h.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
