package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redsum/redsum/internal/metrics"
)

// partialSeedStride spaces the derived seeds of per-file partial aggregates
// so their sampling streams stay independent.
const partialSeedStride = 1009

// foldParallel folds each file into its own partial aggregate and merges the
// partials into agg in file order, so the merged result does not depend on
// worker scheduling. The whole archive still commits (or rolls back) as one
// unit.
func (r *Runner) foldParallel(ctx context.Context, agg *metrics.Aggregate, files []recognizedFile) error {
	partials := make([]*metrics.Aggregate, len(files))

	for i := range files {
		partial, err := metrics.New(agg.PostLengthSample.Capacity, r.Seed+partialSeedStride*int64(i+1))
		if err != nil {
			return fmt.Errorf("create partial aggregate: %w", err)
		}

		partials[i] = partial
	}

	indexes := make(chan int)
	errs := make(chan error, len(files))

	var wg sync.WaitGroup

	for range min(r.Workers, len(files)) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range indexes {
				errs <- r.foldFile(ctx, partials[i], files[i])
			}
		}()
	}

	for i := range files {
		indexes <- i
	}

	close(indexes)
	wg.Wait()
	close(errs)

	var all []error
	for err := range errs {
		if err != nil {
			all = append(all, err)
		}
	}

	if len(all) > 0 {
		return errors.Join(all...)
	}

	for _, partial := range partials {
		agg.Merge(partial)
	}

	return nil
}
