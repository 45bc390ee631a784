package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// SimpleFunc is one job for RunInParallel.
type SimpleFunc func(ctx context.Context) error

// RunInParallel runs every function concurrently and returns the elapsed time along with their
// combined errors, in input order. The first failure or panic cancels the context of the rest;
// context.Canceled errors are then dropped so only the cause is reported.
func RunInParallel(ctx context.Context, fs []SimpleFunc) (time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, len(fs))
	var wg sync.WaitGroup
	wg.Add(len(fs))
	for i, f := range fs {
		i, f := i, f
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic in parallel function %d: %v", i, r)
					cancel()
				}
			}()
			if errs[i] = f(ctx); errs[i] != nil {
				cancel()
			}
		}()
	}
	wg.Wait()

	var causes, canceled error
	for _, err := range errs {
		if errors.Is(err, context.Canceled) {
			canceled = multierr.Append(canceled, err)
			continue
		}
		causes = multierr.Append(causes, err)
	}
	if causes != nil {
		return time.Since(start), causes
	}
	return time.Since(start), canceled
}
