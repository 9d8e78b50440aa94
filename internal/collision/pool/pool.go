// Package pool is the Collision Engine's worker pool (spec.md §4.4):
// "a process-level worker pool of size hardware_parallelism to build
// leaf FSMs and to compute binary combinations ... combine by balanced
// divide-and-conquer (split at n/2, recurse, combine pair) so pair
// work parallelizes rather than serializing into a reduction chain."
package pool

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers returns hardware_parallelism, the pool's default size, for
// callers (the pipeline driver) that don't have an explicit
// --workers flag value to honor.
func Workers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// Combine reduces items pairwise into a single T using a balanced
// binary split (depth O(log n)) instead of a left-to-right reduction
// chain, so independent subtrees run concurrently up to the workers
// limit. combine must be associative for the result to be
// order-independent; every caller in this codebase passes FSM
// intersection or union, both of which are.
func Combine[T any](ctx context.Context, workers int, items []T, combine func(a, b T) (T, error)) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, errors.New("pool: Combine called with no items")
	}
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	return combineRange(ctx, sem, items, combine)
}

func combineRange[T any](ctx context.Context, sem chan struct{}, items []T, combine func(a, b T) (T, error)) (T, error) {
	if len(items) == 1 {
		return items[0], nil
	}

	mid := len(items) / 2
	left, right := items[:mid], items[mid:]

	var leftResult, rightResult T
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leftResult, err = combineRange(gctx, sem, left, combine)
		return err
	})
	g.Go(func() error {
		var err error
		rightResult, err = combineRange(gctx, sem, right, combine)
		return err
	})

	var zero T
	if err := g.Wait(); err != nil {
		return zero, err
	}
	return acquireAndCombine(ctx, sem, leftResult, rightResult, combine)
}

// acquireAndCombine holds a worker slot only while combine itself runs,
// never while waiting on sub-ranges, so nested splits cannot exhaust
// the pool and block one another.
func acquireAndCombine[T any](ctx context.Context, sem chan struct{}, a, b T, combine func(a, b T) (T, error)) (T, error) {
	var zero T
	select {
	case sem <- struct{}{}:
		defer func() { <-sem }()
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	return combine(a, b)
}
