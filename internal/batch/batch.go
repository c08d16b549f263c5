// Package batch runs a fixed list of jobs with bounded parallelism.
//
// Runners pull the next unclaimed index from a shared cursor instead of
// owning a fixed slice of the input, so a slow job never leaves a runner idle
// while work is still queued. Every job settles exactly once and a failing job
// never stops its siblings.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

type Worker[T any] func(ctx context.Context, item T, index int) error

// Report holds one settled error slot per input item, in input order.
type Report struct {
	Errors []error
}

func (r *Report) Len() int {
	return len(r.Errors)
}

func (r *Report) Succeeded() int {
	n := 0
	for _, err := range r.Errors {
		if err == nil {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Errors) - r.Succeeded()
}

// Err is the aggregate outcome: nil only when every item succeeded.
func (r *Report) Err() error {
	var errs []error
	for i, err := range r.Errors {
		if err != nil {
			errs = append(errs, &ItemError{Index: i, Err: err})
		}
	}
	return errors.Join(errs...)
}

type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Run calls worker for every item with at most limit calls in flight and
// returns once all of them have returned. ctx is handed to the worker as is;
// Run itself keeps claiming items after ctx is done.
func Run[T any](ctx context.Context, limit int, items []T, worker Worker[T]) *Report {
	report := &Report{Errors: make([]error, len(items))}
	if len(items) == 0 {
		return report
	}

	runners := min(max(limit, 1), len(items))

	var cursor atomic.Int64
	var g errgroup.Group

	for r := 0; r < runners; r++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1) - 1)
				if i >= len(items) {
					return nil
				}
				report.Errors[i] = runOne(ctx, worker, items[i], i)
			}
		})
	}

	// runners never fail; item errors are in report.Errors
	g.Wait()
	return report
}

func runOne[T any](ctx context.Context, worker Worker[T], item T, index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return worker(ctx, item, index)
}
