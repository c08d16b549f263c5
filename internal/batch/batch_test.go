package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_BoundedConcurrency(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	var inFlight, peak atomic.Int32
	calls := make([]atomic.Int32, len(items))

	report := Run(context.Background(), 3, items, func(ctx context.Context, item, index int) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		calls[index].Add(1)
		time.Sleep(time.Duration(1+item%3) * time.Millisecond)
		if item == 4 {
			return errors.New("bad item")
		}
		return nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	for i := range calls {
		assert.Equal(t, int32(1), calls[i].Load(), "item %d settled once", i)
	}
	assert.Equal(t, 10, report.Len())
	assert.Equal(t, 9, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
}

func TestRun_FailureDoesNotStopSiblings(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	boom := errors.New("confirm rejected")

	var mu sync.Mutex
	var done []string

	report := Run(context.Background(), 3, items, func(ctx context.Context, item string, index int) error {
		if index == 2 {
			return boom
		}
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		done = append(done, item)
		mu.Unlock()
		return nil
	})

	assert.ElementsMatch(t, []string{"a", "b", "d", "e"}, done)
	assert.Equal(t, 4, report.Succeeded())
	assert.Equal(t, 1, report.Failed())

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 2, itemErr.Index)
}

func TestRun_SlowItemDoesNotStarveOthers(t *testing.T) {
	items := make([]int, 7)
	release := make(chan struct{})

	var processed atomic.Int32
	finished := make(chan *Report, 1)

	go func() {
		finished <- Run(context.Background(), 2, items, func(ctx context.Context, _ int, index int) error {
			if index == 0 {
				<-release
			}
			processed.Add(1)
			return nil
		})
	}()

	// With a fixed partition the runner owning item 0 would hold back half the items.
	require.Eventually(t, func() bool { return processed.Load() == 6 }, time.Second, time.Millisecond)
	close(release)

	report := <-finished
	assert.Equal(t, 7, report.Succeeded())
	assert.NoError(t, report.Err())
}

func TestRun_RecoversPanics(t *testing.T) {
	report := Run(context.Background(), 2, []int{1, 2}, func(ctx context.Context, item, index int) error {
		if item == 2 {
			panic("decoder exploded")
		}
		return nil
	})

	assert.Equal(t, 1, report.Succeeded())
	assert.ErrorContains(t, report.Errors[1], "decoder exploded")
}

func TestRun_Empty(t *testing.T) {
	report := Run(context.Background(), 3, []int{}, func(ctx context.Context, item, index int) error {
		t.Fatal("worker must not run")
		return nil
	})
	assert.Equal(t, 0, report.Len())
	assert.NoError(t, report.Err())
}

func TestRun_KeepsGoingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	report := Run(ctx, 3, make([]int, 5), func(ctx context.Context, _ int, _ int) error {
		calls.Add(1)
		return ctx.Err()
	})

	assert.EqualValues(t, 5, calls.Load())
	assert.Equal(t, 5, report.Failed())
}

func TestRun_ReturnsAfterEveryItemSettles(t *testing.T) {
	items := make([]int, 12)
	var done atomic.Int32

	report := Run(context.Background(), 4, items, func(ctx context.Context, _ int, index int) error {
		defer done.Add(1)
		time.Sleep(time.Duration(index%4) * 5 * time.Millisecond)
		switch index % 3 {
		case 0:
			return errors.New("failed")
		case 1:
			panic("boom")
		}
		return nil
	})

	assert.EqualValues(t, len(items), done.Load())
	assert.Equal(t, 4, report.Succeeded())
	assert.Equal(t, 8, report.Failed())
	require.Error(t, report.Err())
}
