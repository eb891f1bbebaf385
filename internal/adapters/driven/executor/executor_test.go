package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

func unit(accountID int64, run func(ctx context.Context) error) driven.SyncUnit {
	return driven.SyncUnit{AccountID: accountID, Run: run}
}

func TestSequential_RunsAllUnits(t *testing.T) {
	e := NewSequential()

	var ran []int64
	units := []driven.SyncUnit{
		unit(1, func(context.Context) error { ran = append(ran, 1); return nil }),
		unit(2, func(context.Context) error { ran = append(ran, 2); return errors.New("boom") }),
		unit(3, func(context.Context) error { ran = append(ran, 3); return nil }),
	}

	status, err := e.Execute(context.Background(), "test-batch", units)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, ran)
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 3, status.Completed)
	assert.Equal(t, 1, status.Failed)
	assert.True(t, status.Done)
}

func TestSequential_StatusLookup(t *testing.T) {
	e := NewSequential()

	status, err := e.Execute(context.Background(), "test-batch", []driven.SyncUnit{
		unit(1, func(context.Context) error { return nil }),
	})
	require.NoError(t, err)

	found, err := e.Status(context.Background(), status.ID)
	require.NoError(t, err)
	assert.Equal(t, status.ID, found.ID)
	assert.True(t, found.Done)

	_, err = e.Status(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSequential_CancelledContext(t *testing.T) {
	e := NewSequential()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, "test-batch", []driven.SyncUnit{
		unit(1, func(context.Context) error {
			t.Fatal("unit must not run after cancellation")
			return nil
		}),
	})
	assert.Error(t, err)
}

func TestBatch_ReturnsBeforeCompletion(t *testing.T) {
	e := NewBatch(2)

	release := make(chan struct{})
	var ran atomic.Int32
	units := []driven.SyncUnit{
		unit(1, func(context.Context) error { <-release; ran.Add(1); return nil }),
		unit(2, func(context.Context) error { <-release; ran.Add(1); return errors.New("boom") }),
	}

	status, err := e.Execute(context.Background(), "async-batch", units)
	require.NoError(t, err)
	assert.False(t, status.Done)
	assert.Equal(t, 2, status.Total)

	close(release)

	require.Eventually(t, func() bool {
		current, err := e.Status(context.Background(), status.ID)
		return err == nil && current.Done
	}, 2*time.Second, 10*time.Millisecond)

	final, err := e.Status(context.Background(), status.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, final.Completed)
	assert.Equal(t, 1, final.Failed)
	assert.EqualValues(t, 2, ran.Load())
}

func TestBatch_ExecuteSnapshotUntouchedByWorkers(t *testing.T) {
	e := NewBatch(4)

	units := make([]driven.SyncUnit, 16)
	for i := range units {
		units[i] = unit(int64(i), func(context.Context) error { return nil })
	}

	status, err := e.Execute(context.Background(), "racy-batch", units)
	require.NoError(t, err)

	// The returned snapshot is from dispatch time; workers report
	// progress through Status, never through this copy.
	assert.Zero(t, status.Completed)
	assert.Zero(t, status.Failed)
	assert.False(t, status.Done)

	require.Eventually(t, func() bool {
		current, err := e.Status(context.Background(), status.ID)
		return err == nil && current.Done
	}, 2*time.Second, 5*time.Millisecond)

	assert.Zero(t, status.Completed, "dispatch snapshot must stay frozen")
}

func TestBatch_EmptyBatchIsDone(t *testing.T) {
	e := NewBatch(0)

	status, err := e.Execute(context.Background(), "empty", nil)
	require.NoError(t, err)
	assert.True(t, status.Done)
	assert.Zero(t, status.Total)
}

func TestBatch_BoundsConcurrency(t *testing.T) {
	e := NewBatch(2)

	var inFlight, peak atomic.Int32
	units := make([]driven.SyncUnit, 8)
	for i := range units {
		units[i] = unit(int64(i), func(context.Context) error {
			current := inFlight.Add(1)
			for {
				observed := peak.Load()
				if current <= observed || peak.CompareAndSwap(observed, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		})
	}

	status, err := e.Execute(context.Background(), "bounded", units)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		current, err := e.Status(context.Background(), status.ID)
		return err == nil && current.Done
	}, 5*time.Second, 10*time.Millisecond)

	assert.LessOrEqual(t, peak.Load(), int32(2))
}
