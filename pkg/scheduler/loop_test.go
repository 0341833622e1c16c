package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalCoalescesRepeatWakes(t *testing.T) {
	ch := NewWakeChan()
	Signal(ch)
	Signal(ch)
	Signal(ch)

	assert.Len(t, ch, 1, "repeat signals before any receive must coalesce into one pending wake")
}

func TestSignalOnNilChannelIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { Signal(nil) })
}

func TestEngineLoopRunsOnTrigger(t *testing.T) {
	trigger := NewWakeChan()
	var calls int64
	loop := NewEngineLoop("test", func(ctx context.Context) (int, error) {
		atomic.AddInt64(&calls, 1)
		return 1, nil
	}, time.Hour, trigger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	Signal(trigger)
	require.Eventually(t, func() bool { return atomic.LoadInt64(&calls) >= 1 }, time.Second, 5*time.Millisecond)
}

func TestEngineLoopSignalsDownstreamOnlyWhenProcessed(t *testing.T) {
	downstream := NewWakeChan()
	processed := int64(0)
	trigger := NewWakeChan()

	loop := NewEngineLoop("test", func(ctx context.Context) (int, error) {
		return int(atomic.LoadInt64(&processed)), nil
	}, time.Hour, trigger, downstream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	Signal(trigger)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, downstream, 0, "run_fn returned zero processed; downstream must not be woken")

	atomic.StoreInt64(&processed, 3)
	Signal(trigger)
	require.Eventually(t, func() bool { return len(downstream) == 1 }, time.Second, 5*time.Millisecond)
}

func TestEngineLoopTicksOnIntervalWithoutTrigger(t *testing.T) {
	var calls int64
	loop := NewEngineLoop("test", func(ctx context.Context) (int, error) {
		atomic.AddInt64(&calls, 1)
		return 0, nil
	}, 10*time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.Eventually(t, func() bool { return atomic.LoadInt64(&calls) >= 2 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopIsGraceful(t *testing.T) {
	loop := NewEngineLoop("test", func(ctx context.Context) (int, error) {
		return 0, nil
	}, 5*time.Millisecond, nil, nil)

	sched := New(loop)
	sched.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	sched.Stop()
}
