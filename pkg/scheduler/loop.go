// Package scheduler drives the seven engine loops that make up the
// pipeline (spec.md §4.9): Scanner, Collector, Classifier, Analyzer,
// Impact, Reachability, and Notification. Each loop polls its own interval
// and additionally wakes early when fed by the engine upstream of it in
// the wake chain.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// RunFunc is one engine's tick: process whatever is due, return how many
// items were processed. A non-nil error is logged but never stops the
// loop — the next tick retries (spec.md §4.9's "Lifecycle").
type RunFunc func(ctx context.Context) (int, error)

// EngineLoop is one scheduler-managed engine: name, run_fn, interval, an
// optional upstream trigger channel, and an optional downstream wake
// channel signaled when this tick processed at least one item.
type EngineLoop struct {
	Name     string
	RunFn    RunFunc
	Interval time.Duration

	// Trigger is closed-over by whatever upstream loop wakes this one; Signal
	// sends on it. A nil Trigger means this loop only ever wakes on its
	// own interval (the Scanner, which has nothing upstream of it).
	Trigger chan struct{}

	// Downstream is signaled (non-blocking) after a tick that processed
	// at least one item. Nil for the last loop in the chain (Notification).
	Downstream chan struct{}

	logger *slog.Logger
}

// NewEngineLoop builds one EngineLoop. trigger/downstream may be nil.
func NewEngineLoop(name string, runFn RunFunc, interval time.Duration, trigger, downstream chan struct{}) *EngineLoop {
	return &EngineLoop{
		Name:       name,
		RunFn:      runFn,
		Interval:   interval,
		Trigger:    trigger,
		Downstream: downstream,
		logger:     slog.Default().With("engine", name),
	}
}

// NewWakeChan builds a buffer-1 wake channel: a pending wake is never lost,
// and a wake arriving while one is already pending collapses harmlessly
// into it (spec.md §4.9: "setting an already-set event is a no-op").
func NewWakeChan() chan struct{} {
	return make(chan struct{}, 1)
}

// Signal wakes a downstream loop without blocking.
func Signal(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled, ticking on Interval and waking early
// whenever Trigger fires (spec.md §4.9's loop body: "wait(trigger OR
// timeout=interval), clear trigger, call run_fn()").
func (l *EngineLoop) Run(ctx context.Context) {
	l.logger.Info("engine loop starting", "interval", l.Interval)
	timer := time.NewTimer(l.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("engine loop stopping")
			return
		case <-l.Trigger:
			l.tick(ctx)
		case <-timer.C:
			l.tick(ctx)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(l.Interval)
	}
}

func (l *EngineLoop) tick(ctx context.Context) {
	processed, err := l.RunFn(ctx)
	if err != nil {
		l.logger.Error("engine tick failed", "error", err)
	}
	if processed > 0 {
		l.logger.Info("engine tick processed items", "count", processed)
		if l.Downstream != nil {
			Signal(l.Downstream)
		}
	}
}

// Scheduler owns the full set of loops and their lifecycle.
type Scheduler struct {
	loops  []*EngineLoop
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Scheduler over the given loops, in wake-chain order.
func New(loops ...*EngineLoop) *Scheduler {
	return &Scheduler{loops: loops}
}

// Start launches every loop as its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		done := make(chan struct{}, len(s.loops))
		for _, loop := range s.loops {
			loop := loop
			go func() {
				loop.Run(ctx)
				done <- struct{}{}
			}()
		}
		for range s.loops {
			<-done
		}
	}()
}

// Stop cancels every loop and waits for them to exit (spec.md §4.9's
// shutdown hook: "cancel() then await all tasks").
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}
