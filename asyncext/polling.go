package asyncext

import (
	"context"
	"sync"
	"time"

	"github.com/fluxkit/fluxkit/asyncthunk"
	"github.com/fluxkit/fluxkit/store"
)

// Work is the thunk body a Poller repeats.
type Work[Arg, Result any] func(ctx context.Context, arg Arg) (Result, error)

// Poller wraps an AsyncThunk that reschedules itself on every successful
// fulfillment until StopPolling is called or MaxAttempts is reached
// (spec.md §4.10's "Polling").
type Poller[Arg, Result any] struct {
	Thunk       *asyncthunk.AsyncThunk[Arg, Result]
	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	attempt int
	stopped bool
	timer   *time.Timer
}

// CreatePolling builds a Poller. maxAttempts <= 0 means unbounded.
func CreatePolling[Arg, Result any](typePrefix string, work Work[Arg, Result], interval time.Duration, maxAttempts int) *Poller[Arg, Result] {
	p := &Poller[Arg, Result]{interval: interval, maxAttempts: maxAttempts, stopped: true}
	p.Thunk = asyncthunk.CreateAsyncThunk(typePrefix, func(ctx context.Context, arg Arg, api asyncthunk.ThunkAPI) (Result, error) {
		result, err := work(ctx, arg)
		if err == nil && ctx.Err() == nil {
			p.scheduleNext(api.Dispatch, arg)
		}
		return result, err
	})
	return p
}

func (p *Poller[Arg, Result]) scheduleNext(dispatch store.DispatchFunc, arg Arg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.attempt++
	if p.maxAttempts > 0 && p.attempt >= p.maxAttempts {
		return
	}
	p.timer = time.AfterFunc(p.interval, func() {
		dispatch(p.Thunk.Call(arg))
	})
}

// Start dispatches the first call and (re)enables rescheduling; calling
// Start again after StopPolling resumes from a fresh attempt count.
func (p *Poller[Arg, Result]) Start(dispatch store.DispatchFunc, arg Arg) {
	p.mu.Lock()
	p.stopped = false
	p.attempt = 0
	p.mu.Unlock()
	dispatch(p.Thunk.Call(arg))
}

// StopPolling clears any scheduled re-run and resets the attempt count.
func (p *Poller[Arg, Result]) StopPolling() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.attempt = 0
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
