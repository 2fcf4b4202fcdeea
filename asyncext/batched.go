package asyncext

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fluxkit/fluxkit/store"
)

// BatchFunc fetches results for every arg in one round trip; results
// must line up positionally with args.
type BatchFunc[Arg, Result any] func(ctx context.Context, args []Arg) ([]Result, error)

type batchItem[Arg any] struct {
	arg       Arg
	dispatch  store.DispatchFunc
	requestID string
}

// Batcher collects individual Call invocations into a shared queue and
// flushes them together, either once the queue reaches batchSize or
// batchDelay after the first item in the batch — whichever comes first
// (spec.md §4.10's "Batched"). A size-triggered flush cancels the
// pending delay timer so a flushed batch never fires twice.
type Batcher[Arg, Result any] struct {
	TypePrefix string
	Pending    string
	Fulfilled  string
	Rejected   string
	Settled    string

	batchFn    BatchFunc[Arg, Result]
	batchSize  int
	batchDelay time.Duration

	mu    sync.Mutex
	queue []batchItem[Arg]
	timer *time.Timer
}

// CreateBatched builds a Batcher.
func CreateBatched[Arg, Result any](typePrefix string, batchSize int, batchDelay time.Duration, fn BatchFunc[Arg, Result]) *Batcher[Arg, Result] {
	return &Batcher[Arg, Result]{
		TypePrefix: typePrefix,
		Pending:    typePrefix + "/pending",
		Fulfilled:  typePrefix + "/fulfilled",
		Rejected:   typePrefix + "/rejected",
		Settled:    typePrefix + "/settled",
		batchFn:    fn,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// Call enqueues arg, dispatching pending immediately and fulfilled or
// rejected once the batch this item landed in is flushed.
func (b *Batcher[Arg, Result]) Call(arg Arg) store.Thunk {
	return func(dispatch store.DispatchFunc, getState func() any, extra any) (any, error) {
		requestID := uuid.NewString()
		dispatch(store.Action{
			Type: b.Pending,
			Meta: map[string]any{store.MetaArg: arg, store.MetaRequestID: requestID},
		})

		b.mu.Lock()
		b.queue = append(b.queue, batchItem[Arg]{arg: arg, dispatch: dispatch, requestID: requestID})
		size := len(b.queue)
		if size == 1 {
			b.timer = time.AfterFunc(b.batchDelay, b.flush)
		}
		triggeredBySize := b.batchSize > 0 && size >= b.batchSize
		if triggeredBySize && b.timer != nil {
			b.timer.Stop()
			b.timer = nil
		}
		b.mu.Unlock()

		if triggeredBySize {
			b.flush()
		}
		return requestID, nil
	}
}

func (b *Batcher[Arg, Result]) flush() {
	b.mu.Lock()
	items := b.queue
	b.queue = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()
	if len(items) == 0 {
		return
	}

	args := make([]Arg, len(items))
	for i, it := range items {
		args[i] = it.arg
	}
	results, err := b.batchFn(context.Background(), args)

	for i, it := range items {
		meta := map[string]any{store.MetaArg: it.arg, store.MetaRequestID: it.requestID}
		if err != nil {
			it.dispatch(store.Action{Type: b.Rejected, Meta: meta, Error: err})
			it.dispatch(store.Action{Type: b.Settled, Meta: meta})
			continue
		}
		var result Result
		if i < len(results) {
			result = results[i]
		}
		it.dispatch(store.Action{Type: b.Fulfilled, Payload: result, Meta: meta})
		it.dispatch(store.Action{Type: b.Settled, Meta: meta})
	}
}
