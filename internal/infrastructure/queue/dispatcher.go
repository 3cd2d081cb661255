package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/revuo/reviews-api/internal/core/domain"
	"github.com/revuo/reviews-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher moves review events off the request path before they reach the
// broadcaster. Events are routed to a fixed set of workers by consistent
// hashing on the review id, so events for one review keep their order while
// the HTTP handler never waits on the realtime transport.
type Dispatcher struct {
	workers []chan domain.ReviewEvent
	sink    ports.Broadcaster
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.Broadcaster, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ReviewEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ReviewEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish enqueues an event for fan-out. Fire-and-forget: when the worker's
// buffer is full the event is dropped, matching the channel's no-guarantee
// delivery contract.
func (d *Dispatcher) Publish(event domain.ReviewEvent) {
	select {
	case d.workers[d.shardIndex(event.Key())] <- event:
	default:
		d.log.Warn().Str("action", string(event.Action)).Msg("event queue full, dropping event")
	}
}

// shardIndex maps a review id deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ReviewEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.sink.Publish(event)
			d.log.Debug().
				Str("action", string(event.Action)).
				Int("worker_id", id).
				Msg("event dispatched")
		}
	}
}
