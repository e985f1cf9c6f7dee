// Package worker drains vote events from the queue into the vote log.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/pkg/logger"
	"github.com/okian/podclips/pkg/metrics"
)

const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.VoteEvent

// Recorder persists one vote event.
type Recorder interface {
	Record(ctx context.Context, ev model.VoteEvent) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker records vote events read from a queue.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	name     string

	processed *atomic.Int64
	failed    *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		recorder:  recorder,
		name:      "worker",
		processed: new(atomic.Int64),
		failed:    new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. It returns when ctx is cancelled, Shutdown is
// called, or the queue is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error recording vote event", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without waiting for the queue to drain.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) error { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.recorder.Record(ctx, event); err != nil {
		w.failed.Add(1)
		metrics.RecordVoteLogError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("record vote event %s: %w", event.ID, err)
	}

	w.processed.Add(1)
	metrics.RecordVoteLogged()
	w.logger.Debug(ctx, "vote event recorded",
		logger.String("event_id", event.ID),
		logger.String("clip_id", event.ClipID),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	processed atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive count means one worker per CPU.
func NewPool(workerCount int, queue Queue, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
			withCounters(&pool.processed, &pool.failed),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns how many events the pool recorded.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Failed returns how many events the pool could not record.
func (p *Pool) Failed() int64 {
	return p.failed.Load()
}

// Shutdown closes the queue, lets the workers drain what is left, and
// stops them when ctx or the pool timeout expires first.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			stopCtx, stopCancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
			_ = w.Shutdown(stopCtx)
			stopCancel()
		}
	}

	metrics.UpdateWorkerCount(0)
	p.logger.Info(ctx, "worker pool stopped",
		logger.Int64("processed", p.Processed()),
		logger.Int64("failed", p.Failed()),
	)
	return nil
}
