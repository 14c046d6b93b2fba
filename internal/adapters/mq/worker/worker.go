// Package worker applies queued rating submissions to the roster.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/squad/internal/adapters/mq/queue"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// ErrInvalidRating marks an event whose skills are out of range.
var ErrInvalidRating = errors.New("invalid rating")

// Updater replaces a player's rating vector.
type Updater interface {
	UpdateSkills(ctx context.Context, id string, skills model.Skills, at time.Time) (model.Player, error)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Event
}

// Worker processes rating events until stopped.
type Worker interface {
	// Run blocks until ctx is done, Shutdown is called or the queue closes.
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker reads from a Queue and writes through an Updater.
type InMemoryWorker struct {
	queue   Queue
	updater Updater
	name    string
	logger  logger.Logger

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "rating not applied",
					logger.String("rating_id", e.EventID),
					logger.String("player_id", e.PlayerID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the loop without draining the queue.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, e queue.Event) error { //nolint:gocritic // hugeParam: events are passed by value over the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := e.Skills.Validate(); err != nil {
		metrics.RecordRatingRejected()
		return fmt.Errorf("%w: %w", ErrInvalidRating, err)
	}

	ts := e.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	p, err := w.updater.UpdateSkills(ctx, e.PlayerID, e.Skills, ts)
	if err != nil {
		metrics.RecordRatingRejected()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "update_skills")
		return fmt.Errorf("update skills: %w", err)
	}

	metrics.RecordRatingProcessed()
	metrics.ObservePlayerRating(p.Overall())
	w.logger.Debug(ctx, "rating applied",
		logger.String("rating_id", e.EventID),
		logger.String("player_id", p.ID),
		logger.Float64("overall", p.Overall()),
	)
	return nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers; values < 1 use runtime.NumCPU().
// opts apply to every worker.
func NewPool(workerCount int, q Queue, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, updater, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker. Workers keep ctx values but not its
// cancellation: they exit once Shutdown has closed the queue and the
// backlog is applied.
func (p *Pool) Start(ctx context.Context) {
	runCtx := context.WithoutCancel(ctx)
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
