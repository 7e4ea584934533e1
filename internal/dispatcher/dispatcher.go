// Package dispatcher routes file jobs to handlers by kind, either inline or
// through a bounded queue drained by a pool of workers.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrQueueFull is returned by a non-blocking buffered handler when its
	// queue has no room.
	ErrQueueFull = errors.New("queue full")
	// ErrClosed is returned when dispatching after Close.
	ErrClosed = errors.New("dispatcher closed")
)

// Job is one file to process.
type Job struct {
	Kind      string
	Path      string
	Timestamp time.Time
}

// HandlerFunc processes a job.
type HandlerFunc func(context.Context, Job) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	workers    int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Workers sets how many goroutines drain a buffered handler's queue.
func Workers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes jobs to registered handlers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	// OTEL metrics
	queueSize    metric.Int64ObservableGauge
	processed    metric.Int64Counter
	failed       metric.Int64Counter
	dropped      metric.Int64Counter
	registration metric.Registration

	// Track buffers for gauge callback and Close
	mu      sync.RWMutex
	buffers map[string]chan queued
	closed  bool
	wg      sync.WaitGroup
}

type queued struct {
	ctx context.Context
	job Job
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan queued),
		logger:   logger,
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of jobs in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	d.registration, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for kind, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("kind", kind)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.jobs.processed",
		metric.WithDescription("Total jobs processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.jobs.failed",
		metric.WithDescription("Total jobs whose handler returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.jobs.dropped",
		metric.WithDescription("Total jobs dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given kind with optional configuration.
func (d *Dispatcher) Register(kind string, h HandlerFunc, opts ...Option) {
	cfg := &config{workers: 1}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = d.withLogging(kind, handler)
	}

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(kind, cfg.bufferSize, cfg.workers, cfg.blocking, handler)
	} else {
		handler = d.withCounting(kind, handler)
	}

	d.handlers[kind] = handler
}

// Dispatch routes a job to its registered handler. For buffered handlers a
// nil error means the job was queued.
func (d *Dispatcher) Dispatch(ctx context.Context, j Job) error {
	h, ok := d.handlers[j.Kind]
	if !ok {
		return fmt.Errorf("unknown kind: %s", j.Kind)
	}
	if j.Timestamp.IsZero() {
		j.Timestamp = time.Now()
	}
	return h(ctx, j)
}

// HasHandler returns true if a handler is registered for the kind.
func (d *Dispatcher) HasHandler(kind string) bool {
	_, ok := d.handlers[kind]
	return ok
}

// Close stops accepting jobs and waits until every queued job is handled.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, buf := range d.buffers {
		close(buf)
	}
	d.mu.Unlock()

	d.wg.Wait()
	return d.registration.Unregister()
}

func (d *Dispatcher) withCounting(kind string, h HandlerFunc) HandlerFunc {
	kindAttr := metric.WithAttributes(attribute.String("kind", kind))
	return func(ctx context.Context, j Job) error {
		err := h(ctx, j)
		if err != nil {
			d.failed.Add(ctx, 1, kindAttr)
		}
		d.processed.Add(ctx, 1, kindAttr)
		return err
	}
}

func (d *Dispatcher) withBuffer(kind string, size, workers int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan queued, size)

	d.mu.Lock()
	d.buffers[kind] = buffer
	d.mu.Unlock()

	kindAttr := metric.WithAttributes(attribute.String("kind", kind))
	counted := d.withCounting(kind, h)

	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for q := range buffer {
				if q.ctx.Err() != nil {
					d.dropped.Add(context.Background(), 1, kindAttr)
					continue
				}
				_ = counted(q.ctx, q.job)
			}
		}()
	}

	return func(ctx context.Context, j Job) error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.closed {
			return ErrClosed
		}

		if blocking {
			select {
			case buffer <- queued{ctx: ctx, job: j}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		select {
		case buffer <- queued{ctx: ctx, job: j}:
			return nil
		default:
			d.dropped.Add(ctx, 1, kindAttr)
			return fmt.Errorf("%w: %s", ErrQueueFull, kind)
		}
	}
}

func (d *Dispatcher) withLogging(kind string, h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, j Job) error {
		start := time.Now()
		d.logger.Debug("handling job", "kind", kind, "path", j.Path)

		err := h(ctx, j)

		if err != nil {
			d.logger.Error("job failed", "kind", kind, "path", j.Path, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("job complete", "kind", kind, "path", j.Path, "duration", time.Since(start))
		}

		return err
	}
}
