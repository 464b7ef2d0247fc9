package mailer

import (
	"context"
	"errors"
	"sync"
)

// Logger is the logging interface the dispatcher needs. It mirrors the
// bookly logger to avoid an import cycle.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// ErrQueueFull is returned by Enqueue when the buffer has no room. Callers
// treat mail delivery as best effort and keep going.
var ErrQueueFull = errors.New("mailer: queue is full")

// ErrDispatcherStopped is returned by Enqueue after Stop has been called.
var ErrDispatcherStopped = errors.New("mailer: dispatcher stopped")

const defaultQueueSize = 64

// Dispatcher delivers mail in the background so HTTP handlers never block
// on SMTP. Enqueue is non-blocking, delivery failures are logged, and
// Stop drains whatever is still queued.
type Dispatcher struct {
	sender Sender
	queue  chan Message
	logger Logger

	mu      sync.Mutex
	started bool
	stopped bool
	done    chan struct{}
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithQueueSize overrides the queue buffer size
func WithQueueSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queue = make(chan Message, size)
		}
	}
}

// WithLogger sets the dispatcher logger
func WithLogger(l Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a new Dispatcher wrapping the given sender
func NewDispatcher(sender Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Message, defaultQueueSize),
		logger: nopLogger{},
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Start launches the delivery worker. The worker runs until Stop is
// called or the context is canceled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	go d.run(ctx)
}

// Enqueue adds a message to the delivery queue without blocking
func (d *Dispatcher) Enqueue(to, subject, html string) error {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()

	if stopped {
		return ErrDispatcherStopped
	}

	msg := Message{To: to, Subject: subject, HTML: html}

	select {
	case d.queue <- msg:
		return nil
	default:
		d.logger.Warn("mailer queue full, dropping message", "to", to, "subject", subject)
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the worker to drain it
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	started := d.started
	d.mu.Unlock()

	close(d.queue)
	if started {
		<-d.done
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			d.drain(context.Background())
			return
		case msg, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(ctx, msg)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case msg, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("mailer failed to deliver message", "to", msg.To, "subject", msg.Subject, "error", err)
		return
	}
	d.logger.Debug("mailer delivered message", "to", msg.To, "subject", msg.Subject)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
