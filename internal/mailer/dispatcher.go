package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DispatcherConfig holds configuration for the mail dispatcher.
type DispatcherConfig struct {
	// WorkerCount determines how many concurrent workers send mail.
	WorkerCount int

	// QueueSize is the buffer size of the in-memory send queue. Enqueue
	// drops (with a warning) rather than blocking when the buffer is full.
	QueueSize int

	// SendTimeout bounds each individual send attempt.
	SendTimeout time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount: 2,
		QueueSize:   100,
		SendTimeout: 10 * time.Second,
	}
}

// job is one queued send.
type job struct {
	kind  string // "welcome" or "cancellation"
	email string
	name  string
}

// Dispatcher delivers account emails in the background. Request handlers
// enqueue and move on; send failures are logged and swallowed, matching the
// best-effort contract of the email collaborator.
type Dispatcher struct {
	mailer Mailer
	jobs   chan job
	wg     sync.WaitGroup
	config DispatcherConfig
	logger *slog.Logger

	closeOnce sync.Once
}

// NewDispatcher creates a Dispatcher around the given Mailer.
func NewDispatcher(m Mailer, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		mailer: m,
		jobs:   make(chan job, cfg.QueueSize),
		config: cfg,
		logger: logger.With(slog.String("component", "mail_dispatcher")),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop closes the queue and waits for in-flight sends to finish. Queued jobs
// are drained before Stop returns.
func (d *Dispatcher) Stop() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}

// EnqueueWelcome schedules the signup greeting. Never blocks the caller.
func (d *Dispatcher) EnqueueWelcome(email, name string) {
	d.enqueue(job{kind: "welcome", email: email, name: name})
}

// EnqueueCancellation schedules the account-deletion goodbye. Never blocks
// the caller.
func (d *Dispatcher) EnqueueCancellation(email, name string) {
	d.enqueue(job{kind: "cancellation", email: email, name: name})
}

func (d *Dispatcher) enqueue(j job) {
	select {
	case d.jobs <- j:
	default:
		// Best-effort: a full queue drops the mail rather than stalling
		// the request that triggered it.
		d.logger.Warn("mail queue full, dropping message",
			slog.String("kind", j.kind))
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for j := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.config.SendTimeout)

		var err error
		switch j.kind {
		case "welcome":
			err = d.mailer.SendWelcome(ctx, j.email, j.name)
		case "cancellation":
			err = d.mailer.SendCancellation(ctx, j.email, j.name)
		}
		cancel()

		if err != nil {
			// The triggering request has long since been answered, so the
			// failure can only be logged.
			d.logger.Warn("mail send failed",
				slog.String("kind", j.kind),
				slog.String("error", err.Error()))
		}
	}
}
