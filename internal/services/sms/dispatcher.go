// File: internal/services/sms/dispatcher.go
package sms

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iyunix/hammer/internal/metrics"
)

// ErrDispatcherClosed is returned by Submit after Close.
var ErrDispatcherClosed = errors.New("sms dispatcher is closed")

// ErrQueueFull is returned by Submit when the backlog is at capacity.
var ErrQueueFull = errors.New("sms dispatch queue is full")

type job struct {
	phone string
	code  string
}

// DispatcherConfig sizes the delivery worker pool.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	Retry       *RetryConfig
}

// Dispatcher delivers codes in the background. Submit never blocks the
// caller and delivery failures never travel back to it.
type Dispatcher struct {
	provider Provider
	cfg      DispatcherConfig
	logger   Logger
	metrics  *metrics.Metrics

	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts cfg.Workers goroutines draining the queue.
func NewDispatcher(provider Provider, cfg DispatcherConfig, logger Logger, m *metrics.Metrics) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.Retry == nil {
		cfg.Retry = DefaultRetryConfig()
	}

	d := &Dispatcher{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		jobs:     make(chan job, cfg.QueueSize),
	}
	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}
	return d
}

// Submit queues a delivery and returns immediately.
func (d *Dispatcher) Submit(phone, code string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.Notifications.WithLabelValues(metrics.ResultDropped).Inc()
		return ErrDispatcherClosed
	}

	select {
	case d.jobs <- job{phone: phone, code: code}:
		return nil
	default:
		d.metrics.Notifications.WithLabelValues(metrics.ResultDropped).Inc()
		return ErrQueueFull
	}
}

// Close stops accepting work and waits for queued deliveries to finish or
// for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	start := time.Now()
	err := RetryWithBackoff(ctx, d.cfg.Retry, func(ctx context.Context) error {
		return d.provider.SendVerificationCode(ctx, j.phone, j.code)
	})
	if err != nil {
		d.metrics.Notifications.WithLabelValues(metrics.ResultFailed).Inc()
		d.logger.Error("verification code delivery failed",
			"provider", d.provider.Name(),
			"phone", j.phone[:min(4, len(j.phone))]+"****",
			"error", err)
		return
	}

	d.metrics.Notifications.WithLabelValues(metrics.ResultSuccess).Inc()
	d.logger.Debug("verification code handed to provider",
		"provider", d.provider.Name(),
		"phone", j.phone[:min(4, len(j.phone))]+"****",
		"duration", time.Since(start).String())
}
