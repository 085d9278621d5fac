// Package pool wraps ants worker pools with stats and panic recovery.
package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

var (
	// ErrPoolClosed is returned when submitting to a released pool.
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrPoolOverload is returned when a nonblocking pool is full.
	ErrPoolOverload = errors.New("worker pool is overloaded")
)

// Config defines the worker pool configuration.
type Config struct {
	// Capacity is the maximum number of concurrent workers.
	Capacity int
	// ExpiryDuration is how long idle workers live before cleanup.
	ExpiryDuration time.Duration
	// Nonblocking makes Submit fail instead of waiting when the pool is full.
	Nonblocking bool
	// MaxBlockingTasks caps waiting tasks when Nonblocking is false.
	// Zero means unlimited.
	MaxBlockingTasks int
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() *Config {
	return &Config{
		Capacity:       64,
		ExpiryDuration: 10 * time.Second,
	}
}

// Stats holds cumulative pool counters.
type Stats struct {
	Submitted int64
	Completed int64
	Failed    int64
	Rejected  int64
	Panics    int64
}

// Pool is a named worker pool.
type Pool struct {
	name   string
	pool   *ants.Pool
	closed atomic.Bool

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	panics    atomic.Int64
}

// New creates a worker pool. A nil config uses DefaultConfig.
func New(name string, config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pool{name: name}

	opts := []ants.Option{
		ants.WithExpiryDuration(config.ExpiryDuration),
		ants.WithNonblocking(config.Nonblocking),
		ants.WithMaxBlockingTasks(config.MaxBlockingTasks),
		ants.WithPanicHandler(func(r interface{}) {
			p.panics.Add(1)
			logger.Errorw("worker panic recovered",
				"pool", name,
				"panic", r,
			)
		}),
	}

	ap, err := ants.NewPool(config.Capacity, opts...)
	if err != nil {
		return nil, err
	}
	p.pool = ap
	return p, nil
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Running returns the number of running workers.
func (p *Pool) Running() int { return p.pool.Running() }

// Submit schedules task on the pool.
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	err := p.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				p.failed.Add(1)
				panic(r)
			}
			p.completed.Add(1)
		}()
		task()
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			p.rejected.Add(1)
			return ErrPoolOverload
		}
		p.failed.Add(1)
		return err
	}

	p.submitted.Add(1)
	return nil
}

// SubmitWithContext schedules task unless ctx is already done. The task
// itself is responsible for honoring ctx once running.
func (p *Pool) SubmitWithContext(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Submit(task)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Rejected:  p.rejected.Load(),
		Panics:    p.panics.Load(),
	}
}

// Release shuts the pool down. Pending tasks are abandoned.
func (p *Pool) Release() {
	if p.closed.CompareAndSwap(false, true) {
		p.pool.Release()
	}
}

// ReleaseTimeout shuts the pool down, waiting up to timeout for workers.
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	if p.closed.CompareAndSwap(false, true) {
		return p.pool.ReleaseTimeout(timeout)
	}
	return nil
}
