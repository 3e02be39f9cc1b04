//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package bridge lets synchronous call paths invoke operations that talk
// to slow or asynchronous backends without risking deadlock or unbounded
// blocking.
//
// Operations are dispatched to a dedicated worker pool and the caller
// blocks on the result with a bounded timeout. When the pool is saturated
// the operation runs inline on the calling goroutine instead of queueing,
// so the bridge can never wait on itself. When the timeout elapses the
// caller abandons the operation: the worker finishes (or is cancelled via
// its context) in the background and its result is discarded.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	// defaultPoolSize bounds how many bridged operations run concurrently.
	defaultPoolSize = 8
	// defaultTimeout bounds how long a caller blocks on one operation.
	defaultTimeout = 30 * time.Second
)

var (
	// ErrTimeout is returned when an operation exceeds the bridge timeout.
	// The operation itself is abandoned, not interrupted mid-write.
	ErrTimeout = errors.New("bridge: operation timed out")
	// ErrClosed is returned when the bridge has been closed.
	ErrClosed = errors.New("bridge: closed")
)

// Options holds the configuration for a Bridge.
type Options struct {
	poolSize int
	timeout  time.Duration
}

// Option configures a Bridge.
type Option func(*Options)

// WithPoolSize sets the worker pool size.
func WithPoolSize(size int) Option {
	return func(o *Options) {
		o.poolSize = size
	}
}

// WithTimeout sets the default bound on how long Run blocks.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.timeout = timeout
	}
}

// Bridge dispatches operations to a dedicated worker pool and waits for
// them with a bounded timeout.
type Bridge struct {
	pool    *ants.Pool
	timeout time.Duration
}

// New creates a Bridge with its own worker pool.
func New(opts ...Option) (*Bridge, error) {
	options := &Options{
		poolSize: defaultPoolSize,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Non-blocking mode: a saturated pool rejects the submission instead
	// of queueing it, and the bridge falls back to running inline.
	pool, err := ants.NewPool(options.poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Bridge{pool: pool, timeout: options.timeout}, nil
}

// Run executes fn and blocks until it completes, the bridge timeout
// elapses, or ctx is done, whichever comes first. fn receives a context
// that is cancelled when the caller stops waiting, so an abandoned worker
// can tear itself down independently.
func (b *Bridge) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if b.pool.IsClosed() {
		return ErrClosed
	}

	opCtx, cancel := context.WithTimeout(ctx, b.timeout)

	done := make(chan error, 1)
	task := func() {
		done <- fn(opCtx)
	}

	if err := b.pool.Submit(task); err != nil {
		if !errors.Is(err, ants.ErrPoolOverload) {
			cancel()
			return err
		}
		// The pool is saturated; the caller may itself be running inside
		// a bridged operation. Running inline avoids waiting on a worker
		// slot this goroutine could be occupying.
		defer cancel()
		return fn(opCtx)
	}

	select {
	case err := <-done:
		cancel()
		return err
	case <-opCtx.Done():
		// Abandon the operation. Cancelling opCtx tells the worker to
		// tear down on its own; the buffered channel lets it exit even
		// though nobody is left to receive the result.
		cancel()
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return opCtx.Err()
	}
}

// Close releases the worker pool. In-flight operations finish in the
// background.
func (b *Bridge) Close() {
	b.pool.Release()
}
