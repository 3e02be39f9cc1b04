//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Succeeds(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	ran := false
	err = b.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRun_PropagatesError(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	boom := errors.New("boom")
	err = b.Run(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRun_TimesOutInsteadOfHanging(t *testing.T) {
	b, err := New(WithTimeout(50 * time.Millisecond))
	require.NoError(t, err)
	defer b.Close()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err = b.Run(context.Background(), func(ctx context.Context) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_NestedInvocationDoesNotDeadlock(t *testing.T) {
	// Pool of one worker: the inner Run cannot get a worker slot while
	// the outer operation holds it, so it must run inline.
	b, err := New(WithPoolSize(1), WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer b.Close()

	var inner bool
	err = b.Run(context.Background(), func(ctx context.Context) error {
		return b.Run(ctx, func(ctx context.Context) error {
			inner = true
			return nil
		})
	})
	require.NoError(t, err)
	assert.True(t, inner)
}

func TestRun_ConcurrentCallers(t *testing.T) {
	b, err := New(WithPoolSize(2), WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer b.Close()

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Run(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				count++
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, count)
}

func TestRun_RespectsCallerContext(t *testing.T) {
	b, err := New(WithTimeout(5 * time.Second))
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err = b.Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_AfterClose(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	b.Close()

	err = b.Run(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrClosed)
}
