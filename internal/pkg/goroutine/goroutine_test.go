package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CollectsErrorsAndPanics(t *testing.T) {
	g := NewManager(4)
	errBoom := errors.New("boom")
	var ran atomic.Int32

	require.NoError(t, g.Go(context.Background(), "ok", func(context.Context) error {
		ran.Add(1)
		return nil
	}))
	require.NoError(t, g.Go(context.Background(), "fails", func(context.Context) error {
		ran.Add(1)
		return errBoom
	}))
	require.NoError(t, g.Go(context.Background(), "panics", func(context.Context) error {
		ran.Add(1)
		panic("kaboom")
	}))

	err := g.Wait()

	assert.Equal(t, int32(3), ran.Load())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "goroutine fails")
	assert.Contains(t, err.Error(), "goroutine panics: panic: kaboom")
}

func TestManager_LimitReached(t *testing.T) {
	g := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, g.Go(context.Background(), "blocker", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	err := g.Go(context.Background(), "extra", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrLimitReached)

	close(release)
	assert.NoError(t, g.Wait())
}

func TestManager_ClosedAfterWait(t *testing.T) {
	g := NewManager(1)
	require.NoError(t, g.Wait())

	err := g.Go(context.Background(), "late", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestManager_CanceledContextSkipsTask(t *testing.T) {
	g := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	require.NoError(t, g.Go(ctx, "skipped", func(context.Context) error {
		called = true
		return nil
	}))

	require.NoError(t, g.Wait())
	assert.False(t, called)
}
