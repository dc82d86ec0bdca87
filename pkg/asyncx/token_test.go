package asyncx

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSourceCallbacksRunOnce(t *testing.T) {
	r := require.New(t)

	src := NewSource()
	r.False(src.IsCancelled())

	var calls atomic.Int32
	src.OnCancelled(func() { calls.Add(1) })
	src.OnCancelled(func() { calls.Add(1) })

	src.Cancel()
	src.Cancel()

	r.True(src.IsCancelled())
	r.EqualValues(2, calls.Load())

	select {
	case <-src.Done():
	default:
		r.Fail("done channel should be closed")
	}
}

func TestSourceStopUnregisters(t *testing.T) {
	r := require.New(t)

	src := NewSource()
	var called atomic.Bool
	stop := src.OnCancelled(func() { called.Store(true) })
	stop()
	stop()

	src.Cancel()
	r.False(called.Load())
}

func TestSourceAlreadyCancelledRunsImmediately(t *testing.T) {
	r := require.New(t)

	src := NewSource()
	src.Cancel()

	called := false
	stop := src.OnCancelled(func() { called = true })
	r.True(called)
	stop()
}

func TestFromContext(t *testing.T) {
	r := require.New(t)

	ctx, cancel := context.WithCancel(t.Context())
	tok := FromContext(ctx)
	r.False(tok.IsCancelled())

	fired := make(chan struct{})
	tok.OnCancelled(func() { close(fired) })

	cancel()
	r.True(tok.IsCancelled())

	select {
	case <-fired:
	case <-time.After(time.Second):
		r.Fail("callback not invoked after context cancellation")
	}
}

func TestCancelledNilToken(t *testing.T) {
	require.False(t, Cancelled(nil))
}

func TestNilSourceToken(t *testing.T) {
	r := require.New(t)

	var src *Source
	var tok Token = src
	r.NotNil(tok)
	r.False(Cancelled(tok))

	called := false
	stop := tok.OnCancelled(func() { called = true })
	stop()
	r.False(called)
}
