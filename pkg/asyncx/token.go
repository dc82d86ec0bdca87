package asyncx

import (
	"context"
	"sync"
)

// A Token is the read side of a cancellation request. Work that accepts a
// Token only observes it; the owner of the matching [Source] (or
// context) decides when to cancel.
type Token interface {
	// IsCancelled reports whether cancellation has been requested.
	IsCancelled() bool

	// OnCancelled registers a one-shot callback that runs when the token
	// is cancelled. If the token is already cancelled the callback runs
	// immediately in the calling goroutine. The returned function
	// unregisters a callback that has not run yet.
	OnCancelled(fn func()) (stop func())
}

// Source owns a cancellation request. The zero value is not usable; call
// [NewSource].
type Source struct {
	done chan struct{}

	mu struct {
		sync.Mutex
		cancelled bool
		hooks     map[uint64]func()
		nextID    uint64
	}
}

var _ Token = (*Source)(nil)

// NewSource returns a Source that has not been cancelled.
func NewSource() *Source {
	return &Source{done: make(chan struct{})}
}

// Token returns the read side of the Source.
func (s *Source) Token() Token { return s }

// Done returns a channel that is closed once Cancel has been called.
func (s *Source) Done() <-chan struct{} { return s.done }

// Cancel requests cancellation and runs pending callbacks. Calling it
// more than once is a no-op.
func (s *Source) Cancel() {
	s.mu.Lock()
	if s.mu.cancelled {
		s.mu.Unlock()
		return
	}
	s.mu.cancelled = true
	close(s.done)
	hooks := s.mu.hooks
	s.mu.hooks = nil
	s.mu.Unlock()

	// Callbacks run outside the lock so they may inspect the Source.
	for _, fn := range hooks {
		fn()
	}
}

// IsCancelled implements Token. A nil Source is never cancelled.
func (s *Source) IsCancelled() bool {
	if s == nil {
		return false
	}
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// OnCancelled implements Token.
func (s *Source) OnCancelled(fn func()) (stop func()) {
	if s == nil {
		return func() {}
	}
	s.mu.Lock()
	if s.mu.cancelled {
		s.mu.Unlock()
		fn()
		return func() {}
	}
	if s.mu.hooks == nil {
		s.mu.hooks = make(map[uint64]func())
	}
	id := s.mu.nextID
	s.mu.nextID++
	s.mu.hooks[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.mu.hooks, id)
	}
}

// FromContext adapts a context into a Token that is cancelled when the
// context is done.
func FromContext(ctx context.Context) Token {
	return ctxToken{ctx}
}

type ctxToken struct {
	ctx context.Context
}

func (t ctxToken) IsCancelled() bool { return t.ctx.Err() != nil }

func (t ctxToken) OnCancelled(fn func()) (stop func()) {
	// AfterFunc runs fn immediately in its own goroutine for a done context.
	s := context.AfterFunc(t.ctx, fn)
	return func() { s() }
}

// Cancelled reports whether tok is non-nil and cancelled.
func Cancelled(tok Token) bool {
	return tok != nil && tok.IsCancelled()
}
