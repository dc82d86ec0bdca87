package asyncx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSleepElapses(t *testing.T) {
	r := require.New(t)

	start := time.Now()
	r.True(Sleep(20*time.Millisecond, NewSource()))
	r.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
}

func TestSleepNilToken(t *testing.T) {
	require.True(t, Sleep(5*time.Millisecond, nil))
}

func TestSleepInterrupted(t *testing.T) {
	r := require.New(t)

	src := NewSource()
	time.AfterFunc(20*time.Millisecond, src.Cancel)

	start := time.Now()
	r.False(Sleep(5*time.Second, src))
	r.Less(time.Since(start), 2*time.Second)
}

func TestSleepAlreadyCancelled(t *testing.T) {
	r := require.New(t)

	src := NewSource()
	src.Cancel()
	r.False(Sleep(time.Hour, src))
	r.False(Sleep(0, src))
	r.True(Sleep(0, nil))
}
