package jobx_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/jobx"
	"github.com/Abraxas-365/userdesk/pkg/jobx/jobxmemory"
	"github.com/Abraxas-365/userdesk/pkg/logx"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, q jobx.Queue, opts ...jobx.WorkerOption) *jobx.Client {
	t.Helper()
	opts = append([]jobx.WorkerOption{
		jobx.WithConcurrency(2),
		jobx.WithPollInterval(5 * time.Millisecond),
		jobx.WithDequeueTimeout(20 * time.Millisecond),
		jobx.WithDefaultRetryDelay(0),
		jobx.WithShutdownTimeout(time.Second),
	}, opts...)
	return jobx.NewClient(q, opts...)
}

func start(t *testing.T, c *jobx.Client) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		_ = c.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitStatus(t *testing.T, c *jobx.Client, id string, want jobx.JobStatus) *jobx.JobInfo {
	t.Helper()
	var info *jobx.JobInfo
	require.Eventually(t, func() bool {
		var err error
		info, err = c.GetJob(t.Context(), id)
		return err == nil && info.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return info
}

func TestClientCompletesJob(t *testing.T) {
	r := require.New(t)

	c := newClient(t, jobxmemory.New())
	var got atomic.Value
	c.Register("echo", func(_ context.Context, job *jobx.JobInfo) error {
		got.Store(string(job.Payload))
		return nil
	})
	start(t, c)

	id, err := c.Enqueue(t.Context(), jobx.Job{Type: "echo", Payload: json.RawMessage(`{"a":1}`)})
	r.NoError(err)

	info := waitStatus(t, c, id, jobx.JobStatusCompleted)
	r.Equal(jobx.DefaultQueue, info.Queue)
	r.Equal(1, info.Attempts)
	r.Equal(`{"a":1}`, got.Load())
}

func TestClientRetriesThenFails(t *testing.T) {
	r := require.New(t)

	c := newClient(t, jobxmemory.New())
	var calls atomic.Int32
	c.Register("flaky", func(context.Context, *jobx.JobInfo) error {
		calls.Add(1)
		return errors.New("boom")
	})
	start(t, c)

	id, err := c.Enqueue(t.Context(), jobx.Job{Type: "flaky", MaxRetries: 2})
	r.NoError(err)

	info := waitStatus(t, c, id, jobx.JobStatusFailed)
	r.Equal("boom", info.Error)
	r.Equal(2, info.Attempts)
	r.EqualValues(2, calls.Load())
}

func TestClientPermanentErrorSkipsRetry(t *testing.T) {
	r := require.New(t)

	c := newClient(t, jobxmemory.New())
	var calls atomic.Int32
	c.Register("bad", func(context.Context, *jobx.JobInfo) error {
		calls.Add(1)
		return jobx.Permanent(errors.New("invalid payload"))
	})
	start(t, c)

	id, err := c.Enqueue(t.Context(), jobx.Job{Type: "bad", MaxRetries: 5})
	r.NoError(err)

	waitStatus(t, c, id, jobx.JobStatusFailed)
	r.EqualValues(1, calls.Load())
}

func TestClientCancelRunningJob(t *testing.T) {
	r := require.New(t)

	c := newClient(t, jobxmemory.New())
	started := make(chan struct{})
	stopped := make(chan struct{})
	c.Register("slow", func(ctx context.Context, _ *jobx.JobInfo) error {
		close(started)
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	})
	start(t, c)

	id, err := c.Enqueue(t.Context(), jobx.Job{Type: "slow"})
	r.NoError(err)
	<-started

	info, err := c.Cancel(t.Context(), id)
	r.NoError(err)
	r.Equal(jobx.JobStatusCancelled, info.Status)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		r.Fail("handler context was not cancelled")
	}

	time.Sleep(20 * time.Millisecond)
	info, err = c.GetJob(t.Context(), id)
	r.NoError(err)
	r.Equal(jobx.JobStatusCancelled, info.Status)

	_, err = c.Cancel(t.Context(), id)
	r.True(errx.IsCode(err, jobx.ErrJobFinished))
}

func TestClientCancelPendingJob(t *testing.T) {
	r := require.New(t)

	q := jobxmemory.New()
	c := newClient(t, q)
	var ran atomic.Bool
	c.Register("never", func(context.Context, *jobx.JobInfo) error {
		ran.Store(true)
		return nil
	})

	id, err := c.Enqueue(t.Context(), jobx.Job{Type: "never"})
	r.NoError(err)
	_, err = c.Cancel(t.Context(), id)
	r.NoError(err)

	start(t, c)
	time.Sleep(50 * time.Millisecond)
	r.False(ran.Load())
}

func TestClientUnknownJob(t *testing.T) {
	r := require.New(t)

	c := newClient(t, jobxmemory.New())
	_, err := c.GetJob(t.Context(), "missing")
	r.True(errx.IsCode(err, jobx.ErrJobNotFound))

	_, err = c.Cancel(t.Context(), "missing")
	r.True(errx.IsCode(err, jobx.ErrJobNotFound))

	_, err = c.Enqueue(t.Context(), jobx.Job{})
	r.True(errx.IsCode(err, jobx.ErrInvalidJob))
}

func TestClientDelayedJob(t *testing.T) {
	r := require.New(t)

	c := newClient(t, jobxmemory.New())
	c.Register("later", func(context.Context, *jobx.JobInfo) error { return nil })
	start(t, c)

	id, err := c.EnqueueDelayed(t.Context(), jobx.Job{Type: "later"}, 30*time.Millisecond)
	r.NoError(err)
	waitStatus(t, c, id, jobx.JobStatusCompleted)
}

func TestClientStartTwice(t *testing.T) {
	c := newClient(t, jobxmemory.New())
	start(t, c)
	time.Sleep(20 * time.Millisecond)
	require.True(t, errx.IsCode(c.Start(t.Context()), jobx.ErrAlreadyRunning))
}

type lockedBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

func TestClientCancelledJobThatFinishesStaysCancelled(t *testing.T) {
	r := require.New(t)

	logs := &lockedBuffer{}
	logx.SetOutput(logs)
	t.Cleanup(func() { logx.SetOutput(os.Stdout) })

	c := newClient(t, jobxmemory.New())
	started := make(chan struct{})
	c.Register("last-step", func(ctx context.Context, _ *jobx.JobInfo) error {
		close(started)
		<-ctx.Done()
		return nil
	})
	start(t, c)

	id, err := c.Enqueue(t.Context(), jobx.Job{Type: "last-step"})
	r.NoError(err)
	<-started

	_, err = c.Cancel(t.Context(), id)
	r.NoError(err)

	r.Eventually(func() bool {
		return strings.Contains(logs.String(), "job finished after cancellation")
	}, 2*time.Second, 5*time.Millisecond)

	info, err := c.GetJob(t.Context(), id)
	r.NoError(err)
	r.Equal(jobx.JobStatusCancelled, info.Status)
	r.Contains(logs.String(), id)
}
