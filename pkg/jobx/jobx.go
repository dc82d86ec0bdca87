package jobx

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/logx"
)

// HandlerFunc processes a job. Return nil on success, an error to trigger
// retry/fail. Wrap the error with Permanent to skip the retries. The
// context is cancelled when the job is cancelled through the client.
type HandlerFunc func(ctx context.Context, job *JobInfo) error

// JobEnqueuer enqueues jobs for processing.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job Job) (string, error)
	EnqueueDelayed(ctx context.Context, job Job, delay time.Duration) (string, error)
}

// JobStatusReader reads job status.
type JobStatusReader interface {
	GetJob(ctx context.Context, jobID string) (*JobInfo, error)
}

// JobProcessor provides backend operations for the worker loop.
type JobProcessor interface {
	// Dequeue returns nil, nil when no job became ready before the timeout.
	Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*JobInfo, error)
	Complete(ctx context.Context, jobID string, result []byte) error
	// Fail records the failure and reports whether the job has attempts
	// left. A non-retryable failure is final regardless of attempts.
	Fail(ctx context.Context, jobID string, errMsg string, retryable bool) (retry bool, err error)
	Retry(ctx context.Context, jobID string, delay time.Duration) error
	PromoteScheduled(ctx context.Context, queues []string) error
	// Cancel marks a job cancelled and withdraws it from pending and
	// scheduled sets. Finished jobs yield ErrJobFinished.
	Cancel(ctx context.Context, jobID string) (*JobInfo, error)
}

// Queue combines all backend operations.
type Queue interface {
	JobEnqueuer
	JobStatusReader
	JobProcessor
}

// Client is the main entry point for enqueuing and processing jobs.
type Client struct {
	queue    Queue
	opts     WorkerOptions
	handlers map[string]HandlerFunc
	mu       sync.RWMutex
	running  bool

	// cancels of jobs currently executing on this client
	inflight struct {
		sync.Mutex
		m map[string]context.CancelFunc
	}
}

// NewClient creates a new job processing client.
func NewClient(queue Queue, options ...WorkerOption) *Client {
	opts := defaultWorkerOptions()
	for _, o := range options {
		o(&opts)
	}
	c := &Client{
		queue:    queue,
		opts:     opts,
		handlers: make(map[string]HandlerFunc),
	}
	c.inflight.m = make(map[string]context.CancelFunc)
	return c
}

// Register adds a handler for a given job type.
func (c *Client) Register(jobType string, handler HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[jobType] = handler
}

// HasHandler reports whether jobType has a registered handler.
func (c *Client) HasHandler(jobType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.handlers[jobType]
	return ok
}

func (c *Client) normalize(job Job) (Job, error) {
	if job.Type == "" {
		return job, jobxErrors.New(ErrInvalidJob).WithDetail("reason", "missing type")
	}
	if job.Queue == "" {
		job.Queue = DefaultQueue
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = c.opts.DefaultMaxRetries
	}
	return job, nil
}

// Enqueue enqueues a job for immediate processing.
func (c *Client) Enqueue(ctx context.Context, job Job) (string, error) {
	job, err := c.normalize(job)
	if err != nil {
		return "", err
	}
	return c.queue.Enqueue(ctx, job)
}

// EnqueueDelayed enqueues a job with a delay before it becomes available.
func (c *Client) EnqueueDelayed(ctx context.Context, job Job, delay time.Duration) (string, error) {
	job, err := c.normalize(job)
	if err != nil {
		return "", err
	}
	return c.queue.EnqueueDelayed(ctx, job, delay)
}

// GetJob returns the current state of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*JobInfo, error) {
	return c.queue.GetJob(ctx, jobID)
}

// Cancel cancels a pending, scheduled or running job. A job running on
// this client has its handler context cancelled.
func (c *Client) Cancel(ctx context.Context, jobID string) (*JobInfo, error) {
	info, err := c.queue.Cancel(ctx, jobID)
	if err != nil {
		return nil, err
	}

	c.inflight.Lock()
	cancel, ok := c.inflight.m[jobID]
	c.inflight.Unlock()
	if ok {
		cancel()
	}

	logx.WithField("job_id", jobID).Info("jobx: job cancelled")
	return info, nil
}

// Start begins processing jobs. It blocks until ctx is cancelled.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return jobxErrors.New(ErrAlreadyRunning)
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	logx.Infof("jobx: starting %d workers on queues %v", c.opts.Concurrency, c.opts.Queues)

	var wg sync.WaitGroup

	// Scheduler goroutine: promotes delayed jobs to the ready queue.
	wg.Go(func() { c.schedulerLoop(ctx) })

	for i := range c.opts.Concurrency {
		wg.Go(func() { c.workerLoop(ctx, i) })
	}

	<-ctx.Done()
	logx.Info("jobx: shutting down workers...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logx.Info("jobx: all workers stopped")
	case <-time.After(c.opts.ShutdownTimeout):
		logx.Warn("jobx: shutdown timed out, some jobs may not have completed")
	}

	return nil
}

func (c *Client) schedulerLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.queue.PromoteScheduled(ctx, c.opts.Queues); err != nil {
				if ctx.Err() != nil {
					return
				}
				logx.WithError(err).Warn("jobx: failed to promote scheduled jobs")
			}
		}
	}
}

func (c *Client) workerLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := c.queue.Dequeue(ctx, c.opts.Queues, c.opts.DequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.WithError(err).Warnf("jobx: worker %d dequeue error", id)
			time.Sleep(c.opts.PollInterval)
			continue
		}
		if job == nil {
			continue
		}

		c.processJob(ctx, job)
	}
}

func (c *Client) processJob(ctx context.Context, job *JobInfo) {
	log := logx.WithFields(logx.Fields{"job_id": job.ID, "job_type": job.Type})

	c.mu.RLock()
	handler, ok := c.handlers[job.Type]
	c.mu.RUnlock()

	if !ok {
		log.Warn("jobx: no handler registered")
		_, _ = c.queue.Fail(ctx, job.ID, "no handler registered for job type", false)
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	c.inflight.Lock()
	c.inflight.m[job.ID] = cancel
	c.inflight.Unlock()
	defer func() {
		c.inflight.Lock()
		delete(c.inflight.m, job.ID)
		c.inflight.Unlock()
		cancel()
	}()

	err := handler(jobCtx, job)

	// A job cancelled while running keeps the cancelled status, even when
	// the handler went on to finish its work.
	if jobCtx.Err() != nil && ctx.Err() == nil {
		if err == nil {
			log.WithField("outcome", "completed").
				Warn("jobx: job finished after cancellation, status stays cancelled")
		} else {
			log.WithField("outcome", "aborted").WithError(err).
				Info("jobx: job stopped after cancellation")
		}
		return
	}

	if err != nil {
		log.WithError(err).Warn("jobx: job failed")

		shouldRetry, failErr := c.queue.Fail(ctx, job.ID, err.Error(), !IsPermanent(err))
		if failErr != nil {
			log.WithError(failErr).Error("jobx: failed to mark job as failed")
			return
		}

		if shouldRetry {
			if retryErr := c.queue.Retry(ctx, job.ID, c.opts.DefaultRetryDelay); retryErr != nil {
				log.WithError(retryErr).Error("jobx: failed to retry job")
			}
		}
		return
	}

	if err := c.queue.Complete(ctx, job.ID, nil); err != nil {
		log.WithError(err).Error("jobx: failed to complete job")
	}
}
