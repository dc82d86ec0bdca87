// Package jobxmemory is an in-process jobx.Queue for single-node
// deployments and tests. State is lost on restart.
package jobxmemory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/jobx"
	"github.com/google/uuid"
)

type scheduled struct {
	id    string
	runAt time.Time
}

// Queue implements jobx.Queue in memory.
type Queue struct {
	mu        sync.Mutex
	jobs      map[string]*jobx.JobInfo
	ready     map[string][]string
	scheduled map[string][]scheduled
	signal    chan struct{}
	now       func() time.Time
}

var _ jobx.Queue = (*Queue)(nil)

// New returns an empty queue.
func New() *Queue {
	return &Queue{
		jobs:      make(map[string]*jobx.JobInfo),
		ready:     make(map[string][]string),
		scheduled: make(map[string][]scheduled),
		signal:    make(chan struct{}, 1),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (q *Queue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Enqueue adds a job to the ready list.
func (q *Queue) Enqueue(_ context.Context, job jobx.Job) (string, error) {
	id := uuid.NewString()
	info := jobx.NewJobInfo(id, job, q.now())

	q.mu.Lock()
	q.jobs[id] = &info
	q.ready[job.Queue] = append(q.ready[job.Queue], id)
	q.mu.Unlock()

	q.notify()
	return id, nil
}

// EnqueueDelayed adds a job that becomes ready after delay.
func (q *Queue) EnqueueDelayed(_ context.Context, job jobx.Job, delay time.Duration) (string, error) {
	id := uuid.NewString()
	now := q.now()
	info := jobx.NewJobInfo(id, job, now)

	q.mu.Lock()
	q.jobs[id] = &info
	q.scheduled[job.Queue] = append(q.scheduled[job.Queue], scheduled{id: id, runAt: now.Add(delay)})
	q.mu.Unlock()
	return id, nil
}

// GetJob returns a copy of the stored job.
func (q *Queue) GetJob(_ context.Context, jobID string) (*jobx.JobInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	info, ok := q.jobs[jobID]
	if !ok {
		return nil, jobx.NewJobNotFound(jobID)
	}
	cp := *info
	return &cp, nil
}

// Dequeue pops the oldest ready job of the first non-empty queue, waiting
// up to timeout for one to arrive.
func (q *Queue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*jobx.JobInfo, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if info := q.pop(queues); info != nil {
			return info, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil
		case <-timer.C:
			return nil, nil
		case <-q.signal:
		}
	}
}

func (q *Queue) pop(queues []string) *jobx.JobInfo {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, name := range queues {
		for len(q.ready[name]) > 0 {
			id := q.ready[name][0]
			q.ready[name] = q.ready[name][1:]

			info, ok := q.jobs[id]
			if !ok || info.Status == jobx.JobStatusCancelled {
				continue
			}
			info.Status = jobx.JobStatusActive
			info.Attempts++
			info.UpdatedAt = q.now()
			cp := *info
			return &cp
		}
	}
	return nil
}

func (q *Queue) update(jobID string, fn func(*jobx.JobInfo)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	info, ok := q.jobs[jobID]
	if !ok {
		return jobx.NewJobNotFound(jobID)
	}
	fn(info)
	info.UpdatedAt = q.now()
	return nil
}

// Complete marks a job completed unless it was cancelled meanwhile.
func (q *Queue) Complete(_ context.Context, jobID string, result []byte) error {
	return q.update(jobID, func(info *jobx.JobInfo) {
		if info.Status == jobx.JobStatusCancelled {
			return
		}
		info.Status = jobx.JobStatusCompleted
		info.Result = result
	})
}

// Fail records a failure and reports whether the job may run again.
func (q *Queue) Fail(_ context.Context, jobID string, errMsg string, retryable bool) (bool, error) {
	var retry bool
	err := q.update(jobID, func(info *jobx.JobInfo) {
		if info.Status == jobx.JobStatusCancelled {
			return
		}
		retry = retryable && info.Attempts < info.MaxRetries
		if retry {
			info.Status = jobx.JobStatusRetrying
		} else {
			info.Status = jobx.JobStatusFailed
		}
		info.Error = errMsg
	})
	return retry, err
}

// Retry schedules the job to run again after delay.
func (q *Queue) Retry(_ context.Context, jobID string, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	info, ok := q.jobs[jobID]
	if !ok {
		return jobx.NewJobNotFound(jobID)
	}
	q.scheduled[info.Queue] = append(q.scheduled[info.Queue], scheduled{id: jobID, runAt: q.now().Add(delay)})
	return nil
}

// PromoteScheduled moves due jobs to the ready lists, earliest run time
// first, as the Redis queue does with its sorted set.
func (q *Queue) PromoteScheduled(_ context.Context, queues []string) error {
	now := q.now()
	promoted := false

	q.mu.Lock()
	for _, name := range queues {
		var due, pending []scheduled
		for _, s := range q.scheduled[name] {
			if s.runAt.After(now) {
				pending = append(pending, s)
			} else {
				due = append(due, s)
			}
		}
		slices.SortStableFunc(due, func(a, b scheduled) int { return a.runAt.Compare(b.runAt) })
		for _, s := range due {
			q.ready[name] = append(q.ready[name], s.id)
		}
		promoted = promoted || len(due) > 0
		q.scheduled[name] = pending
	}
	q.mu.Unlock()

	if promoted {
		q.notify()
	}
	return nil
}

// Cancel marks a job cancelled and drops it from the ready and scheduled
// lists of its queue.
func (q *Queue) Cancel(_ context.Context, jobID string) (*jobx.JobInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	info, ok := q.jobs[jobID]
	if !ok {
		return nil, jobx.NewJobNotFound(jobID)
	}
	if info.Status.Finished() {
		return nil, jobx.NewJobFinished(jobID, info.Status)
	}

	q.ready[info.Queue] = slices.DeleteFunc(q.ready[info.Queue], func(id string) bool { return id == jobID })
	q.scheduled[info.Queue] = slices.DeleteFunc(q.scheduled[info.Queue], func(s scheduled) bool { return s.id == jobID })

	info.Status = jobx.JobStatusCancelled
	info.UpdatedAt = q.now()
	cp := *info
	return &cp, nil
}
