// Package processjob runs the number processor as a background job and
// exposes it over HTTP.
package processjob

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/asyncx"
	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/jobx"
	"github.com/Abraxas-365/userdesk/pkg/logx"
	"github.com/Abraxas-365/userdesk/pkg/processx"
	"github.com/Abraxas-365/userdesk/pkg/ptrx"
)

// JobType identifies processing jobs in the queue.
const JobType = "process.numbers"

// MaxDelay is the longest per-element delay a payload may ask for.
const MaxDelay = 24 * time.Hour

// Payload is the JSON body accepted by the HTTP endpoint and stored as
// the job payload.
type Payload struct {
	Numbers json.RawMessage `json:"numbers"`
	DelayMS *int64          `json:"delay_ms,omitempty"`
}

// Request is a validated payload.
type Request struct {
	Numbers []float64
	Delay   time.Duration
}

var (
	errRegistry       = errx.NewRegistry("PROCESS_JOB")
	ErrInvalidPayload = errRegistry.Register("INVALID_PAYLOAD", errx.TypeValidation, 0, "Invalid processing payload")
)

// ParsePayload decodes and validates raw. A missing delay_ms uses
// defaultDelay, a negative one means no delay, and one above MaxDelay
// is rejected.
func ParsePayload(raw []byte, defaultDelay time.Duration) (Request, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Request{}, errRegistry.NewWithCause(ErrInvalidPayload, err)
	}

	var numbers any
	if len(p.Numbers) > 0 {
		dec := json.NewDecoder(bytes.NewReader(p.Numbers))
		dec.UseNumber()
		if err := dec.Decode(&numbers); err != nil {
			return Request{}, errRegistry.NewWithCause(ErrInvalidPayload, err)
		}
	}

	values, err := processx.Numbers(numbers)
	if err != nil {
		return Request{}, err
	}

	delay := defaultDelay
	if p.DelayMS != nil {
		ms := max(*p.DelayMS, 0)
		if ms > MaxDelay.Milliseconds() {
			return Request{}, errRegistry.New(ErrInvalidPayload).
				WithDetail("delay_ms", ms).
				WithDetail("max_delay_ms", MaxDelay.Milliseconds())
		}
		delay = time.Duration(ms) * time.Millisecond
	}
	return Request{Numbers: values, Delay: delay}, nil
}

// NewPayload encodes a request as a job payload.
func NewPayload(req Request) (json.RawMessage, error) {
	numbers, err := json.Marshal(req.Numbers)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Payload{Numbers: numbers, DelayMS: ptrx.Int64(req.Delay.Milliseconds())})
}

// Handler executes processing jobs.
type Handler struct {
	defaultDelay time.Duration
}

// NewHandler returns a Handler that falls back to defaultDelay for
// payloads without delay_ms.
func NewHandler(defaultDelay time.Duration) *Handler {
	return &Handler{defaultDelay: defaultDelay}
}

// Register binds the handler to the job type on client.
func (h *Handler) Register(client *jobx.Client) {
	client.Register(JobType, h.Handle)
}

// Handle implements jobx.HandlerFunc. Invalid payloads fail permanently.
// Cancelling the job's context aborts the run between elements.
func (h *Handler) Handle(ctx context.Context, job *jobx.JobInfo) error {
	req, err := ParsePayload(job.Payload, h.defaultDelay)
	if err != nil {
		return jobx.Permanent(err)
	}

	fields := logx.Fields{"job_id": job.ID, "attempt": job.Attempts}
	logx.WithFields(fields).Infof("processing %d numbers with %s delay", len(req.Numbers), req.Delay)

	return processx.New(
		processx.WithDelay(req.Delay),
		processx.WithToken(asyncx.FromContext(ctx)),
		processx.WithReporter(processx.LogReporter{Fields: fields}),
	).Process(req.Numbers)
}
