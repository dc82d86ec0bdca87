package processjob

import (
	"slices"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/jobx"
	"github.com/gofiber/fiber/v2"
)

// Handlers serves the processing endpoints.
type Handlers struct {
	jobs         *jobx.Client
	defaultDelay time.Duration
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(jobs *jobx.Client, defaultDelay time.Duration) *Handlers {
	return &Handlers{jobs: jobs, defaultDelay: defaultDelay}
}

// RegisterRoutes mounts:
//
//	POST   /api/v1/process
//	GET    /api/v1/process/jobs/:id
//	DELETE /api/v1/process/jobs/:id
//
// writeMW runs in front of the submit and cancel routes only.
func (h *Handlers) RegisterRoutes(router fiber.Router, mw []fiber.Handler, writeMW ...fiber.Handler) {
	grp := router.Group("/api/v1/process", mw...)
	grp.Post("/", append(slices.Clone(writeMW), h.Submit)...)
	grp.Get("/jobs/:id", h.Get)
	grp.Delete("/jobs/:id", append(slices.Clone(writeMW), h.Cancel)...)
}

// SubmitResponse is returned for an accepted request.
type SubmitResponse struct {
	JobID   string         `json:"job_id"`
	Status  jobx.JobStatus `json:"status"`
	Total   int            `json:"total"`
	DelayMS int64          `json:"delay_ms"`
}

// Submit validates the payload and enqueues a processing job.
func (h *Handlers) Submit(c *fiber.Ctx) error {
	req, err := ParsePayload(c.Body(), h.defaultDelay)
	if err != nil {
		return errx.Respond(c, err)
	}

	payload, err := NewPayload(req)
	if err != nil {
		return errx.Respond(c, errRegistry.NewWithCause(ErrInvalidPayload, err))
	}

	id, err := h.jobs.Enqueue(c.UserContext(), jobx.Job{Type: JobType, Payload: payload})
	if err != nil {
		return errx.Respond(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(SubmitResponse{
		JobID:   id,
		Status:  jobx.JobStatusPending,
		Total:   len(req.Numbers),
		DelayMS: req.Delay.Milliseconds(),
	})
}

// Get returns the state of a job.
func (h *Handlers) Get(c *fiber.Ctx) error {
	info, err := h.jobs.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return errx.Respond(c, err)
	}
	return c.JSON(info)
}

// Cancel cancels a pending or running job.
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	info, err := h.jobs.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return errx.Respond(c, err)
	}
	return c.JSON(info)
}
