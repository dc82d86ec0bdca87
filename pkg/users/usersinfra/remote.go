package usersinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/asyncx"
	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/logx"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RemoteConfig configures a RemoteDirectory.
type RemoteConfig struct {
	// BaseURL is the users endpoint, e.g. https://dummyjson.com/users.
	BaseURL  string
	PageSize int
	// Workers bounds the number of concurrent page fetches.
	Workers int
	// RequestsPerSecond and Burst shape outgoing traffic.
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	Retries           int
	RetryBackoff      time.Duration
}

func (c RemoteConfig) withDefaults() RemoteConfig {
	if c.PageSize <= 0 {
		c.PageSize = 30
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 10
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 200 * time.Millisecond
	}
	return c
}

// RemoteDirectory reads a DummyJSON-style user directory over HTTP.
type RemoteDirectory struct {
	cfg     RemoteConfig
	limiter *rate.Limiter
}

var _ users.Directory = (*RemoteDirectory)(nil)

// NewRemoteDirectory creates the client.
func NewRemoteDirectory(cfg RemoteConfig) *RemoteDirectory {
	cfg = cfg.withDefaults()
	return &RemoteDirectory{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

func retryable(err error) bool {
	var se *statusError
	if errx.As(err, &se) {
		return se.code >= 500 || se.code == fiber.StatusTooManyRequests
	}
	return true
}

func (d *RemoteDirectory) pageURL(skip, limit int) string {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("skip", strconv.Itoa(skip))
	return d.cfg.BaseURL + "?" + v.Encode()
}

// FetchPage fetches one page, waiting for the rate limiter and retrying
// server errors with backoff.
func (d *RemoteDirectory) FetchPage(ctx context.Context, skip, limit int) (*users.APIResponse, error) {
	target := d.pageURL(skip, limit)

	page, err := asyncx.RetryWithBackoff(ctx, d.cfg.Retries, d.cfg.RetryBackoff, retryable,
		func(ctx context.Context) (*users.APIResponse, error) {
			if err := d.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return d.get(target)
		})
	if err != nil {
		return nil, users.ErrRegistry.NewWithCause(users.ErrRemoteFetchFailed, err).
			WithDetail("skip", skip).
			WithDetail("limit", limit)
	}
	return page, nil
}

func (d *RemoteDirectory) get(target string) (*users.APIResponse, error) {
	agent := fiber.Get(target).
		Timeout(d.cfg.Timeout).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if code != fiber.StatusOK {
		return nil, &statusError{code: code}
	}

	var page users.APIResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchAll reads the first page to learn the total, then fetches the
// remaining pages concurrently. Users are returned in directory order.
func (d *RemoteDirectory) FetchAll(ctx context.Context) ([]users.ServerUser, error) {
	first, err := d.FetchPage(ctx, 0, d.cfg.PageSize)
	if err != nil {
		return nil, err
	}

	limit := d.cfg.PageSize
	var skips []int
	for skip := len(first.Users); skip < first.Total && len(first.Users) > 0; skip += limit {
		skips = append(skips, skip)
	}

	pages, err := asyncx.Pool(ctx, d.cfg.Workers, skips, func(ctx context.Context, skip int) (*users.APIResponse, error) {
		return d.FetchPage(ctx, skip, limit)
	})
	if err != nil {
		return nil, err
	}

	all := make([]users.ServerUser, 0, first.Total)
	all = append(all, first.Users...)
	for _, p := range pages {
		all = append(all, p.Users...)
	}

	logx.WithFields(logx.Fields{
		"source": d.cfg.BaseURL,
		"users":  len(all),
		"pages":  len(pages) + 1,
	}).Info("fetched remote user directory")
	return all, nil
}

// RemoteRepository serves the remote directory through the repository
// port. The directory is loaded on first use and cached; writes fail.
type RemoteRepository struct {
	dir Directory

	mu    sync.Mutex
	cache *MemoryRepository
}

// Directory is the subset of users.Directory the repository needs.
type Directory interface {
	FetchAll(ctx context.Context) ([]users.ServerUser, error)
}

var _ users.Repository = (*RemoteRepository)(nil)

// NewRemoteRepository wraps dir.
func NewRemoteRepository(dir Directory) *RemoteRepository {
	return &RemoteRepository{dir: dir}
}

func (r *RemoteRepository) load(ctx context.Context) (*MemoryRepository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cache != nil {
		return r.cache, nil
	}

	remote, err := r.dir.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]users.User, len(remote))
	for i, s := range remote {
		list[i] = s.ToUser()
	}
	r.cache = NewMemoryRepository(list...)
	return r.cache, nil
}

// Refresh drops the cache so the next call reloads the directory.
func (r *RemoteRepository) Refresh() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}

func (r *RemoteRepository) List(ctx context.Context, q users.ListQuery) (kernel.Paginated[users.User], error) {
	repo, err := r.load(ctx)
	if err != nil {
		return kernel.Paginated[users.User]{}, err
	}
	return repo.List(ctx, q)
}

func (r *RemoteRepository) FindByID(ctx context.Context, id kernel.UserID) (*users.User, error) {
	repo, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return repo.FindByID(ctx, id)
}

func (r *RemoteRepository) FindByIDs(ctx context.Context, ids []kernel.UserID) ([]users.User, error) {
	repo, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return repo.FindByIDs(ctx, ids)
}

func (r *RemoteRepository) Save(context.Context, ...users.User) error {
	return users.ErrRegistry.New(users.ErrReadOnly).WithDetail("source", "remote")
}
