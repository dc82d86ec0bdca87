package usersinfra

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/stretchr/testify/require"
)

func directoryServer(t *testing.T, total int, failFirst int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failFirst {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		resp := users.APIResponse{Total: total, Skip: skip, Limit: limit, Users: []users.ServerUser{}}
		for id := skip + 1; id <= min(skip+limit, total); id++ {
			resp.Users = append(resp.Users, users.ServerUser{
				ID:        id,
				FirstName: "First" + strconv.Itoa(id),
				LastName:  "Last",
				Email:     "u" + strconv.Itoa(id) + "@example.com",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(url string) RemoteConfig {
	return RemoteConfig{
		BaseURL:           url,
		PageSize:          4,
		Workers:           2,
		RequestsPerSecond: 1000,
		Burst:             10,
		Timeout:           2 * time.Second,
		Retries:           3,
		RetryBackoff:      time.Millisecond,
	}
}

func TestRemoteFetchAll(t *testing.T) {
	r := require.New(t)

	srv, calls := directoryServer(t, 10, 0)
	dir := NewRemoteDirectory(testConfig(srv.URL))

	all, err := dir.FetchAll(t.Context())
	r.NoError(err)
	r.Len(all, 10)
	for i, u := range all {
		r.Equal(i+1, u.ID)
	}
	r.EqualValues(3, calls.Load())
}

func TestRemoteRetriesServerErrors(t *testing.T) {
	r := require.New(t)

	srv, calls := directoryServer(t, 2, 2)
	dir := NewRemoteDirectory(testConfig(srv.URL))

	page, err := dir.FetchPage(t.Context(), 0, 4)
	r.NoError(err)
	r.Len(page.Users, 2)
	r.EqualValues(3, calls.Load())
}

func TestRemoteGivesUp(t *testing.T) {
	r := require.New(t)

	srv, _ := directoryServer(t, 2, 100)
	dir := NewRemoteDirectory(testConfig(srv.URL))

	_, err := dir.FetchPage(t.Context(), 0, 4)
	r.True(errx.IsCode(err, users.ErrRemoteFetchFailed))
}

func TestRemoteRepository(t *testing.T) {
	r := require.New(t)

	srv, calls := directoryServer(t, 5, 0)
	repo := NewRemoteRepository(NewRemoteDirectory(testConfig(srv.URL)))

	p, err := repo.List(t.Context(), users.ListQuery{})
	r.NoError(err)
	r.Equal(5, p.Page.Total)

	u, err := repo.FindByID(t.Context(), "srv-3")
	r.NoError(err)
	r.Equal("First3 Last", u.Name)
	r.True(u.Active)

	before := calls.Load()
	_, err = repo.FindByIDs(t.Context(), []kernel.UserID{"srv-1"})
	r.NoError(err)
	r.Equal(before, calls.Load(), "directory is cached")

	r.True(errx.IsCode(repo.Save(t.Context(), users.User{}), users.ErrReadOnly))

	repo.Refresh()
	_, err = repo.List(t.Context(), users.ListQuery{})
	r.NoError(err)
	r.Greater(calls.Load(), before)
}
