// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package moviesapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/reelscope/internal/cache"
)

func newTestClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	if opts.Backoff == 0 {
		opts.Backoff = time.Millisecond
	}
	if opts.MaxBackoff == 0 {
		opts.MaxBackoff = 5 * time.Millisecond
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 1000
	}
	c, err := New(baseURL, opts)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://host/api", "http://", "://bad"} {
		_, err := New(raw, Options{})
		assert.Error(t, err, raw)
	}

	c, err := New(" http://localhost:8000/api/ ", Options{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", c.BaseURL())
}

func TestDo_SendsHeadersAndDecodes(t *testing.T) {
	var got http.Header
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]string{"username": "neo"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/api", Options{})
	var out User
	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/auth/me", AuthToken: "tok"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "neo", out.Username)
	assert.Equal(t, "/api/auth/me", gotPath)
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, defaultUserAgent, got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestDo_OmitsAuthorizationWithoutToken(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []Genre{})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	require.NoError(t, c.Do(context.Background(), Request{Path: "/genres"}, nil))
	assert.Equal(t, "", auth.Load())
}

func TestDo_RetriesGETOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, []Genre{{ID: 1, Name: "Drama"}})
	}))
	defer srv.Close()

	retries := requestRetries.WithLabelValues(http.MethodGet, "/genres", "5xx")
	before := counterValue(t, retries)

	c := newTestClient(t, srv.URL, Options{MaxRetries: 2})
	var out []Genre
	require.NoError(t, c.Do(context.Background(), Request{Path: "/genres"}, &out))

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []Genre{{ID: 1, Name: "Drama"}}, out)
	assert.Equal(t, before+2, counterValue(t, retries))
}

func TestDo_DoesNotRetryPOST(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{MaxRetries: 3})
	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/auth/login", Body: Credentials{Username: "a"}}, nil)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_DoesNotRetry4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Movie not found"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{MaxRetries: 3})
	err := c.Do(context.Background(), Request{Path: "/movies/7"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Movie not found", DetailOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       any
		want       error
		wantDetail string
	}{
		{"unauthorized", 401, map[string]string{"detail": "Invalid username or password"}, ErrAuthInvalid, "Invalid username or password"},
		{"not found", 404, map[string]string{"detail": "Not found"}, ErrNotFound, "Not found"},
		{"conflict", 409, map[string]string{"detail": "Username already taken"}, ErrValidation, "Username already taken"},
		{"unprocessable", 422, map[string]any{"detail": []map[string]any{{"msg": "too short"}}}, ErrValidation, "too short"},
		{"server error", 500, map[string]string{"detail": "boom"}, ErrUpstream, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, Options{MaxRetries: -1, DisableBreaker: true})
			err := c.Do(context.Background(), Request{Path: "/x"}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.wantDetail, DetailOf(err))
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestDo_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"movies": [`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	var page MoviePage
	err := c.Do(context.Background(), Request{Path: "/movies"}, &page)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestDo_CancellationIsDistinctFromNetwork(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- c.Do(ctx, Request{Path: "/movies"}, nil) }()

	<-started
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrCancelled)
		assert.NotErrorIs(t, err, ErrNetwork)
	case <-time.After(5 * time.Second):
		t.Fatal("request did not settle after cancellation")
	}
	assert.Equal(t, StateClosed, c.Breaker().State(), "cancellation must not count as a failure")
}

func TestDo_AlreadyCancelledContext(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Do(ctx, Request{Path: "/genres"}, nil)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, Options{MaxRetries: -1})
	err := c.Do(context.Background(), Request{Path: "/genres"}, nil)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, Retryable(err))
}

func TestDo_CircuitOpensOnRepeatedUpstreamFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{MaxRetries: -1, BreakerThreshold: 2, BreakerReset: time.Hour})
	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, c.Do(context.Background(), Request{Path: "/genres"}, nil), ErrUpstream)
	}
	err := c.Do(context.Background(), Request{Path: "/genres"}, nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_ClientErrorsDoNotOpenCircuit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{BreakerThreshold: 1})
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, c.Do(context.Background(), Request{Path: "/auth/me"}, nil), ErrAuthInvalid)
	}
	assert.Equal(t, StateClosed, c.Breaker().State())
}

func TestMovies_SendsListParameters(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(w, http.StatusOK, MoviePage{
			Movies:     []MovieSummary{{ID: 1, Title: "The Matrix"}},
			Page:       3,
			TotalPages: 7,
		})
	}))
	defer srv.Close()

	genre, from := 5, 1990
	c := newTestClient(t, srv.URL, Options{})
	page, err := c.Movies(context.Background(), ListParams{
		Query:   "matrix",
		GenreID: &genre,
		YearMin: &from,
		SortBy:  "rating",
		Order:   "desc",
		Page:    3,
		PerPage: 20,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 7, page.TotalPages)
	assert.Equal(t, "The Matrix", page.Movies[0].Title)
	assert.Equal(t, map[string][]string{
		"q":        {"matrix"},
		"genre_id": {"5"},
		"year_min": {"1990"},
		"sort_by":  {"rating"},
		"order":    {"desc"},
		"page":     {"3"},
		"per_page": {"20"},
	}, query)
}

func TestListParams_DefaultsAlwaysSent(t *testing.T) {
	v := ListParams{}.Values()
	assert.Equal(t, "title", v.Get("sort_by"))
	assert.Equal(t, "asc", v.Get("order"))
	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "20", v.Get("per_page"))
	assert.False(t, v.Has("q"))
	assert.False(t, v.Has("genre_id"))
}

func TestMovies_NilMoviesBecomesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0,"total_pages":0}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	page, err := c.Movies(context.Background(), ListParams{}, "")
	require.NoError(t, err)
	assert.NotNil(t, page.Movies)
	assert.Empty(t, page.Movies)
}

func TestGenres_CachedAndCollapsed(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		writeJSON(w, http.StatusOK, []Genre{{ID: 1, Name: "Action"}, {ID: 2, Name: "Drama"}})
	}))
	defer srv.Close()

	mem := cache.NewMemoryCache(0)
	c := newTestClient(t, srv.URL, Options{Cache: mem, GenresTTL: time.Minute})

	var wg sync.WaitGroup
	results := make([][]Genre, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := c.Genres(context.Background())
			assert.NoError(t, err)
			results[i] = g
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, g := range results {
		assert.Len(t, g, 2)
	}

	g, err := c.Genres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Drama", g[1].Name)
	assert.LessOrEqual(t, calls.Load(), int32(4))
	before := calls.Load()
	_, _ = c.Genres(context.Background())
	assert.Equal(t, before, calls.Load(), "cached genres must not hit the server")
}

func TestMovie_InvalidIDDoesNotCallServer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	for _, id := range []string{"", "abc", "-3", "0"} {
		_, err := c.Movie(context.Background(), id, "")
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestMovie_DecodesSubCollections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movies/603", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"movie_id": 603, "title": "The Matrix", "release_year": 1999, "budget": 63000000,
			"box_office": "$171,479,930", "revenue": "N/A",
			"genres": [{"genre_id": 1, "name": "Action"}],
			"crew": [{"person_id": 9, "name": "Lana Wachowski", "job": "Director"}],
			"tags": [{"tag": "cyberpunk", "count": 4}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	m, err := c.Movie(context.Background(), "603", "")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", m.Title)
	require.NotNil(t, m.Budget)
	assert.Equal(t, int64(63000000), m.Budget.Value)
	require.NotNil(t, m.BoxOffice)
	assert.Equal(t, int64(171479930), m.BoxOffice.Value)
	require.NotNil(t, m.Revenue)
	assert.True(t, m.Revenue.IsZero())
	assert.Len(t, m.Genres, 1)
	assert.Nil(t, m.Cast, "absent sub-collection stays nil")
	assert.Equal(t, "Director", m.Crew[0].Job)
}

func TestAuthEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var creds Credentials
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds.Password != "correct-horse" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid username or password"})
				return
			}
			writeJSON(w, http.StatusOK, AuthResponse{AccessToken: "tok", TokenType: "bearer", User: User{ID: 1, Username: creds.Username}})
		case "/auth/register":
			writeJSON(w, http.StatusConflict, map[string]string{"detail": "Username already taken"})
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
				return
			}
			writeJSON(w, http.StatusOK, User{ID: 1, Username: "neo", DisplayName: "Thomas"})
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	ctx := context.Background()

	resp, err := c.Login(ctx, Credentials{Username: "neo", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)

	_, err = c.Login(ctx, Credentials{Username: "neo", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrAuthInvalid)

	_, err = c.Register(ctx, Registration{Username: "neo", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 409, StatusOf(err))
	assert.Equal(t, "Username already taken", DetailOf(err))

	user, err := c.Me(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "Thomas", user.Name())

	_, err = c.Me(ctx, "stale")
	assert.ErrorIs(t, err, ErrAuthInvalid)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/movies/{id}", routeLabel("/movies/603"))
	assert.Equal(t, "/movies", routeLabel("/movies"))
	assert.Equal(t, "/", routeLabel(""))
	assert.Equal(t, "/auth/me", routeLabel("auth/me"))
}

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, c.Write(metric))
	return metric.GetCounter().GetValue()
}
