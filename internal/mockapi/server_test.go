// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManuGH/reelscope/internal/health"
	"github.com/ManuGH/reelscope/internal/moviesapi"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	nop := zerolog.Nop()
	opts.Logger = &nop
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	srv := httptest.NewServer(New(opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t, Options{Version: "v9.9.9"})

	var live health.HealthResponse
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz?verbose=true", &live))
	assert.Equal(t, health.StatusHealthy, live.Status)
	assert.Equal(t, "v9.9.9", live.Version)
	assert.Equal(t, "27 movies", live.Checks["catalog"].Message)
	assert.Equal(t, "0 registered", live.Checks["accounts"].Message)

	var ready health.ReadinessResponse
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/readyz", &ready))
	assert.True(t, ready.Ready)

	empty := newTestServer(t, Options{Catalog: NewCatalog(nil, nil)})
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, empty.URL+"/readyz", &ready))
	assert.False(t, ready.Ready)
	assert.Equal(t, "catalog is empty", ready.Checks["catalog"].Error)
}

func TestGenres(t *testing.T) {
	srv := newTestServer(t, Options{})
	var genres []moviesapi.Genre
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/genres", &genres))
	require.NotEmpty(t, genres)
	for i := 1; i < len(genres); i++ {
		assert.Less(t, genres[i-1].Name, genres[i].Name)
	}
}

func TestListMovies_SearchAndPaging(t *testing.T) {
	srv := newTestServer(t, Options{})

	var page moviesapi.MoviePage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/movies?q=matrix&sort_by=year&order=desc&page=1&per_page=20", &page))
	require.Len(t, page.Movies, 2)
	assert.Equal(t, "The Matrix Reloaded", page.Movies[0].Title)
	assert.Equal(t, 1, page.TotalPages)

	var first moviesapi.MoviePage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/movies?per_page=10", &first))
	assert.Len(t, first.Movies, 10)
	assert.Equal(t, (first.Total+9)/10, first.TotalPages)

	var beyond moviesapi.MoviePage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/movies?page=999", &beyond))
	assert.Empty(t, beyond.Movies)
}

func TestListMovies_Filters(t *testing.T) {
	srv := newTestServer(t, Options{})

	var page moviesapi.MoviePage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/movies?genre_id=3&year_min=1994&year_max=1995&per_page=100", &page))
	require.NotEmpty(t, page.Movies)
	for _, m := range page.Movies {
		assert.Contains(t, m.Genres, "Animation")
		require.NotNil(t, m.ReleaseYear)
		assert.GreaterOrEqual(t, *m.ReleaseYear, 1994)
		assert.LessOrEqual(t, *m.ReleaseYear, 1995)
	}

	var inverted moviesapi.MoviePage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/movies?year_min=2000&year_max=1990", &inverted))
	assert.Empty(t, inverted.Movies)
}

func TestListMovies_RatingSort(t *testing.T) {
	srv := newTestServer(t, Options{})
	var page moviesapi.MoviePage
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/movies?sort_by=rating&order=desc&per_page=5", &page))
	for i := 1; i < len(page.Movies); i++ {
		assert.GreaterOrEqual(t, *page.Movies[i-1].AvgRating, *page.Movies[i].AvgRating)
	}
}

func TestListMovies_RejectsInvalidParameters(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, q := range []string{"sort_by=popularity", "order=up", "page=0", "per_page=101", "year_min=abc", "genre_id=-1"} {
		var body map[string]any
		assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/api/movies?"+q, &body), q)
		assert.NotEmpty(t, body["detail"], q)
	}
}

func TestGetMovie(t *testing.T) {
	srv := newTestServer(t, Options{})

	var m moviesapi.MovieDetail
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/movies/603", &m))
	assert.Equal(t, "The Matrix", m.Title)
	assert.NotEmpty(t, m.Cast)
	assert.Equal(t, "Director", m.Crew[0].Job)
	assert.Equal(t, "cyberpunk", m.Tags[0].Tag)

	var sparse moviesapi.MovieDetail
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/movies/9999", &sparse))
	assert.Nil(t, sparse.Genres)
	assert.Nil(t, sparse.Crew)

	var missing map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/movies/1", &missing))
	assert.Equal(t, "Movie not found", missing["detail"])

	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv.URL+"/api/movies/abc", nil))
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, Options{})

	var reg moviesapi.AuthResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/auth/register",
		moviesapi.Registration{Username: "neo", Password: "followthewhiterabbit", DisplayName: " Thomas "}, &reg))
	assert.Equal(t, "bearer", reg.TokenType)
	assert.Equal(t, "Thomas", reg.User.DisplayName)
	assert.NotEmpty(t, reg.User.CreatedAt)

	var dup map[string]string
	assert.Equal(t, http.StatusConflict, postJSON(t, srv.URL+"/api/auth/register",
		moviesapi.Registration{Username: "neo", Password: "anotherpassword"}, &dup))
	assert.Equal(t, "Username already taken", dup["detail"])

	var bad map[string]string
	assert.Equal(t, http.StatusUnauthorized, postJSON(t, srv.URL+"/api/auth/login",
		moviesapi.Credentials{Username: "neo", Password: "wrongpassword"}, &bad))
	assert.Equal(t, "Invalid username or password", bad["detail"])

	var login moviesapi.AuthResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/auth/login",
		moviesapi.Credentials{Username: "neo", Password: "followthewhiterabbit"}, &login))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var me moviesapi.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "neo", me.Username)
}

func TestRegister_ValidatesLengths(t *testing.T) {
	srv := newTestServer(t, Options{})
	var body struct {
		Detail []validationIssue `json:"detail"`
	}
	assert.Equal(t, http.StatusUnprocessableEntity, postJSON(t, srv.URL+"/api/auth/register",
		moviesapi.Registration{Username: "ab", Password: "short"}, &body))
	assert.Len(t, body.Detail, 2)
}

func TestMe_RejectsBadTokens(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	srv := newTestServer(t, Options{Now: clock, TokenTTL: time.Hour})

	var reg moviesapi.AuthResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/auth/register",
		moviesapi.Registration{Username: "trinity", Password: "password123"}, &reg))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1", "username": "trinity", "exp": now.Add(time.Hour).Unix(),
	})
	forgedToken, err := forged.SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	expired := tokenIssuer{secret: devSecret, ttl: -time.Minute, now: clock}
	expiredToken, err := expired.issue(reg.User)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing": "",
		"scheme":  "Basic abc",
		"garbage": "Bearer not-a-jwt",
		"forged":  "Bearer " + forgedToken,
		"expired": "Bearer " + expiredToken,
	} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RateLimit: 2})
	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		statuses = append(statuses, getJSON(t, srv.URL+"/api/genres", nil))
	}
	assert.Equal(t, []int{200, 200, 429}, statuses)
}

func TestLatencyHonoursCancellation(t *testing.T) {
	srv := newTestServer(t, Options{Latency: time.Hour})
	client := &http.Client{Timeout: 100 * time.Millisecond}
	start := time.Now()
	_, err := client.Get(srv.URL + "/api/genres")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{})
	_ = getJSON(t, srv.URL+"/api/genres", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "reelscope_mockapi_requests_total")
}
