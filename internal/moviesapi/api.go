// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package moviesapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const genresKey = "genres"

// Genres lists all genres. Concurrent callers share one request and the
// body is cached for the configured TTL.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	raw, err := c.cachedGet(ctx, genresKey, Request{Method: http.MethodGet, Path: "/genres"}, c.genresTTL)
	if err != nil {
		return nil, err
	}
	genres := []Genre{}
	if err := json.Unmarshal(raw, &genres); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Op: "GET /genres", Body: redactBody(raw), Err: err}
	}
	return genres, nil
}

// Movies fetches one page of the movie list. sort_by, order, page and
// per_page are always sent; the filters only when set.
func (c *Client) Movies(ctx context.Context, p ListParams, token string) (*MoviePage, error) {
	var page MoviePage
	err := c.Do(ctx, Request{
		Method:    http.MethodGet,
		Path:      "/movies",
		Params:    p.Values(),
		AuthToken: token,
	}, &page)
	if err != nil {
		return nil, err
	}
	if page.Movies == nil {
		page.Movies = []MovieSummary{}
	}
	return &page, nil
}

// Values encodes the list parameters as a query string.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(p.Query); q != "" {
		v.Set("q", q)
	}
	if p.GenreID != nil {
		v.Set("genre_id", strconv.Itoa(*p.GenreID))
	}
	if p.YearMin != nil {
		v.Set("year_min", strconv.Itoa(*p.YearMin))
	}
	if p.YearMax != nil {
		v.Set("year_max", strconv.Itoa(*p.YearMax))
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "title"
	}
	order := p.Order
	if order == "" {
		order = "asc"
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	perPage := p.PerPage
	if perPage < 1 {
		perPage = 20
	}
	v.Set("sort_by", sortBy)
	v.Set("order", order)
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	return v
}

// Movie fetches the detail record of one movie. A non-numeric id is
// reported as ErrNotFound without contacting the server.
func (c *Client) Movie(ctx context.Context, id string, token string) (*MovieDetail, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n <= 0 {
		return nil, &APIError{Sentinel: ErrNotFound, Op: "GET /movies/{id}", Detail: "invalid movie id"}
	}

	req := Request{Method: http.MethodGet, Path: "/movies/" + strconv.Itoa(n), AuthToken: token}
	var raw []byte
	if c.detailTTL > 0 {
		raw, err = c.cachedGet(ctx, "movie:"+strconv.Itoa(n), req, c.detailTTL)
	} else {
		var msg json.RawMessage
		err = c.Do(ctx, req, &msg)
		raw = msg
	}
	if err != nil {
		return nil, err
	}

	var detail MovieDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Op: "GET /movies/{id}", Body: redactBody(raw), Err: err}
	}
	return &detail, nil
}

// Login exchanges credentials for a token. Rejected credentials yield ErrAuthInvalid.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

// Register creates an account and returns its first token. A taken
// username yields ErrValidation with status 409.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", reg)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &APIError{Sentinel: ErrBadResponse, Op: "POST " + path, Detail: "missing access token"}
	}
	return &resp, nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/me", AuthToken: token}, &user); err != nil {
		return nil, err
	}
	if user.Username == "" {
		return nil, &APIError{Sentinel: ErrBadResponse, Op: "GET /auth/me", Detail: "missing username"}
	}
	return &user, nil
}

// cachedGet serves req from the response cache, collapsing concurrent misses
// for the same key into one request.
func (c *Client) cachedGet(ctx context.Context, key string, req Request, ttl time.Duration) ([]byte, error) {
	resource := strings.SplitN(key, ":", 2)[0]
	if c.cache != nil {
		if raw, ok := c.cache.Get(key); ok {
			cacheLookups.WithLabelValues(resource, "hit").Inc()
			return raw, nil
		}
		cacheLookups.WithLabelValues(resource, "miss").Inc()
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		var msg json.RawMessage
		if err := c.Do(ctx, req, &msg); err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.Set(key, msg, ttl)
		}
		return []byte(msg), nil
	})
	if err != nil {
		// The shared call ran on another caller's context; a cancellation
		// there says nothing about ours.
		if errors.Is(err, ErrCancelled) && ctx.Err() == nil {
			return c.cachedGetUncollapsed(ctx, req)
		}
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) cachedGetUncollapsed(ctx context.Context, req Request) ([]byte, error) {
	var msg json.RawMessage
	if err := c.Do(ctx, req, &msg); err != nil {
		return nil, err
	}
	return msg, nil
}
