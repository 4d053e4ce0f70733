// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fetch

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/moviesapi"
	"github.com/ManuGH/reelscope/internal/query"
)

// DefaultPerPage is the page size requested for the movie list.
const DefaultPerPage = 20

// Target names.
const (
	TargetGenres = "genres"
	TargetList   = "list"
	TargetDetail = "detail"
)

// Catalog is the subset of the catalog client the coordinator calls.
type Catalog interface {
	Genres(ctx context.Context) ([]moviesapi.Genre, error)
	Movies(ctx context.Context, p moviesapi.ListParams, token string) (*moviesapi.MoviePage, error)
	Movie(ctx context.Context, id string, token string) (*moviesapi.MovieDetail, error)
}

// TokenSource supplies the credential token at request-issue time.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Options tunes a Coordinator.
type Options struct {
	PerPage int
	Tokens  TokenSource
	Logger  *zerolog.Logger
}

// Coordinator owns the genre, list and detail targets of the browsing
// screen and derives their requests from the browsing state.
type Coordinator struct {
	api     Catalog
	tokens  TokenSource
	perPage int
	logger  zerolog.Logger

	Genres *Target[[]moviesapi.Genre]
	List   *Target[*moviesapi.MoviePage]
	Detail *Target[*moviesapi.MovieDetail]

	mu        sync.Mutex
	mounted   bool
	lastSnap  *query.Snapshot
	listSeq   uint64
	lastID    string
	hasID     bool
	detailSeq uint64
}

// NewCoordinator returns a coordinator with three idle targets.
func NewCoordinator(api Catalog, opts Options) *Coordinator {
	logger := xglog.WithComponent("fetch")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	return &Coordinator{
		api:     api,
		tokens:  tokens,
		perPage: perPage,
		logger:  logger,
		Genres:  NewTarget[[]moviesapi.Genre](TargetGenres, logger),
		List:    NewTarget[*moviesapi.MoviePage](TargetList, logger),
		Detail:  NewTarget[*moviesapi.MovieDetail](TargetDetail, logger),
	}
}

// PerPage returns the list page size.
func (c *Coordinator) PerPage() int { return c.perPage }

// Mount issues the genre fetch. Only the first call has an effect.
func (c *Coordinator) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.mu.Unlock()
	c.issueGenres(ctx)
}

// RetryGenres reissues the genre fetch.
func (c *Coordinator) RetryGenres(ctx context.Context) {
	c.issueGenres(ctx)
}

func (c *Coordinator) issueGenres(ctx context.Context) {
	c.Genres.Issue(ctx, func(ctx context.Context, _ uint64) ([]moviesapi.Genre, error) {
		genres, err := c.api.Genres(ctx)
		if err != nil {
			return nil, genresError(err)
		}
		return genres, nil
	})
}

// OnSnapshotChanged issues the list request for s. A snapshot equal to the
// last issued one is ignored while that request is loading or applied; once
// it failed or was cancelled it is issued again. It reports whether a
// request was issued.
func (c *Coordinator) OnSnapshotChanged(ctx context.Context, s query.Snapshot) bool {
	s = s.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastSnap != nil && c.lastSnap.Equal(s) && holds(c.List.Result(), c.listSeq) {
		return false
	}
	c.lastSnap = &s
	c.listSeq = c.issueList(ctx, s)
	return true
}

// RetryList reissues the last list request. It reports false when no list
// request was ever issued.
func (c *Coordinator) RetryList(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastSnap == nil {
		return false
	}
	c.listSeq = c.issueList(ctx, *c.lastSnap)
	return true
}

func (c *Coordinator) issueList(ctx context.Context, s query.Snapshot) uint64 {
	params := ListParams(s, c.perPage)
	token := c.tokens.Token()
	return c.List.Issue(ctx, func(ctx context.Context, seq uint64) (*moviesapi.MoviePage, error) {
		logger := xglog.WithContext(ctx, c.logger)
		logger.Debug().
			Str(xglog.FieldEvent, "fetch.list_issued").
			Uint64(xglog.FieldSeq, seq).
			Str("snapshot", s.String()).
			Msg("requesting movie list")
		page, err := c.api.Movies(ctx, params, token)
		if err != nil {
			return nil, listError(err)
		}
		return page, nil
	})
}

// OnIDChanged issues the detail request for id. The same id is ignored
// while its request is loading or applied.
func (c *Coordinator) OnIDChanged(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasID && c.lastID == id && holds(c.Detail.Result(), c.detailSeq) {
		return false
	}
	c.lastID, c.hasID = id, true
	c.detailSeq = c.issueDetail(ctx, id)
	return true
}

// RetryDetail reissues the last detail request.
func (c *Coordinator) RetryDetail(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasID {
		return false
	}
	c.detailSeq = c.issueDetail(ctx, c.lastID)
	return true
}

func (c *Coordinator) issueDetail(ctx context.Context, id string) uint64 {
	token := c.tokens.Token()
	return c.Detail.Issue(ctx, func(ctx context.Context, seq uint64) (*moviesapi.MovieDetail, error) {
		logger := xglog.WithContext(ctx, c.logger)
		logger.Debug().
			Str(xglog.FieldEvent, "fetch.detail_issued").
			Uint64(xglog.FieldSeq, seq).
			Str(xglog.FieldMovieID, id).
			Msg("requesting movie detail")
		d, err := c.api.Movie(ctx, id, token)
		if err != nil {
			return nil, detailError(err)
		}
		return d, nil
	})
}

// holds reports whether r is the loading or applied outcome of request seq.
// A cancel restores an older result, which does not count.
func holds[T any](r Result[T], seq uint64) bool {
	return r.Seq == seq && (r.Status == Loading || r.Status == Success)
}

// Close cancels every request in flight and waits for them to return.
func (c *Coordinator) Close() {
	c.Genres.Close()
	c.List.Close()
	c.Detail.Close()
}

// ListParams derives the list request parameters from a snapshot.
func ListParams(s query.Snapshot, perPage int) moviesapi.ListParams {
	s = s.Normalize()
	return moviesapi.ListParams{
		Query:   s.SearchText,
		GenreID: s.GenreID,
		YearMin: s.YearMin,
		YearMax: s.YearMax,
		SortBy:  string(s.SortBy),
		Order:   string(s.Order),
		Page:    s.Page,
		PerPage: perPage,
	}
}
