// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package browse drives the catalog browsing screen: it owns the current
// browsing state, mirrors it into the shareable address and hands it to the
// fetch coordinator.
package browse

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ManuGH/reelscope/internal/address"
	"github.com/ManuGH/reelscope/internal/fetch"
	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/moviesapi"
	"github.com/ManuGH/reelscope/internal/query"
)

// Options wires the side effects of a Controller.
type Options struct {
	// OnAddress receives the encoded address after every committed change.
	OnAddress func(encoded string)
	// ScrollToTop runs on explicit page navigation only.
	ScrollToTop func()
	Logger      *zerolog.Logger
}

// Controller owns the browsing state of one screen.
type Controller struct {
	coord     *fetch.Coordinator
	onAddress func(string)
	scroll    func()
	logger    zerolog.Logger

	mu      sync.Mutex
	snap    query.Snapshot
	address string

	totalPages atomic.Int64
}

// New returns a controller at the default state. Call Load to start it.
func New(coord *fetch.Coordinator, opts Options) *Controller {
	logger := xglog.WithComponent("browse")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	c := &Controller{
		coord:     coord,
		onAddress: opts.OnAddress,
		scroll:    opts.ScrollToTop,
		logger:    logger,
		snap:      query.Default(),
	}
	c.totalPages.Store(1)
	coord.List.Subscribe(func(r fetch.Result[*moviesapi.MoviePage]) {
		if r.Status == fetch.Success && r.Data != nil {
			c.totalPages.Store(int64(r.Data.TotalPages))
		}
	})
	return c
}

// Load decodes the address once, fetches genres and the first list.
func (c *Controller) Load(ctx context.Context, rawAddress string) query.Snapshot {
	s := address.DecodeString(rawAddress)
	c.mu.Lock()
	c.snap = s
	c.address = address.EncodeString(s)
	c.coord.Mount(ctx)
	c.coord.OnSnapshotChanged(ctx, s)
	encoded := c.address
	c.mu.Unlock()

	c.logger.Debug().
		Str(xglog.FieldEvent, "browse.loaded").
		Str(xglog.FieldAddress, encoded).
		Msg("browsing state restored from address")
	c.publish(encoded)
	return s
}

// Apply commits patch and issues the matching list request. A patch that
// leaves the state unchanged does nothing.
func (c *Controller) Apply(ctx context.Context, p query.Patch) query.Snapshot {
	c.mu.Lock()
	next := query.Update(c.snap, p)
	if next.Equal(c.snap) {
		c.mu.Unlock()
		return next
	}
	c.snap = next
	c.address = address.EncodeString(next)
	c.coord.OnSnapshotChanged(ctx, next)
	encoded := c.address
	c.mu.Unlock()

	c.publish(encoded)
	return next
}

func (c *Controller) publish(encoded string) {
	if c.onAddress != nil {
		c.onAddress(encoded)
	}
}

// Search sets the search text.
func (c *Controller) Search(ctx context.Context, text string) query.Snapshot {
	return c.Apply(ctx, query.SearchPatch(text))
}

// SetGenre sets or clears the genre filter.
func (c *Controller) SetGenre(ctx context.Context, id *int) query.Snapshot {
	return c.Apply(ctx, query.GenrePatch(id))
}

// SetYearMin sets or clears the lower year bound.
func (c *Controller) SetYearMin(ctx context.Context, y *int) query.Snapshot {
	return c.Apply(ctx, query.YearMinPatch(y))
}

// SetYearMax sets or clears the upper year bound.
func (c *Controller) SetYearMax(ctx context.Context, y *int) query.Snapshot {
	return c.Apply(ctx, query.YearMaxPatch(y))
}

// SetSort selects the sort key.
func (c *Controller) SetSort(ctx context.Context, k query.SortKey) query.Snapshot {
	return c.Apply(ctx, query.SortPatch(k))
}

// SetOrder selects the sort direction.
func (c *Controller) SetOrder(ctx context.Context, o query.Order) query.Snapshot {
	return c.Apply(ctx, query.OrderPatch(o))
}

// ToggleOrder flips the sort direction.
func (c *Controller) ToggleOrder(ctx context.Context) query.Snapshot {
	return c.SetOrder(ctx, c.Snapshot().Order.Toggle())
}

// GoToPage navigates to page n and scrolls to the top.
func (c *Controller) GoToPage(ctx context.Context, n int) query.Snapshot {
	s := c.Apply(ctx, query.PagePatch(n))
	if c.scroll != nil {
		c.scroll()
	}
	return s
}

// Next moves one page forward when there is a next page.
func (c *Controller) Next(ctx context.Context) (query.Snapshot, bool) {
	p, ok := c.Pager()
	if !ok || !p.HasNext {
		return c.Snapshot(), false
	}
	return c.GoToPage(ctx, p.Page+1), true
}

// Prev moves one page back when there is a previous page.
func (c *Controller) Prev(ctx context.Context) (query.Snapshot, bool) {
	s := c.Snapshot()
	if s.Page <= 1 {
		return s, false
	}
	return c.GoToPage(ctx, s.Page-1), true
}

// Retry reissues the list request for the current state.
func (c *Controller) Retry(ctx context.Context) bool {
	return c.coord.RetryList(ctx)
}

// Snapshot returns the current browsing state.
func (c *Controller) Snapshot() query.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Address returns the encoded shareable address of the current state.
func (c *Controller) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// Link builds a shareable URL on base for the current state.
func (c *Controller) Link(base string) (string, error) {
	return address.Link(base, c.Snapshot())
}

// Pager returns the page strip for the current page, using the page count
// of the last applied list.
func (c *Controller) Pager() (Pager, bool) {
	return Pages(c.Snapshot().Page, int(c.totalPages.Load()))
}

// Coordinator exposes the fetch targets for rendering.
func (c *Controller) Coordinator() *fetch.Coordinator { return c.coord }
