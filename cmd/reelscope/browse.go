// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/ManuGH/reelscope/internal/address"
	"github.com/ManuGH/reelscope/internal/browse"
	"github.com/ManuGH/reelscope/internal/config"
	"github.com/ManuGH/reelscope/internal/fetch"
	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/moviesapi"
	"github.com/ManuGH/reelscope/internal/query"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

type browseFlags struct {
	text     string
	genre    int
	yearMin  int
	yearMax  int
	sortBy   string
	order    string
	page     int
	asJSON   bool
	interact bool
}

func runBrowse(ctx context.Context, cfg config.AppConfig, args []string, std streams) int {
	fs := flag.NewFlagSet("reelscope browse", flag.ContinueOnError)
	fs.SetOutput(std.err)
	var f browseFlags
	fs.StringVar(&f.text, "q", "", "free-text search (empty clears)")
	fs.IntVar(&f.genre, "genre", 0, "genre id (0 clears)")
	fs.IntVar(&f.yearMin, "year-min", 0, "earliest release year (0 clears)")
	fs.IntVar(&f.yearMax, "year-max", 0, "latest release year (0 clears)")
	fs.StringVar(&f.sortBy, "sort", "", "sort key: title, year or rating")
	fs.StringVar(&f.order, "order", "", "sort direction: asc or desc")
	fs.IntVar(&f.page, "page", 0, "page number")
	fs.BoolVar(&f.asJSON, "json", false, "print JSON")
	fs.BoolVar(&f.interact, "i", false, "interactive session")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return 2
	}
	if len(rest) > 1 {
		fmt.Fprintln(std.err, "Error: browse takes at most one ADDRESS")
		return 2
	}
	raw := ""
	if len(rest) == 1 {
		raw = rest[0]
	}

	snap, err := applyBrowseFlags(address.DecodeString(raw), fs, f)
	if err != nil {
		fmt.Fprintf(std.err, "Error: %v\n", err)
		return 2
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(std.err, "Error: %v\n", err)
		return 1
	}
	defer a.Close()
	a.attachSession(ctx, f.interact)

	coord := fetch.NewCoordinator(a.client, fetch.Options{
		PerPage: cfg.Browse.PerPage,
		Tokens:  fetch.TokenFunc(a.token),
	})
	defer coord.Close()

	ctrl := browse.New(coord, browse.Options{
		ScrollToTop: func() { fmt.Fprint(std.out, clearScreen) },
	})
	ctrl.Load(ctx, address.EncodeString(snap))

	if f.interact {
		return newREPL(a, ctrl, std).run(ctx)
	}
	return printBrowse(ctx, a.cfg, ctrl, f.asJSON, std)
}

// attachSession restores the stored session so list requests carry its
// token. Browsing works anonymously when the backend is unavailable.
func (a *app) attachSession(ctx context.Context, follow bool) {
	sess, err := a.session(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Str(xglog.FieldEvent, "cli.session_unavailable").Msg("browsing without a session")
		return
	}
	if err := sess.StartRevalidation(); err != nil {
		a.logger.Debug().Err(err).Msg("session verification not started")
	}
	if !follow {
		return
	}
	if err := sess.Follow(ctx); err != nil {
		a.logger.Debug().Err(err).Str(xglog.FieldBackend, a.cfg.Session.Backend).Msg("not following session changes")
	}
}

// applyBrowseFlags layers explicitly set flags over the decoded address.
// Filter flags restart pagination; -page is applied after them.
func applyBrowseFlags(s query.Snapshot, fs *flag.FlagSet, f browseFlags) (query.Snapshot, error) {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	var p query.Patch
	if set["q"] {
		p.SearchText = query.Set(f.text)
	}
	if set["genre"] {
		p.GenreID = optional(f.genre)
	}
	if set["year-min"] {
		p.YearMin = optional(f.yearMin)
	}
	if set["year-max"] {
		p.YearMax = optional(f.yearMax)
	}
	if set["sort"] {
		k, ok := query.ParseSortKey(f.sortBy)
		if !ok {
			return s, fmt.Errorf("invalid -sort %q (use title, year or rating)", f.sortBy)
		}
		p.SortBy = query.Set(k)
	}
	if set["order"] {
		o, ok := query.ParseOrder(f.order)
		if !ok {
			return s, fmt.Errorf("invalid -order %q (use asc or desc)", f.order)
		}
		p.Order = query.Set(o)
	}
	if !p.IsEmpty() {
		s = query.Update(s, p)
	}
	if set["page"] {
		s = query.Update(s, query.PagePatch(f.page))
	}
	return s, nil
}

func optional(v int) query.Value[int] {
	if v == 0 {
		return query.Clear[int]()
	}
	return query.Set(v)
}

type browseOutput struct {
	Address     string               `json:"address"`
	Link        string               `json:"link,omitempty"`
	Genres      []moviesapi.Genre    `json:"genres,omitempty"`
	GenresError string               `json:"genres_error,omitempty"`
	Page        *moviesapi.MoviePage `json:"page,omitempty"`
	Error       string               `json:"error,omitempty"`
}

func printBrowse(ctx context.Context, cfg config.AppConfig, ctrl *browse.Controller, asJSON bool, std streams) int {
	coord := ctrl.Coordinator()
	genres, err := coord.Genres.Await(ctx)
	if err != nil {
		return interrupted(std, err)
	}
	list, err := coord.List.Await(ctx)
	if err != nil {
		return interrupted(std, err)
	}

	link := ""
	if cfg.Browse.WebBase != "" {
		link, _ = ctrl.Link(cfg.Browse.WebBase)
	}

	if asJSON {
		out := browseOutput{Address: ctrl.Address(), Link: link}
		if genres.Status == fetch.Success {
			out.Genres = genres.Data
		} else {
			out.GenresError = fetch.Message(genres.Err)
		}
		if list.Status == fetch.Success {
			out.Page = list.Data
		} else {
			out.Error = fetch.Message(list.Err)
		}
		if err := writeJSON(std.out, out); err != nil {
			fmt.Fprintf(std.err, "Error: %v\n", err)
			return 1
		}
	} else {
		renderBrowse(std, cfg, ctrl)
	}

	if list.Status == fetch.Failure {
		return 1
	}
	return 0
}

func renderBrowse(std streams, cfg config.AppConfig, ctrl *browse.Controller) {
	coord := ctrl.Coordinator()
	renderGenres(std.out, coord.Genres.Result())
	fmt.Fprintln(std.out)
	renderList(std.out, coord.List.Result())
	renderPager(std.out, ctrl)

	addr := ctrl.Address()
	if addr == "" {
		addr = "(default)"
	}
	fmt.Fprintf(std.out, "Address: %s\n", addr)
	if cfg.Browse.WebBase != "" {
		if link, err := ctrl.Link(cfg.Browse.WebBase); err == nil {
			fmt.Fprintf(std.out, "Link: %s\n", link)
		}
	}
}

func interrupted(std streams, err error) int {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(std.err, "Interrupted")
		return 130
	}
	fmt.Fprintf(std.err, "Error: %v\n", err)
	return 1
}

// parseInterspersed parses flags that may follow positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
