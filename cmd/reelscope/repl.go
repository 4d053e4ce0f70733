// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuGH/reelscope/internal/browse"
	"github.com/ManuGH/reelscope/internal/detail"
	"github.com/ManuGH/reelscope/internal/fetch"
	"github.com/ManuGH/reelscope/internal/query"
)

const replHelp = `Commands:
  search TEXT     free-text search (no text clears)
  genre N|clear   genre filter
  from N|clear    earliest release year
  to N|clear      latest release year
  sort KEY        title, year or rating
  order DIR       asc or desc
  toggle          flip the sort direction
  page N          go to page N
  next, prev      page navigation
  open ID         show a movie
  retry           reload after a failure
  link            print the shareable link
  quit`

type repl struct {
	app  *app
	ctrl *browse.Controller
	std  streams
}

func newREPL(a *app, ctrl *browse.Controller, std streams) *repl {
	return &repl{app: a, ctrl: ctrl, std: std}
}

func (r *repl) run(ctx context.Context) int {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.std.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	r.show(ctx)
	for {
		fmt.Fprint(r.std.out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.std.out)
			return 0
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.std.out)
				return 0
			}
			if !r.exec(ctx, line) {
				return 0
			}
		}
	}
}

// exec runs one command line. It reports false when the session should end.
func (r *repl) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	c := r.ctrl

	switch strings.ToLower(cmd) {
	case "":
		return true
	case "quit", "exit", "q":
		return false
	case "help", "?":
		fmt.Fprintln(r.std.out, replHelp)
		return true
	case "search":
		c.Search(ctx, arg)
	case "genre":
		v, ok := r.optionalInt(arg)
		if !ok {
			return true
		}
		c.SetGenre(ctx, v)
	case "from":
		v, ok := r.optionalInt(arg)
		if !ok {
			return true
		}
		c.SetYearMin(ctx, v)
	case "to":
		v, ok := r.optionalInt(arg)
		if !ok {
			return true
		}
		c.SetYearMax(ctx, v)
	case "sort":
		k, ok := query.ParseSortKey(arg)
		if !ok {
			fmt.Fprintf(r.std.out, "unknown sort key %q\n", arg)
			return true
		}
		c.SetSort(ctx, k)
	case "order":
		o, ok := query.ParseOrder(arg)
		if !ok {
			fmt.Fprintf(r.std.out, "unknown order %q\n", arg)
			return true
		}
		c.SetOrder(ctx, o)
	case "toggle":
		c.ToggleOrder(ctx)
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(r.std.out, "not a page number: %q\n", arg)
			return true
		}
		c.GoToPage(ctx, n)
	case "next":
		if _, ok := c.Next(ctx); !ok {
			fmt.Fprintln(r.std.out, "already on the last page")
			return true
		}
	case "prev":
		if _, ok := c.Prev(ctx); !ok {
			fmt.Fprintln(r.std.out, "already on the first page")
			return true
		}
	case "retry":
		coord := c.Coordinator()
		if coord.Genres.Result().Status == fetch.Failure {
			coord.RetryGenres(ctx)
		}
		c.Retry(ctx)
	case "open":
		r.open(ctx, arg)
		return true
	case "link":
		r.link()
		return true
	default:
		fmt.Fprintf(r.std.out, "unknown command %q (try help)\n", cmd)
		return true
	}
	r.show(ctx)
	return true
}

// optionalInt parses N or "clear"; "clear" and an empty argument yield nil.
func (r *repl) optionalInt(arg string) (*int, bool) {
	if arg == "" || strings.EqualFold(arg, "clear") {
		return nil, true
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(r.std.out, "not a number: %q\n", arg)
		return nil, false
	}
	return &n, true
}

func (r *repl) show(ctx context.Context) {
	coord := r.ctrl.Coordinator()
	if _, err := coord.List.Await(ctx); err != nil {
		return
	}
	if _, err := coord.Genres.Await(ctx); err != nil {
		return
	}
	renderBrowse(r.std, r.app.cfg, r.ctrl)
}

func (r *repl) open(ctx context.Context, id string) {
	coord := r.ctrl.Coordinator()
	coord.OnIDChanged(ctx, id)
	res, err := coord.Detail.Await(ctx)
	if err != nil {
		return
	}
	if res.Status != fetch.Success || res.Data == nil {
		fmt.Fprintln(r.std.out, fetch.Message(res.Err))
		return
	}
	renderDetail(r.std.out, detail.Aggregate(*res.Data))
}

func (r *repl) link() {
	base := r.app.cfg.Browse.WebBase
	if base == "" {
		fmt.Fprintf(r.std.out, "Address: %s\n", r.ctrl.Address())
		return
	}
	link, err := r.ctrl.Link(base)
	if err != nil {
		fmt.Fprintf(r.std.out, "cannot build link: %v\n", err)
		return
	}
	fmt.Fprintln(r.std.out, link)
}
