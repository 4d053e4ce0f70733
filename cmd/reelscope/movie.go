// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ManuGH/reelscope/internal/config"
	"github.com/ManuGH/reelscope/internal/detail"
	"github.com/ManuGH/reelscope/internal/fetch"
)

func runMovie(ctx context.Context, cfg config.AppConfig, args []string, std streams) int {
	fs := flag.NewFlagSet("reelscope movie", flag.ContinueOnError)
	fs.SetOutput(std.err)
	asJSON := fs.Bool("json", false, "print JSON")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return 2
	}
	if len(rest) != 1 {
		fmt.Fprintln(std.err, "Usage: reelscope movie ID [-json]")
		return 2
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(std.err, "Error: %v\n", err)
		return 1
	}
	defer a.Close()
	a.attachSession(ctx, false)

	coord := fetch.NewCoordinator(a.client, fetch.Options{Tokens: fetch.TokenFunc(a.token)})
	defer coord.Close()

	coord.OnIDChanged(ctx, rest[0])
	res, err := coord.Detail.Await(ctx)
	if err != nil {
		return interrupted(std, err)
	}
	if res.Status != fetch.Success || res.Data == nil {
		fmt.Fprintln(std.err, fetch.Message(res.Err))
		return 1
	}

	view := detail.Aggregate(*res.Data)
	if *asJSON {
		if err := writeJSON(std.out, view); err != nil {
			fmt.Fprintf(std.err, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	renderDetail(std.out, view)
	return 0
}
