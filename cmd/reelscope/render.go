// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ManuGH/reelscope/internal/browse"
	"github.com/ManuGH/reelscope/internal/detail"
	"github.com/ManuGH/reelscope/internal/fetch"
	"github.com/ManuGH/reelscope/internal/moviesapi"
)

const overviewWidth = 72

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderGenres(w io.Writer, r fetch.Result[[]moviesapi.Genre]) {
	switch r.Status {
	case fetch.Failure:
		fmt.Fprintf(w, "Genres: %s\n", fetch.Message(r.Err))
	case fetch.Success:
		names := make([]string, 0, len(r.Data))
		for _, g := range r.Data {
			names = append(names, fmt.Sprintf("%s (%d)", g.Name, g.ID))
		}
		fmt.Fprintf(w, "Genres: %s\n", strings.Join(names, ", "))
	}
}

func renderList(w io.Writer, r fetch.Result[*moviesapi.MoviePage]) {
	switch r.Status {
	case fetch.Loading:
		fmt.Fprintln(w, "Loading…")
		return
	case fetch.Failure:
		fmt.Fprintln(w, fetch.Message(r.Err))
		return
	case fetch.Idle:
		return
	}
	page := r.Data
	if page == nil || len(page.Movies) == 0 {
		fmt.Fprintln(w, "No movies found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tRATING\tGENRES")
	for _, m := range page.Movies {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Title, optInt(m.ReleaseYear), optRating(m.AvgRating), m.Genres)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%s · page %d of %d\n", plural(page.Total, "movie"), page.Page, page.TotalPages)
}

func renderPager(w io.Writer, ctrl *browse.Controller) {
	if p, ok := ctrl.Pager(); ok {
		fmt.Fprintln(w, p.String())
	}
}

func renderDetail(w io.Writer, v detail.View) {
	fmt.Fprintln(w, v.Title)
	if line := v.FactsLine(); line != "" {
		fmt.Fprintln(w, line)
	}
	if len(v.Genres) > 0 {
		fmt.Fprintln(w, strings.Join(v.Genres, ", "))
	}
	if v.Overview != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, wrap(v.Overview, overviewWidth))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(v.Ratings) > 0 {
		fmt.Fprintln(tw)
		for _, r := range v.Ratings {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", ratingLabel(r.Source), r.Value, r.Note)
		}
	}
	if len(v.Money) > 0 {
		fmt.Fprintln(tw)
		for _, m := range v.Money {
			fmt.Fprintf(tw, "%s\t%s\n", m.Label, m.Value)
		}
	}
	_ = tw.Flush()

	if len(v.Cast) > 0 {
		fmt.Fprintln(w, "\nCast")
		renderPeople(w, v.Cast)
	}
	if len(v.Crew) > 0 {
		fmt.Fprintln(w, "\nCrew")
		renderPeople(w, v.Crew)
	}
	if len(v.Tags) > 0 {
		fmt.Fprintf(w, "\nTags: %s\n", strings.Join(v.Tags, ", "))
	}
}

func renderPeople(w io.Writer, people []detail.Person) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range people {
		fmt.Fprintf(tw, "  %s\t%s\n", p.Name, p.Role)
	}
	_ = tw.Flush()
}

func ratingLabel(source string) string {
	switch source {
	case "avg":
		return "Rating"
	case "imdb":
		return "IMDb"
	case "rt":
		return "Tomatometer"
	}
	return source
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func optRating(p *float64) string {
	if p == nil || *p == 0 {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 1, 64)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// wrap breaks text on spaces so no line exceeds width where avoidable.
func wrap(text string, width int) string {
	var b strings.Builder
	col := 0
	for i, word := range strings.Fields(text) {
		if i > 0 {
			if col+1+len(word) > width {
				b.WriteByte('\n')
				col = 0
			} else {
				b.WriteByte(' ')
				col++
			}
		}
		b.WriteString(word)
		col += len(word)
	}
	return b.String()
}
