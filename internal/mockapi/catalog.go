// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package mockapi

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/reelscope/internal/moviesapi"
)

// Catalog is an immutable in-memory movie catalog.
type Catalog struct {
	genres []moviesapi.Genre
	movies []moviesapi.MovieDetail
	byID   map[int]int
}

// NewCatalog indexes the given genres and movies.
func NewCatalog(genres []moviesapi.Genre, movies []moviesapi.MovieDetail) *Catalog {
	c := &Catalog{
		genres: append([]moviesapi.Genre(nil), genres...),
		movies: append([]moviesapi.MovieDetail(nil), movies...),
		byID:   make(map[int]int, len(movies)),
	}
	sort.Slice(c.genres, func(i, j int) bool { return c.genres[i].Name < c.genres[j].Name })
	for i, m := range c.movies {
		c.byID[m.ID] = i
	}
	return c
}

// Genres returns all genres ordered by name.
func (c *Catalog) Genres() []moviesapi.Genre {
	return append([]moviesapi.Genre(nil), c.genres...)
}

// Len returns the number of movies.
func (c *Catalog) Len() int { return len(c.movies) }

// Movie returns the detail record for id.
func (c *Catalog) Movie(id int) (moviesapi.MovieDetail, bool) {
	i, ok := c.byID[id]
	if !ok {
		return moviesapi.MovieDetail{}, false
	}
	return c.movies[i], true
}

// ListQuery holds validated list parameters.
type ListQuery struct {
	Query   string
	GenreID int
	YearMin int
	YearMax int
	SortBy  string
	Desc    bool
	Page    int
	PerPage int
}

// List filters, sorts and paginates the catalog.
func (c *Catalog) List(q ListQuery) moviesapi.MoviePage {
	needle := fold(q.Query)
	matched := make([]moviesapi.MovieDetail, 0, len(c.movies))
	for _, m := range c.movies {
		if needle != "" &&
			!strings.Contains(fold(m.Title), needle) &&
			!strings.Contains(fold(m.Overview), needle) {
			continue
		}
		if q.GenreID > 0 && !hasGenre(m, q.GenreID) {
			continue
		}
		if q.YearMin > 0 && (m.ReleaseYear == nil || *m.ReleaseYear < q.YearMin) {
			continue
		}
		if q.YearMax > 0 && (m.ReleaseYear == nil || *m.ReleaseYear > q.YearMax) {
			continue
		}
		matched = append(matched, m)
	}

	less := lessFor(q.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	total := len(matched)
	totalPages := (total + q.PerPage - 1) / q.PerPage
	start := (q.Page - 1) * q.PerPage
	if start > total {
		start = total
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}

	rows := make([]moviesapi.MovieSummary, 0, end-start)
	for _, m := range matched[start:end] {
		rows = append(rows, summarize(m))
	}
	return moviesapi.MoviePage{
		Movies:     rows,
		Total:      total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: totalPages,
	}
}

// fold prepares text for case-insensitive matching. NFC keeps composed and
// decomposed accents comparable.
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

func hasGenre(m moviesapi.MovieDetail, id int) bool {
	for _, g := range m.Genres {
		if g.ID == id {
			return true
		}
	}
	return false
}

func lessFor(sortBy string) func(a, b moviesapi.MovieDetail) bool {
	switch sortBy {
	case "year":
		return func(a, b moviesapi.MovieDetail) bool {
			return deref(a.ReleaseYear) < deref(b.ReleaseYear)
		}
	case "rating":
		return func(a, b moviesapi.MovieDetail) bool {
			return derefF(a.AvgRating) < derefF(b.AvgRating)
		}
	default:
		return func(a, b moviesapi.MovieDetail) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	}
}

func summarize(m moviesapi.MovieDetail) moviesapi.MovieSummary {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return moviesapi.MovieSummary{
		ID:             m.ID,
		Title:          m.Title,
		ReleaseYear:    m.ReleaseYear,
		RuntimeMinutes: m.RuntimeMinutes,
		Overview:       m.Overview,
		PosterPath:     m.PosterPath,
		AvgRating:      m.AvgRating,
		RatingCount:    m.RatingCount,
		IMDbRating:     m.IMDbRating,
		Genres:         strings.Join(names, ", "),
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefF(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
