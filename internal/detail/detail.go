// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package detail projects a movie detail record into display lines.
package detail

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ManuGH/reelscope/internal/moviesapi"
)

const jobDirector = "Director"

// Rating is one rating badge.
type Rating struct {
	Source string `json:"source"` // "avg", "imdb", "rt"
	Value  string `json:"value"`
	Note   string `json:"note,omitempty"`
}

// Money is one financial fact.
type Money struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Person is one cast or crew line.
type Person struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// View is the display projection of a movie. Nil slices mean the
// corresponding section is not shown.
type View struct {
	ID           int    `json:"movie_id"`
	Title        string `json:"title"`
	Overview     string `json:"overview,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
	BackdropPath string `json:"backdrop_path,omitempty"`

	Facts    []string              `json:"facts,omitempty"`
	Director *moviesapi.CrewMember `json:"director,omitempty"`
	Ratings  []Rating              `json:"ratings,omitempty"`
	Genres   []string              `json:"genres,omitempty"`
	Money    []Money               `json:"money,omitempty"`
	Tags     []string              `json:"tags,omitempty"`
	Cast     []Person              `json:"cast,omitempty"`
	Crew     []Person              `json:"crew,omitempty"`
}

// Aggregate builds the view of d. It does not modify d.
func Aggregate(d moviesapi.MovieDetail) View {
	v := View{
		ID:           d.ID,
		Title:        d.Title,
		Overview:     strings.TrimSpace(d.Overview),
		PosterPath:   d.PosterPath,
		BackdropPath: d.BackdropPath,
		Director:     Director(d.Crew),
	}

	if d.ReleaseYear != nil && *d.ReleaseYear != 0 {
		v.Facts = append(v.Facts, strconv.Itoa(*d.ReleaseYear))
	}
	if d.RuntimeMinutes != nil && *d.RuntimeMinutes != 0 {
		v.Facts = append(v.Facts, strconv.Itoa(*d.RuntimeMinutes)+" min")
	}
	if v.Director != nil {
		v.Facts = append(v.Facts, "Directed by "+v.Director.Name)
	}

	v.Ratings = ratings(d)

	for _, g := range d.Genres {
		v.Genres = append(v.Genres, g.Name)
	}

	for _, m := range []struct {
		label string
		value *moviesapi.Amount
	}{
		{"Budget", d.Budget},
		{"Revenue", d.Revenue},
		{"Box Office", d.BoxOffice},
	} {
		if s, ok := FormatCurrency(m.value); ok {
			v.Money = append(v.Money, Money{Label: m.label, Value: s})
		}
	}

	for _, t := range d.Tags {
		label := t.Tag
		if t.Count > 1 {
			label += " (" + strconv.Itoa(t.Count) + ")"
		}
		v.Tags = append(v.Tags, label)
	}

	seen := make(map[string]bool, len(d.Cast))
	for _, c := range d.Cast {
		key := strconv.Itoa(c.PersonID) + "-" + c.Character
		if seen[key] {
			continue
		}
		seen[key] = true
		v.Cast = append(v.Cast, Person{Key: key, Name: c.Name, Role: c.Character})
	}

	seen = make(map[string]bool, len(d.Crew))
	for _, c := range d.Crew {
		key := strconv.Itoa(c.PersonID) + "-" + c.Job
		if seen[key] {
			continue
		}
		seen[key] = true
		v.Crew = append(v.Crew, Person{Key: key, Name: c.Name, Role: c.Job})
	}
	return v
}

// Director returns the first crew member credited as director, or nil.
func Director(crew []moviesapi.CrewMember) *moviesapi.CrewMember {
	for i := range crew {
		if crew[i].Job == jobDirector {
			c := crew[i]
			return &c
		}
	}
	return nil
}

var printer = message.NewPrinter(language.English)

// FormatCurrency renders v as whole US dollars with thousands separators.
// Pre-formatted text is shown as sent. Absent and zero amounts are not shown.
func FormatCurrency(v *moviesapi.Amount) (string, bool) {
	if v == nil || v.IsZero() {
		return "", false
	}
	if v.Text != "" {
		return v.Text, true
	}
	return printer.Sprintf("$%d", v.Value), true
}

func ratings(d moviesapi.MovieDetail) []Rating {
	var out []Rating
	if d.AvgRating != nil && *d.AvgRating != 0 {
		out = append(out, Rating{
			Source: "avg",
			Value:  strconv.FormatFloat(*d.AvgRating, 'f', 1, 64),
			Note:   printer.Sprintf("(%d ratings)", d.RatingCount),
		})
	}
	if d.IMDbRating != nil && *d.IMDbRating != 0 {
		out = append(out, Rating{
			Source: "imdb",
			Value:  strconv.FormatFloat(*d.IMDbRating, 'f', -1, 64),
			Note:   "IMDb",
		})
	}
	if d.RottenTomatoesScore != nil && *d.RottenTomatoesScore != 0 {
		out = append(out, Rating{
			Source: "rt",
			Value:  strconv.Itoa(*d.RottenTomatoesScore) + "%",
			Note:   "Rotten Tomatoes",
		})
	}
	return out
}

// FactsLine joins the facts for a single-line header.
func (v View) FactsLine() string {
	return strings.Join(v.Facts, " · ")
}
