// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package query holds the canonical catalog-browsing state: search text,
// genre, year range, sort key, sort direction and page.
package query

import (
	"fmt"
	"strings"
)

// SortKey selects the catalog ordering.
type SortKey string

const (
	SortTitle  SortKey = "title"
	SortYear   SortKey = "year"
	SortRating SortKey = "rating"
)

// Order is the sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Plausible bounds. Values outside them have no canonical representation and
// are treated as absent.
const (
	MinYear = 1800
	MaxYear = 2100
	MaxPage = 100000

	DefaultPage = 1
)

// ParseSortKey maps a raw value onto a SortKey. Unknown values yield the default.
func ParseSortKey(raw string) (SortKey, bool) {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case SortTitle:
		return SortTitle, true
	case SortYear:
		return SortYear, true
	case SortRating:
		return SortRating, true
	default:
		return SortTitle, false
	}
}

// ParseOrder maps a raw value onto an Order. Unknown values yield the default.
func ParseOrder(raw string) (Order, bool) {
	switch Order(strings.ToLower(strings.TrimSpace(raw))) {
	case OrderAsc:
		return OrderAsc, true
	case OrderDesc:
		return OrderDesc, true
	default:
		return OrderAsc, false
	}
}

// Snapshot is one complete browsing state. Treat it as a value: Update returns
// a fresh Snapshot and never mutates its input.
type Snapshot struct {
	SearchText string
	GenreID    *int
	YearMin    *int
	YearMax    *int
	SortBy     SortKey
	Order      Order
	Page       int
}

// Default returns the snapshot with every field at its canonical default.
func Default() Snapshot {
	return Snapshot{
		SortBy: SortTitle,
		Order:  OrderAsc,
		Page:   DefaultPage,
	}
}

// Equal reports field-wise equality.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.SearchText == o.SearchText &&
		intPtrEqual(s.GenreID, o.GenreID) &&
		intPtrEqual(s.YearMin, o.YearMin) &&
		intPtrEqual(s.YearMax, o.YearMax) &&
		s.SortBy == o.SortBy &&
		s.Order == o.Order &&
		s.Page == o.Page
}

// IsDefault reports whether s equals Default().
func (s Snapshot) IsDefault() bool {
	return s.Equal(Default())
}

// Normalize maps every field onto its canonical form: out-of-range values and
// unknown enums become defaults, pointers are copied.
func (s Snapshot) Normalize() Snapshot {
	out := Snapshot{
		SearchText: s.SearchText,
		GenreID:    normGenre(s.GenreID),
		YearMin:    normYear(s.YearMin),
		YearMax:    normYear(s.YearMax),
		SortBy:     SortTitle,
		Order:      OrderAsc,
		Page:       DefaultPage,
	}
	if k, ok := ParseSortKey(string(s.SortBy)); ok {
		out.SortBy = k
	}
	if o, ok := ParseOrder(string(s.Order)); ok {
		out.Order = o
	}
	if ValidPage(s.Page) {
		out.Page = s.Page
	}
	return out
}

func (s Snapshot) String() string {
	return fmt.Sprintf("q=%q genre=%s year=%s..%s sort=%s/%s page=%d",
		s.SearchText, fmtPtr(s.GenreID), fmtPtr(s.YearMin), fmtPtr(s.YearMax), s.SortBy, s.Order, s.Page)
}

// ValidGenre reports whether id can name a genre filter.
func ValidGenre(id int) bool { return id > 0 }

// ValidYear reports whether y is inside the plausible year range.
func ValidYear(y int) bool { return y >= MinYear && y <= MaxYear }

// ValidPage reports whether p is a representable page number.
func ValidPage(p int) bool { return p >= 1 && p <= MaxPage }

func normGenre(p *int) *int {
	if p == nil || !ValidGenre(*p) {
		return nil
	}
	v := *p
	return &v
}

func normYear(p *int) *int {
	if p == nil || !ValidYear(*p) {
		return nil
	}
	v := *p
	return &v
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func fmtPtr(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}
