// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package browse

import (
	"strconv"
	"strings"
)

// pagerRadius is how many pages either side of the current one are listed.
const pagerRadius = 2

// PageItem is one pager entry. A Gap item stands for skipped pages.
type PageItem struct {
	Page    int
	Current bool
	Gap     bool
}

// Pager is the page navigation strip.
type Pager struct {
	Items   []PageItem
	Page    int
	Total   int
	HasPrev bool
	HasNext bool
}

// Pages builds the pager for page out of total. The window is the current
// page plus or minus two, with the first and last page always reachable.
// It reports false when there is at most one page and nothing is shown.
func Pages(page, total int) (Pager, bool) {
	if total <= 1 {
		return Pager{}, false
	}
	if page < 1 {
		page = 1
	}

	start := max(1, page-pagerRadius)
	end := min(total, page+pagerRadius)

	p := Pager{
		Page:    page,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < total,
	}
	if start > 1 {
		p.Items = append(p.Items, PageItem{Page: 1})
		if start > 2 {
			p.Items = append(p.Items, PageItem{Gap: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Items = append(p.Items, PageItem{Page: i, Current: i == page})
	}
	if end < total {
		if end < total-1 {
			p.Items = append(p.Items, PageItem{Gap: true})
		}
		p.Items = append(p.Items, PageItem{Page: total})
	}
	return p, true
}

// String renders the strip as "‹ 1 … 4 [5] 6 … 10 ›".
func (p Pager) String() string {
	var b strings.Builder
	if p.HasPrev {
		b.WriteString("‹ ")
	}
	for i, it := range p.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case it.Gap:
			b.WriteString("…")
		case it.Current:
			b.WriteString("[" + strconv.Itoa(it.Page) + "]")
		default:
			b.WriteString(strconv.Itoa(it.Page))
		}
	}
	if p.HasNext {
		b.WriteString(" ›")
	}
	return b.String()
}
