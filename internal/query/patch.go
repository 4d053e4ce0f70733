// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package query

// Value is one patch entry. The zero Value leaves its field untouched.
type Value[T any] struct {
	touched bool
	v       *T
}

// Set names a field with a new value. Empty or out-of-range values still
// clear the field to its default.
func Set[T any](v T) Value[T] {
	return Value[T]{touched: true, v: &v}
}

// Clear names a field and resets it to its default.
func Clear[T any]() Value[T] {
	return Value[T]{touched: true}
}

// SetPtr is Set for an optional input: nil clears.
func SetPtr[T any](p *T) Value[T] {
	if p == nil {
		return Clear[T]()
	}
	return Set(*p)
}

// Touched reports whether the patch names this field.
func (v Value[T]) Touched() bool { return v.touched }

// Get returns the carried value, if any.
func (v Value[T]) Get() (T, bool) {
	if v.v == nil {
		var zero T
		return zero, false
	}
	return *v.v, true
}

// Patch is a partial snapshot. Untouched fields keep their current value.
type Patch struct {
	SearchText Value[string]
	GenreID    Value[int]
	YearMin    Value[int]
	YearMax    Value[int]
	SortBy     Value[SortKey]
	Order      Value[Order]
	Page       Value[int]
}

// TouchesFilters reports whether the patch names any field other than Page.
func (p Patch) TouchesFilters() bool {
	return p.SearchText.touched || p.GenreID.touched || p.YearMin.touched ||
		p.YearMax.touched || p.SortBy.touched || p.Order.touched
}

// IsEmpty reports whether the patch names no field at all.
func (p Patch) IsEmpty() bool {
	return !p.TouchesFilters() && !p.Page.touched
}

// Update applies patch to current and returns the resulting snapshot.
// Touching any filter field restarts pagination at the first page, even when
// the same patch also names a page.
func Update(current Snapshot, patch Patch) Snapshot {
	next := current.Normalize()

	if patch.SearchText.touched {
		next.SearchText = ""
		if v, ok := patch.SearchText.Get(); ok {
			next.SearchText = v
		}
	}
	if patch.GenreID.touched {
		next.GenreID = nil
		if v, ok := patch.GenreID.Get(); ok && ValidGenre(v) {
			next.GenreID = &v
		}
	}
	if patch.YearMin.touched {
		next.YearMin = nil
		if v, ok := patch.YearMin.Get(); ok && ValidYear(v) {
			next.YearMin = &v
		}
	}
	if patch.YearMax.touched {
		next.YearMax = nil
		if v, ok := patch.YearMax.Get(); ok && ValidYear(v) {
			next.YearMax = &v
		}
	}
	if patch.SortBy.touched {
		next.SortBy = SortTitle
		if v, ok := patch.SortBy.Get(); ok {
			next.SortBy, _ = ParseSortKey(string(v))
		}
	}
	if patch.Order.touched {
		next.Order = OrderAsc
		if v, ok := patch.Order.Get(); ok {
			next.Order, _ = ParseOrder(string(v))
		}
	}

	if patch.TouchesFilters() {
		next.Page = DefaultPage
		return next
	}
	if patch.Page.touched {
		next.Page = DefaultPage
		if v, ok := patch.Page.Get(); ok && ValidPage(v) {
			next.Page = v
		}
	}
	return next
}

// SearchPatch sets the free-text search; "" clears it.
func SearchPatch(text string) Patch { return Patch{SearchText: Set(text)} }

// GenrePatch sets the genre filter; nil clears it.
func GenrePatch(id *int) Patch { return Patch{GenreID: SetPtr(id)} }

// YearMinPatch sets the lower year bound; nil clears it.
func YearMinPatch(y *int) Patch { return Patch{YearMin: SetPtr(y)} }

// YearMaxPatch sets the upper year bound; nil clears it.
func YearMaxPatch(y *int) Patch { return Patch{YearMax: SetPtr(y)} }

// SortPatch sets the sort key.
func SortPatch(k SortKey) Patch { return Patch{SortBy: Set(k)} }

// OrderPatch sets the sort direction.
func OrderPatch(o Order) Patch { return Patch{Order: Set(o)} }

// PagePatch moves to page n. Page 1 is stored as the default.
func PagePatch(n int) Patch {
	if n <= DefaultPage {
		return Patch{Page: Clear[int]()}
	}
	return Patch{Page: Set(n)}
}

// Toggle returns the opposite direction.
func (o Order) Toggle() Order {
	if o == OrderDesc {
		return OrderAsc
	}
	return OrderDesc
}
