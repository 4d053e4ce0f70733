package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, "", d.SearchText)
	assert.Nil(t, d.GenreID)
	assert.Nil(t, d.YearMin)
	assert.Nil(t, d.YearMax)
	assert.Equal(t, SortTitle, d.SortBy)
	assert.Equal(t, OrderAsc, d.Order)
	assert.Equal(t, 1, d.Page)
	assert.True(t, d.IsDefault())
}

func TestEqual_ComparesPointedValues(t *testing.T) {
	a := Default()
	a.GenreID = intp(5)
	b := Default()
	b.GenreID = intp(5)
	assert.True(t, a.Equal(b))

	b.GenreID = intp(6)
	assert.False(t, a.Equal(b))

	b.GenreID = nil
	assert.False(t, a.Equal(b))
	assert.False(t, b.Equal(a))
}

func TestUpdate_FilterChangeResetsPage(t *testing.T) {
	start := Update(Default(), PagePatch(4))
	require.Equal(t, 4, start.Page)

	patches := map[string]Patch{
		"search":   SearchPatch("matrix"),
		"genre":    GenrePatch(intp(5)),
		"yearMin":  YearMinPatch(intp(1990)),
		"yearMax":  YearMaxPatch(intp(2000)),
		"sort":     SortPatch(SortRating),
		"order":    OrderPatch(OrderDesc),
		"clearQ":   {SearchText: Clear[string]()},
		"withPage": {GenreID: Set(3), Page: Set(7)},
	}
	for name, p := range patches {
		t.Run(name, func(t *testing.T) {
			got := Update(start, p)
			assert.Equal(t, 1, got.Page)
		})
	}
}

func TestUpdate_GenreOnPageFour(t *testing.T) {
	s := Update(Default(), PagePatch(4))
	got := Update(s, GenrePatch(intp(5)))

	require.NotNil(t, got.GenreID)
	assert.Equal(t, 5, *got.GenreID)
	assert.Equal(t, 1, got.Page)
}

func TestUpdate_ClearsEmptyAndInvalidValues(t *testing.T) {
	s := Update(Default(), SearchPatch("alien"))
	s = Update(s, GenrePatch(intp(2)))
	s = Update(s, YearMinPatch(intp(1979)))

	s = Update(s, SearchPatch(""))
	assert.Equal(t, "", s.SearchText)

	s = Update(s, GenrePatch(intp(0)))
	assert.Nil(t, s.GenreID)

	s = Update(s, YearMinPatch(intp(99999)))
	assert.Nil(t, s.YearMin)

	s = Update(s, SortPatch("popularity"))
	assert.Equal(t, SortTitle, s.SortBy)

	s = Update(s, OrderPatch("sideways"))
	assert.Equal(t, OrderAsc, s.Order)
}

func TestUpdate_PageOnly(t *testing.T) {
	s := Update(Default(), SearchPatch("x"))
	s = Update(s, PagePatch(3))
	assert.Equal(t, 3, s.Page)
	assert.Equal(t, "x", s.SearchText)

	s = Update(s, PagePatch(1))
	assert.Equal(t, 1, s.Page)

	s = Update(s, Patch{Page: Set(-2)})
	assert.Equal(t, 1, s.Page)

	s = Update(s, Patch{Page: Set(MaxPage + 1)})
	assert.Equal(t, 1, s.Page)
}

func TestUpdate_DoesNotMutateInput(t *testing.T) {
	in := Default()
	in.GenreID = intp(9)
	_ = Update(in, GenrePatch(intp(3)))
	assert.Equal(t, 9, *in.GenreID)

	out := Update(in, Patch{})
	*out.GenreID = 42
	assert.Equal(t, 9, *in.GenreID, "result must not alias input pointers")
}

func TestUpdate_EmptyPatchIsIdentity(t *testing.T) {
	s := Update(Default(), SearchPatch("heat"))
	s = Update(s, PagePatch(2))
	assert.True(t, Update(s, Patch{}).Equal(s))
	assert.True(t, Patch{}.IsEmpty())
}

func TestUpdate_InvertedYearsPassThrough(t *testing.T) {
	s := Update(Default(), YearMinPatch(intp(2010)))
	s = Update(s, YearMaxPatch(intp(1990)))
	assert.Equal(t, 2010, *s.YearMin)
	assert.Equal(t, 1990, *s.YearMax)
}

func TestParseEnums(t *testing.T) {
	k, ok := ParseSortKey(" Rating ")
	assert.True(t, ok)
	assert.Equal(t, SortRating, k)

	_, ok = ParseSortKey("")
	assert.False(t, ok)

	o, ok := ParseOrder("DESC")
	assert.True(t, ok)
	assert.Equal(t, OrderDesc, o)
	assert.Equal(t, OrderAsc, o.Toggle())
	assert.Equal(t, OrderDesc, OrderAsc.Toggle())
}

// Property: for every patch that does not name the page, Update yields page 1.
func TestUpdate_PropertyNonPagePatchYieldsFirstPage(t *testing.T) {
	starts := []Snapshot{Default(), Update(Default(), PagePatch(9)), Update(Update(Default(), SearchPatch("q")), PagePatch(MaxPage))}
	patches := []Patch{
		SearchPatch("a"), SearchPatch(""), GenrePatch(nil), GenrePatch(intp(1)),
		YearMinPatch(nil), YearMaxPatch(intp(2001)), SortPatch(SortYear), OrderPatch(OrderAsc),
	}
	for _, s := range starts {
		for _, p := range patches {
			assert.Equal(t, 1, Update(s, p).Page, "start=%s", s)
		}
	}
}
