package address

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/reelscope/internal/query"
)

func intp(v int) *int { return &v }

func TestEncodeString_MatrixPageThree(t *testing.T) {
	s := query.Update(query.Default(), query.SearchPatch("matrix"))
	s = query.Update(s, query.PagePatch(3))

	assert.Equal(t, "q=matrix&page=3", EncodeString(s))
}

func TestDecodeString_MatrixPageThree(t *testing.T) {
	got := DecodeString("q=matrix&page=3")

	want := query.Snapshot{
		SearchText: "matrix",
		Page:       3,
		SortBy:     query.SortTitle,
		Order:      query.OrderAsc,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_DefaultIsEmpty(t *testing.T) {
	assert.Empty(t, Encode(query.Default()))
	assert.Equal(t, "", EncodeString(query.Default()))
}

func TestEncodeString_CanonicalOrder(t *testing.T) {
	s := query.Default()
	s.SearchText = "blade runner"
	s.GenreID = intp(7)
	s.YearMin = intp(1980)
	s.YearMax = intp(1989)
	s.SortBy = query.SortRating
	s.Order = query.OrderDesc
	s.Page = 2

	assert.Equal(t,
		"q=blade+runner&genre_id=7&year_min=1980&year_max=1989&sort_by=rating&order=desc&page=2",
		EncodeString(s))
}

func TestDecode_MalformedValuesAreAbsent(t *testing.T) {
	cases := map[string]string{
		"non-numeric genre": "genre_id=abc",
		"zero genre":        "genre_id=0",
		"negative page":     "page=-1",
		"huge page":         "page=99999999999999999999",
		"year out of range": "year_min=12&year_max=40000",
		"unknown sort":      "sort_by=popularity",
		"unknown order":     "order=up",
		"bad escape":        "q=%zz",
		"unknown keys":      "foo=bar&per_page=50",
		"empty":             "",
		"only separators":   "&&&",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, DecodeString(raw).IsDefault(), "DecodeString(%q)", raw)
		})
	}
}

func TestDecodeString_AcceptsFullURL(t *testing.T) {
	s := DecodeString("http://localhost:5173/?genre_id=5&order=desc#top")
	require.NotNil(t, s.GenreID)
	assert.Equal(t, 5, *s.GenreID)
	assert.Equal(t, query.OrderDesc, s.Order)
}

func TestDecode_FirstValueWins(t *testing.T) {
	s := Decode(url.Values{KeyPage: {"4", "9"}})
	assert.Equal(t, 4, s.Page)
}

func TestDecode_KeepsWhitespaceSearch(t *testing.T) {
	s := query.Update(query.Default(), query.SearchPatch("  "))
	if diff := cmp.Diff(s, DecodeString(EncodeString(s))); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// Property: decode(encode(s)) == s for snapshots reachable through Update.
func TestRoundTrip_ReachableSnapshots(t *testing.T) {
	patches := []query.Patch{
		query.SearchPatch("matrix"),
		query.SearchPatch("amélie & co=?"),
		query.SearchPatch(""),
		query.GenrePatch(intp(5)),
		query.GenrePatch(nil),
		query.GenrePatch(intp(-3)),
		query.YearMinPatch(intp(1999)),
		query.YearMaxPatch(intp(1990)),
		query.YearMaxPatch(intp(3000)),
		query.SortPatch(query.SortYear),
		query.SortPatch(query.SortRating),
		query.OrderPatch(query.OrderDesc),
		query.PagePatch(2),
		query.PagePatch(query.MaxPage),
		query.PagePatch(0),
		{GenreID: query.Set(11), Page: query.Set(6)},
	}

	// Walk every ordered pair of patches from the default snapshot and a few
	// deeper chains; each intermediate snapshot must survive the round trip.
	check := func(s query.Snapshot) {
		t.Helper()
		got := DecodeString(EncodeString(s))
		if diff := cmp.Diff(s, got); diff != "" {
			t.Fatalf("round trip of %s (-want +got):\n%s", s, diff)
		}
		got = Decode(Encode(s))
		if diff := cmp.Diff(s, got); diff != "" {
			t.Fatalf("values round trip of %s (-want +got):\n%s", s, diff)
		}
	}

	for _, a := range patches {
		s1 := query.Update(query.Default(), a)
		check(s1)
		for _, b := range patches {
			s2 := query.Update(s1, b)
			check(s2)
			check(query.Update(s2, query.PagePatch(17)))
		}
	}
}

func TestLink(t *testing.T) {
	s := query.Update(query.Default(), query.SearchPatch("heat"))
	link, err := Link("http://localhost:5173", s)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/?q=heat", link)

	_, err = Link("not a url", s)
	assert.Error(t, err)
}
