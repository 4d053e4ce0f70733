// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package address maps browsing snapshots to and from the shareable address
// (the query component of a bookmarkable link). Both directions are total.
package address

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ManuGH/reelscope/internal/query"
)

// Address field names. These are part of every shared link and must not change.
const (
	KeyQuery   = "q"
	KeyGenre   = "genre_id"
	KeyYearMin = "year_min"
	KeyYearMax = "year_max"
	KeySortBy  = "sort_by"
	KeyOrder   = "order"
	KeyPage    = "page"
)

// Keys lists the address fields in their canonical emission order.
var Keys = []string{KeyQuery, KeyGenre, KeyYearMin, KeyYearMax, KeySortBy, KeyOrder, KeyPage}

// Encode emits one key per non-default field of s.
func Encode(s query.Snapshot) url.Values {
	v := url.Values{}
	for _, kv := range pairs(s) {
		v.Set(kv[0], kv[1])
	}
	return v
}

// EncodeString renders s as a query string with keys in canonical order,
// e.g. "q=matrix&page=3". The default snapshot encodes to "".
func EncodeString(s query.Snapshot) string {
	var b strings.Builder
	for i, kv := range pairs(s) {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

func pairs(s query.Snapshot) [][2]string {
	s = s.Normalize()
	out := make([][2]string, 0, len(Keys))
	if s.SearchText != "" {
		out = append(out, [2]string{KeyQuery, s.SearchText})
	}
	if s.GenreID != nil {
		out = append(out, [2]string{KeyGenre, strconv.Itoa(*s.GenreID)})
	}
	if s.YearMin != nil {
		out = append(out, [2]string{KeyYearMin, strconv.Itoa(*s.YearMin)})
	}
	if s.YearMax != nil {
		out = append(out, [2]string{KeyYearMax, strconv.Itoa(*s.YearMax)})
	}
	if s.SortBy != query.SortTitle {
		out = append(out, [2]string{KeySortBy, string(s.SortBy)})
	}
	if s.Order != query.OrderAsc {
		out = append(out, [2]string{KeyOrder, string(s.Order)})
	}
	if s.Page != query.DefaultPage {
		out = append(out, [2]string{KeyPage, strconv.Itoa(s.Page)})
	}
	return out
}

// Decode is the inverse of Encode. Unknown keys are ignored and malformed
// values are treated as absent.
func Decode(v url.Values) query.Snapshot {
	s := query.Default()
	if v == nil {
		return s
	}
	s.SearchText = v.Get(KeyQuery)
	if id, ok := parseInt(v.Get(KeyGenre)); ok && query.ValidGenre(id) {
		s.GenreID = &id
	}
	if y, ok := parseInt(v.Get(KeyYearMin)); ok && query.ValidYear(y) {
		s.YearMin = &y
	}
	if y, ok := parseInt(v.Get(KeyYearMax)); ok && query.ValidYear(y) {
		s.YearMax = &y
	}
	s.SortBy, _ = query.ParseSortKey(v.Get(KeySortBy))
	s.Order, _ = query.ParseOrder(v.Get(KeyOrder))
	if p, ok := parseInt(v.Get(KeyPage)); ok && query.ValidPage(p) {
		s.Page = p
	}
	return s
}

// DecodeString parses a raw query component. A leading '?' or a full URL is
// accepted; undecodable pairs are dropped rather than failing the decode.
func DecodeString(raw string) query.Snapshot {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	// ParseQuery keeps every pair it could decode even when it returns an error.
	v, _ := url.ParseQuery(raw)
	return Decode(v)
}

// Link joins a web base URL (e.g. "http://localhost:5173/") with the encoded snapshot.
func Link(base string, s query.Snapshot) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("address: invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address: base url %q must be absolute", base)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = EncodeString(s)
	u.Fragment = ""
	return u.String(), nil
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
