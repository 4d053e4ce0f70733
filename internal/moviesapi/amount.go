// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package moviesapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a money value in whole US dollars. The server sends it either
// as a number or as a pre-formatted string such as "$67,436,818". Strings
// that do not parse as dollars are kept verbatim in Text. Values that fit
// neither shape decode to the zero Amount instead of failing the payload.
type Amount struct {
	Value int64
	Text  string
}

// NewAmount returns a numeric amount.
func NewAmount(v int64) *Amount {
	return &Amount{Value: v}
}

// IsZero reports whether the amount carries nothing to show.
func (a Amount) IsZero() bool {
	return a.Value == 0 && a.Text == ""
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount{}
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*a = parseAmountText(s)
	default:
		if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			a.Value = n
		} else if f, err := strconv.ParseFloat(string(b), 64); err == nil && math.Abs(f) < math.MaxInt64 {
			a.Value = int64(math.Round(f))
		}
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Text != "" {
		return json.Marshal(a.Text)
	}
	return []byte(strconv.FormatInt(a.Value, 10)), nil
}

func parseAmountText(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return Amount{}
	}
	digits := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil && n >= 0 {
		return Amount{Value: n}
	}
	return Amount{Text: s}
}
