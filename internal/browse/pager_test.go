// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPages(t *testing.T) {
	tests := []struct {
		page, total int
		want        string
	}{
		{1, 2, "[1] 2 ›"},
		{2, 2, "‹ 1 [2]"},
		{1, 10, "[1] 2 3 … 10 ›"},
		{3, 10, "‹ 1 2 [3] 4 5 … 10 ›"},
		{4, 10, "‹ 1 2 3 [4] 5 6 … 10 ›"},
		{5, 10, "‹ 1 … 3 4 [5] 6 7 … 10 ›"},
		{8, 10, "‹ 1 … 6 7 [8] 9 10 ›"},
		{10, 10, "‹ 1 … 8 9 [10]"},
		{4, 5, "‹ 1 2 3 [4] 5 ›"},
	}
	for _, tt := range tests {
		p, ok := Pages(tt.page, tt.total)
		assert.True(t, ok)
		assert.Equal(t, tt.want, p.String(), "page %d of %d", tt.page, tt.total)
	}
}

func TestPages_HiddenForSinglePage(t *testing.T) {
	for _, total := range []int{-1, 0, 1} {
		_, ok := Pages(1, total)
		assert.False(t, ok, total)
	}
}
