package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParams_Normalize(t *testing.T) {
	tests := []struct {
		name          string
		input         PageParams
		expectedPage  int
		expectedLimit int
	}{
		{"valid parameters", PageParams{Page: 3, Limit: 25}, 3, 25},
		{"zero values get defaults", PageParams{}, 1, 10},
		{"negative page defaults to 1", PageParams{Page: -2, Limit: 10}, 1, 10},
		{"limit capped at maximum", PageParams{Page: 1, Limit: 5000}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Normalize()
			assert.Equal(t, tt.expectedPage, tt.input.Page)
			assert.Equal(t, tt.expectedLimit, tt.input.Limit)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	t.Run("first page", func(t *testing.T) {
		result := Paginate(items, PageParams{Page: 1, Limit: 3})
		assert.Equal(t, []int{1, 2, 3}, result.Items)
		assert.Equal(t, 7, result.Total)
		assert.Equal(t, 3, result.TotalPages)
		assert.True(t, result.HasMore)
	})

	t.Run("last partial page", func(t *testing.T) {
		result := Paginate(items, PageParams{Page: 3, Limit: 3})
		assert.Equal(t, []int{7}, result.Items)
		assert.False(t, result.HasMore)
	})

	t.Run("page past the end", func(t *testing.T) {
		result := Paginate(items, PageParams{Page: 9, Limit: 3})
		assert.Empty(t, result.Items)
		assert.Equal(t, 7, result.Total)
		assert.False(t, result.HasMore)
	})

	t.Run("empty input", func(t *testing.T) {
		result := Paginate([]int(nil), PageParams{})
		assert.Empty(t, result.Items)
		assert.Zero(t, result.Total)
		assert.Zero(t, result.TotalPages)
		assert.False(t, result.HasMore)
	})
}
