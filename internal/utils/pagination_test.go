package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name     string
		params   PaginationParams
		expected PaginationParams
	}{
		{
			name:     "defaults",
			params:   PaginationParams{},
			expected: PaginationParams{Page: 1, PerPage: 24},
		},
		{
			name:     "clamps per page",
			params:   PaginationParams{Page: 3, PerPage: 500},
			expected: PaginationParams{Page: 3, PerPage: 100},
		},
		{
			name:     "uppercase order",
			params:   PaginationParams{Page: 1, PerPage: 10, Sort: "price", Order: "DESC"},
			expected: PaginationParams{Page: 1, PerPage: 10, Sort: "price", Order: "desc"},
		},
		{
			name:     "padded order",
			params:   PaginationParams{Order: " Asc "},
			expected: PaginationParams{Page: 1, PerPage: 24, Order: "asc"},
		},
		{
			name:     "unknown order",
			params:   PaginationParams{Order: "sideways"},
			expected: PaginationParams{Page: 1, PerPage: 24},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.params.Normalize(24, 100))
		})
	}
}
