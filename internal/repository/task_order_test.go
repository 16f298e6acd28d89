package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderExpr(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		expected  string
		ok        bool
	}{
		{
			name:      "priority descending ranks HIGH first",
			sortBy:    "priority",
			sortOrder: "desc",
			expected:  "CASE priority WHEN 'LOW' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'HIGH' THEN 2 ELSE 3 END DESC, created_at ASC",
			ok:        true,
		},
		{
			name:     "priority defaults ascending",
			sortBy:   "priority",
			expected: "CASE priority WHEN 'LOW' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'HIGH' THEN 2 ELSE 3 END ASC, created_at ASC",
			ok:       true,
		},
		{
			name:     "status sorts by workflow order",
			sortBy:   "status",
			expected: "CASE status WHEN 'PENDING' THEN 0 WHEN 'IN_PROGRESS' THEN 1 WHEN 'COMPLETED' THEN 2 ELSE 3 END ASC, created_at ASC",
			ok:       true,
		},
		{
			name:      "due date sorts on the column",
			sortBy:    "dueDate",
			sortOrder: "asc",
			expected:  "due_date ASC, created_at ASC",
			ok:        true,
		},
		{
			name:   "no sort field means store-native order",
			sortBy: "",
			ok:     false,
		},
		{
			name:   "unknown sort field is ignored",
			sortBy: "title",
			ok:     false,
		},
		{
			name:      "sort order without sort field is ignored",
			sortOrder: "desc",
			ok:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, ok := OrderExpr(tt.sortBy, tt.sortOrder)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, expr)
			}
		})
	}
}
