package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeForYear(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "no recency marker passes through",
			query:    "go concurrency patterns",
			expected: "go concurrency patterns",
		},
		{
			name:     "stale year replaced",
			query:    "latest go release 2021",
			expected: "latest go release 2026",
		},
		{
			name:     "year appended when absent",
			query:    "latest go release",
			expected: "latest go release 2026",
		},
		{
			name:     "recency marker case insensitive",
			query:    "Today in tech",
			expected: "Today in tech 2026",
		},
		{
			name:     "multiple years all replaced",
			query:    "news from 2020 vs 2022",
			expected: "news from 2026 vs 2026",
		},
		{
			name:     "year without recency marker untouched",
			query:    "world cup 2018 final score",
			expected: "world cup 2018 final score",
		},
		{
			name:     "whitespace trimmed",
			query:    "  current weather  ",
			expected: "current weather 2026",
		},
		{
			name:     "empty query",
			query:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeForYear(tt.query, 2026))
		})
	}
}

func TestNormalizeForYearIdempotent(t *testing.T) {
	queries := []string{
		"latest go release 2021",
		"latest go release",
		"current weather",
		"plain query",
	}

	for _, q := range queries {
		once := normalizeForYear(q, 2026)
		twice := normalizeForYear(once, 2026)
		assert.Equal(t, once, twice, "query %q", q)
	}
}
