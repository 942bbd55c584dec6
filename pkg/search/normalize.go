package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearPattern    = regexp.MustCompile(`\b20\d{2}\b`)
	recencyPattern = regexp.MustCompile(`(?i)\b(latest|recent|today|news|current)\b`)
)

// NormalizeQuery rewrites a search query that implies recency so stale years
// do not bias the provider: explicit years are replaced with the current one
// and, when no year is present, the current year is appended. Queries without
// recency markers pass through untouched. The transform is idempotent.
func NormalizeQuery(rawQuery string) string {
	return normalizeForYear(rawQuery, time.Now().Year())
}

func normalizeForYear(rawQuery string, year int) string {
	trimmed := strings.TrimSpace(rawQuery)
	if trimmed == "" {
		return trimmed
	}

	if !recencyPattern.MatchString(trimmed) {
		return trimmed
	}

	yearStr := strconv.Itoa(year)
	hadYear := yearPattern.MatchString(trimmed)

	normalized := yearPattern.ReplaceAllString(trimmed, yearStr)
	if !hadYear {
		normalized = normalized + " " + yearStr
	}
	return normalized
}
