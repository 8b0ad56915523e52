// Package filter implements the search and filter semantics shared by every
// list page: a free-text query, whole-value categorical filters and an
// inclusive date range.
package filter

import (
	"fmt"
	"strings"

	"github.com/jwalitptl/hospital-ops/internal/model"
)

// Record is anything a list page can search.
type Record interface {
	// SearchFields are the values the free-text query is matched against.
	SearchFields() []string
	// Attribute returns the value of a categorical filter key and whether
	// the record has that attribute at all.
	Attribute(name string) (string, bool)
	// RecordDate is the record's YYYY-MM-DD date, or "" when it has none.
	RecordDate() string
}

// Criteria is one search. Zero value matches everything.
type Criteria struct {
	Query    string
	Filters  map[string]string
	DateFrom string
	DateTo   string
}

// Validate checks the date bounds.
func (c Criteria) Validate() error {
	for _, d := range []string{c.DateFrom, c.DateTo} {
		if d == "" {
			continue
		}
		if _, err := model.ParseDate(d); err != nil {
			return err
		}
	}
	if c.DateFrom != "" && c.DateTo != "" && c.DateFrom > c.DateTo {
		return fmt.Errorf("date_from %s is after date_to %s", c.DateFrom, c.DateTo)
	}
	return nil
}

// Apply returns the records matching c, preserving input order.
func Apply[T Record](items []T, c Criteria) []T {
	query := strings.ToLower(strings.TrimSpace(c.Query))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if Match(item, query, c) {
			out = append(out, item)
		}
	}
	return out
}

// Match reports whether r satisfies c. query must already be lower-cased.
func Match(r Record, query string, c Criteria) bool {
	if query != "" && !matchesQuery(r, query) {
		return false
	}

	for key, want := range c.Filters {
		if want == "" {
			continue
		}
		got, ok := r.Attribute(key)
		if !ok || !strings.EqualFold(got, want) {
			return false
		}
	}

	if c.DateFrom != "" || c.DateTo != "" {
		date := r.RecordDate()
		if date == "" {
			return false
		}
		// YYYY-MM-DD compares correctly as a string.
		if c.DateFrom != "" && date < c.DateFrom {
			return false
		}
		if c.DateTo != "" && date > c.DateTo {
			return false
		}
	}

	return true
}

func matchesQuery(r Record, query string) bool {
	for _, field := range r.SearchFields() {
		if field != "" && strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
