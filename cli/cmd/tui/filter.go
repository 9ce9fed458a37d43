package tui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/formkit/form"
)

// match is a control shown by the filter. hits holds the byte offsets of the
// runes of its key that matched the query.
type match struct {
	index int
	hits  []int
}

// key returns the text the filter searches for a control.
func key(c form.Control) string {
	if c.Label == "" || c.Label == c.ID {
		return c.ID
	}

	return c.ID + " " + c.Label
}

// filterControls returns the controls whose key fuzzily matches query, best
// match first. An empty query keeps every control in declaration order.
func filterControls(rows []form.Control, query string) []match {
	query = strings.TrimSpace(query)

	if query == "" {
		out := make([]match, len(rows))
		for i := range rows {
			out[i] = match{index: i}
		}

		return out
	}

	keys := make([]string, len(rows))
	for i, c := range rows {
		keys[i] = key(c)
	}

	found := fuzzy.Find(query, keys)
	out := make([]match, len(found))

	for i, f := range found {
		out[i] = match{index: f.Index, hits: f.MatchedIndexes}
	}

	return out
}

// highlight renders s with the runes at the byte offsets in hits styled as
// matches.
func highlight(s string, hits []int) string {
	if len(hits) == 0 {
		return s
	}

	hit := make(map[int]bool, len(hits))
	for _, h := range hits {
		hit[h] = true
	}

	var sb strings.Builder

	for i, r := range s {
		if hit[i] {
			sb.WriteString(matchStyle.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
