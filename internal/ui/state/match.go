package state

import (
	"strings"

	"github.com/atomicstack/sview/internal/menu"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match returns the items whose label fuzzily contains query, in menu order,
// together with the index of the closest one among them. An empty query
// matches everything and best is -1. Items are matched by id when no label
// matches, so a fields menu can be narrowed by column number.
func Match(items []menu.Item, query string) (matched []menu.Item, best int) {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]menu.Item(nil), items...), -1
	}
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	distance := make(map[int]int)
	for _, r := range fuzzy.RankFindNormalizedFold(query, labels) {
		distance[r.OriginalIndex] = r.Distance
	}
	if len(distance) == 0 {
		for i, item := range items {
			if strings.EqualFold(item.ID, query) {
				distance[i] = 0
			}
		}
	}

	best = -1
	bestScore := 0
	for i, item := range items {
		d, ok := distance[i]
		if !ok {
			continue
		}
		score := rank(item.Label, query, d)
		if best < 0 || score < bestScore {
			best, bestScore = len(matched), score
		}
		matched = append(matched, item)
	}
	return matched, best
}

// rank orders candidates: an exact label first, then a label prefix, then by
// fuzzy distance.
func rank(label, query string, distance int) int {
	switch {
	case strings.EqualFold(label, query):
		return -2
	case strings.HasPrefix(strings.ToLower(label), strings.ToLower(query)):
		return -1
	default:
		return distance
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
