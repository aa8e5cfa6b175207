package match

import (
	"sort"
)

// Matches is a deduplicated collection of scored hits for a single product description.
// Records are keyed by CPE URI; when the same URI is added more than once only the best
// score survives.
type Matches struct {
	byURI map[string]Match
}

func NewMatches(matches ...Match) Matches {
	m := Matches{
		byURI: make(map[string]Match),
	}
	for _, match := range matches {
		m.Add(match)
	}
	return m
}

// Add records the given match, keeping the highest score seen for its URI.
func (m *Matches) Add(match Match) {
	if existing, ok := m.byURI[match.CPE.URI]; ok && existing.Score >= match.Score {
		return
	}
	m.byURI[match.CPE.URI] = match
}

func (m Matches) Count() int {
	return len(m.byURI)
}

func (m Matches) IsEmpty() bool {
	return len(m.byURI) == 0
}

// Sorted returns all matches ordered by descending score; ties break on ascending URI so
// the ordering is stable across runs.
func (m Matches) Sorted() []Match {
	matches := make([]Match, 0, len(m.byURI))
	for _, match := range m.byURI {
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CPE.URI < matches[j].CPE.URI
	})

	return matches
}

// Best returns the top limit matches in rank order (all matches when limit <= 0).
func (m Matches) Best(limit int) []Match {
	sorted := m.Sorted()
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// URIs returns the matched CPE URIs in rank order.
func (m Matches) URIs() []string {
	sorted := m.Sorted()
	uris := make([]string, 0, len(sorted))
	for _, match := range sorted {
		uris = append(uris, match.CPE.URI)
	}
	return uris
}
