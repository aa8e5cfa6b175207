package vulnerability

import (
	"github.com/scylladb/go-set/strset"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
)

// ExpansionMap maps a "complex" identifier (a URI possibly decorated with version range
// bounds) onto the concrete simple identifiers it stands for, as published by the upstream
// match feed.
type ExpansionMap struct {
	entries map[string][]cpe.CPE
}

func NewExpansionMap() *ExpansionMap {
	return &ExpansionMap{
		entries: make(map[string][]cpe.CPE),
	}
}

// Add records the expansions for a key. A key with no published expansions stands for
// itself.
func (m *ExpansionMap) Add(key cpe.CPE, expansions ...cpe.CPE) {
	if len(expansions) == 0 {
		expansions = []cpe.CPE{key}
	}
	m.entries[expansionKey(key)] = expansions
}

// Expand returns the simple identifiers behind the given record, or false when the record
// is not a known key.
func (m *ExpansionMap) Expand(record cpe.CPE) ([]cpe.CPE, bool) {
	expansions, ok := m.entries[expansionKey(record)]
	return expansions, ok
}

func (m *ExpansionMap) Len() int {
	return len(m.entries)
}

// Entries exports the expansion table keyed by derived expansion key. The result is a copy;
// mutating it does not affect the map.
func (m *ExpansionMap) Entries() map[string][]cpe.CPE {
	out := make(map[string][]cpe.CPE, len(m.entries))
	for key, expansions := range m.entries {
		out[key] = append([]cpe.CPE(nil), expansions...)
	}
	return out
}

// NewExpansionMapFromEntries restores a map previously exported with Entries.
func NewExpansionMapFromEntries(entries map[string][]cpe.CPE) *ExpansionMap {
	m := NewExpansionMap()
	for key, expansions := range entries {
		m.entries[key] = append([]cpe.CPE(nil), expansions...)
	}
	return m
}

// expansionKey includes the version range bounds so that a range-decorated feed entry only
// expands records carrying the same bounds.
func expansionKey(record cpe.CPE) string {
	key := record.URI
	if record.Start != nil {
		key += "|start:" + string(record.Start.Kind) + ":" + record.Start.Version
	}
	if record.End != nil {
		key += "|end:" + string(record.End.Kind) + ":" + record.End.Version
	}
	return key
}

// Lookup is the read side of vulnerability resolution: identifier URI -> vulnerability ids,
// plus the subset of records carrying compound configurations. A Lookup reflects the corpus
// at build time; rebuild it after any corpus mutation.
type Lookup struct {
	uriToIDs map[string]*strset.Set
	compound []Vulnerability
}

// NewLookup builds the lookup over the given corpus. With a non-nil expansion map every
// direct identifier routes through feed-provided expansion first; identifiers absent from
// the map are dropped. The upstream feed is known to omit a handful of malformed entries,
// so absence is logged at most and never raised.
func NewLookup(corpus *Corpus, expansion *ExpansionMap) *Lookup {
	l := &Lookup{
		uriToIDs: make(map[string]*strset.Set),
	}

	var droppedKeys int
	for _, vuln := range corpus.All() {
		identifiers := vuln.CPEs
		if expansion != nil {
			identifiers = nil
			for _, record := range vuln.CPEs {
				expanded, ok := expansion.Expand(record)
				if !ok {
					droppedKeys++
					continue
				}
				identifiers = append(identifiers, expanded...)
			}
		}

		for _, record := range identifiers {
			ids, ok := l.uriToIDs[record.URI]
			if !ok {
				ids = strset.New()
				l.uriToIDs[record.URI] = ids
			}
			ids.Add(vuln.ID)
		}

		if len(vuln.Configurations) > 0 {
			l.compound = append(l.compound, vuln)
		}
	}

	if droppedKeys > 0 {
		log.Infof("dropped %d identifier references absent from the expansion map", droppedKeys)
	}

	return l
}

// IDsForURI returns the vulnerability ids directly associated with one identifier URI. A
// URI the lookup has never seen yields an empty set.
func (l *Lookup) IDsForURI(uri string) *strset.Set {
	ids, ok := l.uriToIDs[uri]
	if !ok {
		return strset.New()
	}
	return ids.Copy()
}

// Resolve returns the ids of every vulnerability affecting the given identifier set: the
// union of direct lookups per URI and of compound configurations satisfied by the set.
func (l *Lookup) Resolve(uris *strset.Set) *strset.Set {
	result := strset.New()

	for _, uri := range uris.List() {
		if ids, ok := l.uriToIDs[uri]; ok {
			result.Merge(ids)
		}
	}

	for _, vuln := range l.compound {
		for _, config := range vuln.Configurations {
			if config.Matches(uris) {
				result.Add(vuln.ID)
				break
			}
		}
	}

	return result
}
