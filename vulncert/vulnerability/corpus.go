package vulnerability

import (
	"sort"
	"strings"

	"github.com/scylladb/go-set/strset"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
)

// Corpus is the full set of vulnerability records under analysis, keyed by uppercased
// vulnerability id.
type Corpus struct {
	vulnerabilities map[string]*Vulnerability
}

func NewCorpus(vulns ...Vulnerability) *Corpus {
	c := &Corpus{
		vulnerabilities: make(map[string]*Vulnerability, len(vulns)),
	}
	c.Add(vulns...)
	return c
}

// Add inserts records into the corpus. A record with an already-present id replaces the
// earlier one.
func (c *Corpus) Add(vulns ...Vulnerability) {
	for _, vuln := range vulns {
		v := vuln
		c.vulnerabilities[strings.ToUpper(v.ID)] = &v
	}
}

// Get returns the record for the given id (case-insensitive).
func (c *Corpus) Get(id string) (Vulnerability, bool) {
	vuln, ok := c.vulnerabilities[strings.ToUpper(id)]
	if !ok {
		return Vulnerability{}, false
	}
	return *vuln, true
}

func (c *Corpus) Len() int {
	return len(c.vulnerabilities)
}

// All returns a snapshot of every record, sorted by id.
func (c *Corpus) All() []Vulnerability {
	out := make([]Vulnerability, 0, len(c.vulnerabilities))
	for _, vuln := range c.vulnerabilities {
		out = append(out, *vuln)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].ID < out[b].ID
	})
	return out
}

// Prune removes every identifier reference outside the relevant URI set: direct identifier
// lists are filtered, configurations lose components outside the set and are dropped
// entirely when their platform is outside it (or no component survives), and records left
// referencing nothing are deleted from the corpus.
//
// This is destructive and one-way. Callers that need the full corpus again later must keep
// their own copy, and any Lookup built earlier must be rebuilt.
func (c *Corpus) Prune(relevant *strset.Set) {
	var droppedRefs, droppedRecords int

	for id, vuln := range c.vulnerabilities {
		direct := make([]cpe.CPE, 0, len(vuln.CPEs))
		for _, record := range vuln.CPEs {
			if relevant.Has(record.URI) {
				direct = append(direct, record)
			}
		}
		droppedRefs += len(vuln.CPEs) - len(direct)

		var configs []Configuration
		for _, config := range vuln.Configurations {
			if !relevant.Has(config.Platform.URI) {
				continue
			}
			components := make([]cpe.CPE, 0, len(config.Components))
			for _, component := range config.Components {
				if relevant.Has(component.URI) {
					components = append(components, component)
				}
			}
			if len(components) == 0 {
				continue
			}
			configs = append(configs, Configuration{
				Platform:   config.Platform,
				Components: components,
			})
		}

		vuln.CPEs = direct
		vuln.Configurations = configs

		if len(direct) == 0 && len(configs) == 0 {
			delete(c.vulnerabilities, id)
			droppedRecords++
		}
	}

	log.Infof("pruned corpus down to %d vulnerabilities (%d identifier references and %d records removed)", len(c.vulnerabilities), droppedRefs, droppedRecords)
}
