package feed

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

// matchFeed is the root of the NVD CPE match feed (complex identifier -> member
// identifiers).
type matchFeed struct {
	Matches []matchEntry `json:"matches"`
}

type matchEntry struct {
	CPE23URI              string      `json:"cpe23Uri"`
	VersionStartIncluding string      `json:"versionStartIncluding"`
	VersionStartExcluding string      `json:"versionStartExcluding"`
	VersionEndIncluding   string      `json:"versionEndIncluding"`
	VersionEndExcluding   string      `json:"versionEndExcluding"`
	Names                 []matchName `json:"cpe_name"`
}

type matchName struct {
	CPE23URI string `json:"cpe23Uri"`
}

// DecodeExpansionMap reads the NVD match feed into an expansion map. Entries publishing no
// member identifiers stand for themselves.
func DecodeExpansionMap(reader io.Reader, cache *cpe.Cache) (*vulnerability.ExpansionMap, error) {
	if cache == nil {
		cache = cpe.NewCache()
	}

	var feed matchFeed
	if err := json.NewDecoder(reader).Decode(&feed); err != nil {
		return nil, fmt.Errorf("unable to decode identifier match feed: %w", err)
	}

	expansion := vulnerability.NewExpansionMap()
	for _, entry := range feed.Matches {
		if entry.CPE23URI == "" {
			continue
		}

		key, err := cache.Get(entry.CPE23URI)
		if err != nil {
			return nil, err
		}
		switch {
		case entry.VersionStartIncluding != "":
			key.Start = &cpe.RangeBound{Kind: cpe.RangeIncluding, Version: entry.VersionStartIncluding}
		case entry.VersionStartExcluding != "":
			key.Start = &cpe.RangeBound{Kind: cpe.RangeExcluding, Version: entry.VersionStartExcluding}
		}
		switch {
		case entry.VersionEndIncluding != "":
			key.End = &cpe.RangeBound{Kind: cpe.RangeIncluding, Version: entry.VersionEndIncluding}
		case entry.VersionEndExcluding != "":
			key.End = &cpe.RangeBound{Kind: cpe.RangeExcluding, Version: entry.VersionEndExcluding}
		}

		members := make([]cpe.CPE, 0, len(entry.Names))
		for _, name := range entry.Names {
			if name.CPE23URI == "" {
				continue
			}
			member, err := cache.Get(name.CPE23URI)
			if err != nil {
				return nil, err
			}
			members = append(members, member)
		}
		expansion.Add(key, members...)
	}

	return expansion, nil
}
