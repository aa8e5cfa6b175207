package match

import (
	"fmt"

	"github.com/vulncert/vulncert/vulncert/cpe"
)

// Match is a single ranked hit: one CPE dictionary record that scored at or above the
// configured threshold for a certified product description.
type Match struct {
	CPE        cpe.CPE `json:"cpe"`
	Score      float64 `json:"score"`
	SearchedBy string  `json:"searchedBy"`
}

func (m Match) String() string {
	return fmt.Sprintf("Match(uri=%q score=%.1f searchedBy=%q)", m.CPE.URI, m.Score, m.SearchedBy)
}
