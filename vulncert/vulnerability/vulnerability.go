package vulnerability

import (
	"time"

	"github.com/scylladb/go-set/strset"

	"github.com/vulncert/vulncert/vulncert/cpe"
)

// Metrics carries the severity scoring published with a vulnerability record. Severity comes
// from CVSSv3 when present, otherwise CVSSv2.
type Metrics struct {
	BaseScore           float64 `json:"baseScore"`
	Severity            string  `json:"severity"`
	ImpactScore         float64 `json:"impactScore"`
	ExploitabilityScore float64 `json:"exploitabilityScore"`
}

// Configuration is an applicability rule that only holds when a platform identifier and at
// least one of its component identifiers are present together (the AND-type entries in
// vulnerability feeds).
type Configuration struct {
	Platform   cpe.CPE   `json:"platform"`
	Components []cpe.CPE `json:"components"`
}

// Matches reports whether the given identifier set satisfies this configuration: the
// platform URI must be present along with at least one component URI.
func (c Configuration) Matches(uris *strset.Set) bool {
	if !uris.Has(c.Platform.URI) {
		return false
	}
	for _, component := range c.Components {
		if uris.Has(component.URI) {
			return true
		}
	}
	return false
}

// Vulnerability is a single vulnerability record: the identifiers it affects directly, any
// compound configurations, and its published metrics.
type Vulnerability struct {
	ID             string          `json:"id"`
	CPEs           []cpe.CPE       `json:"cpes"`
	Configurations []Configuration `json:"configurations,omitempty"`
	Metrics        Metrics         `json:"metrics"`
	Published      time.Time       `json:"published"`
	CWEs           []string        `json:"cwes,omitempty"`
}
