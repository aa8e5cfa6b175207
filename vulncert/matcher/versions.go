package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/scylladb/go-set/strset"

	"github.com/vulncert/vulncert/vulncert/version"
)

// PairingStrategy selects how certificate version strings pair up with the versions recorded
// in the dictionary.
type PairingStrategy string

const (
	// SemanticPairing parses both sides leniently and pairs on release equality ("7.1"
	// pairs with "7.1.0"). This is the preferred strategy.
	SemanticPairing PairingStrategy = "semantic"

	// PrefixPairing is the legacy string-prefix heuristic, retained so results remain
	// comparable with older analyses.
	PrefixPairing PairingStrategy = "prefix"
)

// ParsePairingStrategy returns the strategy named by the given string, defaulting to
// SemanticPairing for an empty input.
func ParsePairingStrategy(s string) (PairingStrategy, error) {
	switch PairingStrategy(strings.ToLower(s)) {
	case SemanticPairing, "":
		return SemanticPairing, nil
	case PrefixPairing:
		return PrefixPairing, nil
	}
	return "", fmt.Errorf("unknown pairing strategy: %q", s)
}

// vendorVersion is a single (vendor, version) key into the record index.
type vendorVersion struct {
	vendor  string
	version string
}

// numericPattern requires a digit group, dot, digit group somewhere in the dictionary version
// before the "certificate version begins with it" direction may pair; a bare "1" would prefix
// far too much.
var numericPattern = regexp.MustCompile(`(\d{1,5})(\.\d{1,5})`)

// pairsByPrefix reports whether a dictionary version pairs with any certificate version under
// the legacy heuristic: either the dictionary version is a numeric-looking prefix of a
// certificate version, or a certificate version is a prefix of the dictionary version.
func pairsByPrefix(dictVersion string, certVersions []string) bool {
	for _, v := range certVersions {
		if strings.HasPrefix(v, dictVersion) && numericPattern.MatchString(dictVersion) {
			return true
		}
		if strings.HasPrefix(dictVersion, v) {
			return true
		}
	}
	return false
}

// pairsBySemantics reports whether any certificate version denotes the same release as the
// dictionary version. Unparseable strings fall back to exact equality, so the "-" placeholder
// pairs with itself and nothing else.
func pairsBySemantics(dictVersion string, certVersions []version.Version) bool {
	target := version.New(dictVersion)
	for _, v := range certVersions {
		if target.Equal(v) {
			return true
		}
	}
	return false
}

// candidateVendorVersions returns every (vendor, version) pair worth retrieving for the given
// resolved vendors and certificate versions, in deterministic vendor-then-version order.
// Vendors absent from the index (e.g. added by an alias rule) contribute nothing.
func (i *Index) candidateVendorVersions(vendors *strset.Set, certVersions []string, strategy PairingStrategy) []vendorVersion {
	if vendors.IsEmpty() {
		return nil
	}

	parsed := make([]version.Version, len(certVersions))
	for idx, v := range certVersions {
		parsed[idx] = version.New(v)
	}

	sortedVendors := vendors.List()
	sort.Strings(sortedVendors)

	var pairs []vendorVersion
	for _, vendor := range sortedVendors {
		versionsForVendor, ok := i.vendorToVersions[vendor]
		if !ok {
			continue
		}

		sortedVersions := versionsForVendor.List()
		sort.Strings(sortedVersions)

		for _, dictVersion := range sortedVersions {
			var paired bool
			switch strategy {
			case PrefixPairing:
				paired = pairsByPrefix(dictVersion, certVersions)
			default:
				paired = pairsBySemantics(dictVersion, parsed)
			}
			if paired {
				pairs = append(pairs, vendorVersion{vendor: vendor, version: dictVersion})
			}
		}
	}
	return pairs
}
