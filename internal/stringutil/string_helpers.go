package stringutil

import "strings"

// HasAnyOfPrefixes reports whether input starts with at least one of the given prefixes.
func HasAnyOfPrefixes(input string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(input, p) {
			return true
		}
	}
	return false
}

// HasAnyOfSuffixes reports whether input ends with at least one of the given suffixes.
func HasAnyOfSuffixes(input string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(input, s) {
			return true
		}
	}
	return false
}
