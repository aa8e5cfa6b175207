package matcher

import (
	"regexp"
	"strings"
)

// nonWordPattern is the unicode-aware complement of the word class: anything that is not a
// letter, digit, or underscore.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_]`)

var trademarkReplacer = strings.NewReplacer("®", "", "™", "")

// discardTrademarks lowercases the input and removes trademark glyphs. This is the light
// normal form applied to vendor strings before resolution.
func discardTrademarks(s string) string {
	return trademarkReplacer.Replace(strings.ToLower(s))
}

// foldNonWordToSpace replaces each non-word rune with a single space. Runs are deliberately
// not collapsed: token scoring splits on whitespace anyway, and substring stripping depends
// on the folded text lining up with folded patterns.
func foldNonWordToSpace(s string) string {
	return nonWordPattern.ReplaceAllString(s, " ")
}

// fullySanitize is the normal form for product names and record titles: lowercase, trademark
// glyphs removed, remaining non-word runes folded to spaces. Applying it twice yields the
// same string as applying it once.
func fullySanitize(s string) string {
	return foldNonWordToSpace(discardTrademarks(s))
}

// stripVendorsAndVersions removes the first occurrence of each vendor and then each version
// from the product string, folding every pattern to its space-normal form and trimming the
// result after each removal.
func stripVendorsAndVersions(s string, vendors, versions []string) string {
	s = strings.ToLower(s)
	patterns := make([]string, 0, len(vendors)+len(versions))
	patterns = append(patterns, vendors...)
	patterns = append(patterns, versions...)
	for _, raw := range patterns {
		pattern := foldNonWordToSpace(strings.ToLower(raw))
		s = strings.TrimSpace(strings.Replace(s, pattern, "", 1))
	}
	return s
}
