package matcher

import (
	"strings"

	"github.com/scylladb/go-set/strset"
)

// vendorAlias is one hand-curated resolution rule: when the predicate holds for the
// normalized vendor string, the listed canonical keys are added to the result whether or not
// those keys appear in the indexed vendor set.
type vendorAlias struct {
	applies func(raw string, tokens []string) bool
	keys    []string
}

func tokensContain(tokens []string, wanted ...string) bool {
	for _, token := range tokens {
		for _, w := range wanted {
			if token == w {
				return true
			}
		}
	}
	return false
}

// vendorAliases captures vendor spellings that never resolve through the dictionary itself,
// e.g. rebrandings and divisions filed under a different key.
var vendorAliases = []vendorAlias{
	{
		applies: func(raw string, tokens []string) bool {
			return tokensContain(tokens, "hewlett", "hewlett-packard") || raw == "hewlett packard"
		},
		keys: []string{"hp"},
	},
	{
		applies: func(raw string, tokens []string) bool {
			return tokensContain(tokens, "thales")
		},
		keys: []string{"thalesesecurity", "thalesgroup"},
	},
	{
		applies: func(raw string, tokens []string) bool {
			return tokensContain(tokens, "stmicroelectronics")
		},
		keys: []string{"st"},
	},
	{
		applies: func(raw string, tokens []string) bool {
			return tokensContain(tokens, "athena") && tokensContain(tokens, "smartcard")
		},
		keys: []string{"athena-scs"},
	},
}

// ResolveVendors maps a normalized free-text vendor string (lowercased, trademark glyphs
// removed) onto the set of canonical vendor keys worth searching. An unknown vendor yields an
// empty set, not an error.
func (i *Index) ResolveVendors(raw string) *strset.Set {
	result := strset.New()
	if strings.TrimSpace(raw) == "" {
		return result
	}

	// a multi-vendor string is split apart and never treated as a single vendor name
	if strings.ContainsAny(raw, ",/") {
		for _, part := range splitVendorParts(raw) {
			result.Merge(i.ResolveVendors(part))
		}
		return result
	}

	if i.vendors.Has(raw) {
		result.Add(raw)
	}

	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return result
	}
	if i.vendors.Has(tokens[0]) {
		result.Add(tokens[0])
	}
	if len(tokens) > 1 && i.vendors.Has(tokens[0]+tokens[1]) {
		result.Add(tokens[0] + tokens[1])
	}

	for _, alias := range vendorAliases {
		if alias.applies(raw, tokens) {
			result.Add(alias.keys...)
		}
	}

	// strings like "the barracuda company" resolve through their remainder
	if result.IsEmpty() && tokens[0] == "the" {
		result.Merge(i.ResolveVendors(strings.Join(tokens[1:], " ")))
	}

	return result
}

func splitVendorParts(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}
