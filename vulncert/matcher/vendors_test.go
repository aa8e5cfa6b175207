package matcher

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVendors(t *testing.T) {
	idx := testIndex(t, dictionaryFixture(t)...)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "exact vendor key",
			input:    "ibm",
			expected: []string{"ibm"},
		},
		{
			name:     "first token",
			input:    "broadcom corporation",
			expected: []string{"broadcom"},
		},
		{
			name:     "first two tokens concatenated",
			input:    "check point software technologies",
			expected: []string{"checkpoint"},
		},
		{
			name:     "separator split unions both sides",
			input:    "thales/gemalto",
			expected: []string{"gemalto", "thalesesecurity", "thalesgroup"},
		},
		{
			name:     "comma and slash mix",
			input:    "gemalto, checkpoint/ibm",
			expected: []string{"checkpoint", "gemalto", "ibm"},
		},
		{
			name:     "hp alias applies even though hp is not an indexed vendor",
			input:    "hewlett-packard company",
			expected: []string{"hp"},
		},
		{
			name:     "hp alias on the bare two-word form",
			input:    "hewlett packard",
			expected: []string{"hp"},
		},
		{
			name:     "thales alias keys",
			input:    "thales esecurity inc",
			expected: []string{"thalesesecurity", "thalesgroup"},
		},
		{
			name:     "stmicroelectronics alias",
			input:    "stmicroelectronics international",
			expected: []string{"st"},
		},
		{
			name:     "athena alias needs both tokens",
			input:    "athena smartcard solutions",
			expected: []string{"athena-scs"},
		},
		{
			name:     "athena without smartcard resolves nothing",
			input:    "athena solutions",
			expected: []string{},
		},
		{
			name:     "leading article retries on the remainder",
			input:    "the silver company",
			expected: []string{"silver"},
		},
		{
			name:     "unknown vendor resolves empty",
			input:    "acme unknown vendor",
			expected: []string{},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
		{
			name:     "blank input",
			input:    "   ",
			expected: []string{},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := idx.ResolveVendors(test.input).List()
			sort.Strings(actual)
			assert.Equal(t, test.expected, actual)
		})
	}
}

func TestResolveVendorsSplitMatchesIndependentResolution(t *testing.T) {
	idx := testIndex(t, dictionaryFixture(t)...)

	combined := idx.ResolveVendors("thales/gemalto")
	independent := idx.ResolveVendors("thales")
	independent.Merge(idx.ResolveVendors("gemalto"))

	assert.True(t, combined.IsEqual(independent))
}
