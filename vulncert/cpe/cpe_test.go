package cpe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func must(c CPE, e error) CPE {
	if e != nil {
		panic(e)
	}
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected CPE
	}{
		{
			name:  "GoCase",
			input: "cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*",
			expected: CPE{
				URI:     "cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*",
				Vendor:  "redhat",
				Product: "enterprise_linux",
				Version: "7.1",
			},
		},
		{
			name:  "AnyVersion",
			input: "cpe:2.3:a:ibm:websphere_application_server:*:*:*:*:*:*:*:*",
			expected: CPE{
				URI:     "cpe:2.3:a:ibm:websphere_application_server:*:*:*:*:*:*:*:*",
				Vendor:  "ibm",
				Product: "websphere_application_server",
				Version: "*",
			},
		},
		{
			name:  "NAVersion",
			input: "cpe:2.3:h:nxp:smartmx2:-:*:*:*:*:*:*:*",
			expected: CPE{
				URI:     "cpe:2.3:h:nxp:smartmx2:-:*:*:*:*:*:*:*",
				Vendor:  "nxp",
				Product: "smartmx2",
				Version: "-",
			},
		},
		{
			name:  "EscapedRunes",
			input: "cpe:2.3:a:bayashi:dopvstar\\*:0091:*:*:*:*:*:*:*",
			expected: CPE{
				URI:     "cpe:2.3:a:bayashi:dopvstar\\*:0091:*:*:*:*:*:*:*",
				Vendor:  "bayashi",
				Product: "dopvstar*",
				Version: "0091",
			},
		},
		{
			name:  "HyphenInProduct",
			input: "cpe:2.3:a:tracker-software:pdf-xchange_lite_printer:*:*:*:*:*:*:*:*",
			expected: CPE{
				URI:     "cpe:2.3:a:tracker-software:pdf-xchange_lite_printer:*:*:*:*:*:*:*:*",
				Vendor:  "tracker-software",
				Product: "pdf-xchange_lite_printer",
				Version: "*",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual, err := New(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, actual)
		})
	}
}

func TestNewBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "Empty",
			input: "",
		},
		{
			name:  "URIBinding",
			input: "cpe:/a:redhat:enterprise_linux:7.1",
		},
		{
			name:  "TooFewSegments",
			input: "cpe:2.3:a:redhat:enterprise_linux",
		},
		{
			name:  "FreeText",
			input: "Red Hat Enterprise Linux 7.1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.input)
			require.Error(t, err)

			var formatErr *FormatError
			require.True(t, errors.As(err, &formatErr))
			assert.Equal(t, test.input, formatErr.Input)
		})
	}
}

func TestNewSliceFailsFast(t *testing.T) {
	_, err := NewSlice(
		"cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*",
		"not-a-cpe",
	)
	require.Error(t, err)

	cpes, err := NewSlice(
		"cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*",
		"cpe:2.3:o:ibm:zos:*:*:*:*:*:*:*:*",
	)
	require.NoError(t, err)
	assert.Len(t, cpes, 2)
}

func TestStripSlashes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: `7\.1`, expected: "7.1"},
		{input: `dopvcomet\*`, expected: "dopvcomet*"},
		{input: `a\\b`, expected: `a\b`},
		{input: `trailing\`, expected: "trailing"},
		{input: "plain", expected: "plain"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			assert.Equal(t, test.expected, stripSlashes(test.input))
		})
	}
}
