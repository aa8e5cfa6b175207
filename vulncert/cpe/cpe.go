package cpe

import (
	"fmt"
	"strings"

	"github.com/facebookincubator/nvdtools/wfn"
)

// RangeKind describes whether a version range bound includes or excludes the boundary version itself.
type RangeKind string

const (
	RangeIncluding RangeKind = "including"
	RangeExcluding RangeKind = "excluding"
)

// RangeBound is one end of a version range attached to a CPE found in vulnerability data
// (e.g. versionStartIncluding / versionEndExcluding).
type RangeBound struct {
	Kind    RangeKind `json:"kind"`
	Version string    `json:"version"`
}

// CPE is a single record from the CPE naming scheme (the cpe:2.3 formatted string binding).
// Attribute values are kept in their plain form: WFN escaping is removed, the logical ANY value
// is the literal "*" and the logical NA value is the literal "-", mirroring what a reader sees
// in the bound URI itself.
type CPE struct {
	URI     string      `json:"uri"`
	Vendor  string      `json:"vendor"`
	Product string      `json:"product"`
	Version string      `json:"version"`
	Title   string      `json:"title,omitempty"`
	Start   *RangeBound `json:"versionStart,omitempty"`
	End     *RangeBound `json:"versionEnd,omitempty"`
}

// FormatError indicates input that does not conform to the cpe:2.3 formatted string binding.
type FormatError struct {
	Input string
	Cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unable to parse CPE=%q: %v", e.Input, e.Cause)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// New parses the given cpe:2.3 formatted string into a CPE record. This is the only format
// boundary: all other code assumes records built here are well formed.
func New(uri string) (CPE, error) {
	attrs, err := wfn.UnbindFmtString(uri)
	if err != nil {
		return CPE{}, &FormatError{Input: uri, Cause: err}
	}

	return CPE{
		URI:     uri,
		Vendor:  attributeString(attrs.Vendor),
		Product: attributeString(attrs.Product),
		Version: attributeString(attrs.Version),
	}, nil
}

// NewSlice parses multiple URIs. Any invalid URI fails the whole batch.
func NewSlice(uris ...string) ([]CPE, error) {
	cpes := make([]CPE, 0, len(uris))
	for _, uri := range uris {
		c, err := New(uri)
		if err != nil {
			return nil, err
		}
		cpes = append(cpes, c)
	}
	return cpes, nil
}

func (c CPE) String() string {
	return c.URI
}

// attributeString converts a WFN attribute value into the plain string form used throughout
// matching: logical ANY/NA become their bound literals and escape sequences are resolved.
func attributeString(value string) string {
	switch value {
	case wfn.Any:
		return "*"
	case wfn.NA:
		return "-"
	}
	return stripSlashes(value)
}

// stripSlashes resolves WFN escape sequences (e.g. `7\.1` -> `7.1`). A trailing bare backslash
// is dropped.
func stripSlashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			if i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
