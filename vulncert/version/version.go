package version

import (
	"strings"

	hashiVer "github.com/hashicorp/go-version"
)

// Version is a loosely parsed version string from either a certification document or a CPE
// record. Certification documents carry everything from "7.1" through "v2.6.0.1 build 42" to
// the placeholder "-", so parsing is best-effort: when the raw string cannot be understood the
// raw form alone is retained.
type Version struct {
	Raw    string
	semVer *hashiVer.Version
}

func New(raw string) Version {
	return Version{
		Raw:    raw,
		semVer: parseLenient(raw),
	}
}

func parseLenient(raw string) *hashiVer.Version {
	v, err := hashiVer.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return v
}

// IsSemantic indicates the version was understood as an ordered, comparable version.
func (v Version) IsSemantic() bool {
	return v.semVer != nil
}

// Equal reports whether two versions denote the same release. Two parseable versions compare
// semantically (so "7.1.0" equals "7.1"); when either side is unparseable the comparison falls
// back to exact raw string equality, which lets the placeholders "*" and "-" pair with
// themselves and nothing else.
func (v Version) Equal(other Version) bool {
	if v.semVer != nil && other.semVer != nil {
		return v.semVer.Equal(other.semVer)
	}
	return v.Raw == other.Raw
}

func (v Version) String() string {
	return v.Raw
}
