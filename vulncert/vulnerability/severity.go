package vulnerability

import "strings"

// Severity is the qualitative CVSS severity band, ordered from unknown up to critical so
// that severities can be compared directly.
type Severity int

const (
	UnknownSeverity Severity = iota
	NoneSeverity
	LowSeverity
	MediumSeverity
	HighSeverity
	CriticalSeverity
)

// AllSeverities returns all pre-defined severities, from lowest to highest.
func AllSeverities() []Severity {
	return []Severity{
		NoneSeverity,
		LowSeverity,
		MediumSeverity,
		HighSeverity,
		CriticalSeverity,
	}
}

func ParseSeverity(s string) Severity {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "none":
		return NoneSeverity
	case "low":
		return LowSeverity
	case "medium":
		return MediumSeverity
	case "high":
		return HighSeverity
	case "critical":
		return CriticalSeverity
	default:
		return UnknownSeverity
	}
}

func (s Severity) String() string {
	switch s {
	case NoneSeverity:
		return "None"
	case LowSeverity:
		return "Low"
	case MediumSeverity:
		return "Medium"
	case HighSeverity:
		return "High"
	case CriticalSeverity:
		return "Critical"
	default:
		return "Unknown"
	}
}
