package vulncerterr

var (
	// ErrAboveSeverityThreshold signals that matching found at least one vulnerability at or
	// above the severity the user set with --fail-on.
	ErrAboveSeverityThreshold = NewExpectedErr("discovered vulnerabilities at or above the severity threshold")
)
