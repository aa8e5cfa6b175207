package log

import "io"

// CloseAndLogError closes the given closer, logging (not returning) any close failure. Useful for
// deferred cleanup of feed archives and report files where the close error is not actionable.
func CloseAndLogError(closer io.Closer, location string) {
	if closer == nil {
		Debugf("no closer provided when attempting to close: %v", location)
		return
	}
	if err := closer.Close(); err != nil {
		Debugf("failed to close file=%q: %+v", location, err)
	}
}
