//go:build windows
// +build windows

package ui

import (
	"io"
)

// Select orders candidate UIs for the current environment. The dynamic terminal UI leans
// on ANSI cursor control that is not dependable on Windows consoles, so the logger UI is
// the only candidate here.
func Select(verbose, quiet bool, reportWriter io.Writer) (uis []UI) {
	return append(uis, NewLoggerUI(reportWriter))
}
