package cmd

import (
	"fmt"
	"os"
	"strings"
)

// stderrPrintLnf writes a formatted, newline-terminated message to stderr, keeping stdout
// reserved for report output.
func stderrPrintLnf(message string, args ...interface{}) error {
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	_, err := fmt.Fprintf(os.Stderr, message, args...)
	return err
}
