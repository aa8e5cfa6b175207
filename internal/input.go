package internal

import (
	"fmt"
	"os"
)

// IsPipedInput reports whether stdin is something other than a character device, meaning
// a products document may be arriving through a pipe or redirection.
func IsPipedInput() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}

	return stat.Mode()&os.ModeCharDevice == 0, nil
}
