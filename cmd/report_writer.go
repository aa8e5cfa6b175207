package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// reportWriter resolves the --file option into the writer the final report goes to, plus
// a closer to call once the report has been written. Without --file the report lands on
// stdout and the closer does nothing.
func reportWriter() (io.Writer, func() error, error) {
	nop := func() error { return nil }

	path := strings.TrimSpace(appConfig.File)
	if path == "" {
		return os.Stdout, nop, nil
	}

	reportFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nop, fmt.Errorf("unable to create report file: %w", err)
	}

	return reportFile, func() error {
		if !appConfig.Quiet {
			fmt.Printf("Report written to %q\n", path)
		}
		return reportFile.Close()
	}, nil
}
