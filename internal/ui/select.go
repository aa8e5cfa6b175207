//go:build linux || darwin
// +build linux darwin

package ui

import (
	"io"
	"os"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/vulncert/vulncert/internal"
	"github.com/vulncert/vulncert/internal/log"
)

// Select orders candidate UIs from most to least capable for the current environment: the
// dynamic terminal UI only leads when stderr is a usable terminal and nothing else needs
// the screen, and the logger UI always closes the list as the fallback. The report writer
// receives the final vulnerability report regardless of which UI ends up active.
func Select(verbose, quiet bool, reportWriter io.Writer) (uis []UI) {
	isStdinPiped, err := internal.IsPipedInput()
	if err != nil {
		// cannot rule piped input out, so treat it as present and keep the screen static
		log.Warnf("unable to determine if there is piped input: %+v", err)
		isStdinPiped = true
	}
	isStdoutATty := terminal.IsTerminal(int(os.Stdout.Fd()))
	isStderrATty := terminal.IsTerminal(int(os.Stderr.Fd()))
	notATerminal := !isStderrATty && !isStdoutATty

	switch {
	case verbose || quiet || notATerminal || !isStderrATty || isStdinPiped:
		uis = append(uis, NewLoggerUI(reportWriter))
	default:
		uis = append(uis, NewEphemeralTerminalUI(reportWriter), NewLoggerUI(reportWriter))
	}

	return uis
}
