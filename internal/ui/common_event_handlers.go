package ui

import (
	"fmt"
	"io"

	"github.com/wagoodman/go-partybus"

	vulncertEventParsers "github.com/vulncert/vulncert/vulncert/event/parsers"
)

// The final-event handlers are shared by every UI: whichever one is active, the report
// itself always lands on the configured report writer.

func handleProductMatchingFinished(event partybus.Event, reportOutput io.Writer) error {
	pres, err := vulncertEventParsers.ParseProductMatchingFinished(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	if err := pres.Present(reportOutput); err != nil {
		return fmt.Errorf("unable to show vulnerability report: %w", err)
	}
	return nil
}

func handleNonRootCommandFinished(event partybus.Event, reportOutput io.Writer) error {
	result, err := vulncertEventParsers.ParseNonRootCommandFinished(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	if _, err := io.WriteString(reportOutput, *result); err != nil {
		return fmt.Errorf("unable to show command output: %w", err)
	}
	return nil
}
