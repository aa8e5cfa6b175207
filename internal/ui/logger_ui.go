package ui

import (
	"io"

	"github.com/wagoodman/go-partybus"

	"github.com/vulncert/vulncert/internal/log"
	vulncertEvent "github.com/vulncert/vulncert/vulncert/event"
)

// loggerUI is the fallback for environments without a usable terminal: progress events
// already reach the operator through the log facade, so only the final output needs
// rendering here.
type loggerUI struct {
	unsubscribe  func() error
	reportOutput io.Writer
}

// NewLoggerUI returns a UI that leaves progress to the application logger and writes the
// final report to the given writer.
func NewLoggerUI(reportWriter io.Writer) UI {
	return &loggerUI{
		reportOutput: reportWriter,
	}
}

func (l *loggerUI) Setup(unsubscribe func() error) error {
	l.unsubscribe = unsubscribe
	return nil
}

func (l loggerUI) Handle(event partybus.Event) error {
	var render func(partybus.Event, io.Writer) error
	switch event.Type {
	case vulncertEvent.ProductMatchingFinished:
		render = handleProductMatchingFinished
	case vulncertEvent.NonRootCommandFinished:
		render = handleNonRootCommandFinished
	default:
		return nil
	}

	if err := render(event, l.reportOutput); err != nil {
		log.Warnf("unable to show %s event: %+v", event.Type, err)
	}

	// the final event has been seen, stop the flow of events
	return l.unsubscribe()
}

func (l loggerUI) Teardown(_ bool) error {
	return nil
}
