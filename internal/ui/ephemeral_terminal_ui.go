//go:build linux || darwin
// +build linux darwin

package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/jotframe/pkg/frame"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/internal/logger"
	"github.com/vulncert/vulncert/ui"
	vulncertEvent "github.com/vulncert/vulncert/vulncert/event"
)

// ephemeralTerminalUI renders live, multi-line progress on stderr through jotframe while
// reserving stdout for the final report. The frame owns the terminal state for as long as
// the screen is open, so anything else that writes to it has to be silenced first: Setup
// redirects the logger into a buffer and closeScreen flushes that buffer once the frame
// has released the terminal.
//
// Each widget polls the progressable it was handed on the bus rather than waiting for
// further events, which keeps redraw frequency a UI concern and the bus uncongested. A
// WaitGroup tracks the widget goroutines so the screen is only closed after every one of
// them has drawn its final state.
type ephemeralTerminalUI struct {
	unsubscribe  func() error
	handler      *ui.Handler
	waitGroup    *sync.WaitGroup
	frame        *frame.Frame
	logBuffer    *bytes.Buffer
	uiOutput     *os.File
	reportOutput io.Writer
}

// NewEphemeralTerminalUI renders events as dynamic terminal widgets and writes the final
// report to the given writer.
func NewEphemeralTerminalUI(reportWriter io.Writer) UI {
	return &ephemeralTerminalUI{
		handler:      ui.NewHandler(),
		waitGroup:    &sync.WaitGroup{},
		uiOutput:     os.Stderr,
		reportOutput: reportWriter,
	}
}

func (h *ephemeralTerminalUI) Setup(unsubscribe func() error) error {
	h.unsubscribe = unsubscribe
	hideCursor(h.uiOutput)

	// from here on the screen belongs to the frame; log lines wait in a buffer until it
	// is handed back
	h.logBuffer = &bytes.Buffer{}
	if logWrapper, ok := log.Log.(*logger.LogrusLogger); ok {
		logWrapper.Logger.SetOutput(h.logBuffer)
	}

	return h.openScreen()
}

func (h *ephemeralTerminalUI) Handle(event partybus.Event) error {
	ctx := context.Background()
	switch {
	case h.handler.RespondsTo(event):
		if err := h.handler.Handle(ctx, h.frame, event, h.waitGroup); err != nil {
			log.Errorf("unable to render %s event: %+v", event.Type, err)
		}

	case event.Type == vulncertEvent.AppUpdateAvailable:
		if err := handleAppUpdateAvailable(ctx, h.frame, event, h.waitGroup); err != nil {
			log.Errorf("unable to render %s event: %+v", event.Type, err)
		}

	case event.Type == vulncertEvent.ProductMatchingFinished:
		return h.finish(event, handleProductMatchingFinished)

	case event.Type == vulncertEvent.NonRootCommandFinished:
		return h.finish(event, handleNonRootCommandFinished)
	}
	return nil
}

// finish hands the terminal back before the final output goes to stdout, renders that
// output, and stops the flow of events.
func (h *ephemeralTerminalUI) finish(event partybus.Event, render func(partybus.Event, io.Writer) error) error {
	h.closeScreen(false)

	if err := render(event, h.reportOutput); err != nil {
		log.Errorf("unable to render %s event: %+v", event.Type, err)
	}

	return h.unsubscribe()
}

func (h *ephemeralTerminalUI) openScreen() error {
	config := frame.Config{
		PositionPolicy: frame.PolicyFloatForward,
		// widgets draw on stderr only; stdout stays clean for the report
		Output: h.uiOutput,
	}

	fr, err := frame.New(config)
	if err != nil {
		return fmt.Errorf("unable to create the terminal frame: %w", err)
	}
	h.frame = fr

	return nil
}

func (h *ephemeralTerminalUI) closeScreen(force bool) {
	if h.frame.IsClosed() {
		return
	}

	// widgets may still be drawing; unless this is a forced exit, let them finish their
	// final state first
	if !force {
		h.waitGroup.Wait()
	}
	h.frame.Close()
	frame.Close()

	h.flushLog()
}

// flushLog replays buffered log lines to the real log destination now that the frame no
// longer owns the screen.
func (h *ephemeralTerminalUI) flushLog() {
	if logWrapper, ok := log.Log.(*logger.LogrusLogger); ok {
		fmt.Fprint(logWrapper.Output, h.logBuffer.String())
		logWrapper.Logger.SetOutput(h.uiOutput)
	} else {
		fmt.Fprint(h.uiOutput, h.logBuffer.String())
	}
}

func (h *ephemeralTerminalUI) Teardown(force bool) error {
	h.closeScreen(force)
	showCursor(h.uiOutput)
	return nil
}

func hideCursor(output io.Writer) {
	fmt.Fprint(output, "\x1b[?25l")
}

func showCursor(output io.Writer) {
	fmt.Fprint(output, "\x1b[?25h")
}
