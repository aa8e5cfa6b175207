package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"
	"github.com/wagoodman/go-progress/format"
	"github.com/wagoodman/jotframe/pkg/frame"

	"github.com/vulncert/vulncert/internal/ui/components"
	vulncertEventParsers "github.com/vulncert/vulncert/vulncert/event/parsers"
)

const (
	maxBarWidth       = 50
	statusSet         = components.SpinnerDotSet
	completedStatus   = "✔"
	statusTitleColumn = 31
)

var (
	titleFormat         = color.Bold
	auxInfoFormat       = color.HEX("#777777")
	statusTitleTemplate = fmt.Sprintf(" %%s %%-%ds ", statusTitleColumn)
)

// newStatusWidgets sizes a progress bar to the terminal and pairs it with a fresh spinner.
func newStatusWidgets() (format.Simple, *components.Spinner) {
	width, _ := frame.GetTerminalSize()
	barWidth := width / 4
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	bar := format.NewSimpleWithTheme(barWidth, format.HeavyNoBarTheme, format.ColorCompleted, format.ColorTodo)
	spinner := components.NewSpinner(statusSet)

	return bar, &spinner
}

// writeStatus renders one status line: spinner glyph, left-padded title, then detail.
func writeStatus(line io.Writer, spin, title, detail string) {
	_, _ = io.WriteString(line, fmt.Sprintf(statusTitleTemplate+"%s", spin, title, detail))
}

// UpdateVulnerabilityDatabaseHandler tracks the feed pull on a line prepended to the frame,
// showing a per-feed counter while downloading and the bare stage name otherwise.
func (r *Handler) UpdateVulnerabilityDatabaseHandler(ctx context.Context, fr *frame.Frame, event partybus.Event, wg *sync.WaitGroup) error {
	prog, err := vulncertEventParsers.ParseUpdateVulnerabilityDatabase(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	line, err := fr.Prepend()
	if err != nil {
		return err
	}

	bar, spinner := newStatusWidgets()
	stream := progress.Stream(ctx, prog, 150*time.Millisecond)
	title := titleFormat.Sprint("Vulnerability DB")

	render := func(p progress.Progress) {
		spin := color.Magenta.Sprint(spinner.Next())
		progStr, err := bar.Format(p)
		if err != nil {
			_, _ = io.WriteString(line, fmt.Sprintf("Error: %+v", err))
			return
		}

		var aux string
		switch prog.Stage() {
		case "downloading feeds":
			progStr += " "
			aux = auxInfoFormat.Sprintf(" [%d / %d feeds]", prog.Current(), prog.Size())
		default:
			progStr = ""
			aux = auxInfoFormat.Sprintf("[%s]", prog.Stage())
		}
		writeStatus(line, spin, title, progStr+aux)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		render(progress.Progress{})
		for p := range stream {
			render(p)
		}

		done := color.Green.Sprint(completedStatus)
		writeStatus(line, done, title, auxInfoFormat.Sprintf("[%s]", prog.Stage()))
	}()

	return nil
}

// DictionaryIndexingStartedHandler shows a running record count while the identifier
// dictionary index is built.
func (r *Handler) DictionaryIndexingStartedHandler(ctx context.Context, fr *frame.Frame, event partybus.Event, wg *sync.WaitGroup) error {
	monitor, err := vulncertEventParsers.ParseDictionaryIndexingStarted(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	line, err := fr.Append()
	if err != nil {
		return err
	}

	_, spinner := newStatusWidgets()
	stream := progress.StreamMonitors(ctx, []progress.Monitorable{monitor.RecordsIndexed}, 50*time.Millisecond)
	title := titleFormat.Sprint("Indexing identifier dictionary...")

	render := func(records int64) {
		spin := color.Magenta.Sprint(spinner.Next())
		writeStatus(line, spin, title, auxInfoFormat.Sprintf("[%s records]", humanize.Comma(records)))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		render(0)
		for p := range stream {
			render(p[0])
		}

		done := color.Green.Sprint(completedStatus)
		title = titleFormat.Sprint("Indexed identifier dictionary")
		writeStatus(line, done, title, auxInfoFormat.Sprintf("[%s records]", humanize.Comma(monitor.RecordsIndexed.Current())))
	}()

	return nil
}

// ProductMatchingStartedHandler shows how many products have been paired against the
// dictionary so far and how many vulnerability matches that produced.
func (r *Handler) ProductMatchingStartedHandler(ctx context.Context, fr *frame.Frame, event partybus.Event, wg *sync.WaitGroup) error {
	monitor, err := vulncertEventParsers.ParseProductMatchingStarted(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	line, err := fr.Append()
	if err != nil {
		return err
	}

	_, spinner := newStatusWidgets()
	monitors := []progress.Monitorable{
		monitor.ProductsProcessed,
		monitor.MatchesDiscovered,
	}
	stream := progress.StreamMonitors(ctx, monitors, 50*time.Millisecond)
	title := titleFormat.Sprint("Matching certified products...")

	render := func(products, matches int64) {
		spin := color.Magenta.Sprint(spinner.Next())
		writeStatus(line, spin, title, auxInfoFormat.Sprintf("[products %d, matches %d]", products, matches))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		render(0, 0)
		for p := range stream {
			render(p[0], p[1])
		}

		done := color.Green.Sprint(completedStatus)
		title = titleFormat.Sprint("Matched certified products")
		writeStatus(line, done, title, auxInfoFormat.Sprintf("[%d matches]", monitor.MatchesDiscovered.Current()))
	}()

	return nil
}
