//go:build linux || darwin
// +build linux darwin

package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gookit/color"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/jotframe/pkg/frame"

	"github.com/vulncert/vulncert/internal"
	"github.com/vulncert/vulncert/internal/version"
	vulncertEventParsers "github.com/vulncert/vulncert/vulncert/event/parsers"
)

// handleAppUpdateAvailable pins a one-line upgrade notice above the dynamic widgets.
func handleAppUpdateAvailable(_ context.Context, fr *frame.Frame, event partybus.Event, _ *sync.WaitGroup) error {
	newVersion, err := vulncertEventParsers.ParseAppUpdateAvailable(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	line, err := fr.Prepend()
	if err != nil {
		return err
	}

	notice := color.Magenta.Sprintf("New version of %s is available: %s (installed version is %s)",
		internal.ApplicationName, newVersion, version.FromBuild().Version)
	_, _ = io.WriteString(line, notice)

	return nil
}
