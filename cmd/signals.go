package cmd

import (
	"os"
	"os/signal"
	"syscall"
)

// setupSignals relays SIGINT and SIGTERM to the event loop so an interrupted run still
// tears the UI down cleanly.
func setupSignals() <-chan os.Signal {
	// signal.Notify does not block on delivery, so the channel needs at least one slot
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	return c
}
