package ui

import (
	"github.com/wagoodman/go-partybus"
)

// UI presents bus events to the user for the duration of one command invocation. Setup is
// handed the subscription's unsubscribe function so the UI can stop the flow of events
// once it has seen the final one; Teardown with force set skips waiting on anything still
// in flight.
type UI interface {
	Setup(unsubscribe func() error) error
	partybus.Handler
	Teardown(force bool) error
}
