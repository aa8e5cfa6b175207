/*
Package bus holds the process-wide event publisher the library emits progress events
through. Embedding applications opt in by installing a publisher; without one, every
publish is a no-op, so library code never needs to check whether eventing is wired up.
*/
package bus

import "github.com/wagoodman/go-partybus"

var publisher partybus.Publisher

// SetPublisher installs the publisher all library events go through. Passing nil switches
// eventing back off.
func SetPublisher(p partybus.Publisher) {
	publisher = p
}

// Publish hands the event to the installed publisher, if any.
func Publish(event partybus.Event) {
	if publisher != nil {
		publisher.Publish(event)
	}
}
