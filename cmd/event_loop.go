package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/wagoodman/go-partybus"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/internal/ui"
)

// eventLoop drives a single command invocation: it multiplexes worker errors, bus events,
// and interrupt signals into the selected UI until both the worker channel and the event
// subscription have drained, then tears the UI down. Worker and handler errors are
// collected and returned together.
// nolint:gocognit,funlen
func eventLoop(workerErrs <-chan error, signals <-chan os.Signal, subscription *partybus.Subscription, cleanupFn func(), uis ...ui.UI) error {
	defer cleanupFn()
	events := subscription.Events()
	var err error
	var ux ui.UI

	if ux, err = setupUI(subscription.Unsubscribe, uis...); err != nil {
		return err
	}

	var retErr error
	var forceTeardown bool

	for {
		if workerErrs == nil && events == nil {
			break
		}
		select {
		case err, isOpen := <-workerErrs:
			if !isOpen {
				workerErrs = nil
				continue
			}
			if err != nil {
				// a failed worker publishes nothing further, so unsubscribing here is
				// what lets the loop wind down
				retErr = multierror.Append(retErr, err)
				if err := subscription.Unsubscribe(); err != nil {
					retErr = multierror.Append(retErr, err)
				}
			}
		case e, isOpen := <-events:
			if !isOpen {
				events = nil
				continue
			}

			if err := ux.Handle(e); err != nil {
				if errors.Is(err, partybus.ErrUnsubscribe) {
					log.Warnf("unable to unsubscribe from the event bus")
					events = nil
				} else {
					retErr = multierror.Append(retErr, err)
				}
			}
		case <-signals:
			// stop listening on every source and get out; in-flight worker errors are
			// dropped on purpose since there is no result to report anyway. The feed
			// curator removes its own temp directories on success and deliberately
			// keeps them around on failure.
			// TODO: plumb a cancellable context into the workers so an interrupt stops
			// work in flight instead of abandoning it.
			events = nil
			workerErrs = nil
			forceTeardown = true
		}
	}

	if err := ux.Teardown(forceTeardown); err != nil {
		retErr = multierror.Append(retErr, err)
	}

	return retErr
}

// setupUI returns the first of the given UIs that sets up without error, handing it the
// subscription's unsubscribe function for use at shutdown. Callers order the candidates
// from most to least capable so that environments without a usable terminal still get
// logger output.
func setupUI(unsubscribe func() error, uis ...ui.UI) (ui.UI, error) {
	for _, ux := range uis {
		if err := ux.Setup(unsubscribe); err != nil {
			log.Errorf("unable to setup given UI, falling back to alternative UI: %+v", err)
			continue
		}

		return ux, nil
	}
	return nil, fmt.Errorf("unable to setup any UI")
}
