package cmd

import (
	"fmt"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wagoodman/go-partybus"

	"github.com/vulncert/vulncert/internal/ui"
	"github.com/vulncert/vulncert/vulncert/event"
)

var _ ui.UI = (*fakeUI)(nil)

// fakeUI records every call the event loop makes and can be primed to fail at any step.
type fakeUI struct {
	t           *testing.T
	setupErr    error
	handleErrs  map[partybus.EventType]error
	teardownErr error

	// exitOn marks the event on which the UI unsubscribes, completing a graceful shutdown
	exitOn      partybus.EventType
	unsubscribe func() error

	setupCalls    int
	handled       []partybus.EventType
	teardownCalls int
	forcedDown    bool
}

func (f *fakeUI) Setup(unsubscribe func() error) error {
	f.setupCalls++
	f.unsubscribe = unsubscribe
	return f.setupErr
}

func (f *fakeUI) Handle(e partybus.Event) error {
	f.t.Logf("ui saw %q", e.Type)
	f.handled = append(f.handled, e.Type)
	if e.Type == f.exitOn {
		assert.NoError(f.t, f.unsubscribe())
	}
	return f.handleErrs[e.Type]
}

func (f *fakeUI) Teardown(force bool) error {
	f.teardownCalls++
	f.forcedDown = force
	return f.teardownErr
}

func newLoopBus(t *testing.T) (*partybus.Bus, *partybus.Subscription) {
	b := partybus.NewBus()
	t.Cleanup(b.Close)
	return b, b.Subscribe()
}

// runLoop drives eventLoop on a goroutine and fails the test instead of hanging forever
// when a regression keeps the loop from returning.
func runLoop(t *testing.T, workerErrs <-chan error, signals <-chan os.Signal, subscription *partybus.Subscription, cleanups *int, uis ...ui.UI) error {
	t.Helper()

	var err error
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		err = eventLoop(workerErrs, signals, subscription, func() { *cleanups++ }, uis...)
	}()

	select {
	case <-returned:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("event loop never returned")
		return nil
	}
}

// closingWorker sends a nil placeholder first, which guarantees the loop has entered its
// select before anything else happens, then any errors, then closes.
func closingWorker(errs ...error) <-chan error {
	out := make(chan error)
	go func() {
		out <- nil
		for _, err := range errs {
			out <- err
		}
		close(out)
	}()
	return out
}

// announcingWorker is a closingWorker that publishes the given event once its error
// channel is closed, mirroring how the real worker reports its result.
func announcingWorker(b *partybus.Bus, e partybus.Event) <-chan error {
	out := make(chan error)
	go func() {
		out <- nil
		close(out)
		b.Publish(e)
	}()
	return out
}

func TestEventLoop_CleanExit(t *testing.T) {
	b, subscription := newLoopBus(t)
	final := partybus.Event{Type: event.ProductMatchingFinished}
	ux := &fakeUI{t: t, exitOn: final.Type}

	var cleanups int
	err := runLoop(t, announcingWorker(b, final), nil, subscription, &cleanups, ux)

	assert.NoError(t, err)
	assert.Equal(t, 1, cleanups)
	assert.Equal(t, []partybus.EventType{final.Type}, ux.handled)
	assert.Equal(t, 1, ux.teardownCalls)
	assert.False(t, ux.forcedDown, "a graceful exit should not force the UI down")
}

func TestEventLoop_WorkerError(t *testing.T) {
	_, subscription := newLoopBus(t)
	workerErr := fmt.Errorf("worker error")
	ux := &fakeUI{t: t}

	// no event is ever published; the loop must unsubscribe itself to finish shutting down
	var cleanups int
	err := runLoop(t, closingWorker(workerErr), nil, subscription, &cleanups, ux)

	assert.ErrorIs(t, err, workerErr)
	assert.Equal(t, 1, cleanups)
	assert.Empty(t, ux.handled)
	assert.Equal(t, 1, ux.teardownCalls)
}

func TestEventLoop_UnsubscribeErrorIsSwallowed(t *testing.T) {
	b, subscription := newLoopBus(t)
	final := partybus.Event{Type: event.ProductMatchingFinished}
	ux := &fakeUI{
		t:          t,
		exitOn:     final.Type,
		handleErrs: map[partybus.EventType]error{final.Type: partybus.ErrUnsubscribe},
	}

	// an unsubscribe "error" is the handler's way of bowing out, not a failure
	var cleanups int
	err := runLoop(t, announcingWorker(b, final), nil, subscription, &cleanups, ux)

	assert.NoError(t, err)
	assert.Equal(t, 1, cleanups)
	assert.Equal(t, 1, ux.teardownCalls)
}

func TestEventLoop_HandlerErrorPropagates(t *testing.T) {
	b, subscription := newLoopBus(t)
	handleErr := fmt.Errorf("unable to create presenter")
	final := partybus.Event{Type: event.ProductMatchingFinished, Error: handleErr}
	ux := &fakeUI{
		t:          t,
		exitOn:     final.Type,
		handleErrs: map[partybus.EventType]error{final.Type: handleErr},
	}

	var cleanups int
	err := runLoop(t, announcingWorker(b, final), nil, subscription, &cleanups, ux)

	assert.ErrorIs(t, err, handleErr)
	assert.Equal(t, 1, cleanups)
	assert.Equal(t, 1, ux.teardownCalls)
}

func TestEventLoop_SignalForcesExit(t *testing.T) {
	_, subscription := newLoopBus(t)
	ux := &fakeUI{t: t}

	// the worker never produces anything, so only the signal can end the loop
	stuckWorker := make(chan error)
	signals := make(chan os.Signal)
	go func() {
		signals <- syscall.SIGINT
		// the channel stays open: exiting must not depend on it closing
	}()

	var cleanups int
	err := runLoop(t, stuckWorker, signals, subscription, &cleanups, ux)

	assert.NoError(t, err)
	assert.Equal(t, 1, cleanups)
	assert.Equal(t, 1, ux.teardownCalls)
	assert.True(t, ux.forcedDown, "an interrupted exit must force the UI down")
}

func TestEventLoop_TeardownErrorPropagates(t *testing.T) {
	b, subscription := newLoopBus(t)
	final := partybus.Event{Type: event.ProductMatchingFinished}
	teardownErr := fmt.Errorf("the UI does not want to be torn down")
	ux := &fakeUI{t: t, exitOn: final.Type, teardownErr: teardownErr}

	var cleanups int
	err := runLoop(t, announcingWorker(b, final), nil, subscription, &cleanups, ux)

	assert.ErrorIs(t, err, teardownErr)
	assert.Equal(t, 1, cleanups)
}

func TestEventLoop_FallsBackWhenSetupFails(t *testing.T) {
	b, subscription := newLoopBus(t)
	final := partybus.Event{Type: event.ProductMatchingFinished}
	fancy := &fakeUI{t: t, setupErr: fmt.Errorf("no tty")}
	plain := &fakeUI{t: t, exitOn: final.Type}

	var cleanups int
	err := runLoop(t, announcingWorker(b, final), nil, subscription, &cleanups, fancy, plain)

	assert.NoError(t, err)
	assert.Equal(t, 1, fancy.setupCalls)
	assert.Empty(t, fancy.handled, "a UI that failed setup must not receive events")
	assert.Zero(t, fancy.teardownCalls)
	assert.Equal(t, []partybus.EventType{final.Type}, plain.handled)
	assert.Equal(t, 1, plain.teardownCalls)
}

func TestEventLoop_NoUsableUI(t *testing.T) {
	_, subscription := newLoopBus(t)
	ux := &fakeUI{t: t, setupErr: fmt.Errorf("no tty")}

	// the loop bails before draining anything, so hand it a worker that is already done
	finished := make(chan error)
	close(finished)

	var cleanups int
	err := runLoop(t, finished, nil, subscription, &cleanups, ux)

	assert.Error(t, err)
	assert.Equal(t, 1, cleanups, "cleanup must run even when no UI could be set up")
	assert.Zero(t, ux.teardownCalls)
}
