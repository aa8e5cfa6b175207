package ui

import (
	"context"
	"sync"

	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/jotframe/pkg/frame"

	vulncertEvent "github.com/vulncert/vulncert/vulncert/event"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (r *Handler) RespondsTo(event partybus.Event) bool {
	switch event.Type {
	case vulncertEvent.UpdateVulnerabilityDatabase,
		vulncertEvent.DictionaryIndexingStarted,
		vulncertEvent.ProductMatchingStarted:
		return true
	default:
		return false
	}
}

func (r *Handler) Handle(ctx context.Context, fr *frame.Frame, event partybus.Event, wg *sync.WaitGroup) error {
	switch event.Type {
	case vulncertEvent.UpdateVulnerabilityDatabase:
		return r.UpdateVulnerabilityDatabaseHandler(ctx, fr, event, wg)
	case vulncertEvent.DictionaryIndexingStarted:
		return r.DictionaryIndexingStartedHandler(ctx, fr, event, wg)
	case vulncertEvent.ProductMatchingStarted:
		return r.ProductMatchingStartedHandler(ctx, fr, event, wg)
	default:
		return nil
	}
}
