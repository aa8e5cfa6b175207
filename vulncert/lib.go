package vulncert

import (
	"context"
	"fmt"

	"github.com/scylladb/go-set/strset"
	"github.com/wagoodman/go-partybus"

	"github.com/vulncert/vulncert/internal/bus"
	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/db"
	"github.com/vulncert/vulncert/vulncert/logger"
	"github.com/vulncert/vulncert/vulncert/match"
	"github.com/vulncert/vulncert/vulncert/matcher"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

// Store bundles everything served out of one activated feed snapshot: the identifier index
// used for product matching plus the vulnerability corpus and lookup used for resolution.
type Store struct {
	Index     *matcher.Index
	Corpus    *vulnerability.Corpus
	Lookup    *vulnerability.Lookup
	expansion *vulnerability.ExpansionMap
}

// NewStore assembles a store from already-loaded components. A nil expansion map indexes
// vulnerability identifiers exactly as published.
func NewStore(index *matcher.Index, corpus *vulnerability.Corpus, expansion *vulnerability.ExpansionMap) *Store {
	return &Store{
		Index:     index,
		Corpus:    corpus,
		Lookup:    vulnerability.NewLookup(corpus, expansion),
		expansion: expansion,
	}
}

// Prune drops every corpus reference outside the given identifier set and rebuilds the
// lookup over what survives. Resolution results afterwards are always a subset of what they
// were before.
func (s *Store) Prune(relevant *strset.Set) {
	s.Corpus.Prune(relevant)
	s.Lookup = vulnerability.NewLookup(s.Corpus, s.expansion)
}

// LoadFeeds builds a Store from the active feed snapshot, refreshing the snapshot first
// when update is set and the snapshot is stale.
func LoadFeeds(ctx context.Context, cfg db.Config, update bool) (*Store, error) {
	curator := db.NewCurator(cfg)

	if update {
		updateAvailable, _, err := curator.IsUpdateAvailable()
		if err != nil {
			return nil, fmt.Errorf("unable to check for feed snapshot update: %w", err)
		}
		if updateAvailable {
			if err = curator.Update(ctx); err != nil {
				return nil, fmt.Errorf("unable to update feed snapshot: %w", err)
			}
		}
	}

	index := matcher.NewIndex()
	loader, err := curator.Loader(index.Cache())
	if err != nil {
		return nil, err
	}

	metadata, err := curator.Metadata()
	if err != nil {
		return nil, fmt.Errorf("unable to read snapshot metadata: %w", err)
	}
	if metadata == nil {
		return nil, fmt.Errorf("snapshot has no metadata (run db update to correct)")
	}

	if cached := loadFeedCache(curator.StorePath(), metadata.Built, index); cached != nil {
		return cached, nil
	}

	dictionary, err := loader.LoadDictionary()
	if err != nil {
		return nil, err
	}
	index.Fit(dictionary)

	corpus, err := loader.LoadCorpus()
	if err != nil {
		return nil, err
	}

	expansion, err := loader.LoadExpansionMap()
	if err != nil {
		return nil, err
	}

	if err := writeFeedCache(curator.StorePath(), metadata.Built, dictionary, corpus, expansion); err != nil {
		log.Warnf("unable to cache parsed feeds: %+v", err)
	}

	return NewStore(index, corpus, expansion), nil
}

// MatchCertifiedProducts scores every product description against the store's identifier
// index, keyed by product key.
func MatchCertifiedProducts(ctx context.Context, store *Store, cfg matcher.Config, products []matcher.Product) (map[string]match.Matches, error) {
	m, err := matcher.New(store.Index, cfg)
	if err != nil {
		return nil, err
	}
	return m.MatchAll(ctx, products)
}

func SetLogger(logger logger.Logger) {
	log.Log = logger
}

func SetBus(b *partybus.Bus) {
	bus.SetPublisher(b)
}
