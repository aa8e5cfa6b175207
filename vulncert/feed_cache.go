package vulncert

import (
	"fmt"
	"time"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/db/store"
	"github.com/vulncert/vulncert/vulncert/db/store/reader"
	"github.com/vulncert/vulncert/vulncert/db/store/writer"
	"github.com/vulncert/vulncert/vulncert/matcher"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

// loadFeedCache replays the derived-data store left behind by a previous parse of the active
// snapshot. A nil return means the cache is absent, stale, or unreadable, and the feeds must
// be parsed again.
func loadFeedCache(storePath string, built time.Time, index *matcher.Index) *Store {
	storeReader, cleanupFn, err := reader.New(storePath)
	if err != nil {
		log.Debugf("no usable feed cache at %s: %+v", storePath, err)
		return nil
	}
	defer func() {
		if err := cleanupFn(); err != nil {
			log.Errorf("unable to close feed cache: %+v", err)
		}
	}()

	id, err := storeReader.GetID()
	if err != nil {
		log.Warnf("unable to read feed cache ID: %+v", err)
		return nil
	}
	switch {
	case id == nil:
		log.Debugf("feed cache has no ID, ignoring it")
		return nil
	case id.SchemaVersion != store.SchemaVersion:
		log.Debugf("feed cache schema is %d (want %d), ignoring it", id.SchemaVersion, store.SchemaVersion)
		return nil
	case !id.BuildTimestamp.Equal(built):
		log.Debugf("feed cache was built for another snapshot, ignoring it")
		return nil
	}

	dictionary, err := storeReader.GetDictionaryEntries()
	if err != nil {
		log.Warnf("unable to read cached dictionary entries: %+v", err)
		return nil
	}

	vulns, err := storeReader.GetVulnerabilities()
	if err != nil {
		log.Warnf("unable to read cached vulnerabilities: %+v", err)
		return nil
	}

	expansion, err := storeReader.GetExpansionMap()
	if err != nil {
		log.Warnf("unable to read cached expansion map: %+v", err)
		return nil
	}

	index.Fit(dictionary)

	log.Infof("loaded %d identifier records and %d vulnerabilities from the feed cache", len(dictionary), len(vulns))

	return NewStore(index, vulnerability.NewCorpus(vulns...), expansion)
}

// writeFeedCache persists the parsed feed contents next to the snapshot they came from, keyed
// by the snapshot build time so a later update invalidates the cache.
func writeFeedCache(storePath string, built time.Time, dictionary []cpe.CPE, corpus *vulnerability.Corpus, expansion *vulnerability.ExpansionMap) error {
	if expansion != nil && expansion.Len() == 0 {
		// an empty map cannot be told apart from an absent one after a round trip
		return fmt.Errorf("refusing to cache an empty expansion map")
	}

	cacheStore, cleanupFn, err := writer.New(storePath, true)
	if err != nil {
		return fmt.Errorf("unable to create feed cache: %w", err)
	}
	defer func() {
		if err := cleanupFn(); err != nil {
			log.Errorf("unable to close feed cache: %+v", err)
		}
	}()

	if err := cacheStore.SetID(store.NewID(built)); err != nil {
		return fmt.Errorf("unable to record feed cache ID: %w", err)
	}
	if err := cacheStore.AddDictionaryEntry(dictionary...); err != nil {
		return fmt.Errorf("unable to cache dictionary entries: %w", err)
	}
	if err := cacheStore.AddVulnerability(corpus.All()...); err != nil {
		return fmt.Errorf("unable to cache vulnerabilities: %w", err)
	}
	if err := cacheStore.SetExpansionMap(expansion); err != nil {
		return fmt.Errorf("unable to cache expansion map: %w", err)
	}

	log.Debugf("cached parsed feeds at %s", storePath)

	return nil
}
