package store

import (
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

// SchemaVersion is bumped whenever the cache models change shape; a cache written under any
// other version is rebuilt from the feeds.
const SchemaVersion = 1

// FileName is the feed cache database file, kept inside the snapshot directory.
const FileName = "vulncert.db"

type Store interface {
	StoreReader
	StoreWriter
}

type StoreReader interface {
	IDReader
	DictionaryEntryStoreReader
	VulnerabilityStoreReader
	ExpansionStoreReader
}

type StoreWriter interface {
	IDWriter
	DictionaryEntryStoreWriter
	VulnerabilityStoreWriter
	ExpansionStoreWriter
}

type DictionaryEntryStoreReader interface {
	GetDictionaryEntries() ([]cpe.CPE, error)
	GetDictionaryEntriesByVendor(vendor string) ([]cpe.CPE, error)
}

type DictionaryEntryStoreWriter interface {
	AddDictionaryEntry(entries ...cpe.CPE) error
}

type VulnerabilityStoreReader interface {
	GetVulnerabilities() ([]vulnerability.Vulnerability, error)
	GetVulnerability(id string) (*vulnerability.Vulnerability, error)
}

type VulnerabilityStoreWriter interface {
	AddVulnerability(vulns ...vulnerability.Vulnerability) error
}

type ExpansionStoreReader interface {
	// GetExpansionMap returns the cached identifier expansions, or nil when the snapshot had
	// no match feed.
	GetExpansionMap() (*vulnerability.ExpansionMap, error)
}

type ExpansionStoreWriter interface {
	SetExpansionMap(expansion *vulnerability.ExpansionMap) error
}
