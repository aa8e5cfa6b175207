package store

import (
	"time"
)

// ID represents identifying information for a feed cache and the data it contains.
type ID struct {
	// BuildTimestamp ties the cache to the snapshot it was derived from: it carries the
	// snapshot's build time, not the time the cache file was written.
	BuildTimestamp time.Time
	SchemaVersion  int
}

type IDReader interface {
	GetID() (*ID, error)
}

type IDWriter interface {
	SetID(ID) error
}

func NewID(age time.Time) ID {
	return ID{
		BuildTimestamp: age.UTC(),
		SchemaVersion:  SchemaVersion,
	}
}
