package matcher

import (
	"github.com/scylladb/go-set/strset"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/vulncert/vulncert/internal/bus"
	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/event"
)

// shortProductCutoff excludes dictionary records whose product attribute is too short for
// token scoring to mean anything ("ace" would partial-match half the corpus).
const shortProductCutoff = 3

// Index holds the inverted lookup structures built from a CPE dictionary: the known vendor
// set, vendor to versions, and (vendor, version) to records. Fit is a full rebuild; once it
// returns the index is frozen and safe for any number of concurrent readers.
type Index struct {
	vendors          *strset.Set
	vendorToVersions map[string]*strset.Set
	records          map[vendorVersion][]cpe.CPE
	cache            *cpe.Cache
}

func NewIndex() *Index {
	return &Index{
		vendors:          strset.New(),
		vendorToVersions: make(map[string]*strset.Set),
		records:          make(map[vendorVersion][]cpe.CPE),
		cache:            cpe.NewCache(),
	}
}

// Cache exposes the parse memoization owned by this index, shared with feed decoding so a
// URI seen many times is parsed once per process.
func (i *Index) Cache() *cpe.Cache {
	return i.cache
}

// Vendors returns the set of vendor keys known to the index. Callers must treat it as
// read-only.
func (i *Index) Vendors() *strset.Set {
	return i.vendors
}

// Fit (re)builds the index from the given dictionary records, discarding any prior state.
// Duplicate URIs within the same (vendor, version) bucket are kept once, first decoration
// wins.
func (i *Index) Fit(records []cpe.CPE) {
	i.vendors = strset.New()
	i.vendorToVersions = make(map[string]*strset.Set)
	i.records = make(map[vendorVersion][]cpe.CPE)

	prog := trackIndexing(int64(len(records)))
	defer prog.SetCompleted()

	kept := 0
	for _, record := range records {
		prog.N++

		if len(record.Product) <= shortProductCutoff {
			continue
		}
		kept++

		i.vendors.Add(record.Vendor)

		versions, ok := i.vendorToVersions[record.Vendor]
		if !ok {
			versions = strset.New()
			i.vendorToVersions[record.Vendor] = versions
		}
		versions.Add(record.Version)

		key := vendorVersion{vendor: record.Vendor, version: record.Version}
		if !containsURI(i.records[key], record.URI) {
			i.records[key] = append(i.records[key], record)
		}
	}

	log.Debugf("indexed %d of %d dictionary records across %d vendors", kept, len(records), i.vendors.Size())
}

// candidateRecords returns the records behind every candidate (vendor, version) pair,
// preserving the deterministic pair enumeration order.
func (i *Index) candidateRecords(vendors *strset.Set, certVersions []string, strategy PairingStrategy) []cpe.CPE {
	var out []cpe.CPE
	for _, pair := range i.candidateVendorVersions(vendors, certVersions, strategy) {
		out = append(out, i.records[pair]...)
	}
	return out
}

func containsURI(records []cpe.CPE, uri string) bool {
	for _, r := range records {
		if r.URI == uri {
			return true
		}
	}
	return false
}

func trackIndexing(total int64) *progress.Manual {
	prog := progress.Manual{
		Total: total,
	}

	bus.Publish(partybus.Event{
		Type: event.DictionaryIndexingStarted,
		Value: IndexMonitor{
			RecordsIndexed: progress.Monitorable(&prog),
		},
	})

	return &prog
}
