package reader

import (
	"fmt"

	"github.com/alicebob/sqlittle"

	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/db/store"
	"github.com/vulncert/vulncert/vulncert/db/store/model"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

// Reader holds a read-only instance of the database connection. Unlike the write side it
// needs no sqlite3 driver, so consuming a cache never requires cgo.
type Reader struct {
	db *sqlittle.DB
}

// CleanupFn is a callback for closing a DB connection.
type CleanupFn func() error

var _ store.StoreReader = (*Reader)(nil)

// New creates a new instance of the store reader.
func New(dbFilePath string) (*Reader, CleanupFn, error) {
	d, err := sqlittle.Open(dbFilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open feed cache at %s: %w", dbFilePath, err)
	}

	return &Reader{
		db: d,
	}, d.Close, nil
}

// GetID fetches the metadata about the cache schema version and build time.
func (b *Reader) GetID() (*store.ID, error) {
	var scanErr error
	var models []model.IDModel
	err := b.db.Select(model.IDTableName, func(row sqlittle.Row) {
		var m model.IDModel
		if err := row.Scan(&m.BuildTimestamp, &m.SchemaVersion); err != nil {
			scanErr = fmt.Errorf("unable to scan over row: %w", err)
			return
		}
		models = append(models, m)
	}, "build_timestamp", "schema_version")
	if err != nil {
		return nil, fmt.Errorf("unable to query for ID: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}

	switch {
	case len(models) == 0:
		return nil, nil
	case len(models) > 1:
		return nil, fmt.Errorf("discovered more than one cache ID")
	}

	id, err := models[0].Inflate()
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// GetDictionaryEntries retrieves every identifier dictionary record.
func (b *Reader) GetDictionaryEntries() ([]cpe.CPE, error) {
	var scanErr error
	var entries []cpe.CPE
	err := b.db.Select(model.DictionaryEntryTableName, func(row sqlittle.Row) {
		var m model.DictionaryEntryModel
		if err := row.Scan(&m.URI, &m.Vendor, &m.Product, &m.Version, &m.Title); err != nil {
			scanErr = fmt.Errorf("unable to scan over row: %w", err)
			return
		}
		entries = append(entries, m.Inflate())
	}, "uri", "vendor", "product", "version", "title")
	if err != nil {
		return nil, fmt.Errorf("unable to query: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return entries, nil
}

// GetDictionaryEntriesByVendor retrieves the identifier dictionary records for one vendor
// via the vendor index.
func (b *Reader) GetDictionaryEntriesByVendor(vendor string) ([]cpe.CPE, error) {
	var scanErr error
	var entries []cpe.CPE
	err := b.db.IndexedSelectEq(model.DictionaryEntryTableName, model.GetDictionaryEntryByVendorIndexName, sqlittle.Key{vendor}, func(row sqlittle.Row) {
		var m model.DictionaryEntryModel
		if err := row.Scan(&m.URI, &m.Vendor, &m.Product, &m.Version, &m.Title); err != nil {
			scanErr = fmt.Errorf("unable to scan over row: %w", err)
			return
		}
		entries = append(entries, m.Inflate())
	}, "uri", "vendor", "product", "version", "title")
	if err != nil {
		return nil, fmt.Errorf("unable to query: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return entries, nil
}

// GetVulnerabilities retrieves every vulnerability record.
func (b *Reader) GetVulnerabilities() ([]vulnerability.Vulnerability, error) {
	var scanErr error
	var models []model.VulnerabilityModel
	err := b.db.Select(model.VulnerabilityTableName, func(row sqlittle.Row) {
		var m model.VulnerabilityModel
		if err := row.Scan(&m.ID, &m.CPEs, &m.Configurations, &m.BaseScore, &m.Severity, &m.ImpactScore, &m.ExploitabilityScore, &m.Published, &m.CWEs); err != nil {
			scanErr = fmt.Errorf("unable to scan over row: %w", err)
			return
		}
		models = append(models, m)
	}, "id", "cpes", "configurations", "base_score", "severity", "impact_score", "exploitability_score", "published", "cwes")
	if err != nil {
		return nil, fmt.Errorf("unable to query: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}

	vulns := make([]vulnerability.Vulnerability, 0, len(models))
	for idx := range models {
		vuln, err := models[idx].Inflate()
		if err != nil {
			return nil, err
		}
		vulns = append(vulns, vuln)
	}

	return vulns, nil
}

// GetVulnerability retrieves the vulnerability record for the given id by primary key, or
// nil when the cache has no such record.
func (b *Reader) GetVulnerability(id string) (*vulnerability.Vulnerability, error) {
	var scanErr error
	var models []model.VulnerabilityModel
	err := b.db.PKSelect(model.VulnerabilityTableName, sqlittle.Key{id}, func(row sqlittle.Row) {
		var m model.VulnerabilityModel
		if err := row.Scan(&m.ID, &m.CPEs, &m.Configurations, &m.BaseScore, &m.Severity, &m.ImpactScore, &m.ExploitabilityScore, &m.Published, &m.CWEs); err != nil {
			scanErr = fmt.Errorf("unable to scan over row: %w", err)
			return
		}
		models = append(models, m)
	}, "id", "cpes", "configurations", "base_score", "severity", "impact_score", "exploitability_score", "published", "cwes")
	if err != nil {
		return nil, fmt.Errorf("unable to query: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}

	switch {
	case len(models) == 0:
		return nil, nil
	case len(models) > 1:
		return nil, fmt.Errorf("discovered more than one vulnerability for id=%q", id)
	}

	vuln, err := models[0].Inflate()
	if err != nil {
		return nil, err
	}
	return &vuln, nil
}

// GetExpansionMap retrieves every cached identifier expansion, or nil when none were cached.
func (b *Reader) GetExpansionMap() (*vulnerability.ExpansionMap, error) {
	var scanErr error
	var models []model.ExpansionEntryModel
	err := b.db.Select(model.ExpansionEntryTableName, func(row sqlittle.Row) {
		var m model.ExpansionEntryModel
		if err := row.Scan(&m.Key, &m.Expansions); err != nil {
			scanErr = fmt.Errorf("unable to scan over row: %w", err)
			return
		}
		models = append(models, m)
	}, "key", "expansions")
	if err != nil {
		return nil, fmt.Errorf("unable to query: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}
	if len(models) == 0 {
		return nil, nil
	}

	entries := make(map[string][]cpe.CPE, len(models))
	for idx := range models {
		key, expansions, err := models[idx].Inflate()
		if err != nil {
			return nil, err
		}
		entries[key] = expansions
	}
	return vulnerability.NewExpansionMapFromEntries(entries), nil
}
