package writer

import (
	"fmt"

	"github.com/jinzhu/gorm"
	// provide the sqlite3 dialect to gorm via import
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/db/store"
	"github.com/vulncert/vulncert/vulncert/db/store/model"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

// Writer holds an instance of the database connection.
type Writer struct {
	db *gorm.DB
}

// CleanupFn is a callback for closing a DB connection.
type CleanupFn func() error

var _ store.Store = (*Writer)(nil)

// New creates a new instance of the store.
func New(dbFilePath string, overwrite bool) (*Writer, CleanupFn, error) {
	dbObj, err := open(config{
		DbPath:    dbFilePath,
		Overwrite: overwrite,
	})
	if err != nil {
		return nil, nil, err
	}

	if overwrite {
		r := dbObj.AutoMigrate(
			&model.IDModel{},
			&model.DictionaryEntryModel{},
			&model.VulnerabilityModel{},
			&model.ExpansionEntryModel{},
		)
		if r.Error != nil {
			return nil, nil, fmt.Errorf("unable to migrate models: %w", r.Error)
		}
	}

	return &Writer{
		db: dbObj,
	}, dbObj.Close, nil
}

// GetID fetches the metadata about the cache schema version and build time.
func (s *Writer) GetID() (*store.ID, error) {
	var models []model.IDModel
	result := s.db.Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	switch {
	case len(models) > 1:
		return nil, fmt.Errorf("found multiple cache IDs")
	case len(models) == 1:
		id, err := models[0].Inflate()
		if err != nil {
			return nil, err
		}
		return &id, nil
	}

	return nil, nil
}

// SetID stores the cache schema version and build time.
func (s *Writer) SetID(id store.ID) error {
	// replace any existing ID with the given one
	if r := s.db.Delete(&model.IDModel{}); r.Error != nil {
		return fmt.Errorf("unable to remove existing cache ID: %w", r.Error)
	}

	m := model.NewIDModel(id)
	result := s.db.Create(&m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("unable to add id (%d rows affected)", result.RowsAffected)
	}

	return nil
}

// AddDictionaryEntry saves one or more identifier dictionary records into the sqlite3 store.
func (s *Writer) AddDictionaryEntry(entries ...cpe.CPE) error {
	for _, entry := range entries {
		m := model.NewDictionaryEntryModel(entry)

		result := s.db.Create(&m)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("unable to add dictionary entry (%d rows affected)", result.RowsAffected)
		}
	}
	return nil
}

// GetDictionaryEntries retrieves every identifier dictionary record.
func (s *Writer) GetDictionaryEntries() ([]cpe.CPE, error) {
	var models []model.DictionaryEntryModel

	result := s.db.Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]cpe.CPE, len(models))
	for idx := range models {
		entries[idx] = models[idx].Inflate()
	}
	return entries, nil
}

// GetDictionaryEntriesByVendor retrieves the identifier dictionary records for one vendor.
func (s *Writer) GetDictionaryEntriesByVendor(vendor string) ([]cpe.CPE, error) {
	var models []model.DictionaryEntryModel

	result := s.db.Where("vendor = ?", vendor).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]cpe.CPE, len(models))
	for idx := range models {
		entries[idx] = models[idx].Inflate()
	}
	return entries, nil
}

// AddVulnerability saves one or more vulnerability records into the sqlite3 store.
func (s *Writer) AddVulnerability(vulns ...vulnerability.Vulnerability) error {
	for _, vuln := range vulns {
		m := model.NewVulnerabilityModel(vuln)

		result := s.db.Create(&m)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("unable to add vulnerability (%d rows affected)", result.RowsAffected)
		}
	}
	return nil
}

// GetVulnerabilities retrieves every vulnerability record.
func (s *Writer) GetVulnerabilities() ([]vulnerability.Vulnerability, error) {
	var models []model.VulnerabilityModel

	result := s.db.Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	vulns := make([]vulnerability.Vulnerability, len(models))
	for idx, m := range models {
		vuln, err := m.Inflate()
		if err != nil {
			return nil, err
		}
		vulns[idx] = vuln
	}
	return vulns, nil
}

// GetVulnerability retrieves the vulnerability record for the given id, or nil when the
// cache has no such record.
func (s *Writer) GetVulnerability(id string) (*vulnerability.Vulnerability, error) {
	var models []model.VulnerabilityModel

	result := s.db.Where("id = ?", id).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	switch {
	case len(models) > 1:
		return nil, fmt.Errorf("found multiple vulnerabilities for id=%q", id)
	case len(models) == 1:
		vuln, err := models[0].Inflate()
		if err != nil {
			return nil, err
		}
		return &vuln, nil
	}

	return nil, nil
}

// SetExpansionMap saves every identifier expansion into the sqlite3 store. A nil map writes
// nothing, preserving "no match feed" across the cache round trip.
func (s *Writer) SetExpansionMap(expansion *vulnerability.ExpansionMap) error {
	if expansion == nil {
		return nil
	}

	for key, expansions := range expansion.Entries() {
		m := model.NewExpansionEntryModel(key, expansions)

		result := s.db.Create(&m)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("unable to add expansion entry (%d rows affected)", result.RowsAffected)
		}
	}
	return nil
}

// GetExpansionMap retrieves every cached identifier expansion, or nil when none were cached.
func (s *Writer) GetExpansionMap() (*vulnerability.ExpansionMap, error) {
	var models []model.ExpansionEntryModel

	result := s.db.Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(models) == 0 {
		return nil, nil
	}

	entries := make(map[string][]cpe.CPE, len(models))
	for _, m := range models {
		key, expansions, err := m.Inflate()
		if err != nil {
			return nil, err
		}
		entries[key] = expansions
	}
	return vulnerability.NewExpansionMapFromEntries(entries), nil
}
