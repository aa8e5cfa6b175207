package model

import (
	"github.com/vulncert/vulncert/vulncert/cpe"
)

const (
	DictionaryEntryTableName = "dictionary_entry"

	// GetDictionaryEntryByVendorIndexName backs vendor-scoped reads without a table scan.
	GetDictionaryEntryByVendorIndexName = "get_dictionary_entry_by_vendor_index"
)

// DictionaryEntryModel is one identifier dictionary record. Dictionary records never carry
// version range bounds, so the split attributes round-trip the record without reparsing the
// URI on the way back out.
type DictionaryEntryModel struct {
	URI     string `gorm:"primary_key;column:uri"`
	Vendor  string `gorm:"column:vendor;index:get_dictionary_entry_by_vendor_index"`
	Product string `gorm:"column:product"`
	Version string `gorm:"column:version"`
	Title   string `gorm:"column:title"`
}

func NewDictionaryEntryModel(record cpe.CPE) DictionaryEntryModel {
	return DictionaryEntryModel{
		URI:     record.URI,
		Vendor:  record.Vendor,
		Product: record.Product,
		Version: record.Version,
		Title:   record.Title,
	}
}

func (DictionaryEntryModel) TableName() string {
	return DictionaryEntryTableName
}

func (m *DictionaryEntryModel) Inflate() cpe.CPE {
	return cpe.CPE{
		URI:     m.URI,
		Vendor:  m.Vendor,
		Product: m.Product,
		Version: m.Version,
		Title:   m.Title,
	}
}
