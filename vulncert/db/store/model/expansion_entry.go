package model

import (
	"encoding/json"
	"fmt"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
)

const (
	ExpansionEntryTableName = "expansion_entry"
)

// ExpansionEntryModel is one identifier expansion: the derived expansion key (URI plus any
// version range bounds) and the simple identifiers it stands for, serialized JSON.
type ExpansionEntryModel struct {
	Key        string `gorm:"primary_key;column:key"`
	Expansions string `gorm:"column:expansions"`
}

func NewExpansionEntryModel(key string, expansions []cpe.CPE) ExpansionEntryModel {
	serialized, err := json.Marshal(expansions)
	if err != nil {
		log.Errorf("unable to marshal expansions (key=%s): %+v", key, err)
	}

	return ExpansionEntryModel{
		Key:        key,
		Expansions: string(serialized),
	}
}

func (ExpansionEntryModel) TableName() string {
	return ExpansionEntryTableName
}

func (m *ExpansionEntryModel) Inflate() (string, []cpe.CPE, error) {
	var expansions []cpe.CPE
	if err := json.Unmarshal([]byte(m.Expansions), &expansions); err != nil {
		return "", nil, fmt.Errorf("unable to unmarshal expansions (key=%s): %w", m.Key, err)
	}
	return m.Key, expansions, nil
}
