package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

const (
	VulnerabilityTableName = "vulnerability"
)

// VulnerabilityModel is one vulnerability record. Scalar metrics get their own columns;
// identifier lists and compound configurations are serialized JSON.
type VulnerabilityModel struct {
	ID                  string  `gorm:"primary_key;column:id"`
	CPEs                string  `gorm:"column:cpes"`
	Configurations      string  `gorm:"column:configurations"`
	BaseScore           float64 `gorm:"column:base_score"`
	Severity            string  `gorm:"column:severity"`
	ImpactScore         float64 `gorm:"column:impact_score"`
	ExploitabilityScore float64 `gorm:"column:exploitability_score"`
	Published           string  `gorm:"column:published"`
	CWEs                string  `gorm:"column:cwes"`
}

func NewVulnerabilityModel(vuln vulnerability.Vulnerability) VulnerabilityModel {
	cpes, err := json.Marshal(vuln.CPEs)
	if err != nil {
		log.Errorf("unable to marshal identifiers (id=%s): %+v", vuln.ID, err)
	}

	configurations, err := json.Marshal(vuln.Configurations)
	if err != nil {
		log.Errorf("unable to marshal configurations (id=%s): %+v", vuln.ID, err)
	}

	cwes, err := json.Marshal(vuln.CWEs)
	if err != nil {
		log.Errorf("unable to marshal CWEs (id=%s): %+v", vuln.ID, err)
	}

	return VulnerabilityModel{
		ID:                  vuln.ID,
		CPEs:                string(cpes),
		Configurations:      string(configurations),
		BaseScore:           vuln.Metrics.BaseScore,
		Severity:            vuln.Metrics.Severity,
		ImpactScore:         vuln.Metrics.ImpactScore,
		ExploitabilityScore: vuln.Metrics.ExploitabilityScore,
		Published:           vuln.Published.Format(time.RFC3339Nano),
		CWEs:                string(cwes),
	}
}

func (VulnerabilityModel) TableName() string {
	return VulnerabilityTableName
}

func (m *VulnerabilityModel) Inflate() (vulnerability.Vulnerability, error) {
	var cpes []cpe.CPE
	if err := json.Unmarshal([]byte(m.CPEs), &cpes); err != nil {
		return vulnerability.Vulnerability{}, fmt.Errorf("unable to unmarshal identifiers (id=%s): %w", m.ID, err)
	}

	var configurations []vulnerability.Configuration
	if err := json.Unmarshal([]byte(m.Configurations), &configurations); err != nil {
		return vulnerability.Vulnerability{}, fmt.Errorf("unable to unmarshal configurations (id=%s): %w", m.ID, err)
	}

	var cwes []string
	if err := json.Unmarshal([]byte(m.CWEs), &cwes); err != nil {
		return vulnerability.Vulnerability{}, fmt.Errorf("unable to unmarshal CWEs (id=%s): %w", m.ID, err)
	}

	published, err := time.Parse(time.RFC3339Nano, m.Published)
	if err != nil {
		return vulnerability.Vulnerability{}, fmt.Errorf("unable to parse published timestamp (id=%s): %w", m.ID, err)
	}

	return vulnerability.Vulnerability{
		ID:             m.ID,
		CPEs:           cpes,
		Configurations: configurations,
		Metrics: vulnerability.Metrics{
			BaseScore:           m.BaseScore,
			Severity:            m.Severity,
			ImpactScore:         m.ImpactScore,
			ExploitabilityScore: m.ExploitabilityScore,
		},
		Published: published,
		CWEs:      cwes,
	}, nil
}
