package db

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/vulncert/vulncert/internal/file"
)

const MetadataFileName = "metadata.json"

// Metadata describes an activated feed snapshot: when it was assembled and the checksum of
// every feed file it contains.
type Metadata struct {
	Built     time.Time
	Checksums map[string]string
}

type MetadataJSON struct {
	Built     string            `json:"built"` // RFC 3339
	Checksums map[string]string `json:"checksums"`
}

func (m MetadataJSON) ToMetadata() (Metadata, error) {
	built, err := time.Parse(time.RFC3339, m.Built)
	if err != nil {
		return Metadata{}, fmt.Errorf("cannot convert built time (%s): %+v", m.Built, err)
	}

	return Metadata{
		Built:     built.UTC(),
		Checksums: m.Checksums,
	}, nil
}

func metadataPath(dir string) string {
	return path.Join(dir, MetadataFileName)
}

// NewMetadataFromDir reads snapshot metadata out of the given directory. A directory without
// a metadata file yields nil without error.
func NewMetadataFromDir(fs afero.Fs, dir string) (*Metadata, error) {
	metadataFilePath := metadataPath(dir)
	if !file.Exists(fs, metadataFilePath) {
		return nil, nil
	}
	f, err := fs.Open(metadataFilePath)
	if err != nil {
		return nil, fmt.Errorf("unable to open snapshot metadata path (%s): %w", metadataFilePath, err)
	}
	defer f.Close()

	var m Metadata
	err = json.NewDecoder(f).Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("unable to parse snapshot metadata (%s): %w", metadataFilePath, err)
	}
	return &m, nil
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var mj MetadataJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	me, err := mj.ToMetadata()
	if err != nil {
		return err
	}
	*m = me
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(MetadataJSON{
		Built:     m.Built.UTC().Format(time.RFC3339),
		Checksums: m.Checksums,
	})
}

// Write persists the metadata into the given snapshot directory.
func (m Metadata) Write(fs afero.Fs, dir string) error {
	contents, err := json.MarshalIndent(m, "", " ")
	if err != nil {
		return fmt.Errorf("unable to encode snapshot metadata: %w", err)
	}

	err = afero.WriteFile(fs, metadataPath(dir), contents, 0644)
	if err != nil {
		return fmt.Errorf("unable to write snapshot metadata: %w", err)
	}
	return nil
}

// IsStale indicates whether the snapshot is older than the given lifetime. Missing metadata
// is always stale.
func (m *Metadata) IsStale(lifetime time.Duration, now time.Time) bool {
	if m == nil {
		return true
	}
	return now.UTC().Sub(m.Built) > lifetime
}

// FileNames returns the names of every checksummed feed file, sorted.
func (m Metadata) FileNames() []string {
	names := make([]string, 0, len(m.Checksums))
	for name := range m.Checksums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m Metadata) String() string {
	return fmt.Sprintf("Metadata(built=%s files=%d)", m.Built, len(m.Checksums))
}
