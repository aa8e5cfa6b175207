package db

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/spf13/afero"
)

func TestMetadataParse(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		expected Metadata
		err      bool
	}{
		{
			name:     "go case",
			contents: `{"built": "2020-06-15T14:02:36Z", "checksums": {"nvdcve-1.1-2019.json": "sha256:deadbeefcafe"}}`,
			expected: Metadata{
				Built:     time.Date(2020, 6, 15, 14, 2, 36, 0, time.UTC),
				Checksums: map[string]string{"nvdcve-1.1-2019.json": "sha256:deadbeefcafe"},
			},
		},
		{
			name:     "eastern timezone",
			contents: `{"built": "2020-06-15T14:02:36-04:00", "checksums": {}}`,
			expected: Metadata{
				Built:     time.Date(2020, 6, 15, 18, 2, 36, 0, time.UTC),
				Checksums: map[string]string{},
			},
		},
		{
			name:     "bad built time",
			contents: `{"built": "last tuesday", "checksums": {}}`,
			err:      true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "/snapshot/"+MetadataFileName, []byte(test.contents), 0644); err != nil {
				t.Fatalf("unable to write fixture: %+v", err)
			}

			metadata, err := NewMetadataFromDir(fs, "/snapshot")
			if err != nil && !test.err {
				t.Fatalf("failed to get metadata: %+v", err)
			} else if err == nil && test.err {
				t.Fatalf("expected error but got none")
			}
			if test.err {
				return
			}

			if metadata == nil {
				t.Fatal("metadata not found")
			}

			for _, diff := range deep.Equal(*metadata, test.expected) {
				t.Errorf("metadata difference: %s", diff)
			}
		})
	}
}

func TestMetadataParseMissing(t *testing.T) {
	metadata, err := NewMetadataFromDir(afero.NewMemMapFs(), "/nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if metadata != nil {
		t.Errorf("expected no metadata, got %+v", metadata)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	original := Metadata{
		Built: time.Date(2021, 5, 26, 4, 15, 0, 0, time.UTC),
		Checksums: map[string]string{
			"nvdcve-1.1-2021.json": "sha256:0123456789abcdef",
			"nvdcpe-1.0.json":      "sha256:fedcba9876543210",
		},
	}

	if err := original.Write(fs, "/snapshot"); err != nil {
		t.Fatalf("unable to write metadata: %+v", err)
	}

	restored, err := NewMetadataFromDir(fs, "/snapshot")
	if err != nil {
		t.Fatalf("unable to read metadata back: %+v", err)
	}
	if restored == nil {
		t.Fatal("metadata not found after write")
	}

	for _, diff := range deep.Equal(*restored, original) {
		t.Errorf("metadata difference: %s", diff)
	}
}

func TestMetadataIsStale(t *testing.T) {
	now := time.Date(2021, 5, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		metadata *Metadata
		lifetime time.Duration
		expected bool
	}{
		{
			name:     "missing metadata is always stale",
			metadata: nil,
			lifetime: 24 * time.Hour,
			expected: true,
		},
		{
			name:     "fresh snapshot",
			metadata: &Metadata{Built: now.Add(-time.Hour)},
			lifetime: 24 * time.Hour,
			expected: false,
		},
		{
			name:     "old snapshot",
			metadata: &Metadata{Built: now.Add(-48 * time.Hour)},
			lifetime: 24 * time.Hour,
			expected: true,
		},
		{
			name:     "exactly at the lifetime",
			metadata: &Metadata{Built: now.Add(-24 * time.Hour)},
			lifetime: 24 * time.Hour,
			expected: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := test.metadata.IsStale(test.lifetime, now)
			if actual != test.expected {
				t.Errorf("expected stale=%v, got %v", test.expected, actual)
			}
		})
	}
}

func TestMetadataFileNames(t *testing.T) {
	metadata := Metadata{
		Checksums: map[string]string{
			"nvdcve-1.1-2019.json": "sha256:aa",
			"nvdcpe-1.0.json":      "sha256:bb",
			"nvdcve-1.1-2002.json": "sha256:cc",
		},
	}

	expected := []string{"nvdcpe-1.0.json", "nvdcve-1.1-2002.json", "nvdcve-1.1-2019.json"}
	for _, diff := range deep.Equal(metadata.FileNames(), expected) {
		t.Errorf("file name difference: %s", diff)
	}
}
