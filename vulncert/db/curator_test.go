package db

import (
	"context"
	"fmt"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/scylladb/go-set/strset"
	"github.com/spf13/afero"
	"github.com/wagoodman/go-progress"

	"github.com/vulncert/vulncert/internal/file"
	"github.com/vulncert/vulncert/vulncert/db/feed"
)

const emptyVulnerabilityFeed = `{"CVE_Items": []}`

// testGetter fakes feed downloads: GetToDir drops the would-be extracted archive contents
// into the destination directory.
type testGetter struct {
	files map[string]string
	dirs  map[string]map[string]string
	calls *strset.Set
	fs    afero.Fs
}

func newTestGetter(fs afero.Fs, files map[string]string, dirs map[string]map[string]string) *testGetter {
	return &testGetter{
		files: files,
		dirs:  dirs,
		calls: strset.New(),
		fs:    fs,
	}
}

func (g *testGetter) GetFile(dst, src string, _ ...*progress.Manual) error {
	g.calls.Add(src)
	contents, ok := g.files[src]
	if !ok {
		return fmt.Errorf("no fixture for %s", src)
	}
	return afero.WriteFile(g.fs, dst, []byte(contents), 0644)
}

func (g *testGetter) GetToDir(dst, src string, _ ...*progress.Manual) error {
	g.calls.Add(src)
	extracted, ok := g.dirs[src]
	if !ok {
		return fmt.Errorf("no fixture for %s", src)
	}
	for name, contents := range extracted {
		if err := afero.WriteFile(g.fs, path.Join(dst, name), []byte(contents), 0644); err != nil {
			return err
		}
	}
	return nil
}

var testBuildTime = time.Date(2004, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCurator(fs afero.Fs, getter file.Getter, dbDir string) Curator {
	c := NewCurator(Config{
		DBDir: dbDir,
	})
	c.fs = fs
	c.downloader = getter
	c.now = func() time.Time { return testBuildTime }
	return c
}

// writeSnapshot stages feed files plus freshly computed metadata into the given directory.
func writeSnapshot(t *testing.T, c *Curator, dir string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		if err := afero.WriteFile(c.fs, path.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatalf("unable to write snapshot file: %+v", err)
		}
	}
	metadata, err := c.buildMetadata(dir)
	if err != nil {
		t.Fatalf("unable to build metadata: %+v", err)
	}
	if err := metadata.Write(c.fs, dir); err != nil {
		t.Fatalf("unable to write metadata: %+v", err)
	}
}

func goodSnapshotFiles() map[string]string {
	return map[string]string{
		"nvdcve-1.1-2002.json":  emptyVulnerabilityFeed,
		feed.DictionaryFileName: `{"CPE_Items": []}`,
	}
}

func TestCuratorFeedURLs(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCurator(fs, newTestGetter(fs, nil, nil), "/db")

	urls := c.feedURLs()
	expected := []string{
		"https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-2002.json.zip",
		"https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-2003.json.zip",
		"https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-2004.json.zip",
		DictionaryURL,
		MatchFeedURL,
	}
	if len(urls) != len(expected) {
		t.Fatalf("unexpected url count: %d != %d (%+v)", len(urls), len(expected), urls)
	}
	for i := range expected {
		if urls[i] != expected[i] {
			t.Errorf("unexpected url at %d: %q != %q", i, urls[i], expected[i])
		}
	}

	c.config.SkipMatchFeed = true
	urls = c.feedURLs()
	if len(urls) != len(expected)-1 {
		t.Errorf("expected the match feed to be skipped, got %+v", urls)
	}
	for _, u := range urls {
		if u == MatchFeedURL {
			t.Errorf("match feed url present despite being skipped")
		}
	}
}

func TestCuratorUpdate(t *testing.T) {
	fs := afero.NewMemMapFs()
	dirs := map[string]map[string]string{
		"https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-2002.json.zip": {"nvdcve-1.1-2002.json": emptyVulnerabilityFeed},
		"https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-2003.json.zip": {"nvdcve-1.1-2003.json": emptyVulnerabilityFeed},
		"https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-2004.json.zip": {"nvdcve-1.1-2004.json": emptyVulnerabilityFeed},
		DictionaryURL: {feed.DictionaryFileName: `{"CPE_Items": []}`},
		MatchFeedURL:  {feed.MatchFeedFileName: `{"matches": []}`},
	}
	getter := newTestGetter(fs, nil, dirs)
	c := newTestCurator(fs, getter, "/db")

	if err := c.Update(context.Background()); err != nil {
		t.Fatalf("update failed: %+v", err)
	}

	for src := range dirs {
		if !getter.calls.Has(src) {
			t.Errorf("never downloaded %s", src)
		}
	}

	for _, name := range []string{
		"nvdcve-1.1-2002.json",
		"nvdcve-1.1-2003.json",
		"nvdcve-1.1-2004.json",
		feed.DictionaryFileName,
		feed.MatchFeedFileName,
		MetadataFileName,
	} {
		if !file.Exists(fs, path.Join("/db", name)) {
			t.Errorf("missing activated file %s", name)
		}
	}

	metadata, err := NewMetadataFromDir(fs, "/db")
	if err != nil || metadata == nil {
		t.Fatalf("no metadata after update: %+v", err)
	}
	if !metadata.Built.Equal(testBuildTime) {
		t.Errorf("unexpected built time: %s", metadata.Built)
	}
	if len(metadata.Checksums) != 5 {
		t.Errorf("unexpected checksum count: %d", len(metadata.Checksums))
	}
	for name, digest := range metadata.Checksums {
		if !strings.HasPrefix(digest, "sha256:") {
			t.Errorf("unexpected digest for %s: %q", name, digest)
		}
	}

	if err := c.Validate(); err != nil {
		t.Errorf("activated snapshot failed validation: %+v", err)
	}
}

func TestCuratorUpdateDownloadFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	// the 2004 feed is missing from the fixtures, so its download fails
	dirs := map[string]map[string]string{
		"https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-2002.json.zip": {"nvdcve-1.1-2002.json": emptyVulnerabilityFeed},
		"https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-2003.json.zip": {"nvdcve-1.1-2003.json": emptyVulnerabilityFeed},
		DictionaryURL: {feed.DictionaryFileName: `{"CPE_Items": []}`},
		MatchFeedURL:  {feed.MatchFeedFileName: `{"matches": []}`},
	}
	c := newTestCurator(fs, newTestGetter(fs, nil, dirs), "/db")

	err := c.Update(context.Background())
	if err == nil {
		t.Fatal("expected update to fail")
	}
	if !strings.Contains(err.Error(), "nvdcve-1.1-2004.json.zip") {
		t.Errorf("error does not name the failed feed: %v", err)
	}

	if file.Exists(fs, path.Join("/db", MetadataFileName)) {
		t.Error("a failed update must not activate a snapshot")
	}
}

func TestCuratorValidate(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		corrupt func(t *testing.T, c *Curator, dir string)
		errLike string
	}{
		{
			name:  "good snapshot",
			files: goodSnapshotFiles(),
		},
		{
			name:  "tampered feed file",
			files: goodSnapshotFiles(),
			corrupt: func(t *testing.T, c *Curator, dir string) {
				if err := afero.WriteFile(c.fs, path.Join(dir, "nvdcve-1.1-2002.json"), []byte(`{"CVE_Items": [{}]}`), 0644); err != nil {
					t.Fatalf("unable to tamper with feed: %+v", err)
				}
			},
			errLike: "bad feed checksum",
		},
		{
			name:  "missing metadata",
			files: goodSnapshotFiles(),
			corrupt: func(t *testing.T, c *Curator, dir string) {
				if err := c.fs.Remove(path.Join(dir, MetadataFileName)); err != nil {
					t.Fatalf("unable to remove metadata: %+v", err)
				}
			},
			errLike: "metadata not found",
		},
		{
			name: "no vulnerability feeds",
			files: map[string]string{
				feed.DictionaryFileName: `{"CPE_Items": []}`,
			},
			errLike: "no vulnerability feeds",
		},
		{
			name: "missing dictionary",
			files: map[string]string{
				"nvdcve-1.1-2002.json": emptyVulnerabilityFeed,
			},
			errLike: "missing the identifier dictionary",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			c := newTestCurator(fs, newTestGetter(fs, nil, nil), "/db")

			writeSnapshot(t, &c, "/staged", test.files)
			if test.corrupt != nil {
				test.corrupt(t, &c, "/staged")
			}

			err := c.validate("/staged")
			if test.errLike == "" {
				if err != nil {
					t.Errorf("expected no error, got: %+v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error but got none")
			}
			if !strings.Contains(err.Error(), test.errLike) {
				t.Errorf("error %q does not contain %q", err.Error(), test.errLike)
			}
		})
	}
}

func TestCuratorIsUpdateAvailable(t *testing.T) {
	tests := []struct {
		name     string
		built    time.Time
		none     bool
		expected bool
	}{
		{
			name:     "no snapshot",
			none:     true,
			expected: true,
		},
		{
			name:     "fresh snapshot",
			built:    testBuildTime.Add(-time.Hour),
			expected: false,
		},
		{
			name:     "stale snapshot",
			built:    testBuildTime.Add(-48 * time.Hour),
			expected: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			c := newTestCurator(fs, newTestGetter(fs, nil, nil), "/db")

			if !test.none {
				metadata := Metadata{Built: test.built, Checksums: map[string]string{}}
				if err := metadata.Write(fs, "/db"); err != nil {
					t.Fatalf("unable to write metadata: %+v", err)
				}
			}

			actual, _, err := c.IsUpdateAvailable()
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if actual != test.expected {
				t.Errorf("expected update=%v, got %v", test.expected, actual)
			}
		})
	}
}

func TestCuratorImportFrom(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCurator(fs, newTestGetter(fs, nil, nil), "/db")

	// an extracted snapshot with no metadata, as an air-gapped transfer would look
	for name, contents := range goodSnapshotFiles() {
		if err := afero.WriteFile(fs, path.Join("/transfer", name), []byte(contents), 0644); err != nil {
			t.Fatalf("unable to write transfer file: %+v", err)
		}
	}

	if err := c.ImportFrom("/transfer"); err != nil {
		t.Fatalf("import failed: %+v", err)
	}

	if err := c.Validate(); err != nil {
		t.Errorf("imported snapshot failed validation: %+v", err)
	}

	metadata, err := NewMetadataFromDir(fs, "/db")
	if err != nil || metadata == nil {
		t.Fatalf("no metadata after import: %+v", err)
	}
	if len(metadata.Checksums) != len(goodSnapshotFiles()) {
		t.Errorf("unexpected checksum count: %d", len(metadata.Checksums))
	}
}

func TestCuratorStatus(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCurator(fs, newTestGetter(fs, nil, nil), "/db")

	status := c.Status()
	if status.Err == nil {
		t.Error("expected a status error with no snapshot present")
	}

	writeSnapshot(t, &c, "/db", goodSnapshotFiles())

	status = c.Status()
	if status.Err != nil {
		t.Errorf("unexpected status error: %+v", status.Err)
	}
	if !status.Built.Equal(testBuildTime) {
		t.Errorf("unexpected built time: %s", status.Built)
	}
	if status.Location != "/db" {
		t.Errorf("unexpected location: %s", status.Location)
	}
	expectedFeeds := []string{feed.DictionaryFileName, "nvdcve-1.1-2002.json"}
	if len(status.Feeds) != len(expectedFeeds) {
		t.Fatalf("unexpected feeds: %+v", status.Feeds)
	}
	for i := range expectedFeeds {
		if status.Feeds[i] != expectedFeeds[i] {
			t.Errorf("unexpected feed at %d: %q != %q", i, status.Feeds[i], expectedFeeds[i])
		}
	}
}

func TestCuratorDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCurator(fs, newTestGetter(fs, nil, nil), "/db")
	writeSnapshot(t, &c, "/db", goodSnapshotFiles())

	if err := c.Delete(); err != nil {
		t.Fatalf("delete failed: %+v", err)
	}
	if file.Exists(fs, path.Join("/db", MetadataFileName)) {
		t.Error("snapshot still present after delete")
	}
}

func TestCuratorLoader(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCurator(fs, newTestGetter(fs, nil, nil), "/db")

	_, err := c.Loader(nil)
	if err == nil {
		t.Fatal("expected loader construction to fail with no snapshot")
	}
	if !strings.Contains(err.Error(), "run db update") {
		t.Errorf("error does not point at db update: %v", err)
	}

	writeSnapshot(t, &c, "/db", goodSnapshotFiles())

	loader, err := c.Loader(nil)
	if err != nil {
		t.Fatalf("loader construction failed: %+v", err)
	}

	corpus, err := loader.LoadCorpus()
	if err != nil {
		t.Fatalf("unable to load corpus from activated snapshot: %+v", err)
	}
	if corpus.Len() != 0 {
		t.Errorf("unexpected corpus size: %d", corpus.Len())
	}
}
