package feed

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v2"
	"github.com/spf13/afero"

	"github.com/vulncert/vulncert/internal/file"
	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

const (
	// DictionaryFileName is the extracted NVD CPE dictionary feed.
	DictionaryFileName = "nvdcpe-1.0.json"

	// MatchFeedFileName is the extracted NVD CPE match feed (optional).
	MatchFeedFileName = "nvdcpematch-1.0.json"

	// VulnerabilityFileGlob matches the extracted per-year NVD CVE feeds.
	VulnerabilityFileGlob = "nvdcve-1.1-*.json"
)

// Loader reads extracted feed files out of a database snapshot directory.
type Loader struct {
	fs    afero.Fs
	dir   string
	cache *cpe.Cache
}

// NewLoader returns a loader over the given snapshot directory. The cache is shared across
// every decode so identifiers repeated between feeds parse once; pass the index's cache
// when an index will be built from the same snapshot.
func NewLoader(fs afero.Fs, dir string, cache *cpe.Cache) *Loader {
	if cache == nil {
		cache = cpe.NewCache()
	}
	return &Loader{
		fs:    fs,
		dir:   dir,
		cache: cache,
	}
}

// VulnerabilityFiles lists the per-year CVE feed files present in the snapshot, sorted by
// name (which orders them by year).
func (l *Loader) VulnerabilityFiles() ([]string, error) {
	entries, err := afero.ReadDir(l.fs, l.dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read feed directory %s: %w", l.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := doublestar.Match(VulnerabilityFileGlob, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("bad feed glob: %w", err)
		}
		if matched {
			paths = append(paths, filepath.Join(l.dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadCorpus decodes every per-year CVE feed in the snapshot into one corpus.
func (l *Loader) LoadCorpus() (*vulnerability.Corpus, error) {
	paths, err := l.VulnerabilityFiles()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no vulnerability feeds found in %s", l.dir)
	}

	corpus := vulnerability.NewCorpus()
	for _, p := range paths {
		vulns, err := l.loadVulnerabilityFile(p)
		if err != nil {
			return nil, err
		}
		corpus.Add(vulns...)
		log.Debugf("loaded %d vulnerabilities from %s", len(vulns), filepath.Base(p))
	}

	log.Infof("loaded %d vulnerabilities from %d feed files", corpus.Len(), len(paths))
	return corpus, nil
}

func (l *Loader) loadVulnerabilityFile(path string) ([]vulnerability.Vulnerability, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open vulnerability feed %s: %w", path, err)
	}
	defer log.CloseAndLogError(f, path)

	return DecodeVulnerabilities(f, l.cache)
}

// LoadDictionary decodes the identifier dictionary feed.
func (l *Loader) LoadDictionary() ([]cpe.CPE, error) {
	path := filepath.Join(l.dir, DictionaryFileName)
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open identifier dictionary %s: %w", path, err)
	}
	defer log.CloseAndLogError(f, path)

	records, err := DecodeDictionary(f, l.cache)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded %d identifier records", len(records))
	return records, nil
}

// LoadExpansionMap decodes the match feed when present. A snapshot without one yields a nil
// map, putting vulnerability lookup construction into unexpanded mode.
func (l *Loader) LoadExpansionMap() (*vulnerability.ExpansionMap, error) {
	path := filepath.Join(l.dir, MatchFeedFileName)
	if !file.Exists(l.fs, path) {
		log.Debugf("no identifier match feed in snapshot; lookup will index identifiers as-is")
		return nil, nil
	}

	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open identifier match feed %s: %w", path, err)
	}
	defer log.CloseAndLogError(f, path)

	expansion, err := DecodeExpansionMap(f, l.cache)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded %d identifier expansions", expansion.Len())
	return expansion, nil
}

// Cache exposes the parse cache shared by this loader's decodes.
func (l *Loader) Cache() *cpe.Cache {
	return l.cache
}
