package db

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v2"
	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"
	"golang.org/x/sync/semaphore"

	"github.com/vulncert/vulncert/internal/bus"
	"github.com/vulncert/vulncert/internal/file"
	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/db/feed"
	"github.com/vulncert/vulncert/vulncert/db/store"
	"github.com/vulncert/vulncert/vulncert/event"
)

const (
	// FeedURLTemplate is the per-year vulnerability feed location (the format verb is the year).
	FeedURLTemplate = "https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-%d.json.zip"

	// DictionaryURL is the identifier dictionary feed location.
	DictionaryURL = "https://nvd.nist.gov/feeds/json/cpe/1.0/nvdcpe-1.0.json.zip"

	// MatchFeedURL is the identifier match feed location.
	MatchFeedURL = "https://nvd.nist.gov/feeds/json/cpematch/1.0/nvdcpematch-1.0.json.zip"

	// FirstFeedYear is the earliest year the upstream publishes a vulnerability feed for.
	FirstFeedYear = 2002

	// DefaultStaleAfter is how old a snapshot may grow before update checks report it stale.
	DefaultStaleAfter = 24 * time.Hour

	maxConcurrentDownloads = 4
)

type Config struct {
	DBDir           string
	FeedURLTemplate string
	DictionaryURL   string
	MatchFeedURL    string
	SkipMatchFeed   bool
	StaleAfter      time.Duration
}

// Curator keeps the local feed snapshot healthy: it downloads feeds, stages and verifies
// them, swaps them into the snapshot directory, and vouches for the snapshot before loads.
type Curator struct {
	fs         afero.Fs
	config     Config
	downloader file.Getter
	now        func() time.Time
}

func NewCurator(cfg Config) Curator {
	if cfg.FeedURLTemplate == "" {
		cfg.FeedURLTemplate = FeedURLTemplate
	}
	if cfg.DictionaryURL == "" {
		cfg.DictionaryURL = DictionaryURL
	}
	if cfg.MatchFeedURL == "" {
		cfg.MatchFeedURL = MatchFeedURL
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}

	return Curator{
		config:     cfg,
		fs:         afero.NewOsFs(),
		downloader: file.NewGetter(cleanhttp.DefaultClient()),
		now:        time.Now,
	}
}

// Loader returns a feed loader over the active snapshot, refusing to serve a snapshot that
// fails integrity checks.
func (c *Curator) Loader(cache *cpe.Cache) (*feed.Loader, error) {
	err := c.Validate()
	if err != nil {
		return nil, fmt.Errorf("feed snapshot is invalid (run db update to correct): %+v", err)
	}

	return feed.NewLoader(c.fs, c.config.DBDir, cache), nil
}

// Metadata returns the active snapshot metadata, or nil when no snapshot is present.
func (c *Curator) Metadata() (*Metadata, error) {
	return NewMetadataFromDir(c.fs, c.config.DBDir)
}

// StorePath is where the derived-data store for the active snapshot lives.
func (c *Curator) StorePath() string {
	return path.Join(c.config.DBDir, store.FileName)
}

type Status struct {
	Built    time.Time `json:"built"`
	Location string    `json:"location"`
	Feeds    []string  `json:"feeds"`
	Err      error     `json:"error"`
}

func (c *Curator) Status() Status {
	metadata, err := NewMetadataFromDir(c.fs, c.config.DBDir)
	if err != nil {
		return Status{
			Err: fmt.Errorf("failed to parse snapshot metadata (%s): %w", c.config.DBDir, err),
		}
	}
	if metadata == nil {
		return Status{
			Err: fmt.Errorf("snapshot metadata not found at %q", c.config.DBDir),
		}
	}

	return Status{
		Built:    metadata.Built,
		Location: c.config.DBDir,
		Feeds:    metadata.FileNames(),
		Err:      c.Validate(),
	}
}

func (c *Curator) Delete() error {
	return c.fs.RemoveAll(c.config.DBDir)
}

// IsUpdateAvailable reports whether the active snapshot is absent or past its configured
// lifetime. The upstream feeds are republished continuously, so age is the only signal.
func (c *Curator) IsUpdateAvailable() (bool, *Metadata, error) {
	log.Debugf("checking whether the feed snapshot is stale")

	current, err := NewMetadataFromDir(c.fs, c.config.DBDir)
	if err != nil {
		return false, nil, fmt.Errorf("current snapshot metadata corrupt: %w", err)
	}

	if current.IsStale(c.config.StaleAfter, c.now()) {
		log.Debugf("feed snapshot update needed")
		return true, current, nil
	}
	log.Debugf("feed snapshot is fresh enough")

	return false, current, nil
}

// Validate checks the active snapshot for file integrity and completeness.
func (c *Curator) Validate() error {
	return c.validate(c.config.DBDir)
}

// Update downloads every feed, stages them as a new snapshot, and activates it.
func (c *Curator) Update(ctx context.Context) error {
	urls := c.feedURLs()

	stage := &progress.Stage{
		Current: "checking feed sources",
	}
	downloadProgress := &progress.Manual{
		Total: int64(len(urls)),
	}
	stageProgress := &progress.Manual{
		Total: 1,
	}
	aggregateProgress := progress.NewAggregator(progress.DefaultStrategy, downloadProgress, stageProgress)

	bus.Publish(partybus.Event{
		Type: event.UpdateVulnerabilityDatabase,
		Value: progress.StagedProgressable(&struct {
			progress.Stager
			progress.Progressable
		}{
			Stager:       progress.Stager(stage),
			Progressable: progress.Progressable(aggregateProgress),
		}),
	})

	defer downloadProgress.SetCompleted()
	defer stageProgress.SetCompleted()

	// note: the temp directory is persisted upon download/validation/activation failure to allow for investigation
	tempRoot, err := ioutil.TempDir("", "vulncert-scratch")
	if err != nil {
		return fmt.Errorf("unable to create feed temp dir: %w", err)
	}

	stage.Current = "downloading feeds"
	downloadDirs, err := c.download(ctx, tempRoot, urls, downloadProgress)
	if err != nil {
		return err
	}

	stage.Current = "staging snapshot"
	stagingDir, err := c.assemble(tempRoot, downloadDirs)
	if err != nil {
		return err
	}

	stage.Current = "validating snapshot"
	err = c.validate(stagingDir)
	if err != nil {
		return err
	}

	stage.Current = "activating snapshot"
	err = c.activate(stagingDir)
	if err != nil {
		return err
	}
	stage.Current = "updated"

	log.Infof("activated feed snapshot with %d feeds", len(urls))

	return c.fs.RemoveAll(tempRoot)
}

// ImportFrom activates a snapshot from an already-extracted directory of feed files,
// supporting hosts that cannot reach the feed sources directly. Metadata is regenerated
// from the directory contents.
func (c *Curator) ImportFrom(snapshotDir string) error {
	// note: the temp directory is persisted upon validation/activation failure to allow for investigation
	tempRoot, err := ioutil.TempDir("", "vulncert-import")
	if err != nil {
		return fmt.Errorf("unable to create feed temp dir: %w", err)
	}

	stagingDir := path.Join(tempRoot, "staged")
	err = file.CopyDir(c.fs, snapshotDir, stagingDir)
	if err != nil {
		return fmt.Errorf("unable to stage snapshot from %s: %w", snapshotDir, err)
	}

	metadata, err := c.buildMetadata(stagingDir)
	if err != nil {
		return err
	}
	err = metadata.Write(c.fs, stagingDir)
	if err != nil {
		return err
	}

	err = c.validate(stagingDir)
	if err != nil {
		return err
	}

	err = c.activate(stagingDir)
	if err != nil {
		return err
	}

	return c.fs.RemoveAll(tempRoot)
}

// feedURLs enumerates every source to download: one vulnerability feed per year since the
// first published year, the identifier dictionary, and (unless skipped) the match feed.
func (c *Curator) feedURLs() []string {
	currentYear := c.now().UTC().Year()

	var urls []string
	for year := FirstFeedYear; year <= currentYear; year++ {
		urls = append(urls, fmt.Sprintf(c.config.FeedURLTemplate, year))
	}
	urls = append(urls, c.config.DictionaryURL)
	if !c.config.SkipMatchFeed {
		urls = append(urls, c.config.MatchFeedURL)
	}
	return urls
}

// download fetches every feed archive concurrently, each into its own directory under
// tempRoot (the getter extracts archives in place).
func (c *Curator) download(ctx context.Context, tempRoot string, urls []string, monitor *progress.Manual) ([]string, error) {
	var errs *multierror.Error
	var lock sync.Mutex
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(maxConcurrentDownloads)

	dirs := make([]string, len(urls))
	for i, src := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("unable to start feed download: %w", err))
			break
		}

		dir := path.Join(tempRoot, fmt.Sprintf("feed-%d", i))
		dirs[i] = dir

		wg.Add(1)
		go func(dir, src string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := c.fs.MkdirAll(dir, 0755); err != nil {
				lock.Lock()
				errs = multierror.Append(errs, fmt.Errorf("unable to create download dir for %s: %w", src, err))
				lock.Unlock()
				return
			}

			log.Debugf("downloading feed %s", src)
			if err := c.downloader.GetToDir(dir, src); err != nil {
				lock.Lock()
				errs = multierror.Append(errs, fmt.Errorf("unable to download feed %s: %w", src, err))
				lock.Unlock()
				return
			}

			lock.Lock()
			monitor.N++
			lock.Unlock()
		}(dir, src)
	}
	wg.Wait()

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return dirs, nil
}

// assemble flattens the per-download directories into one staged snapshot and writes its
// metadata.
func (c *Curator) assemble(tempRoot string, downloadDirs []string) (string, error) {
	stagingDir := path.Join(tempRoot, "staged")
	if err := c.fs.MkdirAll(stagingDir, 0755); err != nil {
		return "", fmt.Errorf("unable to create staging dir: %w", err)
	}

	for _, dir := range downloadDirs {
		entries, err := afero.ReadDir(c.fs, dir)
		if err != nil {
			return "", fmt.Errorf("unable to read download dir (%s): %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			src := path.Join(dir, entry.Name())
			dst := path.Join(stagingDir, entry.Name())
			if err := file.CopyFile(c.fs, src, dst); err != nil {
				return "", fmt.Errorf("unable to stage feed file (%s): %w", src, err)
			}
		}
	}

	metadata, err := c.buildMetadata(stagingDir)
	if err != nil {
		return "", err
	}
	if err := metadata.Write(c.fs, stagingDir); err != nil {
		return "", err
	}

	return stagingDir, nil
}

func (c *Curator) buildMetadata(dir string) (*Metadata, error) {
	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read staged snapshot (%s): %w", dir, err)
	}

	checksums := make(map[string]string)
	for _, entry := range entries {
		// the derived-data store is rebuilt from the feeds, never checksummed with them
		if entry.IsDir() || entry.Name() == MetadataFileName || entry.Name() == store.FileName {
			continue
		}
		digest, err := file.HashFile(c.fs, path.Join(dir, entry.Name()), sha256.New())
		if err != nil {
			return nil, err
		}
		checksums[entry.Name()] = "sha256:" + digest
	}

	return &Metadata{
		Built:     c.now().UTC(),
		Checksums: checksums,
	}, nil
}

func (c *Curator) validate(dir string) error {
	metadata, err := NewMetadataFromDir(c.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to parse snapshot metadata (%s): %w", dir, err)
	}
	if metadata == nil {
		return fmt.Errorf("snapshot metadata not found: %s", dir)
	}

	var vulnerabilityFeeds int
	for _, name := range metadata.FileNames() {
		target := path.Join(dir, name)
		valid, actualHash, err := file.ValidateByHash(c.fs, target, metadata.Checksums[name])
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("bad feed checksum (%s): %q vs %q", target, metadata.Checksums[name], actualHash)
		}

		if matched, _ := doublestar.Match(feed.VulnerabilityFileGlob, name); matched {
			vulnerabilityFeeds++
		}
	}

	if vulnerabilityFeeds == 0 {
		return fmt.Errorf("snapshot contains no vulnerability feeds (%s)", dir)
	}
	if !file.Exists(c.fs, path.Join(dir, feed.DictionaryFileName)) {
		return fmt.Errorf("snapshot is missing the identifier dictionary (%s)", dir)
	}

	return nil
}

// activate swaps the staged snapshot into the application snapshot directory.
func (c *Curator) activate(stagingDir string) error {
	_, err := c.fs.Stat(c.config.DBDir)
	if !os.IsNotExist(err) {
		// remove any previous snapshot
		err = c.Delete()
		if err != nil {
			return fmt.Errorf("failed to purge existing snapshot: %w", err)
		}
	}

	// ensure there is an application snapshot directory
	err = c.fs.MkdirAll(c.config.DBDir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return file.CopyDir(c.fs, stagingDir, c.config.DBDir)
}
