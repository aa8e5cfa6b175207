//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-test/deep"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/vulncert/vulncert/vulncert"
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/db"
	"github.com/vulncert/vulncert/vulncert/db/store"
	"github.com/vulncert/vulncert/vulncert/db/store/writer"
	"github.com/vulncert/vulncert/vulncert/matcher"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

const (
	mq91URI        = "cpe:2.3:a:ibm:mq:9.1:*:*:*:*:*:*:*"
	websphere70URI = "cpe:2.3:a:ibm:websphere_application_server:7.0:*:*:*:*:*:*:*"
	zos110URI      = `cpe:2.3:o:ibm:z\/os:1.10:*:*:*:*:*:*:*`
	rhel81URI      = "cpe:2.3:o:redhat:enterprise_linux:8.1:*:*:*:*:*:*:*"
)

func testProducts() []matcher.Product {
	return []matcher.Product{
		{ID: "cert-1", Vendor: "IBM Corporation", Name: "IBM MQ", Versions: []string{"9.1"}},
		{ID: "cert-2", Vendor: "Red Hat, Inc.", Name: "Red Hat Enterprise Linux", Versions: []string{"8.1"}},
		{ID: "cert-3", Vendor: "IBM Corporation", Name: "WebSphere Application Server for z/OS", Versions: []string{"7.0", "1.10"}},
		{ID: "cert-4", Vendor: "Initech", Name: "TPS Reporting Suite", Versions: []string{"1.0"}},
	}
}

// importSnapshot activates the fixture snapshot in a scratch directory and returns the
// curator config pointing at it.
func importSnapshot(t *testing.T) db.Config {
	t.Helper()
	cfg := db.Config{
		DBDir: filepath.Join(t.TempDir(), "db"),
	}
	curator := db.NewCurator(cfg)
	if err := curator.ImportFrom("test-fixtures/snapshot"); err != nil {
		t.Fatalf("unable to import snapshot fixture: %+v", err)
	}
	return cfg
}

// assertProductResult compares matched URIs and resolved vulnerability ids for one product,
// ignoring match rank (scores are a scoring-library detail).
func assertProductResult(t *testing.T, result vulncert.ProductResult, wantURIs, wantVulnIDs []string) {
	t.Helper()

	gotURIs := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		gotURIs = append(gotURIs, m.CPE.URI)
	}
	sort.Strings(gotURIs)
	sort.Strings(wantURIs)
	for _, d := range deep.Equal(wantURIs, gotURIs) {
		t.Errorf("match diff (%s): %+v", result.Product.ID, d)
	}

	gotIDs := make([]string, 0, len(result.Vulnerabilities))
	for _, vuln := range result.Vulnerabilities {
		gotIDs = append(gotIDs, vuln.ID)
	}
	for _, d := range deep.Equal(wantVulnIDs, gotIDs) {
		t.Errorf("vulnerability diff (%s): %+v", result.Product.ID, d)
	}
}

func TestAnalyzeSnapshot(t *testing.T) {
	cfg := importSnapshot(t)

	feedStore, err := vulncert.LoadFeeds(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("unable to load feeds: %+v", err)
	}

	result, err := vulncert.Analyze(context.Background(), feedStore, matcher.DefaultConfig(), testProducts())
	if err != nil {
		t.Fatalf("unable to analyze products: %+v", err)
	}

	if len(result.Products) != 4 {
		t.Fatalf("unexpected product count: %d", len(result.Products))
	}

	// the versioned MQ identifier resolves through the feed-provided expansion of the
	// version range published with the CVE
	assertProductResult(t, result.Products[0], []string{mq91URI}, []string{"CVE-2019-4513"})

	// "Red Hat, Inc." resolves to the joined dictionary vendor key
	assertProductResult(t, result.Products[1], []string{rhel81URI}, []string{"CVE-2019-18397"})

	// platform and component identifiers matched together satisfy the compound configuration
	assertProductResult(t, result.Products[2], []string{websphere70URI, zos110URI}, []string{"CVE-2010-2325"})

	// an unknown vendor yields no matches and no vulnerabilities
	assertProductResult(t, result.Products[3], []string{}, []string{})

	if got := result.VulnerabilityCount(); got != 3 {
		t.Errorf("unexpected distinct vulnerability count: %d", got)
	}
	if !result.HasSeverityAtLeast(vulnerability.CriticalSeverity) {
		t.Errorf("expected a critical vulnerability in the result")
	}

	if len(result.Products[0].Vulnerabilities) == 1 {
		vuln := result.Products[0].Vulnerabilities[0]
		if vuln.Metrics.Severity != "CRITICAL" {
			t.Errorf("unexpected severity: %q", vuln.Metrics.Severity)
		}
		if vuln.Metrics.BaseScore != 9.8 {
			t.Errorf("unexpected base score: %v", vuln.Metrics.BaseScore)
		}
		if vuln.Published.Year() != 2019 {
			t.Errorf("unexpected published date: %v", vuln.Published)
		}
		for _, d := range deep.Equal([]string{"CWE-89"}, vuln.CWEs) {
			t.Errorf("CWE diff: %+v", d)
		}
	}
}

func TestAnalyzeFromFeedCache(t *testing.T) {
	cfg := importSnapshot(t)

	fresh, err := vulncert.LoadFeeds(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("unable to load feeds: %+v", err)
	}

	cachePath := filepath.Join(cfg.DBDir, store.FileName)
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected a feed cache at %s: %+v", cachePath, err)
	}

	cached, err := vulncert.LoadFeeds(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("unable to load feeds from cache: %+v", err)
	}

	freshResult, err := vulncert.Analyze(context.Background(), fresh, matcher.DefaultConfig(), testProducts())
	if err != nil {
		t.Fatalf("unable to analyze products: %+v", err)
	}
	cachedResult, err := vulncert.Analyze(context.Background(), cached, matcher.DefaultConfig(), testProducts())
	if err != nil {
		t.Fatalf("unable to analyze products from cache: %+v", err)
	}

	expected, err := json.MarshalIndent(freshResult, "", "  ")
	if err != nil {
		t.Fatalf("unable to marshal result: %+v", err)
	}
	actual, err := json.MarshalIndent(cachedResult, "", "  ")
	if err != nil {
		t.Fatalf("unable to marshal result: %+v", err)
	}

	if string(expected) != string(actual) {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(expected), string(actual), true)
		t.Errorf("cached analysis diverged from fresh parse:\n%s", dmp.DiffPrettyText(diffs))
	}
}

// TestFeedCacheServesLoads plants a sentinel record directly in the cache and checks a later
// load surfaces it, proving loads are served from the cache rather than reparsed.
func TestFeedCacheServesLoads(t *testing.T) {
	cfg := importSnapshot(t)

	if _, err := vulncert.LoadFeeds(context.Background(), cfg, false); err != nil {
		t.Fatalf("unable to load feeds: %+v", err)
	}

	cachePath := filepath.Join(cfg.DBDir, store.FileName)
	cacheStore, cleanupFn, err := writer.New(cachePath, false)
	if err != nil {
		t.Fatalf("unable to open feed cache: %+v", err)
	}
	sentinel := vulnerability.Vulnerability{
		ID: "CVE-2099-0001",
		CPEs: []cpe.CPE{
			{URI: rhel81URI, Vendor: "redhat", Product: "enterprise_linux", Version: "8.1"},
		},
		Metrics: vulnerability.Metrics{BaseScore: 5.0, Severity: "MEDIUM"},
	}
	if err := cacheStore.AddVulnerability(sentinel); err != nil {
		t.Fatalf("unable to plant sentinel: %+v", err)
	}
	if err := cleanupFn(); err != nil {
		t.Fatalf("unable to close feed cache: %+v", err)
	}

	cached, err := vulncert.LoadFeeds(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("unable to load feeds from cache: %+v", err)
	}

	result, err := vulncert.Analyze(context.Background(), cached, matcher.DefaultConfig(), testProducts())
	if err != nil {
		t.Fatalf("unable to analyze products: %+v", err)
	}

	assertProductResult(t, result.Products[1], []string{rhel81URI}, []string{"CVE-2019-18397", "CVE-2099-0001"})
}
