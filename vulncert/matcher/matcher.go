package matcher

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/hashstructure/v2"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"
	"golang.org/x/sync/semaphore"

	"github.com/vulncert/vulncert/internal/bus"
	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/event"
	"github.com/vulncert/vulncert/vulncert/match"
)

// Monitor provides progress into an in-flight batch matching operation.
type Monitor struct {
	ProductsProcessed progress.Monitorable
	MatchesDiscovered progress.Monitorable
}

// IndexMonitor provides progress into a dictionary index (re)build.
type IndexMonitor struct {
	RecordsIndexed progress.Monitorable
}

// Config tunes how aggressively free-text descriptions are matched to dictionary records.
type Config struct {
	// MatchThreshold is the minimum similarity (0-100) a candidate must score on the first
	// pass. The version-relaxed retry always requires a perfect 100.
	MatchThreshold float64

	// MaxMatches caps how many ranked matches a single product may return.
	MaxMatches int

	// PairingStrategy selects how certificate versions pair with dictionary versions.
	PairingStrategy PairingStrategy
}

func DefaultConfig() Config {
	return Config{
		MatchThreshold:  80,
		MaxMatches:      10,
		PairingStrategy: SemanticPairing,
	}
}

// Matcher scores dictionary records against certified product descriptions with token-set
// and partial similarity ratios and returns the ranked survivors.
type Matcher struct {
	index  *Index
	config Config
}

func New(index *Index, config Config) (*Matcher, error) {
	if config.MatchThreshold < 0 || config.MatchThreshold > 100 {
		return nil, fmt.Errorf("match threshold must be within [0, 100]: got %v", config.MatchThreshold)
	}
	if config.MaxMatches <= 0 {
		return nil, fmt.Errorf("max matches must be positive: got %d", config.MaxMatches)
	}
	strategy, err := ParsePairingStrategy(string(config.PairingStrategy))
	if err != nil {
		return nil, err
	}
	config.PairingStrategy = strategy

	return &Matcher{
		index:  index,
		config: config,
	}, nil
}

// Match returns the ranked dictionary records for one certified product description. An
// unresolvable vendor or a description clearing no threshold yields an empty result, never
// an error.
func (m *Matcher) Match(vendor, name string, versions []string) match.Matches {
	return m.matchProduct(vendor, name, versions, true)
}

func (m *Matcher) matchProduct(vendor, name string, versions []string, relaxVersion bool) match.Matches {
	sanitizedVendor := discardTrademarks(vendor)
	sanitizedName := fullySanitize(name)
	if strings.TrimSpace(sanitizedName) == "" {
		return match.NewMatches()
	}

	resolved := m.index.ResolveVendors(sanitizedVendor)
	candidates := m.index.candidateRecords(resolved, versions, m.config.PairingStrategy)

	// the wildcard retry trades version evidence for a stricter score bar
	threshold := m.config.MatchThreshold
	if !relaxVersion {
		threshold = 100
	}

	resolvedVendors := resolved.List()
	sort.Strings(resolvedVendors)

	var kept []match.Match
	for _, candidate := range candidates {
		score := scoreCandidate(candidate, sanitizedName, resolvedVendors, versions)
		if score >= threshold {
			kept = append(kept, match.Match{
				CPE:        candidate,
				Score:      score,
				SearchedBy: sanitizedName,
			})
		}
	}

	if len(kept) == 0 && relaxVersion {
		return m.matchProduct(vendor, name, []string{"-"}, false)
	}

	// candidates are enumerated deterministically, so a stable sort keeps equal-score
	// candidates in enumeration order before the cap is applied
	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].Score > kept[b].Score
	})
	if len(kept) > m.config.MaxMatches {
		kept = kept[:m.config.MaxMatches]
	}

	return match.NewMatches(kept...)
}

// scoreCandidate takes the best of four similarity ratios: token-set and partial ratios of
// the sanitized product name against the record title (or a synthesized one), and of the
// vendor/version-stripped product name against the record's product attribute.
func scoreCandidate(candidate cpe.CPE, sanitizedName string, resolvedVendors, versions []string) float64 {
	title := candidate.Title
	if title == "" {
		title = candidate.Vendor + " " + candidate.Product + " " + candidate.Version
	}
	sanitizedTitle := fullySanitize(title)
	sanitizedProduct := fullySanitize(candidate.Product)
	stripped := stripVendorsAndVersions(sanitizedName, resolvedVendors, versions)

	best := fuzzy.TokenSetRatio(sanitizedName, sanitizedTitle)
	if r := fuzzy.PartialRatio(sanitizedName, sanitizedTitle); r > best {
		best = r
	}
	if r := fuzzy.TokenSetRatio(stripped, sanitizedProduct); r > best {
		best = r
	}
	if r := fuzzy.PartialRatio(stripped, sanitizedProduct); r > best {
		best = r
	}
	return float64(best)
}

// Product is one certified product description to be matched.
type Product struct {
	ID       string   `json:"id,omitempty"`
	Vendor   string   `json:"vendor"`
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

// Key returns the explicit product ID when present, otherwise a stable digest of the query
// fields so batch results can be keyed even for anonymous inputs.
func (p Product) Key() (string, error) {
	if p.ID != "" {
		return p.ID, nil
	}
	digest, err := hashstructure.Hash(p, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("could not derive product key for %q: %w", p.Name, err)
	}
	return fmt.Sprintf("%016x", digest), nil
}

// MatchAll fans product matching out across a bounded worker pool and returns results keyed
// by product. The index must be fully built before this is called; workers only read shared
// state.
func (m *Matcher) MatchAll(ctx context.Context, products []Product) (map[string]match.Matches, error) {
	results := make(map[string]match.Matches, len(products))
	productsProcessed, matchesDiscovered := trackProducts(int64(len(products)))

	var lock sync.Mutex
	var wg sync.WaitGroup
	var errs error
	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))

	for _, product := range products {
		if err := sem.Acquire(ctx, 1); err != nil {
			lock.Lock()
			errs = multierror.Append(errs, fmt.Errorf("matching canceled: %w", err))
			lock.Unlock()
			break
		}

		wg.Add(1)
		go func(p Product) {
			defer wg.Done()
			defer sem.Release(1)

			key, err := p.Key()
			if err != nil {
				lock.Lock()
				errs = multierror.Append(errs, err)
				lock.Unlock()
				return
			}

			matches := m.Match(p.Vendor, p.Name, p.Versions)
			log.Debugf("product %q: %d matches", p.Name, matches.Count())

			lock.Lock()
			results[key] = matches
			productsProcessed.N++
			matchesDiscovered.N += int64(matches.Count())
			lock.Unlock()
		}(product)
	}

	wg.Wait()
	productsProcessed.SetCompleted()
	matchesDiscovered.SetCompleted()

	return results, errs
}

func trackProducts(total int64) (*progress.Manual, *progress.Manual) {
	productsProcessed := progress.Manual{
		Total: total,
	}
	matchesDiscovered := progress.Manual{}

	bus.Publish(partybus.Event{
		Type: event.ProductMatchingStarted,
		Value: Monitor{
			ProductsProcessed: progress.Monitorable(&productsProcessed),
			MatchesDiscovered: progress.Monitorable(&matchesDiscovered),
		},
	})

	return &productsProcessed, &matchesDiscovered
}
