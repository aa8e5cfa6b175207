package vulncert

import (
	"context"
	"fmt"
	"sort"

	"github.com/scylladb/go-set/strset"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/match"
	"github.com/vulncert/vulncert/vulncert/matcher"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

// ProductResult ties one certified product description to its matched identifiers and the
// vulnerabilities those identifiers resolve to.
type ProductResult struct {
	Product         matcher.Product               `json:"product"`
	Matches         []match.Match                 `json:"matches"`
	Vulnerabilities []vulnerability.Vulnerability `json:"vulnerabilities"`
}

// Result is the outcome of analyzing a batch of certified products, in input order.
type Result struct {
	Products []ProductResult `json:"products"`
}

// VulnerabilityCount returns the number of distinct vulnerability ids across all products.
func (r Result) VulnerabilityCount() int {
	ids := strset.New()
	for _, product := range r.Products {
		for _, vuln := range product.Vulnerabilities {
			ids.Add(vuln.ID)
		}
	}
	return ids.Size()
}

// HasSeverityAtLeast indicates whether any resolved vulnerability meets the given severity.
func (r Result) HasSeverityAtLeast(threshold vulnerability.Severity) bool {
	for _, product := range r.Products {
		for _, vuln := range product.Vulnerabilities {
			if vulnerability.ParseSeverity(vuln.Metrics.Severity) >= threshold {
				return true
			}
		}
	}
	return false
}

// MatchedURIs unions every matched identifier URI across all products.
func MatchedURIs(matches map[string]match.Matches) *strset.Set {
	uris := strset.New()
	for _, productMatches := range matches {
		uris.Add(productMatches.URIs()...)
	}
	return uris
}

// FindVulnerabilities resolves each product's matched identifiers against the store's
// vulnerability lookup. Products keep their input order; each product's vulnerabilities are
// sorted by id.
func FindVulnerabilities(store *Store, products []matcher.Product, matches map[string]match.Matches) (Result, error) {
	result := Result{
		Products: make([]ProductResult, 0, len(products)),
	}

	for _, product := range products {
		key, err := product.Key()
		if err != nil {
			return Result{}, fmt.Errorf("unable to key product %q: %w", product.Name, err)
		}

		productMatches := matches[key]
		ids := store.Lookup.Resolve(strset.New(productMatches.URIs()...)).List()
		sort.Strings(ids)

		vulns := make([]vulnerability.Vulnerability, 0, len(ids))
		for _, id := range ids {
			vuln, ok := store.Corpus.Get(id)
			if !ok {
				// only possible when the corpus was mutated after the lookup was built
				log.Warnf("vulnerability %s resolved but absent from the corpus; skipping", id)
				continue
			}
			vulns = append(vulns, vuln)
		}

		result.Products = append(result.Products, ProductResult{
			Product:         product,
			Matches:         productMatches.Sorted(),
			Vulnerabilities: vulns,
		})
	}

	log.Infof("resolved %d vulnerabilities across %d products", result.VulnerabilityCount(), len(result.Products))
	return result, nil
}

// Analyze matches every product against the identifier index and resolves the matches to
// vulnerabilities in one pass.
func Analyze(ctx context.Context, store *Store, cfg matcher.Config, products []matcher.Product) (Result, error) {
	matches, err := MatchCertifiedProducts(ctx, store, cfg, products)
	if err != nil {
		return Result{}, err
	}
	return FindVulnerabilities(store, products, matches)
}
