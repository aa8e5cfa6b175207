package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	schema "github.com/facebookincubator/nvdtools/cvefeed/nvd/schema"
	"github.com/scylladb/go-set/strset"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/cpe"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

// DecodeVulnerabilities reads one NVD CVE 1.1 feed and converts every item into a
// vulnerability record. Records parse their identifiers through the given cache so URIs
// repeated across feed years are parsed once.
func DecodeVulnerabilities(reader io.Reader, cache *cpe.Cache) ([]vulnerability.Vulnerability, error) {
	if cache == nil {
		cache = cpe.NewCache()
	}

	var feed schema.NVDCVEFeedJSON10
	if err := json.NewDecoder(reader).Decode(&feed); err != nil {
		return nil, fmt.Errorf("unable to decode vulnerability feed: %w", err)
	}

	out := make([]vulnerability.Vulnerability, 0, len(feed.CVEItems))
	for _, item := range feed.CVEItems {
		if item == nil || item.CVE == nil || item.CVE.CVEDataMeta == nil || item.CVE.CVEDataMeta.ID == "" {
			log.Debugf("skipping feed item with no vulnerability id")
			continue
		}

		vuln, err := convertItem(item, cache)
		if err != nil {
			return nil, fmt.Errorf("unable to convert %s: %w", item.CVE.CVEDataMeta.ID, err)
		}
		out = append(out, vuln)
	}
	return out, nil
}

func convertItem(item *schema.NVDCVEFeedJSON10DefCVEItem, cache *cpe.Cache) (vulnerability.Vulnerability, error) {
	vuln := vulnerability.Vulnerability{
		ID:      item.CVE.CVEDataMeta.ID,
		Metrics: convertMetrics(item.Impact),
		CWEs:    convertWeaknesses(item.CVE.Problemtype),
	}

	if item.PublishedDate != "" {
		published, err := time.Parse(schema.TimeLayout, item.PublishedDate)
		if err != nil {
			log.Debugf("unparseable published date for %s: %q", vuln.ID, item.PublishedDate)
		} else {
			vuln.Published = published
		}
	}

	if item.Configurations == nil {
		return vuln, nil
	}

	for _, node := range item.Configurations.Nodes {
		if node == nil {
			continue
		}

		vulnerable, platforms, err := partitionNode(node, cache)
		if err != nil {
			return vulnerability.Vulnerability{}, err
		}

		// vulnerable entries always count as identifiers in their own right; a
		// platform side additionally yields one platform-bound configuration each
		vuln.CPEs = append(vuln.CPEs, vulnerable...)
		if node.Operator != "AND" || len(platforms) == 0 || len(vulnerable) == 0 {
			continue
		}
		for _, platform := range platforms {
			vuln.Configurations = append(vuln.Configurations, vulnerability.Configuration{
				Platform:   platform,
				Components: vulnerable,
			})
		}
	}

	return vuln, nil
}

// partitionNode gathers every cpe_match entry in the node and its children, split by the
// vulnerable flag.
func partitionNode(node *schema.NVDCVEFeedJSON10DefNode, cache *cpe.Cache) (vulnerable, other []cpe.CPE, err error) {
	collect := func(matches []*schema.NVDCVEFeedJSON10DefCPEMatch) error {
		for _, match := range matches {
			if match == nil || match.Cpe23Uri == "" {
				continue
			}
			record, err := convertMatch(match, cache)
			if err != nil {
				return err
			}
			if match.Vulnerable {
				vulnerable = append(vulnerable, record)
			} else {
				other = append(other, record)
			}
		}
		return nil
	}

	if err := collect(node.CPEMatch); err != nil {
		return nil, nil, err
	}
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		if err := collect(child.CPEMatch); err != nil {
			return nil, nil, err
		}
	}
	return vulnerable, other, nil
}

func convertMatch(match *schema.NVDCVEFeedJSON10DefCPEMatch, cache *cpe.Cache) (cpe.CPE, error) {
	record, err := cache.Get(match.Cpe23Uri)
	if err != nil {
		return cpe.CPE{}, err
	}

	switch {
	case match.VersionStartIncluding != "":
		record.Start = &cpe.RangeBound{Kind: cpe.RangeIncluding, Version: match.VersionStartIncluding}
	case match.VersionStartExcluding != "":
		record.Start = &cpe.RangeBound{Kind: cpe.RangeExcluding, Version: match.VersionStartExcluding}
	}
	switch {
	case match.VersionEndIncluding != "":
		record.End = &cpe.RangeBound{Kind: cpe.RangeIncluding, Version: match.VersionEndIncluding}
	case match.VersionEndExcluding != "":
		record.End = &cpe.RangeBound{Kind: cpe.RangeExcluding, Version: match.VersionEndExcluding}
	}
	return record, nil
}

// convertMetrics prefers CVSSv3 scoring and falls back to CVSSv2.
func convertMetrics(impact *schema.NVDCVEFeedJSON10DefImpact) vulnerability.Metrics {
	if impact == nil {
		return vulnerability.Metrics{}
	}
	if v3 := impact.BaseMetricV3; v3 != nil && v3.CVSSV3 != nil {
		return vulnerability.Metrics{
			BaseScore:           v3.CVSSV3.BaseScore,
			Severity:            v3.CVSSV3.BaseSeverity,
			ImpactScore:         v3.ImpactScore,
			ExploitabilityScore: v3.ExploitabilityScore,
		}
	}
	if v2 := impact.BaseMetricV2; v2 != nil && v2.CVSSV2 != nil {
		return vulnerability.Metrics{
			BaseScore:           v2.CVSSV2.BaseScore,
			Severity:            v2.Severity,
			ImpactScore:         v2.ImpactScore,
			ExploitabilityScore: v2.ExploitabilityScore,
		}
	}
	return vulnerability.Metrics{}
}

func convertWeaknesses(problemType *schema.CVEJSON40Problemtype) []string {
	if problemType == nil {
		return nil
	}

	cwes := strset.New()
	for _, data := range problemType.ProblemtypeData {
		if data == nil {
			continue
		}
		for _, description := range data.Description {
			if description == nil || description.Value == "" {
				continue
			}
			cwes.Add(description.Value)
		}
	}
	if cwes.IsEmpty() {
		return nil
	}

	out := cwes.List()
	sort.Strings(out)
	return out
}
