package feed

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vulncert/vulncert/vulncert/cpe"
)

// cpeDictionary is the root of the NVD CPE 1.0 dictionary feed.
type cpeDictionary struct {
	Items []cpeDictionaryItem `json:"CPE_Items"`
}

type cpeDictionaryItem struct {
	Deprecated       bool       `json:"deprecated"`
	CPE23URI         string     `json:"cpe23Uri"`
	LastModifiedDate string     `json:"lastModifiedDate"`
	Titles           []cpeTitle `json:"titles"`
}

type cpeTitle struct {
	Title string `json:"title"`
	Lang  string `json:"lang"`
}

// DecodeDictionary reads the NVD CPE dictionary feed into identifier records, decorating
// each with its English title when published.
func DecodeDictionary(reader io.Reader, cache *cpe.Cache) ([]cpe.CPE, error) {
	if cache == nil {
		cache = cpe.NewCache()
	}

	var dictionary cpeDictionary
	if err := json.NewDecoder(reader).Decode(&dictionary); err != nil {
		return nil, fmt.Errorf("unable to decode identifier dictionary: %w", err)
	}

	records := make([]cpe.CPE, 0, len(dictionary.Items))
	for _, item := range dictionary.Items {
		if item.CPE23URI == "" {
			continue
		}
		record, err := cache.Get(item.CPE23URI)
		if err != nil {
			return nil, err
		}
		record.Title = englishTitle(item.Titles)
		records = append(records, record)
	}
	return records, nil
}

func englishTitle(titles []cpeTitle) string {
	for _, title := range titles {
		if title.Lang == "en_US" {
			return title.Title
		}
	}
	if len(titles) > 0 {
		return titles[0].Title
	}
	return ""
}
