package matcher

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// documentHeader is the required first record of a certified products document.
var documentHeader = []string{"id", "vendor", "name", "versions"}

const versionSeparator = ";"

// ParseProducts reads a certified products document: CSV with an id,vendor,name,versions
// header, one product per record, and versions separated by ";". Every product must carry a
// vendor or a name so that matching has something to work with.
func ParseProducts(reader io.Reader) ([]Product, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = len(documentHeader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("products document is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse products document: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var products []Product
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse products document: %w", err)
		}

		product := Product{
			ID:       strings.TrimSpace(record[0]),
			Vendor:   strings.TrimSpace(record[1]),
			Name:     strings.TrimSpace(record[2]),
			Versions: splitVersions(record[3]),
		}
		if product.Vendor == "" && product.Name == "" {
			return nil, fmt.Errorf("product %d has neither a vendor nor a name", len(products)+1)
		}
		products = append(products, product)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("products document lists no products")
	}
	return products, nil
}

func validateHeader(header []string) error {
	for idx, name := range documentHeader {
		if !strings.EqualFold(strings.TrimSpace(header[idx]), name) {
			return fmt.Errorf("unexpected products document header %q (expected %q)",
				strings.Join(header, ","), strings.Join(documentHeader, ","))
		}
	}
	return nil
}

func splitVersions(field string) []string {
	var versions []string
	for _, version := range strings.Split(field, versionSeparator) {
		if version = strings.TrimSpace(version); version != "" {
			versions = append(versions, version)
		}
	}
	return versions
}
