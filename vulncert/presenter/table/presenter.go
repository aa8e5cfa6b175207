// Package table renders a match result as a columnar summary for terminals.
package table

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/vulncert/vulncert/vulncert"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

type Presenter struct {
	result vulncert.Result
}

func NewPresenter(result vulncert.Result) *Presenter {
	return &Presenter{
		result: result,
	}
}

// Present writes one row per product and vulnerability pair, or a short note when the
// scan came back clean.
func (pres *Presenter) Present(output io.Writer) error {
	var rows [][]string
	for _, product := range pres.result.Products {
		for _, vuln := range product.Vulnerabilities {
			rows = append(rows, newRow(product, vuln))
		}
	}

	if len(rows) == 0 {
		_, err := io.WriteString(output, "No vulnerabilities found\n")
		return err
	}

	table := tablewriter.NewWriter(output)
	table.SetHeader([]string{"Product", "Vendor", "Vulnerability", "Severity", "Score"})

	// borderless, columns separated by padding only
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.AppendBulk(rows)
	table.Render()

	return nil
}

func newRow(product vulncert.ProductResult, vuln vulnerability.Vulnerability) []string {
	return []string{
		product.Product.Name,
		product.Product.Vendor,
		vuln.ID,
		vulnerability.ParseSeverity(vuln.Metrics.Severity).String(),
		strconv.FormatFloat(vuln.Metrics.BaseScore, 'f', 1, 64),
	}
}
