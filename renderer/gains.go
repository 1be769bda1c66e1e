package renderer

import (
	"fmt"
	"strings"

	"github.com/geomat0101/vest"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// GainsMarkdown renders the FIFO realized gains of a year.
func GainsMarkdown(name string, r *vest.GainsReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Capital Gains of %s from %s to %s\n\n", name, r.Range.From, r.Range.To)
	fmt.Fprint(&b, "Method: fifo\n\n")
	if len(r.Rows) == 0 {
		fmt.Fprintln(&b, "No sale in the period.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Date Sold | Qty | Proceeds | Cost Basis | Gain | Acquired | Term |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|:---|:---|")
	for _, x := range r.Rows {
		row(&b, x.Date, x.Qty, x.Proceeds, x.Basis, x.Gain.SignedString(), x.BasisDate, x.Term)
	}
	row(&b, "**Total**", "**"+r.Qty.String()+"**", "**"+r.Proceeds.String()+"**", "**"+r.Basis.String()+"**", "**"+r.Gain.SignedString()+"**", "", "")
	return b.String()
}

// SalesMarkdown renders the lots matched by each sale.
func SalesMarkdown(sales []vest.Sale) string {
	var b strings.Builder
	for _, s := range sales {
		fmt.Fprintf(&b, "## Sold %v @ %v on %s\n\n", s.Qty, s.Price, s.Date)
		fmt.Fprintln(&b, "| Acquired | Qty | Price | Total | Commission |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
		for _, m := range s.Matches {
			row(&b, m.Date, m.Qty, m.Price, m.Total, m.Fee)
		}
		fmt.Fprintf(&b, "\nSell commission %v, basis %v, gain %s (%s term)\n\n", s.Fee, s.Basis, s.Gain.SignedString(), s.Term)
	}
	return b.String()
}
