package renderer

import (
	"fmt"
	"strings"

	"github.com/geomat0101/vest"
)

// ReportMarkdown renders the changes of an account between two dates.
func ReportMarkdown(name string, r *vest.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s from %s to %s\n\n", name, r.From, r.To)

	start := r.Start.Date.String()
	if !r.HasStart {
		start = "inception"
	}
	fmt.Fprintln(&b, "| Metric | "+start+" | "+r.End.Date.String()+" | Change |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	row(&b, "Position", r.Start.PositionQty, r.End.PositionQty, r.PositionQty)
	row(&b, "Break-even", r.Start.Breakeven, r.End.Breakeven, r.Breakeven.SignedString())
	row(&b, "Share price", r.Start.SharePrice, r.End.SharePrice, r.SharePrice.SignedString())
	row(&b, "Position cost", r.Start.PositionCost, r.End.PositionCost, r.PositionCost.SignedString())
	row(&b, "Marked value", r.Start.MarkedValue, r.End.MarkedValue, r.MarkedValue.SignedString())
	row(&b, "Paper profit", r.Start.PaperProfit, r.End.PaperProfit, r.PaperProfit.SignedString())
	row(&b, "Cash", r.Start.Cash, r.End.Cash, r.Cash.SignedString())
	row(&b, "Total invested", r.Start.TotalInvested, r.End.TotalInvested, r.TotalInvested.SignedString())
	row(&b, "Total value", r.Start.TotalValue, r.End.TotalValue, r.TotalValue.SignedString())
	row(&b, "Return", ratio(r.StartReturn.Sub(one)), ratio(r.EndReturn.Sub(one)), ratio(r.Return))
	return b.String()
}
