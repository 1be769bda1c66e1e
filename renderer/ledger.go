package renderer

import (
	"fmt"
	"strings"

	"github.com/geomat0101/vest"
)

// DetailMarkdown renders a single snapshot of account name.
func DetailMarkdown(name string, s vest.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s on %s\n\n", name, s.Date)
	fmt.Fprintf(&b, "Order: `%s`, commission `%s`\n\n", s.Order, s.Policy())

	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	row(&b, "Position", s.PositionQty)
	row(&b, "Position cost", s.PositionCost)
	row(&b, "Cash", s.Cash)
	row(&b, "Last buy", s.LastBuy)
	row(&b, "Last sell", s.LastSell)
	row(&b, "Mark", s.Mark)
	row(&b, "Marked value", s.MarkedValue)
	row(&b, "Total value", s.TotalValue)
	row(&b, "Break-even", s.Breakeven)
	row(&b, "Paper profit", s.PaperProfit.SignedString())
	row(&b, "ROI", percent(s.ROI))
	row(&b, "Total invested", s.TotalInvested)
	row(&b, "Share price", s.SharePrice)
	row(&b, "Shares", s.TotalShares.StringFixed(4))
	row(&b, "Reserve requirement", s.ReserveReq)
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Next Orders\n\n")
	fmt.Fprintln(&b, "| Side | Qty | Price | Leverage |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	row(&b, "buy", s.NextBuy.Qty, s.NextBuy.Price, factor(s.NextBuy.Leverage))
	row(&b, "sell", s.NextSell.Qty, s.NextSell.Price, factor(s.NextSell.Leverage))

	if s.Anomalies != 0 {
		fmt.Fprintf(&b, "\nAnomalies: %s\n", s.Anomalies)
	}
	return b.String()
}

// TableMarkdown renders every entry of the ledger, one row each.
func TableMarkdown(l *vest.Ledger) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", l.Name())
	fmt.Fprintln(&b, "| # | Date | Order | Position | Cost | Cash | Mark | Break-even | Total | Share | ROI | Next Buy | Next Sell |")
	fmt.Fprintln(&b, "|---:|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|")
	for i, s := range l.Snapshots() {
		order := fmt.Sprintf("%s %v @ %v", s.Type(), s.Qty.Abs(), s.Price)
		switch s.Type() {
		case vest.Split:
			order = fmt.Sprintf("split %d", s.Split)
		case vest.Adjustment:
			order = fmt.Sprintf("cash %v", s.Price)
		}
		row(&b, i, s.Date, order,
			s.PositionQty,
			s.PositionCost,
			s.Cash,
			s.Mark,
			s.Breakeven,
			s.TotalValue,
			s.SharePrice,
			percent(s.ROI),
			fmt.Sprintf("%v @ %v", s.NextBuy.Qty, s.NextBuy.Price),
			fmt.Sprintf("%v @ %v", s.NextSell.Qty, s.NextSell.Price),
		)
	}
	return b.String()
}

// AccountsMarkdown renders the last state of each account.
func AccountsMarkdown(accounts []*vest.Account) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Accounts\n\n")
	fmt.Fprintln(&b, "| Account | Last Trade | Position | Break-even | Total Value | ROI | Open Orders |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|")
	for _, a := range accounts {
		s, err := a.Ledger.LastTrade()
		if err != nil {
			row(&b, a.FullName(), "-", "-", "-", "-", "-", len(a.Open))
			continue
		}
		row(&b, a.FullName(), s.Date, s.PositionQty, s.Breakeven, s.TotalValue, percent(s.ROI), len(a.Open))
	}
	return b.String()
}
