package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/geomat0101/vest"
)

// LadderMarkdown renders the orders to place on one side of the market.
func LadderMarkdown(name string, l *vest.Ladder) string {
	var b strings.Builder
	title := "Bids"
	if l.Side == vest.SellSide {
		title = "Asks"
	}
	fmt.Fprintf(&b, "# %s %s\n\n", name, title)
	fmt.Fprintf(&b, "Last trade `%s`, interval %v, leverage %s.\n\n", l.Last.Order, l.Interval, factor(l.Leverage))
	if l.Open != nil {
		fmt.Fprintf(&b, "Best open order at %v.\n\n", *l.Open)
	}
	if l.Skipped {
		fmt.Fprint(&b, "One interval skipped after a trade in the other direction.\n\n")
	}
	if len(l.Orders) == 0 {
		fmt.Fprintln(&b, "Nothing to place.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Qty | Price |")
	fmt.Fprintln(&b, "|---:|---:|")
	for _, o := range l.Orders {
		row(&b, o.Qty, o.Price)
	}
	return b.String()
}

// SpotMarkdown renders a spot evaluation with its explanation trail.
func SpotMarkdown(name string, s *vest.Spot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s at %v on %s\n\n", name, s.Price, s.On)
	if r, ok := s.Order(); ok {
		fmt.Fprintf(&b, "**%s %v @ %v**\n\n", s.Action, r.Qty, r.Price)
	} else {
		fmt.Fprintf(&b, "**%s**\n\n", s.Action)
	}
	fmt.Fprintf(&b, "Movement since the last trade: %s\n\n", ratio(s.Movement))

	fmt.Fprintln(&b, "| Side | Qty | Price | Leverage |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	row(&b, "buy", s.Buy.Qty, s.Buy.Price, factor(s.Buy.Leverage))
	row(&b, "sell", s.Sell.Qty, s.Sell.Price, factor(s.Sell.Leverage))
	fmt.Fprintln(&b)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Notes\n\n")
		for _, n := range s.Notes {
			fmt.Fprintf(w, "- %s\n", n)
		}
		fmt.Fprintln(w)
		return len(s.Notes) > 0
	})

	fmt.Fprint(&b, "## Explanation\n\n")
	for i, e := range s.Explain {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e)
	}
	return b.String()
}

// AllocationMarkdown renders the capital plan of a fixed value account.
func AllocationMarkdown(name string, a *vest.Allocation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Allocation\n\n", name)
	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	row(&b, "Allocation", a.Alloc)
	row(&b, "Position cost", a.Cost)
	row(&b, "Available", a.Avail)
	row(&b, "Spent", percent(a.PctSpent))
	row(&b, "Spot", a.Spot)
	row(&b, "Spot factor", a.SpotFactor.StringFixed(2))
	row(&b, "Target factor", a.TargetFactor.StringFixed(2))
	row(&b, "Available target", a.AvailTarget)
	row(&b, "Adjustment", a.Adjustment.SignedString())
	row(&b, "New allocation", a.NewAlloc)
	return b.String()
}
