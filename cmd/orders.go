package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/geomat0101/vest"
	"github.com/geomat0101/vest/date"
	"github.com/geomat0101/vest/quote"
	"github.com/geomat0101/vest/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// ladderCmd implements both 'bids' and 'asks'.
type ladderCmd struct {
	side vest.Side
}

type bidsCmd struct{ ladderCmd }
type asksCmd struct{ ladderCmd }

func (*bidsCmd) Name() string     { return "bids" }
func (*bidsCmd) Synopsis() string { return "limit buy orders to place" }
func (*bidsCmd) Usage() string {
	return `vst bids [<account>]

  Computes the bids to place below the last trade. Open orders of the account
  file (TRADE lines) are taken into account: the ladder only fills the gap
  between the best open bid and the next buy price.
`
}

func (*asksCmd) Name() string     { return "asks" }
func (*asksCmd) Synopsis() string { return "limit sell orders to place" }
func (*asksCmd) Usage() string {
	return `vst asks [<account>]

  Computes the asks to place above the last trade. Open orders of the account
  file (TRADE lines) are taken into account: the ladder only fills the gap
  between the next sell price and the best open ask.
`
}

func (c *bidsCmd) SetFlags(f *flag.FlagSet) { c.side = vest.BuySide }
func (c *asksCmd) SetFlags(f *flag.FlagSet) { c.side = vest.SellSide }

func (c *ladderCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	targets, err := openAccounts(f.Arg(0))
	if err != nil {
		return fail("Error loading accounts: %v", err)
	}
	for _, t := range targets {
		next := t.Ledger.NextBids
		if c.side == vest.SellSide {
			next = t.Ledger.NextAsks
		}
		ladder, err := next(t.Open)
		if errors.Is(err, vest.ErrState) {
			log.Printf("%s: %v", t.Name, err)
			continue
		}
		if err != nil {
			return fail("Error computing the %s ladder of %s: %v", c.side, t.Name, err)
		}
		printMarkdown(renderer.LadderMarkdown(t.FullName(), ladder))
	}
	return subcommands.ExitSuccess
}

// livePrice returns price parsed, or fetched from the account quote when empty.
func livePrice(ctx context.Context, t target, price string) (vest.Money, error) {
	currency := t.Ledger.Currency()
	if price != "" {
		return vest.ParseMoney(price, currency)
	}
	if t.quote == nil {
		return vest.Money{}, fmt.Errorf("%s has no quote configured, use -p", t.Name)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	v, err := quote.Fetch(ctx, http.DefaultClient, t.quote.URL, t.quote.Path)
	if err != nil {
		return vest.Money{}, fmt.Errorf("%s: %w", t.Name, err)
	}
	return vest.M(v, currency), nil
}

type spotCmd struct {
	price string
	index int
	date  string
}

func (*spotCmd) Name() string     { return "spot" }
func (*spotCmd) Synopsis() string { return "evaluate the next order against a live price" }
func (*spotCmd) Usage() string {
	return `vst spot [-p <price>] [-i <index>] [-d <date>] [<account>]

  Refines the next buy and sell of an entry, the last one by default, with a
  live price and tells whether to buy, sell or hold. Without -p the price is
  fetched from the account quote of the config file.
`
}

func (c *spotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.price, "p", "", "Live price. Defaults to the account quote.")
	f.IntVar(&c.index, "i", -1, "Index of the entry to evaluate. Defaults to the last one.")
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the evaluation (YYYY-MM-DD)")
}

func (c *spotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	t, err := openAccount(f.Arg(0))
	if err != nil {
		return fail("Error loading account: %v", err)
	}
	price, err := livePrice(ctx, t, c.price)
	if err != nil {
		return fail("Error getting the live price: %v", err)
	}
	index := c.index
	if index < 0 {
		index = t.Ledger.Len() - 1
	}
	s, err := t.Ledger.Spot(index, price, on)
	if err != nil {
		return fail("Error: %v", err)
	}
	printMarkdown(renderer.SpotMarkdown(t.FullName(), s))
	return subcommands.ExitSuccess
}

type allocCmd struct {
	price  string
	target float64
}

func (*allocCmd) Name() string     { return "alloc" }
func (*allocCmd) Synopsis() string { return "rebalance the capital of fixed value accounts" }
func (*allocCmd) Usage() string {
	return `vst alloc [-p <price>] [-target <factor>] [<account>]

  For every account with a fixed value, computes how the fixed value should
  change so that the capital still available buys <factor> units at the live
  price.
`
}

func (c *allocCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.price, "p", "", "Live price. Defaults to the account quote.")
	f.Float64Var(&c.target, "target", 75, "Units the available capital should afford")
}

func (c *allocCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	targets, err := openAccounts(f.Arg(0))
	if err != nil {
		return fail("Error loading accounts: %v", err)
	}
	for _, t := range targets {
		if _, ok := t.Ledger.FixedValue(); !ok {
			log.Printf("%s has no fixed value, skipped", t.Name)
			continue
		}
		price, err := livePrice(ctx, t, c.price)
		if err != nil {
			return fail("Error getting the live price: %v", err)
		}
		a, err := t.Ledger.Allocation(price, decimal.NewFromFloat(c.target))
		if errors.Is(err, vest.ErrState) {
			log.Printf("%s: %v", t.Name, err)
			continue
		}
		if err != nil {
			return fail("Error computing the allocation of %s: %v", t.Name, err)
		}
		printMarkdown(renderer.AllocationMarkdown(t.FullName(), a))
	}
	return subcommands.ExitSuccess
}
