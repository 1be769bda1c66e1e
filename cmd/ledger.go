package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/geomat0101/vest"
	"github.com/geomat0101/vest/date"
	"github.com/geomat0101/vest/renderer"
	"github.com/google/subcommands"
)

type detailCmd struct {
	date string
	json bool
}

func (*detailCmd) Name() string     { return "detail" }
func (*detailCmd) Synopsis() string { return "display the state of an account after a trade" }
func (*detailCmd) Usage() string {
	return `vst detail [-d <date>] [-json] [<account>]

  Displays the position, cost, break-even and next orders of the account as of
  the last entry on or before the date, or after the last trade.
`
}

func (c *detailCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the entry (YYYY-MM-DD). Defaults to the last trade.")
	f.BoolVar(&c.json, "json", false, "print the snapshot as JSON")
}

func (c *detailCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var on date.Date
	if c.date != "" {
		var err error
		if on, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	a, err := openAccount(f.Arg(0))
	if err != nil {
		return fail("Error loading account: %v", err)
	}
	s, err := a.Ledger.Detail(on)
	if err != nil {
		return fail("Error: %v", err)
	}
	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fail("Error encoding snapshot: %v", err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.DetailMarkdown(a.FullName(), s))
	return subcommands.ExitSuccess
}

type tableCmd struct {
	json bool
}

func (*tableCmd) Name() string     { return "table" }
func (*tableCmd) Synopsis() string { return "display every entry of an account" }
func (*tableCmd) Usage() string {
	return `vst table [-json] [<account>]

  Displays one row per ledger entry. With -json, prints one JSON object per
  entry instead.
`
}

func (c *tableCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the snapshots as JSON lines")
}

func (c *tableCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openAccount(f.Arg(0))
	if err != nil {
		return fail("Error loading account: %v", err)
	}
	if c.json {
		if err := vest.EncodeSnapshots(os.Stdout, a.Ledger); err != nil {
			return fail("Error: %v", err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.TableMarkdown(a.Ledger))
	return subcommands.ExitSuccess
}

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list the accounts and their last state" }
func (*accountsCmd) Usage() string {
	return `vst accounts

  Lists the accounts of the config file, or the account files found in the
  working directory.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {}

func (c *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	targets, err := openAccounts("")
	if err != nil {
		return fail("Error loading accounts: %v", err)
	}
	accounts := make([]*vest.Account, len(targets))
	for i, t := range targets {
		accounts[i] = t.Account
	}
	printMarkdown(renderer.AccountsMarkdown(accounts))
	return subcommands.ExitSuccess
}
