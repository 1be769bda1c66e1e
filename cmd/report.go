package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/geomat0101/vest/date"
	"github.com/geomat0101/vest/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	year  int
	start string
	end   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "compare an account between two dates" }
func (*reportCmd) Usage() string {
	return `vst report [-y <year> | -s <date> -e <date>] [<account>]

  Compares the account at the end of the previous year with the end of the
  year, or between two dates.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", date.Today().Year(), "Calendar year of the report")
	f.StringVar(&c.start, "s", "", "Start date of a custom report (YYYY-MM-DD). Overrides -y.")
	f.StringVar(&c.end, "e", date.Today().String(), "End date of a custom report (YYYY-MM-DD).")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, to := date.EndOfYear(c.year-1), date.EndOfYear(c.year)
	if c.start != "" {
		var err error
		if from, err = date.Parse(c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
		if to, err = date.Parse(c.end); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	targets, err := openAccounts(f.Arg(0))
	if err != nil {
		return fail("Error loading accounts: %v", err)
	}
	for _, t := range targets {
		r, err := t.Ledger.Report(from, to)
		if err != nil {
			return fail("Error reporting on %s: %v", t.Name, err)
		}
		printMarkdown(renderer.ReportMarkdown(t.FullName(), r))
	}
	return subcommands.ExitSuccess
}

type gainsCmd struct {
	year int
	lots bool
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains of a year, FIFO matched" }
func (*gainsCmd) Usage() string {
	return `vst gains [-y <year>] [-lots] [<account>]

  Matches every sale of the year against the oldest units bought and reports
  the proceeds, the cost basis and the holding term per sale date.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", date.Today().Year(), "Calendar year of the report")
	f.BoolVar(&c.lots, "lots", false, "also list the lots matched by each sale")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	targets, err := openAccounts(f.Arg(0))
	if err != nil {
		return fail("Error loading accounts: %v", err)
	}
	for _, t := range targets {
		r, err := t.Ledger.FIFOReport(c.year)
		if err != nil {
			return fail("Error matching the sales of %s: %v", t.Name, err)
		}
		md := renderer.GainsMarkdown(t.FullName(), r)
		if c.lots {
			sales, err := t.Ledger.Sales(r.Range)
			if err != nil {
				return fail("Error matching the sales of %s: %v", t.Name, err)
			}
			md += "\n" + renderer.SalesMarkdown(sales)
		}
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}
