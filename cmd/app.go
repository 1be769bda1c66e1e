// Package cmd implements the CLI application to follow single position accounts.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/geomat0101/vest"
	"github.com/geomat0101/vest/config"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&detailCmd{}, "ledger")
	c.Register(&tableCmd{}, "ledger")
	c.Register(&accountsCmd{}, "ledger")

	c.Register(&reportCmd{}, "reports")
	c.Register(&gainsCmd{}, "reports")

	c.Register(&bidsCmd{}, "orders")
	c.Register(&asksCmd{}, "orders")
	c.Register(&spotCmd{}, "orders")
	c.Register(&allocCmd{}, "orders")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Path to the accounts file (YAML or JSON). Defaults to $"+EnvConfig+".")
	ledgerFile = flag.String("ledger-file", "", "Path to a single account file. Defaults to $"+EnvLedgerFile+".")
	commission = flag.String("commission", "", "Commission of the account file, e.g. IB or percent:1. Defaults to $"+EnvCommission+".")
	currency   = flag.String("currency", "", "Currency of the account amounts.")
	// Verbose enables diagnostic logs.
	Verbose = flag.Bool("v", false, "log diagnostics to stderr")
)

// LoadEnv loads the optional .env file of the working directory. Variables
// already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not load .env: %w", err)
	}
	return nil
}

// setting returns the flag value, or the environment variable when the flag is unset.
func setting(value *string, env string) string {
	if *value != "" {
		return *value
	}
	return strings.TrimSpace(os.Getenv(env))
}

// target is an account together with its configuration, if any.
type target struct {
	*vest.Account
	quote *config.Quote
}

// openAccounts loads the accounts named query, or all of them for an empty query.
//
// Accounts come from the single account file when one is set, from the
// config file otherwise, and lastly from the account files of the working
// directory.
func openAccounts(query string) ([]target, error) {
	if file := setting(ledgerFile, EnvLedgerFile); file != "" {
		opts, err := accountOptions()
		if err != nil {
			return nil, err
		}
		a, err := vest.LoadAccount(file, query, opts...)
		if err != nil {
			return nil, err
		}
		return []target{{Account: a}}, nil
	}

	if file := setting(configFile, EnvConfig); file != "" {
		cfg, err := config.LoadFromFile(file)
		if err != nil {
			return nil, err
		}
		accounts := cfg.Accounts
		if query != "" {
			a, ok := cfg.Find(query)
			if !ok {
				return nil, fmt.Errorf("no account %q in %s", query, file)
			}
			accounts = []config.Account{a}
		}
		var targets []target
		for _, a := range accounts {
			account, err := cfg.Load(a)
			if err != nil {
				return nil, err
			}
			targets = append(targets, target{Account: account, quote: a.Quote})
		}
		return targets, nil
	}

	opts, err := accountOptions()
	if err != nil {
		return nil, err
	}
	accounts, err := vest.FindAccounts(".", query, opts...)
	if err != nil {
		return nil, err
	}
	targets := make([]target, len(accounts))
	for i, a := range accounts {
		targets[i] = target{Account: a}
	}
	return targets, nil
}

// openAccount loads a single account: the one named query, or the only one.
func openAccount(query string) (target, error) {
	targets, err := openAccounts(query)
	if err != nil {
		return target{}, err
	}
	switch len(targets) {
	case 0:
		return target{}, errors.New("no account found")
	case 1:
		return targets[0], nil
	default:
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = t.Name
		}
		return target{}, fmt.Errorf("several accounts found, pick one of: %s", strings.Join(names, ", "))
	}
}

// accountOptions returns the ledger options set by flags or environment.
func accountOptions() ([]vest.Option, error) {
	var opts []vest.Option
	if *currency != "" {
		opts = append(opts, vest.WithCurrency(*currency))
	}
	if s := setting(commission, EnvCommission); s != "" {
		p, err := vest.ParsePolicy(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vest.WithPolicy(p))
	}
	return opts, nil
}

// printMarkdown renders md for the terminal, raw when it cannot be styled.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		log.Printf("cannot style markdown: %v", err)
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		log.Printf("cannot style markdown: %v", err)
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// fail reports err and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
