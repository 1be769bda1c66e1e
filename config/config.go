// Package config reads the list of accounts managed together.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geomat0101/vest"
	"gopkg.in/yaml.v3"
)

// Config is the accounts file, in YAML or JSON.
//
//	currency: USD
//	accounts:
//	  - name: gold
//	    units: oz
//	    file: gold.vst
//	    commission: IB
//	    quote:
//	      url: https://example.com/gold.json
//	      path: $.last
type Config struct {
	Currency string    `json:"currency,omitempty" yaml:"currency,omitempty"`
	Accounts []Account `json:"accounts" yaml:"accounts"`

	dir string // directory of the config file, account files are relative to it
}

// Account configures a single account.
type Account struct {
	Name       string `json:"name" yaml:"name"`
	Units      string `json:"units,omitempty" yaml:"units,omitempty"`
	File       string `json:"file" yaml:"file"`
	Commission string `json:"commission,omitempty" yaml:"commission,omitempty"`
	FixedValue string `json:"fixed_value,omitempty" yaml:"fixed_value,omitempty"`
	Quote      *Quote `json:"quote,omitempty" yaml:"quote,omitempty"`
}

// Quote locates the live price of an account in a JSON document.
type Quote struct {
	URL  string `json:"url" yaml:"url"`
	Path string `json:"path" yaml:"path"`
}

// LoadFromFile loads the configuration from a YAML file, or a JSON one.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{dir: filepath.Dir(path)}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that accounts are named, unique and have a file.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	var errs []error
	for i, a := range c.Accounts {
		switch {
		case a.Name == "":
			errs = append(errs, fmt.Errorf("accounts[%d].name is required", i))
		case seen[a.Name]:
			errs = append(errs, fmt.Errorf("account %q is declared twice", a.Name))
		}
		seen[a.Name] = true
		if a.File == "" {
			errs = append(errs, fmt.Errorf("account %q: file is required", a.Name))
		}
		if a.Commission != "" {
			if _, err := vest.ParsePolicy(a.Commission); err != nil {
				errs = append(errs, fmt.Errorf("account %q: %w", a.Name, err))
			}
		}
		if a.Quote != nil && (a.Quote.URL == "" || a.Quote.Path == "") {
			errs = append(errs, fmt.Errorf("account %q: quote needs both url and path", a.Name))
		}
	}
	return errors.Join(errs...)
}

// Find returns the account called name.
func (c *Config) Find(name string) (Account, bool) {
	for _, a := range c.Accounts {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Account{}, false
}

// Path returns the account file location, relative paths being resolved
// against the config file directory.
func (c *Config) Path(a Account) string {
	if filepath.IsAbs(a.File) || c.dir == "" {
		return a.File
	}
	return filepath.Join(c.dir, a.File)
}

// Options returns the ledger options of account a.
//
// Settings found in the account file itself still apply on top of them.
func (c *Config) Options(a Account) ([]vest.Option, error) {
	var opts []vest.Option
	if c.Currency != "" {
		opts = append(opts, vest.WithCurrency(c.Currency))
	}
	if a.Commission != "" {
		p, err := vest.ParsePolicy(a.Commission)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vest.WithPolicy(p))
	}
	if a.FixedValue != "" {
		v, err := vest.ParseMoney(a.FixedValue, c.Currency)
		if err != nil {
			return nil, fmt.Errorf("account %q: fixed_value: %w", a.Name, err)
		}
		opts = append(opts, vest.WithFixedValue(v))
	}
	return opts, nil
}

// Load reads the file of account a.
func (c *Config) Load(a Account) (*vest.Account, error) {
	opts, err := c.Options(a)
	if err != nil {
		return nil, err
	}
	account, err := vest.LoadAccount(c.Path(a), a.Name, opts...)
	if err != nil {
		return nil, err
	}
	account.Units = a.Units
	return account, nil
}

// LoadAll reads every account file in declaration order.
func (c *Config) LoadAll() ([]*vest.Account, error) {
	accounts := make([]*vest.Account, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		account, err := c.Load(a)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
