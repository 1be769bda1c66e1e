package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gold.vst", "1/10/2024:10:10.00\n")
	writeFile(t, dir, "silver.vst", "CONFIG:COMM:ZERO\n1/10/2024:100:20.00\n")
	testCases := []struct {
		name, file, content string
	}{
		{
			name: "yaml",
			file: "accounts.yaml",
			content: `currency: USD
accounts:
  - name: gold
    units: oz
    file: gold.vst
    commission: IB
    fixed_value: "1000"
  - name: silver
    file: silver.vst
    quote:
      url: http://localhost/silver.json
      path: $.last
`,
		},
		{
			name: "json",
			file: "accounts.json",
			content: `{"currency": "USD", "accounts": [
  {"name": "gold", "units": "oz", "file": "gold.vst", "commission": "IB", "fixed_value": "1000"},
  {"name": "silver", "file": "silver.vst", "quote": {"url": "http://localhost/silver.json", "path": "$.last"}}
]}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeFile(t, dir, tc.file, tc.content))
			if err != nil {
				t.Fatalf("LoadFromFile() error: %v", err)
			}
			if len(cfg.Accounts) != 2 {
				t.Fatalf("LoadFromFile() = %d accounts, want 2", len(cfg.Accounts))
			}
			gold, ok := cfg.Find("GOLD")
			if !ok {
				t.Fatal("Find(GOLD) found nothing")
			}
			if got, want := cfg.Path(gold), filepath.Join(dir, "gold.vst"); got != want {
				t.Errorf("Path() = %q, want %q", got, want)
			}
			silver, _ := cfg.Find("silver")
			if silver.Quote == nil || silver.Quote.Path != "$.last" {
				t.Errorf("silver quote = %+v, want path $.last", silver.Quote)
			}

			accounts, err := cfg.LoadAll()
			if err != nil {
				t.Fatalf("LoadAll() error: %v", err)
			}
			a := accounts[0]
			if a.FullName() != "gold (oz)" {
				t.Errorf("FullName() = %q, want %q", a.FullName(), "gold (oz)")
			}
			if got := a.Ledger.Policy().String(); got != "minimum:0.005:1" {
				t.Errorf("Policy() = %q, want the IB schedule", got)
			}
			if fixed, ok := a.Ledger.FixedValue(); !ok || fixed.String() != "$1,000.00" {
				t.Errorf("FixedValue() = %v, %v, want $1,000.00", fixed, ok)
			}
			// the account file overrides the configuration
			if got := accounts[1].Ledger.Policy().String(); got != "pershare:0" {
				t.Errorf("silver Policy() = %q, want pershare:0", got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{name: "no name", cfg: Config{Accounts: []Account{{File: "a.vst"}}}},
		{name: "no file", cfg: Config{Accounts: []Account{{Name: "a"}}}},
		{name: "duplicate", cfg: Config{Accounts: []Account{{Name: "a", File: "a.vst"}, {Name: "a", File: "b.vst"}}}},
		{name: "commission", cfg: Config{Accounts: []Account{{Name: "a", File: "a.vst", Commission: "free"}}}},
		{name: "quote", cfg: Config{Accounts: []Account{{Name: "a", File: "a.vst", Quote: &Quote{URL: "http://localhost"}}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("Validate() succeeded, want an error")
			}
		})
	}
	ok := Config{Accounts: []Account{{Name: "a", File: "a.vst", Commission: "percent:0.5"}}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}
