package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withFlags sets the global flags for the duration of the test.
func withFlags(t *testing.T, config, ledger, comm string) {
	t.Helper()
	oldConfig, oldLedger, oldComm := *configFile, *ledgerFile, *commission
	*configFile, *ledgerFile, *commission = config, ledger, comm
	t.Cleanup(func() { *configFile, *ledgerFile, *commission = oldConfig, oldLedger, oldComm })
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvLedgerFile, "")
	t.Setenv(EnvCommission, "")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOpenAccount_LedgerFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "gold.vst", "1/10/2024:10:10.00\nTRADE:1:9.67\n")
	withFlags(t, "", file, "flat:5")

	a, err := openAccount("")
	if err != nil {
		t.Fatalf("openAccount() error: %v", err)
	}
	if a.Name != "gold" {
		t.Errorf("Name = %q, want gold", a.Name)
	}
	if got := a.Ledger.Policy().String(); got != "flat:5" {
		t.Errorf("Policy() = %q, want flat:5", got)
	}
	if len(a.Open) != 1 {
		t.Errorf("Open = %v, want one bid", a.Open)
	}
}

func TestOpenAccount_Env(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "silver.vst", "1/10/2024:100:20.00\n")
	withFlags(t, "", "", "")
	t.Setenv(EnvLedgerFile, file)
	t.Setenv(EnvCommission, "ZERO")

	a, err := openAccount("")
	if err != nil {
		t.Fatalf("openAccount() error: %v", err)
	}
	if a.Name != "silver" {
		t.Errorf("Name = %q, want silver", a.Name)
	}
	if fee := a.Ledger.At(0).Fee; !fee.IsZero() {
		t.Errorf("Fee = %v, want 0", fee)
	}
}

func TestOpenAccounts_Config(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gold.vst", "1/10/2024:10:10.00\n")
	writeFile(t, dir, "silver.vst", "1/10/2024:100:20.00\n")
	cfg := writeFile(t, dir, "vst.yaml", `accounts:
  - name: gold
    file: gold.vst
  - name: silver
    file: silver.vst
    quote:
      url: http://localhost/silver
      path: $.last
`)
	withFlags(t, cfg, "", "")

	all, err := openAccounts("")
	if err != nil {
		t.Fatalf("openAccounts() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("openAccounts() = %d accounts, want 2", len(all))
	}
	if _, err := openAccount(""); err == nil || !strings.Contains(err.Error(), "gold, silver") {
		t.Errorf("openAccount() error = %v, want the account choices", err)
	}
	silver, err := openAccount("silver")
	if err != nil {
		t.Fatalf("openAccount(silver) error: %v", err)
	}
	if silver.quote == nil || silver.quote.Path != "$.last" {
		t.Errorf("quote = %+v, want the configured quote", silver.quote)
	}
	if _, err := openAccount("copper"); err == nil {
		t.Error("openAccount(copper) succeeded, want an error")
	}
}
