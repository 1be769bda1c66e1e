package vest

import (
	"testing"

	"github.com/geomat0101/vest/date"
)

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to parse ISO dates
func day(s string) date.Date { return date.MustParse(s) }

// newTestLedger appends orders to a new ledger and fails the test on the
// first error.
func newTestLedger(t *testing.T, orders []Order, opts ...Option) *Ledger {
	t.Helper()
	l := NewLedger("test", opts...)
	for _, o := range orders {
		if _, err := l.Append(o); err != nil {
			t.Fatalf("Append(%v) error: %v", o, err)
		}
	}
	return l
}
