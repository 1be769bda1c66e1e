package vest

import (
	"errors"
	"testing"

	"github.com/geomat0101/vest/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// snapshotCmp compares snapshots field by field, decimals by value.
var snapshotCmp = cmp.Options{
	cmp.AllowUnexported(Snapshot{}, Money{}, Quantity{}, date.Date{}),
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
}

func sampleOrders() []Order {
	return []Order{
		NewBuy(day("2023-01-10"), 10, NO(10)),
		NewBuy(day("2023-02-01"), 2, NO(9.50)),
		NewSell(day("2023-03-15"), 3, NO(10.80)),
		NewAdjustment(day("2023-04-01"), NO(2.35)),
		NewSplit(day("2023-06-01"), 2),
		NewBuy(day("2023-07-03"), 4, NO(4.90)),
		NewSell(day("2024-02-20"), 12, NO(5.60)),
		NewSplit(day("2024-05-02"), -3),
		NewSell(day("2024-06-10"), 2, NO(17.25)),
	}
}

func TestLedger_ReplayIsDeterministic(t *testing.T) {
	orders := sampleOrders()
	incremental := newTestLedger(t, orders)

	replayed, err := Replay("test", incremental.Orders())
	if err != nil {
		t.Fatalf("Replay() error: %v", err)
	}
	if replayed.Len() != incremental.Len() {
		t.Fatalf("Replay() has %d entries, want %d", replayed.Len(), incremental.Len())
	}
	for i, s := range incremental.Snapshots() {
		if diff := cmp.Diff(s, replayed.At(i), snapshotCmp); diff != "" {
			t.Errorf("entry #%d mismatch (-incremental +replayed):\n%s", i, diff)
		}
	}
}

func TestLedger_FIFOPartition(t *testing.T) {
	l := newTestLedger(t, sampleOrders())
	for i, s := range l.Snapshots() {
		if s.Type() != Sell {
			continue
		}
		matches, err := l.match(i, s.FIFOStart, s.FIFOEnd)
		if err != nil {
			t.Fatalf("match(#%d) error: %v", i, err)
		}
		sum := Q(0)
		for _, m := range matches {
			sum = sum.Add(m.Qty)
		}
		if !sum.Equal(s.Qty.Neg()) {
			t.Errorf("sale #%d matched %v units, want %v", i, sum, s.Qty.Neg())
		}
	}
	// buy ranges follow each other with no gap nor overlap
	counter := Q(0)
	for _, s := range l.Snapshots() {
		if s.Type() == Buy {
			if !s.FIFOStart.Equal(counter.Add(Q(1))) || !s.FIFOEnd.Equal(counter.Add(s.Qty)) {
				t.Errorf("buy on %v owns [%v, %v], want [%v, %v]", s.Date, s.FIFOStart, s.FIFOEnd, counter.Add(Q(1)), counter.Add(s.Qty))
			}
		}
		counter = s.BuyCounter
	}
}

func TestLedger_Append(t *testing.T) {
	l := newTestLedger(t, []Order{NewBuy(day("2024-01-10"), 10, NO(10))})

	t.Run("same day", func(t *testing.T) {
		if _, err := l.Append(NewSell(day("2024-01-10"), 1, NO(10.5))); err != nil {
			t.Errorf("Append() on the same day error: %v", err)
		}
	})
	t.Run("out of order", func(t *testing.T) {
		_, err := l.Append(NewBuy(day("2024-01-09"), 1, NO(10)))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Append() out of order error = %v, want ErrInvalidInput", err)
		}
		if l.Len() != 2 {
			t.Errorf("Len() = %d, want 2", l.Len())
		}
	})
	t.Run("currency mismatch", func(t *testing.T) {
		usd := NewLedger("usd", WithCurrency("USD"))
		if _, err := usd.Append(NewBuy(day("2024-01-10"), 1, M(10, "EUR"))); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Append() in EUR error = %v, want ErrInvalidInput", err)
		}
		s, err := usd.Append(NewBuy(day("2024-01-10"), 1, NO(10)))
		if err != nil {
			t.Fatalf("Append() with no currency error: %v", err)
		}
		if s.PositionCost.Currency() != "USD" {
			t.Errorf("PositionCost currency = %q, want USD", s.PositionCost.Currency())
		}
	})
}

func TestLedger_Configure(t *testing.T) {
	l := newTestLedger(t, []Order{NewBuy(day("2024-01-10"), 10, NO(10))})
	if err := l.Configure("COMM", "ZERO"); err != nil {
		t.Fatalf("Configure(COMM) error: %v", err)
	}
	s, err := l.Append(NewBuy(day("2024-01-11"), 10, NO(9)))
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	checkMoney(t, "Fee", s.Fee, 0)
	if got := l.At(0).Policy().String(); got != "percent:1" {
		t.Errorf("first entry policy = %s, want percent:1", got)
	}
	checkMoney(t, "first entry Fee", l.At(0).Fee, 1)

	if err := l.Configure("fixed_value", "6000."); err != nil {
		t.Fatalf("Configure(fixed_value) error: %v", err)
	}
	if v, ok := l.FixedValue(); !ok || !v.Equal(NO(6000)) {
		t.Errorf("FixedValue() = %v, %v, want 6000", v, ok)
	}

	for _, tc := range []struct{ key, value string }{
		{"bogus", "1"},
		{"fixed_value", "abc"},
		{"COMM", "unknown"},
	} {
		if err := l.Configure(tc.key, tc.value); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Configure(%q, %q) error = %v, want ErrInvalidInput", tc.key, tc.value, err)
		}
	}
}

func TestLedger_EmptyQueries(t *testing.T) {
	l := NewLedger("empty")
	if _, err := l.Last(); !errors.Is(err, ErrState) {
		t.Errorf("Last() error = %v, want ErrState", err)
	}
	if _, err := l.Detail(day("2024-01-01")); !errors.Is(err, ErrState) {
		t.Errorf("Detail() error = %v, want ErrState", err)
	}
	if _, err := l.Report(day("2024-01-01"), day("2024-12-31")); !errors.Is(err, ErrState) {
		t.Errorf("Report() error = %v, want ErrState", err)
	}
	if _, err := l.NextBids(nil); !errors.Is(err, ErrState) {
		t.Errorf("NextBids() error = %v, want ErrState", err)
	}
}

func TestLedger_Detail(t *testing.T) {
	l := newTestLedger(t, []Order{
		NewBuy(day("2024-01-10"), 10, NO(10)),
		NewSell(day("2024-02-10"), 1, NO(10.33)),
		NewAdjustment(day("2024-03-01"), NO(5)),
	})
	testCases := []struct {
		name    string
		on      date.Date
		want    date.Date
		wantErr bool
	}{
		{name: "last trade", on: date.Date{}, want: day("2024-02-10")},
		{name: "on the day", on: day("2024-01-10"), want: day("2024-01-10")},
		{name: "between entries", on: day("2024-02-20"), want: day("2024-02-10")},
		{name: "after the end", on: day("2025-01-01"), want: day("2024-03-01")},
		{name: "before the start", on: day("2024-01-09"), wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := l.Detail(tc.on)
			if tc.wantErr {
				if !errors.Is(err, ErrState) {
					t.Errorf("Detail(%v) error = %v, want ErrState", tc.on, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detail(%v) error: %v", tc.on, err)
			}
			if got.Date != tc.want {
				t.Errorf("Detail(%v) = entry on %v, want %v", tc.on, got.Date, tc.want)
			}
		})
	}
}

func TestLedger_Report(t *testing.T) {
	l := newTestLedger(t, []Order{
		NewBuy(day("2023-06-10"), 10, NO(10)),
		NewSell(day("2024-02-10"), 1, NO(10.33)),
	})
	r, err := l.YearReport(2024)
	if err != nil {
		t.Fatalf("YearReport() error: %v", err)
	}
	if !r.HasStart {
		t.Errorf("HasStart = false, want true")
	}
	checkQty(t, "PositionQty", r.PositionQty, -1)
	checkMoney(t, "Cash", r.Cash, 10.23)
	checkMoney(t, "PositionCost", r.PositionCost, -10.23)
	checkMoney(t, "TotalValue", r.TotalValue, 1.76)
	checkMoney(t, "TotalInvested", r.TotalInvested, 0)
	// 100.76 / 101 - 99 / 101
	want := dec("100.76").Div(dec("101")).Sub(dec("99").Div(dec("101")))
	if !r.Return.Equal(want) {
		t.Errorf("Return = %v, want %v", r.Return, want)
	}

	first, err := l.YearReport(2023)
	if err != nil {
		t.Fatalf("YearReport(2023) error: %v", err)
	}
	if first.HasStart {
		t.Errorf("HasStart = true before the first entry, want false")
	}
	checkQty(t, "PositionQty", first.PositionQty, 10)
	checkMoney(t, "SharePrice", first.SharePrice, -1.98) // from the initial 100

	if _, err := l.Report(day("2024-01-01"), day("2023-01-01")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Report() with reversed dates error = %v, want ErrInvalidInput", err)
	}
}

func TestLedger_ScanBack(t *testing.T) {
	l := newTestLedger(t, []Order{
		NewBuy(day("2024-01-10"), 10, NO(10)),
		NewSell(day("2024-01-20"), 2, NO(11)),
		NewBuy(day("2024-02-10"), 2, NO(9)),
		NewSplit(day("2024-03-01"), 2),
		NewBuy(day("2024-03-10"), 2, NO(4)),
	})

	t.Run("split adjusted", func(t *testing.T) {
		level, ok := l.ScanBack(l.Len(), BuySide, func(p Money) bool { return p.GreaterThan(NO(4)) })
		if !ok {
			t.Fatal("ScanBack() found nothing")
		}
		if level.Index != 2 {
			t.Errorf("Index = %d, want 2", level.Index)
		}
		checkMoney(t, "Price", level.Price, 4.50)
		checkQty(t, "PositionQty", level.PositionQty, 20)
	})

	t.Run("restartable", func(t *testing.T) {
		above := func(p Money) bool { return p.GreaterThan(NO(4)) }
		level, _ := l.ScanBack(l.Len(), BuySide, above)
		level, ok := l.ScanBack(level.Index, BuySide, above)
		if !ok || level.Index != 0 {
			t.Fatalf("ScanBack() = %+v, %v, want entry #0", level, ok)
		}
		checkMoney(t, "Price", level.Price, 5)
		if _, ok := l.ScanBack(level.Index, BuySide, above); ok {
			t.Errorf("ScanBack() past the first buy found a level")
		}
	})

	t.Run("sell side", func(t *testing.T) {
		level, ok := l.ScanBack(l.Len(), SellSide, func(Money) bool { return true })
		if !ok || level.Index != 1 {
			t.Fatalf("ScanBack() = %+v, %v, want entry #1", level, ok)
		}
		checkMoney(t, "Price", level.Price, 5.50)
		checkQty(t, "PositionQty", level.PositionQty, 16)
	})
}
