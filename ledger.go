package vest

import (
	"fmt"
	"iter"
	"log"
	"strings"
	"sync"

	"github.com/geomat0101/vest/date"
	"github.com/shopspring/decimal"
)

// Ledger is the append-only history of a single position.
//
// In a Ledger snapshots are always in chronological order, each computed from
// its order and the previous snapshot. Entries are never edited nor removed:
// corrections are new orders.
//
// A Ledger has a single writer. Read only queries, including the spot overlay,
// may run concurrently as long as no Append is in progress.
type Ledger struct {
	name     string
	currency string
	acct     sizing

	entries []Snapshot

	spotMu sync.Mutex
	spots  map[int]*spotEntry
}

// Option configures a Ledger at construction.
type Option func(*Ledger)

// WithPolicy sets the commission policy. The default is a 1% commission.
func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.acct.policy = p }
}

// WithFixedValue sizes buys against a fixed capital base instead of the total value.
func WithFixedValue(v Money) Option {
	return func(l *Ledger) {
		d := v.value
		l.acct.fixed = &d
	}
}

// WithCurrency sets the currency of every amount in the ledger.
func WithCurrency(cur string) Option {
	return func(l *Ledger) { l.currency = cur }
}

// NewLedger creates an empty ledger.
func NewLedger(name string, opts ...Option) *Ledger {
	l := &Ledger{
		name:  name,
		acct:  sizing{policy: DefaultPolicy()},
		spots: make(map[int]*spotEntry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Replay builds a new ledger from scratch out of orders.
func Replay(name string, orders []Order, opts ...Option) (*Ledger, error) {
	l := NewLedger(name, opts...)
	for _, o := range orders {
		if _, err := l.Append(o); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Name returns the account name.
func (l *Ledger) Name() string { return l.name }

// Currency returns the currency of the ledger amounts.
func (l *Ledger) Currency() string { return l.currency }

// Policy returns the commission policy applied to the next order.
func (l *Ledger) Policy() Policy { return l.acct.policy }

// FixedValue returns the capital base override, if any.
func (l *Ledger) FixedValue() (Money, bool) {
	if l.acct.fixed == nil {
		return Money{cur: l.currency}, false
	}
	return Money{value: *l.acct.fixed, cur: l.currency}, true
}

// Configure applies an account configuration entry. It only affects orders
// appended afterwards.
//
// Known keys are "fixed_value" (an amount) and "COMM" (a commission, see ParsePolicy).
func (l *Ledger) Configure(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "fixed_value":
		v, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%w: fixed_value %q: %w", ErrInvalidInput, value, err)
		}
		l.acct.fixed = &v
	case "COMM":
		p, err := ParsePolicy(value)
		if err != nil {
			return err
		}
		l.acct.policy = p
	default:
		return fmt.Errorf("%w: unknown config key: %s", ErrInvalidInput, key)
	}
	return nil
}

// Append computes the snapshot of o and appends it.
//
// Orders must come in chronological order. On error the ledger is unchanged.
func (l *Ledger) Append(o Order) (Snapshot, error) {
	prev := genesis(l.currency)
	if n := len(l.entries); n > 0 {
		prev = l.entries[n-1]
		if o.Date.Before(prev.Date) {
			return Snapshot{}, fmt.Errorf("%w: order on %v is older than the last entry on %v", ErrInvalidInput, o.Date, prev.Date)
		}
	}
	if o.Price.cur == "" {
		o.Price.cur = l.currency
	} else if o.Price.cur != l.currency {
		return Snapshot{}, fmt.Errorf("%w: order in %s in a %s ledger", ErrInvalidInput, o.Price.cur, l.currency)
	}
	s, err := apply(prev, o, l.acct)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: cannot append %v: %w", l.name, o, err)
	}
	if s.Anomalies != 0 {
		log.Printf("%s: %v: recovered %v anomaly", l.name, o, s.Anomalies)
	}
	l.entries = append(l.entries, s)
	return s, nil
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// At returns the i-th snapshot.
func (l *Ledger) At(i int) Snapshot { return l.entries[i] }

// Snapshots returns an iterator over the snapshots in chronological order.
func (l *Ledger) Snapshots() iter.Seq2[int, Snapshot] {
	return func(yield func(int, Snapshot) bool) {
		for i, s := range l.entries {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Orders returns the orders of the ledger, for replay.
func (l *Ledger) Orders() []Order {
	orders := make([]Order, len(l.entries))
	for i, s := range l.entries {
		orders[i] = s.Order
	}
	return orders
}

// Last returns the most recent snapshot.
func (l *Ledger) Last() (Snapshot, error) {
	if len(l.entries) == 0 {
		return Snapshot{}, fmt.Errorf("%w: %s ledger is empty", ErrState, l.name)
	}
	return l.entries[len(l.entries)-1], nil
}

// lastTrade returns the index of the most recent buy or sell.
func (l *Ledger) lastTrade() (int, error) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].IsTrade() {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s ledger has no trade", ErrState, l.name)
}

// LastTrade returns the snapshot of the most recent buy or sell.
func (l *Ledger) LastTrade() (Snapshot, error) {
	i, err := l.lastTrade()
	if err != nil {
		return Snapshot{}, err
	}
	return l.entries[i], nil
}

// Detail returns the last snapshot dated on or before on.
// A zero date returns the last trade.
func (l *Ledger) Detail(on date.Date) (Snapshot, error) {
	if len(l.entries) == 0 {
		return Snapshot{}, fmt.Errorf("%w: %s ledger is empty", ErrState, l.name)
	}
	if on.IsZero() {
		return l.LastTrade()
	}
	i := l.indexOn(on)
	if i < 0 {
		return Snapshot{}, fmt.Errorf("%w: %s has no entry on or before %v", ErrState, l.name, on)
	}
	return l.entries[i], nil
}

// indexOn returns the index of the last entry dated on or before on, -1 if none.
func (l *Ledger) indexOn(on date.Date) int {
	idx := -1
	for i, s := range l.entries {
		if s.Date.After(on) {
			// The ledger is sorted by date, so it's safe to break.
			break
		}
		idx = i
	}
	return idx
}

// Side is the direction of a trade.
type Side int

const (
	BuySide Side = iota
	SellSide
)

func (s Side) String() string {
	if s == SellSide {
		return "sell"
	}
	return "buy"
}

// PriceLevel is a past trade restated in today's units.
type PriceLevel struct {
	Index       int
	Date        date.Date
	Price       Money    // split adjusted trade price
	PositionQty Quantity // split adjusted position right after the trade
}

// ScanBack walks the ledger backward from the entry before start and returns
// the most recent trade on side whose split adjusted price satisfies accept.
//
// Prices and positions are restated through every split found between the
// trade and the end of the ledger, so levels compare with current prices.
// The scan is restartable: pass the returned Index as the next start to keep
// walking from where it stopped.
func (l *Ledger) ScanBack(start int, side Side, accept func(price Money) bool) (PriceLevel, bool) {
	return l.scanBack(len(l.entries)-1, start, side, accept)
}

// scanBack is ScanBack with levels restated in the units of entry base.
func (l *Ledger) scanBack(base, start int, side Side, accept func(price Money) bool) (PriceLevel, bool) {
	start = min(start, base+1)
	// splits between start and base still apply to anything before start
	var splits []int
	for i := base; i >= start && i >= 0; i-- {
		if e := l.entries[i]; e.Type() == Split {
			splits = append(splits, e.Split)
		}
	}
	for i := start - 1; i >= 0; i-- {
		e := l.entries[i]
		switch e.Type() {
		case Split:
			splits = append(splits, e.Split)
			continue
		case Buy:
			if side != BuySide {
				continue
			}
		case Sell:
			if side != SellSide {
				continue
			}
		default:
			continue
		}
		price, position := e.Price.value, e.PositionQty.value
		// oldest split first, the way the ledger applied them
		for k := len(splits) - 1; k >= 0; k-- {
			price = scalePrice(price, splits[k])
			position = scaleUnits(position, splits[k])
		}
		level := PriceLevel{Index: i, Date: e.Date, Price: Money{value: price, cur: l.currency}, PositionQty: Q(position.Truncate(0))}
		if accept(level.Price) {
			return level, true
		}
	}
	return PriceLevel{Index: -1}, false
}

// Report compares two points in time of the ledger.
type Report struct {
	From, To   date.Date
	Start, End Snapshot
	HasStart   bool // false when the ledger starts after From

	StartReturn decimal.Decimal
	EndReturn   decimal.Decimal
	Return      decimal.Decimal // EndReturn - StartReturn

	// changes of the snapshot metrics over the period
	PositionQty   Quantity
	Breakeven     Money
	SharePrice    Money
	PositionCost  Money
	MarkedValue   Money
	PaperProfit   Money
	Cash          Money
	TotalInvested Money
	TotalValue    Money
}

// Report returns the change of the key metrics between the last entries on
// or before from and on or before to.
func (l *Ledger) Report(from, to date.Date) (*Report, error) {
	if len(l.entries) == 0 {
		return nil, fmt.Errorf("%w: %s ledger is empty", ErrState, l.name)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: report from %v to %v", ErrInvalidInput, from, to)
	}
	j := l.indexOn(to)
	if j < 0 {
		return nil, fmt.Errorf("%w: %s has no entry on or before %v", ErrState, l.name, to)
	}
	r := &Report{From: from, To: to, End: l.entries[j], Start: genesis(l.currency)}
	if i := l.indexOn(from); i >= 0 {
		r.Start, r.HasStart = l.entries[i], true
	}
	r.StartReturn, r.EndReturn = r.Start.Return(), r.End.Return()
	r.Return = r.EndReturn.Sub(r.StartReturn)
	r.PositionQty = r.End.PositionQty.Sub(r.Start.PositionQty)
	r.Breakeven = r.End.Breakeven.Sub(r.Start.Breakeven)
	r.SharePrice = r.End.SharePrice.Sub(r.Start.SharePrice)
	r.PositionCost = r.End.PositionCost.Sub(r.Start.PositionCost)
	r.MarkedValue = r.End.MarkedValue.Sub(r.Start.MarkedValue)
	r.PaperProfit = r.End.PaperProfit.Sub(r.Start.PaperProfit)
	r.Cash = r.End.Cash.Sub(r.Start.Cash)
	r.TotalInvested = r.End.TotalInvested.Sub(r.Start.TotalInvested)
	r.TotalValue = r.End.TotalValue.Sub(r.Start.TotalValue)
	return r, nil
}

// YearReport returns the report of a calendar year, from the close of the
// previous year to December 31st.
func (l *Ledger) YearReport(year int) (*Report, error) {
	return l.Report(date.EndOfYear(year-1), date.EndOfYear(year))
}
