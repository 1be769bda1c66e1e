package vest

import (
	"fmt"

	"github.com/geomat0101/vest/date"
	"github.com/shopspring/decimal"
)

// Match is the slice of a buy consumed by a sell.
type Match struct {
	Date  date.Date
	Qty   Quantity // units matched, in the units of the sell
	Price Money    // split adjusted buy price
	Total Money    // Qty * Price
	Fee   Money    // commission of the matched units, charged with the buy policy
}

// Cost returns the matched total, commission included.
func (m Match) Cost() Money { return m.Total.Add(m.Fee) }

// lot is a buy serial range restated in the units of a later entry.
//
// Units are numbered from 1: a lot owns the half open interval (lo, hi], that
// is serial numbers lo+1 to hi when no split happened.
type lot struct {
	index  int
	lo, hi decimal.Decimal
	price  decimal.Decimal
}

// lots returns the buys up to entry at, restated in the units in force at
// that entry.
//
// Boundaries are rescaled exactly like the ledger counters are, one split at
// a time, so consecutive lots keep sharing their boundaries.
func (l *Ledger) lots(at int) []lot {
	var lots []lot
	for i := 0; i <= at; i++ {
		e := l.entries[i]
		switch e.Type() {
		case Buy:
			lots = append(lots, lot{
				index: i,
				lo:    e.FIFOStart.value.Sub(one),
				hi:    e.FIFOEnd.value,
				price: e.Price.value,
			})
		case Split:
			for j := range lots {
				lots[j].lo = scaleUnits(lots[j].lo, e.Split)
				lots[j].hi = scaleUnits(lots[j].hi, e.Split)
				lots[j].price = scalePrice(lots[j].price, e.Split)
			}
		}
	}
	return lots
}

// match returns the buys covering serial numbers start to end, both
// included, expressed in the units in force at entry at.
func (l *Ledger) match(at int, start, end Quantity) ([]Match, error) {
	if at < 0 || at >= len(l.entries) {
		return nil, fmt.Errorf("%w: %s has no entry #%d", ErrState, l.name, at)
	}
	if end.LessThan(start) || !start.IsPositive() {
		return nil, fmt.Errorf("%w: serial range [%v, %v]", ErrInvalidInput, start, end)
	}
	lo, hi := start.value.Sub(one), end.value
	var matches []Match
	sum := decimal.Zero
	for _, b := range l.lots(at) {
		from, to := decimal.Max(lo, b.lo), decimal.Min(hi, b.hi)
		if !to.GreaterThan(from) {
			continue
		}
		qty := to.Sub(from)
		sum = sum.Add(qty)
		e := l.entries[b.index]
		price := Money{value: b.price, cur: l.currency}
		matches = append(matches, Match{
			Date:  e.Date,
			Qty:   Q(qty),
			Price: price,
			Total: price.Mul(Q(qty)).Cents(),
			Fee:   e.Policy().Fee(Q(qty), price),
		})
	}
	if want := hi.Sub(lo); !sum.Equal(want) {
		return nil, fmt.Errorf("%w: %s matched %v units for serial range [%v, %v]", ErrIntegrity, l.name, sum, start, end)
	}
	return matches, nil
}

// Lookup returns the buys consumed by the serial range [start, end], slicing
// partial overlaps at both ends. Serial numbers are in current units.
//
// It fails with ErrIntegrity when the buy history does not cover the range.
func (l *Ledger) Lookup(start, end Quantity) ([]Match, error) {
	return l.match(len(l.entries)-1, start, end)
}
