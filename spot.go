package vest

import (
	"fmt"
	"sync"

	"github.com/geomat0101/vest/date"
	"github.com/shopspring/decimal"
)

// reversalWindow is the number of days after a trade during which trading
// the other way gets a warning note.
const reversalWindow = 30

// Action is the decision of a spot evaluation.
type Action string

const (
	Hold       Action = "HOLD"
	BuyAction  Action = "BUY"
	SellAction Action = "SELL"
)

// Spot is an entry recommendation refined with a live price.
//
// It is never stored in the ledger.
type Spot struct {
	Index    int
	On       date.Date
	Price    Money           // live price
	Movement decimal.Decimal // (Price - RefPrice) / RefPrice

	Buy  Recommendation
	Sell Recommendation

	Action  Action
	Notes   []string // advisory warnings on the action
	Explain []string // ordered trail of the evaluation
}

// Order returns the order matching the action, if any.
func (s *Spot) Order() (Recommendation, bool) {
	switch s.Action {
	case BuyAction:
		return s.Buy, true
	case SellAction:
		return s.Sell, true
	default:
		return Recommendation{}, false
	}
}

// spotEntry memoizes the last spot evaluation of an entry.
type spotEntry struct {
	mu   sync.Mutex
	spot *Spot
}

// Spot evaluates entry index against a live price on a given day.
//
// The result is memoized per entry: it is recomputed only when the price or
// the day differs from the previous call. Different entries are evaluated
// concurrently, calls for the same entry are serialized.
func (l *Ledger) Spot(index int, price Money, on date.Date) (*Spot, error) {
	if len(l.entries) == 0 {
		return nil, fmt.Errorf("%w: %s ledger is empty", ErrState, l.name)
	}
	if index < 0 || index >= len(l.entries) {
		return nil, fmt.Errorf("%w: %s has no entry #%d", ErrInvalidInput, l.name, index)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: spot price must be positive, got %v", ErrInvalidInput, price)
	}
	price.cur = l.currency

	l.spotMu.Lock()
	if l.spots == nil {
		l.spots = make(map[int]*spotEntry)
	}
	entry, ok := l.spots[index]
	if !ok {
		entry = &spotEntry{}
		l.spots[index] = entry
	}
	l.spotMu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.spot != nil && entry.spot.Price.Equal(price) && entry.spot.On == on {
		return entry.spot, nil
	}
	s := l.evaluate(index, price, on)
	entry.spot = s
	return s, nil
}

// spotSize resizes the next order to the move since the reference price.
//
// The size is rounded down to a multiple of the base quantity and zeroed
// below one base quantity. A zero size keeps the base recommendation.
func (l *Ledger) spotSize(e Snapshot, spot, movement decimal.Decimal) (int64, decimal.Decimal) {
	ref := e.RefPrice.value
	if movement.IsPositive() {
		base := e.NextSell.Qty.value
		position := e.PositionQty.value
		if !base.IsPositive() || !position.IsPositive() {
			return 0, decimal.Zero
		}
		size := position.Mul(movement).RoundBank(4)
		if size.GreaterThan(base) {
			size = size.Div(base).Floor().Mul(base)
		}
		size = size.Mul(e.NextSell.Leverage)
		if size.LessThan(base) {
			return 0, decimal.Zero
		}
		qty := size.IntPart()
		den := e.NextSell.Leverage.Mul(position)
		return qty, cents(ref.Mul(decimal.NewFromInt(qty)).Div(den).Add(ref))
	}
	base := e.NextBuy.Qty.value
	capital := e.TotalValue.value
	if fixed, ok := e.FixedValue(); ok {
		capital = fixed.value.Sub(e.PositionCost.value)
	}
	if !base.IsPositive() || !capital.IsPositive() {
		return 0, decimal.Zero
	}
	size := capital.Mul(movement).Div(spot).Abs().RoundBank(4)
	if !size.GreaterThan(base) {
		return 0, decimal.Zero
	}
	qty := size.Div(base).Floor().Mul(base).IntPart()
	return qty, cents(ref.Mul(capital).Div(decimal.NewFromInt(qty).Mul(ref).Add(capital)))
}

func (l *Ledger) evaluate(index int, price Money, on date.Date) *Spot {
	e := l.entries[index]
	m := func(d decimal.Decimal) Money { return Money{value: d, cur: l.currency} }
	s := &Spot{Index: index, On: on, Price: price, Movement: decimal.Zero, Buy: e.NextBuy, Sell: e.NextSell}
	explain := func(format string, args ...any) { s.Explain = append(s.Explain, fmt.Sprintf(format, args...)) }

	ref := e.RefPrice.value
	if ref.IsPositive() {
		s.Movement = price.value.Sub(ref).Div(ref)
	}
	qty, at := l.spotSize(e, price.value, s.Movement)

	// buy side
	explain("allocation model next buy: %d @ %v", e.NextBuy.Qty.Int(), e.NextBuy.Price)
	explain("spot is %v", price)
	if !s.Movement.IsPositive() && qty > 0 && qty != e.NextBuy.Qty.Int() {
		s.Buy.Qty, s.Buy.Price = Q(qty), m(at)
		explain("spot adjusted next buy: %d @ %v", qty, s.Buy.Price)
	}
	if s.Buy.Price.LessThan(e.Breakeven) {
		explain("break-even is %v: no qty limits", e.Breakeven)
	} else {
		explain("break-even is %v: qty may be limited", e.Breakeven)
		// only buy back units sold at higher levels
		level, ok := l.scanBack(index, index+1, SellSide, func(p Money) bool { return p.LessThan(s.Buy.Price) })
		switch {
		case !ok:
			explain("no prior sales below the next buy price: no qty limits")
		case level.PositionQty.IsZero():
			explain("last sale below the next buy price was %v @ %v, from a dead position: no qty limits", level.Date, level.Price)
		default:
			explain("last sale below the next buy price was %v @ %v with %v units held", level.Date, level.Price, level.PositionQty)
			diff := level.PositionQty.Sub(e.PositionQty)
			switch {
			case !diff.IsPositive():
				s.Buy.Qty = Q(0)
				explain("cannot buy any more right now: sell more above the next buy price or wait for the price to fall further")
			case s.Buy.Qty.GreaterThan(diff):
				s.Buy.Qty = diff
				explain("buys ok for up to %v units: adjusted next buy: %v @ %v", diff, s.Buy.Qty, s.Buy.Price)
			default:
				explain("buys ok for up to %v units: no qty limits", diff)
			}
		}
	}

	// sell side
	explain("allocation model next sell: %d @ %v", e.NextSell.Qty.Int(), e.NextSell.Price)
	explain("spot is %v", price)
	if s.Movement.IsPositive() && qty > 0 && qty != e.NextSell.Qty.Int() {
		s.Sell.Qty, s.Sell.Price = Q(qty), m(at)
		explain("spot adjusted next sell: %d @ %v", qty, s.Sell.Price)
	}
	if s.Sell.Price.GreaterThan(e.Breakeven) {
		explain("break-even is %v: no qty limits", e.Breakeven)
	} else {
		explain("break-even is %v: qty may be limited", e.Breakeven)
		l.limitSell(s, e, explain)
	}

	// action
	fee := l.acct.policy
	switch {
	case price.GreaterThanOrEqual(s.Sell.Price) && s.Sell.Qty.IsPositive():
		s.Action = SellAction
		if e.Type() == Buy {
			s.notes(e.Date, on, fee, s.Sell)
		}
	case price.LessThanOrEqual(s.Buy.Price) && s.Buy.Price.IsPositive() && s.Buy.Qty.IsPositive():
		s.Action = BuyAction
		if e.Type() == Sell {
			s.notes(e.Date, on, fee, s.Buy)
		}
	default:
		s.Action = Hold
	}
	if r, ok := s.Order(); ok {
		explain("%s: %v @ %v", s.Action, r.Qty, r.Price)
	} else {
		explain("%s", s.Action)
	}
	return s
}

// limitSell caps the sell side so that only units bought at lower levels are
// sold back.
//
// While the most recent buy above the sell price was made with a position at
// least as large as today's, that level is exhausted: the scan moves on to the
// next older buy above it, raising the sell price to that level.
func (l *Ledger) limitSell(s *Spot, e Snapshot, explain func(string, ...any)) {
	above := func(p Money) bool { return p.GreaterThan(s.Sell.Price) }
	level, ok := l.scanBack(s.Index, s.Index+1, BuySide, above)
	if !ok {
		explain("no prior buys above the next sell price: no qty limits")
		return
	}
	explain("last buy above the next sell price was %v @ %v with %v units held", level.Date, level.Price, level.PositionQty)
	if level.PositionQty.IsZero() {
		explain("no qty limits")
		return
	}
	diff := level.PositionQty.Sub(e.PositionQty)
	if !diff.IsNegative() {
		explain("cannot sell any more at %v", level.Price)
	}
	for !diff.IsNegative() {
		level, ok = l.scanBack(s.Index, level.Index, BuySide, above)
		if !ok || level.PositionQty.IsZero() {
			s.Sell.Qty = Q(0)
			explain("buy more below the next sell price or wait for the price to rise")
			return
		}
		explain("then %v @ %v with %v units held", level.Date, level.Price, level.PositionQty)
		diff = level.PositionQty.Sub(e.PositionQty)
		s.Sell.Price = level.Price
	}
	diff = diff.Neg()
	if s.Sell.Qty.GreaterThan(diff) {
		s.Sell.Qty = diff
		explain("sells ok for up to %v units: adjusted next sell: %v @ %v", diff, s.Sell.Qty, s.Sell.Price)
		return
	}
	explain("sells ok for up to %v units: no qty limits", diff)
}

// notes records the warnings of an order reversing the last trade.
func (s *Spot) notes(last, on date.Date, policy Policy, r Recommendation) {
	if limit := last.Add(reversalWindow); !on.After(limit) {
		s.Notes = append(s.Notes, fmt.Sprintf("30-day window: last trade on %v, wait until after %v", last, limit))
	}
	value := r.Price.Mul(r.Qty)
	fee := policy.Fee(r.Qty, r.Price)
	if fee.value.GreaterThan(value.value.Mul(minInterval)) {
		s.Notes = append(s.Notes, fmt.Sprintf("commission %v is above 1%% of the order value %v", fee, value.Cents()))
	}
}
