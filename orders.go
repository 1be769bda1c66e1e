package vest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// ladderSize is the number of orders of a ladder started from scratch.
	ladderSize = 4
	// maxLadder caps the orders needed to catch up with open orders.
	maxLadder = 100
)

// wideInterval is the relative interval above which a reversing ask ladder
// does not need to skip a step.
var wideInterval = decimal.New(2, -2)

// LimitOrder is an order resting in the market: Qty is positive for a bid,
// negative for an ask.
type LimitOrder struct {
	Qty   Quantity
	Price Money
}

func (o LimitOrder) String() string {
	side := "bid"
	if o.Qty.IsNegative() {
		side = "ask"
	}
	return fmt.Sprintf("%s %v @ %v", side, o.Qty.Abs(), o.Price)
}

// Ladder is the set of limit orders to add on one side of the market.
type Ladder struct {
	Side     Side
	Last     Snapshot // last trade the ladder is computed from
	Interval Money
	Leverage decimal.Decimal
	Bound    Money  // highest bid or lowest ask the ladder may reach
	Open     *Money // best open order on that side, if any
	Skipped  bool   // one step was skipped because the last trade went the other way
	Orders   []LimitOrder
}

// bestOpen returns the highest bid or the lowest ask of open.
func bestOpen(open []LimitOrder, side Side) *Money {
	var best *Money
	for _, o := range open {
		p := o.Price
		switch {
		case side == BuySide && o.Qty.IsPositive():
			if best == nil || p.GreaterThan(*best) {
				best = &p
			}
		case side == SellSide && o.Qty.IsNegative():
			if best == nil || p.LessThan(*best) {
				best = &p
			}
		}
	}
	return best
}

// NextBids returns the bids to place given the orders already open.
//
// Bids step down from the next buy price by the interval between the last
// trade and its next buy. With open bids, the ladder fills the gap from the
// highest open bid up to the next buy price instead. One step is skipped when
// the last trade was a sell.
//
// A zero interval yields an empty ladder.
func (l *Ledger) NextBids(open []LimitOrder) (*Ladder, error) {
	x, err := l.LastTrade()
	if err != nil {
		return nil, err
	}
	ladder := &Ladder{
		Side:     BuySide,
		Last:     x,
		Interval: x.Price.Sub(x.NextBuy.Price).Cents(),
		Leverage: x.NextBuy.Leverage,
		Bound:    x.NextBuy.Price,
		Open:     bestOpen(open, BuySide),
	}
	if !ladder.Interval.IsPositive() {
		return ladder, nil
	}
	if x.Type() == Sell {
		ladder.Bound = ladder.Bound.Sub(ladder.Interval)
		ladder.Skipped = true
	}
	bid := func(p Money) { ladder.Orders = append(ladder.Orders, LimitOrder{Qty: x.NextBuy.Qty, Price: p}) }

	if ladder.Open == nil {
		for p, i := ladder.Bound, 0; i < ladderSize && p.IsPositive(); p, i = p.Sub(ladder.Interval), i+1 {
			bid(p)
		}
		return ladder, nil
	}
	for p := ladder.Open.Add(ladder.Interval); p.LessThanOrEqual(ladder.Bound) && p.IsPositive(); p = p.Add(ladder.Interval) {
		if len(ladder.Orders) == maxLadder {
			return nil, fmt.Errorf("%w: more than %d bids between %v and %v", ErrDiverged, maxLadder, *ladder.Open, ladder.Bound)
		}
		bid(p)
	}
	return ladder, nil
}

// NextAsks returns the asks to place given the orders already open.
//
// It mirrors NextBids, except that a reversing ladder only skips a step when
// the interval is narrower than 2% of the last price.
func (l *Ledger) NextAsks(open []LimitOrder) (*Ladder, error) {
	x, err := l.LastTrade()
	if err != nil {
		return nil, err
	}
	ladder := &Ladder{
		Side:     SellSide,
		Last:     x,
		Interval: x.NextSell.Price.Sub(x.Price).Cents(),
		Leverage: x.NextSell.Leverage,
		Bound:    x.NextSell.Price,
		Open:     bestOpen(open, SellSide),
	}
	if !ladder.Interval.IsPositive() {
		return ladder, nil
	}
	if x.Type() == Buy && ladder.Interval.value.Div(x.Price.value).LessThan(wideInterval) {
		ladder.Bound = ladder.Bound.Add(ladder.Interval)
		ladder.Skipped = true
	}
	qty := x.NextSell.Qty.Neg()
	ask := func(p Money) { ladder.Orders = append(ladder.Orders, LimitOrder{Qty: qty, Price: p}) }

	if ladder.Open == nil {
		for p, i := ladder.Bound, 0; i < ladderSize; p, i = p.Add(ladder.Interval), i+1 {
			ask(p)
		}
		return ladder, nil
	}
	for p := ladder.Open.Sub(ladder.Interval); p.GreaterThanOrEqual(ladder.Bound); p = p.Sub(ladder.Interval) {
		if len(ladder.Orders) == maxLadder {
			return nil, fmt.Errorf("%w: more than %d asks between %v and %v", ErrDiverged, maxLadder, ladder.Bound, *ladder.Open)
		}
		ask(p)
	}
	return ladder, nil
}

// Allocation is the capital plan of a fixed value account.
type Allocation struct {
	Alloc        Money           // fixed value
	Cost         Money           // position cost
	Avail        Money           // Alloc - Cost
	PctSpent     decimal.Decimal // Cost / Alloc in percent
	Spot         Money
	SpotFactor   decimal.Decimal // Avail / Spot, units still affordable
	TargetFactor decimal.Decimal // units the available capital should afford
	AvailTarget  Money           // Spot * TargetFactor
	Adjustment   Money           // AvailTarget - Avail
	NewAlloc     Money           // Alloc + Adjustment
}

// Allocation computes how the fixed value should change so that the available
// capital buys targetFactor units at spot. A zero spot keeps the allocation.
func (l *Ledger) Allocation(spot Money, targetFactor decimal.Decimal) (*Allocation, error) {
	alloc, ok := l.FixedValue()
	if !ok || alloc.IsZero() {
		return nil, fmt.Errorf("%w: %s has no fixed value", ErrState, l.name)
	}
	x, err := l.Last()
	if err != nil {
		return nil, err
	}
	if !x.PositionQty.IsPositive() {
		return nil, fmt.Errorf("%w: %s position is closed", ErrState, l.name)
	}
	spot.cur = l.currency
	a := &Allocation{
		Alloc:        alloc,
		Cost:         x.PositionCost,
		Avail:        alloc.Sub(x.PositionCost),
		PctSpent:     cents(x.PositionCost.value.Div(alloc.value).Mul(hundred)),
		Spot:         spot,
		SpotFactor:   decimal.Zero,
		TargetFactor: targetFactor,
	}
	a.AvailTarget = a.Avail
	if spot.IsPositive() {
		a.SpotFactor = cents(a.Avail.value.Div(spot.value))
		a.AvailTarget = Money{value: cents(spot.value.Mul(targetFactor)), cur: l.currency}
	}
	a.Adjustment = a.AvailTarget.Sub(a.Avail)
	a.NewAlloc = a.Alloc.Add(a.Adjustment)
	return a, nil
}
