package vest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// markDrag discounts the marked value by a 1% exit commission.
	// It does not follow the account policy.
	markDrag = decimal.RequireFromString("0.99")

	// initialSharePrice is the synthetic share price of an empty account.
	initialSharePrice = decimal.NewFromInt(100)
)

// Snapshot is the aggregate state of the position right after an order.
//
// Snapshots are computed once, when the order is appended to the ledger, and
// never change afterwards.
type Snapshot struct {
	Order

	Subtotal Money // Qty * Price
	Fee      Money // commission charged on this order
	NetCost  Money // Subtotal + Fee, the cash consumed by the order

	// RefPrice is the price the sizing algorithm starts from: the order price
	// for trades, the split adjusted last trade price otherwise.
	RefPrice Money

	PositionCost Money    // cash put in the position, commissions included
	PositionQty  Quantity // units held
	Cash         Money    // cash side of the account

	LastBuy    Money // price of the last buy
	LastSell   Money // price of the last sell, or LastBuy until the first sell
	Mark       Money // midpoint of LastBuy and LastSell
	MarkSpread Money // LastSell - LastBuy

	MarkedValue   Money // position value at Mark, less the exit drag
	TotalValue    Money // MarkedValue + Cash
	Breakeven     Money // liquidation price with zero gain (DCA)
	PaperProfit   Money // MarkedValue - PositionCost
	TotalInvested Money // PositionCost + Cash

	// Synthetic fund accounting: changes of TotalInvested mint or burn shares
	// at the previous share price so that returns compare across accounts
	// regardless of the timing of their external cash flows.
	InvestmentDiff Money
	Shares         decimal.Decimal // minted (negative when burned) by this order
	TotalShares    decimal.Decimal
	SharePrice     Money

	ROI decimal.Decimal // PaperProfit / PositionCost in percent

	// FIFO serial numbers: a buy owns [FIFOStart, FIFOEnd] in the buy
	// sequence, a sell the same range in the sell sequence.
	FIFOStart   Quantity
	FIFOEnd     Quantity
	BuyCounter  Quantity
	SellCounter Quantity

	NextBuy    Recommendation
	NextSell   Recommendation
	ReserveReq Money // capital needed to keep buying NextBuy every interval down to zero

	Anomalies Anomaly

	policy Policy           // commission in force for this order
	fixed  *decimal.Decimal // fixed value in force for this order, if any
}

// Policy returns the commission policy the order was charged with.
func (s Snapshot) Policy() Policy { return s.policy }

// FixedValue returns the capital base the order was sized against, if any.
func (s Snapshot) FixedValue() (Money, bool) {
	if s.fixed == nil {
		return Money{cur: s.SharePrice.cur}, false
	}
	return Money{value: *s.fixed, cur: s.SharePrice.cur}, true
}

// Return is TotalValue / TotalInvested, 1 when nothing is invested.
func (s Snapshot) Return() decimal.Decimal {
	if s.TotalInvested.IsZero() {
		return one
	}
	return s.TotalValue.value.Div(s.TotalInvested.value)
}

// genesis is the state before the first order.
func genesis(currency string) Snapshot {
	z := Money{cur: currency}
	return Snapshot{
		Subtotal: z, Fee: z, NetCost: z, RefPrice: z,
		PositionCost: z, Cash: z,
		LastBuy: z, LastSell: z, Mark: z, MarkSpread: z,
		MarkedValue: z, TotalValue: z, Breakeven: z, PaperProfit: z, TotalInvested: z,
		InvestmentDiff: z,
		SharePrice:     Money{value: initialSharePrice, cur: currency},
		ReserveReq:     z,
	}
}

// sizing holds the account level inputs of the recurrence.
type sizing struct {
	policy Policy
	fixed  *decimal.Decimal // capital base override for buys
}

// scaleUnits applies a split to a number of units.
func scaleUnits(units decimal.Decimal, split int) decimal.Decimal {
	switch {
	case split > 0:
		return units.Mul(decimal.NewFromInt(int64(split)))
	case split < 0:
		return units.Div(decimal.NewFromInt(int64(-split)))
	default:
		return units
	}
}

// scalePrice applies a split to a unit price.
func scalePrice(price decimal.Decimal, split int) decimal.Decimal {
	switch {
	case split > 0:
		return cents(price.Div(decimal.NewFromInt(int64(split))))
	case split < 0:
		return cents(price.Mul(decimal.NewFromInt(int64(-split))))
	default:
		return price
	}
}

// apply computes the snapshot of o given the previous one.
//
// It is a pure function of its inputs: replaying the same orders always
// yields the same snapshots.
func apply(prev Snapshot, o Order, acct sizing) (Snapshot, error) {
	if err := o.Validate(); err != nil {
		return Snapshot{}, err
	}
	if acct.policy == nil {
		return Snapshot{}, fmt.Errorf("%w: no commission policy", ErrInvalidInput)
	}
	currency := prev.SharePrice.cur
	m := func(d decimal.Decimal) Money { return Money{value: d, cur: currency} }

	qty, price := o.Qty.value, o.Price.value
	s := Snapshot{Order: o, policy: acct.policy, fixed: acct.fixed}

	subtotal := qty.Mul(price)
	fee := decimal.Zero
	if !subtotal.IsZero() {
		fee = acct.policy.Fee(o.Qty, o.Price).value
	}
	net := subtotal.Add(fee)
	s.Subtotal, s.Fee, s.NetCost = m(subtotal), m(fee), m(net)

	cost := prev.PositionCost.value.Add(net)
	position := prev.PositionQty.value.Add(qty)
	cash := prev.Cash.value.Sub(net)
	buys, sells := prev.BuyCounter.value, prev.SellCounter.value
	lastBuy, lastSell := prev.LastBuy.value, prev.LastSell.value
	ref := prev.RefPrice.value

	switch o.Type() {
	case Buy:
		s.FIFOStart = Q(buys.Add(one))
		buys = buys.Add(qty)
		s.FIFOEnd = Q(buys)
		lastBuy, ref = price, price
		if cash.IsNegative() {
			// settlement pending, the cash side never goes negative on a buy
			cash = decimal.Zero
		}
	case Sell:
		s.FIFOStart = Q(sells.Add(one))
		sells = sells.Sub(qty)
		s.FIFOEnd = Q(sells)
		lastSell, ref = price, price
	case Adjustment:
		cash = cash.Add(price)
		cost = cost.Sub(price)
	case Split:
		position = scaleUnits(position, o.Split).Truncate(0)
		buys = scaleUnits(buys, o.Split)
		sells = scaleUnits(sells, o.Split)
		ref = scalePrice(ref, o.Split)
	}
	// Until the first sell, LastSell follows the most recent buy rather than
	// staying at the first buy price, so the mark stays at the last buy.
	if sells.IsZero() {
		lastSell = lastBuy
	}
	if o.Split != 0 {
		lastBuy = scalePrice(lastBuy, o.Split)
		lastSell = scalePrice(lastSell, o.Split)
	}

	s.RefPrice = m(ref)
	s.PositionCost, s.PositionQty, s.Cash = m(cost), Q(position), m(cash)
	s.BuyCounter, s.SellCounter = Q(buys), Q(sells)
	s.LastBuy, s.LastSell = m(lastBuy), m(lastSell)

	spread := lastSell.Sub(lastBuy)
	mark := cents(spread.Div(decimal.NewFromInt(2)).Add(lastBuy))
	marked := cents(mark.Mul(position).Mul(markDrag))
	total := marked.Add(cash)
	s.MarkSpread, s.Mark, s.MarkedValue, s.TotalValue = m(spread), m(mark), m(marked), m(total)

	s.Breakeven = m(decimal.Zero)
	if !position.IsZero() {
		be, err := acct.policy.Breakeven(s.PositionCost, s.PositionQty)
		if err != nil {
			s.Anomalies |= AnomalyBreakeven
		} else {
			s.Breakeven = be
		}
	}

	s.PaperProfit = m(marked.Sub(cost))
	invested := cost.Add(cash)
	s.TotalInvested = m(invested)

	diff := invested.Sub(prev.TotalInvested.value)
	s.InvestmentDiff = m(diff)
	s.Shares = decimal.Zero
	if !prev.SharePrice.IsZero() {
		s.Shares = diff.Div(prev.SharePrice.value)
	} else if !diff.IsZero() {
		s.Anomalies |= AnomalySharePrice
	}
	s.TotalShares = prev.TotalShares.Add(s.Shares).RoundBank(4)
	if s.TotalShares.IsZero() {
		s.SharePrice = prev.SharePrice
		if !diff.IsZero() || !total.IsZero() {
			s.Anomalies |= AnomalySharePrice
		}
	} else {
		s.SharePrice = m(cents(total.Div(s.TotalShares)))
	}

	s.ROI = decimal.Zero
	if !cost.IsZero() {
		s.ROI = s.PaperProfit.value.Div(cost).Mul(hundred).RoundBank(4)
	}

	var err error
	if acct.fixed != nil {
		s.NextBuy, err = FixedBuy(ref, acct.fixed.Sub(cost))
	} else {
		s.NextBuy, err = BuyLeverage(ref, total, s.Breakeven.value)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("next buy of %v: %w", o, err)
	}
	s.NextSell, err = SellLeverage(ref, position, s.Breakeven.value, lastSell)
	if err != nil {
		return Snapshot{}, fmt.Errorf("next sell of %v: %w", o, err)
	}
	s.NextBuy.Price.cur, s.NextSell.Price.cur = currency, currency

	s.ReserveReq = m(decimal.Zero)
	if s.NextBuy.Qty.IsPositive() {
		interval := ref.Sub(s.NextBuy.Price.value)
		if interval.IsZero() {
			s.Anomalies |= AnomalyReserve
		} else if n := ref.Div(interval).Floor(); n.IsPositive() {
			// 1 + 2 + ... + n intervals, one more order at each step down
			steps := n.Mul(n.Add(one)).Div(decimal.NewFromInt(2))
			s.ReserveReq = m(cents(steps.Mul(interval).Mul(s.NextBuy.Qty.value)))
		}
	}
	return s, nil
}
