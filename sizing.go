package vest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// maxSearch caps the quantity search of a single sizing equation.
//
// The search starts from the closed form lower bound of the minimal quantity
// and only walks the last few units, so a well formed input terminates in a
// handful of steps whatever the size of the position.
const maxSearch = 100

var (
	// minInterval is the smallest move, relative to the last price, worth an order.
	minInterval = decimal.New(1, -2)

	// leverages are tried in order, the first giving a single unit order wins.
	leverages = []decimal.Decimal{
		decimal.NewFromInt(3),
		decimal.NewFromInt(2),
		decimal.NewFromInt(4).Div(decimal.NewFromInt(3)),
		one,
	}
)

// Recommendation is the next limit order the sizing algorithm asks for.
type Recommendation struct {
	Qty      Quantity        `json:"qty"`      // always positive, the side is implied
	Price    Money           `json:"price"`    // limit price, cent rounded
	Leverage decimal.Decimal `json:"leverage"` // factor used to solve the equation
}

// Actionable reports whether the recommendation is a real order.
//
// A zero quantity or an interval that rounded to zero means there is no
// price worth placing an order at.
func (r Recommendation) Actionable(ref Money) bool {
	return r.Qty.IsPositive() && !r.Price.Sub(ref).IsZero()
}

// Interval returns the absolute distance between ref and the recommended price.
func (r Recommendation) Interval(ref Money) Money {
	return r.Price.Sub(ref).Abs().Cents()
}

// NextSellAt solves the sell equation
//
//	next = last * qty / (leverage * position) + last
//
// for the smallest qty >= 1 moving the price up by at least 1%.
//
// The price has to rise enough to justify selling qty units out of the
// position at its current value: the smaller the position the wider the
// interval, up to a 100% rise for a single unit held.
func NextSellAt(last decimal.Decimal, position decimal.Decimal, leverage decimal.Decimal) (qty int64, next decimal.Decimal, err error) {
	den := leverage.Mul(position)
	if !den.IsPositive() || !last.IsPositive() {
		return 0, decimal.Zero, fmt.Errorf("%w: sell sizing at %v for %v units with leverage %v", ErrDiverged, last, position, leverage)
	}
	floor := last.Mul(minInterval)
	// qty / den >= 1% is the real valued bound
	qty = max(1, minInterval.Mul(den).Floor().IntPart()-1)
	for i := 0; i < maxSearch; i++ {
		next = last.Mul(decimal.NewFromInt(qty)).Div(den).Add(last)
		if next.Sub(last).GreaterThanOrEqual(floor) {
			return qty, cents(next), nil
		}
		qty++
	}
	return 0, decimal.Zero, fmt.Errorf("%w: sell sizing at %v for %v units after %d steps", ErrDiverged, last, position, maxSearch)
}

// NextBuyAt solves the buy equation
//
//	next = last * capital * leverage / (qty * last + capital * leverage)
//
// for the smallest qty >= 1 moving the price down by at least 1%.
//
// The relative move from the last price equals the weight of the next buy in
// the capital base: (last - next) / last = qty * next / capital.
func NextBuyAt(last decimal.Decimal, capital decimal.Decimal, leverage decimal.Decimal) (qty int64, next decimal.Decimal, err error) {
	base := capital.Mul(leverage)
	if !base.IsPositive() || !last.IsPositive() {
		return 0, decimal.Zero, fmt.Errorf("%w: buy sizing at %v for a capital of %v with leverage %v", ErrDiverged, last, capital, leverage)
	}
	floor := last.Mul(minInterval)
	// qty >= base / (99 * last) is the real valued bound
	qty = max(1, base.Div(last.Mul(decimal.NewFromInt(99))).Floor().IntPart()-1)
	for i := 0; i < maxSearch; i++ {
		next = last.Mul(base).Div(decimal.NewFromInt(qty).Mul(last).Add(base))
		if last.Sub(next).GreaterThanOrEqual(floor) {
			return qty, cents(next), nil
		}
		qty++
	}
	return 0, decimal.Zero, fmt.Errorf("%w: buy sizing at %v for a capital of %v after %d steps", ErrDiverged, last, capital, maxSearch)
}

// BuyLeverage picks the buy recommendation.
//
// Leverage only applies while averaging down: a leveraged price above the
// break-even is replaced by the unleveraged one. A non positive capital has
// nothing to size and yields a zero recommendation.
func BuyLeverage(last, capital, breakeven decimal.Decimal) (Recommendation, error) {
	if !capital.IsPositive() || !last.IsPositive() {
		return Recommendation{Leverage: one}, nil
	}
	var (
		qty      int64
		next     decimal.Decimal
		leverage decimal.Decimal
		err      error
	)
	for _, leverage = range leverages {
		qty, next, err = NextBuyAt(last, capital, leverage)
		if err != nil {
			return Recommendation{}, err
		}
		if qty == 1 {
			break
		}
	}
	if leverage.GreaterThan(one) && next.GreaterThan(breakeven) {
		leverage = one
		if qty, next, err = NextBuyAt(last, capital, leverage); err != nil {
			return Recommendation{}, err
		}
	}
	return Recommendation{Qty: Q(qty), Price: Money{value: next}, Leverage: leverage}, nil
}

// FixedBuy sizes the buy side against a fixed capital base, without leverage.
func FixedBuy(last, capital decimal.Decimal) (Recommendation, error) {
	if !capital.IsPositive() || !last.IsPositive() {
		return Recommendation{Leverage: one}, nil
	}
	qty, next, err := NextBuyAt(last, capital, one)
	if err != nil {
		return Recommendation{}, err
	}
	return Recommendation{Qty: Q(qty), Price: Money{value: next}, Leverage: one}, nil
}

// SellLeverage picks the sell recommendation.
//
// Leverage is kept only while the leveraged price stays at or above the
// break-even. A dead position gets a placeholder single unit order at the
// last sell price.
func SellLeverage(last, position, breakeven, lastSell decimal.Decimal) (Recommendation, error) {
	if !position.IsPositive() {
		return Recommendation{Qty: Q(1), Price: Money{value: lastSell}, Leverage: one}, nil
	}
	if !last.IsPositive() {
		return Recommendation{Leverage: one}, nil
	}
	var (
		qty      int64
		next     decimal.Decimal
		leverage decimal.Decimal
		err      error
	)
	for _, leverage = range leverages {
		qty, next, err = NextSellAt(last, position, leverage)
		if err != nil {
			return Recommendation{}, err
		}
		if qty == 1 {
			break
		}
	}
	if leverage.Equal(one) || next.LessThan(breakeven) {
		leverage = one
		if qty, next, err = NextSellAt(last, position, leverage); err != nil {
			return Recommendation{}, err
		}
	}
	return Recommendation{Qty: Q(qty), Price: Money{value: next}, Leverage: leverage}, nil
}
