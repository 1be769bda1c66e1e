package vest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy is a broker commission schedule.
//
// Fee returns the non negative, cent rounded commission charged for trading
// qty units at price; the sign of qty is irrelevant. Breakeven returns the
// price at which a position of qty units that cost cost could be fully
// liquidated, commission included, with no gain nor loss.
//
// Policies are immutable values and safe to share between ledgers.
type Policy interface {
	Fee(qty Quantity, price Money) Money
	Breakeven(cost Money, qty Quantity) (Money, error)
	String() string
}

// Percent charges Rate percent of the traded notional.
type Percent struct{ Rate decimal.Decimal }

// PerUnit charges Rate for every unit traded.
type PerUnit struct{ Rate decimal.Decimal }

// Flat charges the same Amount on every order.
type Flat struct{ Amount decimal.Decimal }

// PerUnitMinimum charges Rate per unit with a Minimum per order.
type PerUnitMinimum struct{ Rate, Minimum decimal.Decimal }

func (p Percent) Fee(qty Quantity, price Money) Money {
	fee := p.Rate.Div(hundred).Mul(qty.value).Mul(price.value).Abs()
	return Money{value: cents(fee), cur: price.cur}
}

func (p Percent) Breakeven(cost Money, qty Quantity) (Money, error) {
	den := hundred.Sub(p.Rate).Div(hundred).Mul(qty.value)
	if den.IsZero() {
		return Money{cur: cost.cur}, errZeroBreakeven(p, qty)
	}
	return Money{value: cents(cost.value.Div(den)), cur: cost.cur}, nil
}

func (p Percent) String() string { return "percent:" + p.Rate.String() }

func (p PerUnit) Fee(qty Quantity, price Money) Money {
	return Money{value: cents(p.Rate.Mul(qty.value).Abs()), cur: price.cur}
}

func (p PerUnit) Breakeven(cost Money, qty Quantity) (Money, error) {
	if qty.IsZero() {
		return Money{cur: cost.cur}, errZeroBreakeven(p, qty)
	}
	v := cost.value.Add(p.Rate.Mul(qty.value)).Div(qty.value)
	return Money{value: cents(v), cur: cost.cur}, nil
}

func (p PerUnit) String() string { return "pershare:" + p.Rate.String() }

func (p Flat) Fee(_ Quantity, price Money) Money {
	return Money{value: p.Amount, cur: price.cur}
}

func (p Flat) Breakeven(cost Money, qty Quantity) (Money, error) {
	if qty.IsZero() {
		return Money{cur: cost.cur}, errZeroBreakeven(p, qty)
	}
	v := cost.value.Add(p.Amount).Div(qty.value)
	return Money{value: cents(v), cur: cost.cur}, nil
}

func (p Flat) String() string { return "flat:" + p.Amount.String() }

func (p PerUnitMinimum) Fee(qty Quantity, price Money) Money {
	fee := cents(p.Rate.Mul(qty.value).Abs())
	return Money{value: decimal.Max(fee, p.Minimum), cur: price.cur}
}

func (p PerUnitMinimum) Breakeven(cost Money, qty Quantity) (Money, error) {
	if qty.IsZero() {
		return Money{cur: cost.cur}, errZeroBreakeven(p, qty)
	}
	fee := p.Fee(qty, cost)
	v := cost.value.Add(fee.value).Div(qty.value)
	return Money{value: cents(v), cur: cost.cur}, nil
}

func (p PerUnitMinimum) String() string {
	return "minimum:" + p.Rate.String() + ":" + p.Minimum.String()
}

func errZeroBreakeven(p Policy, qty Quantity) error {
	return fmt.Errorf("%w: %v break-even of %v units", ErrSingular, p, qty)
}

// DefaultPolicy is the commission used when an account does not configure one.
func DefaultPolicy() Policy { return Percent{Rate: decimal.NewFromInt(1)} }

// presets are the broker schedules accepted by the COMM configuration key.
var presets = map[string]Policy{
	"ZERO": PerUnit{Rate: decimal.Zero},
	"FID":  Flat{Amount: decimal.RequireFromString("7.95")},
	"SB":   Flat{Amount: decimal.RequireFromString("9.95")},
	"IB":   PerUnitMinimum{Rate: decimal.RequireFromString("0.005"), Minimum: decimal.NewFromInt(1)},
}

// ParsePolicy parses a commission schedule.
//
// Accepted forms are "percent:<rate>", "pershare:<rate>", "flat:<amount>",
// "minimum:<rate>:<minimum>" and the presets ZERO, FID, SB and IB.
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	if p, ok := presets[strings.ToUpper(s)]; ok {
		return p, nil
	}
	kind, args, _ := strings.Cut(s, ":")
	parts := strings.Split(args, ":")
	values := make([]decimal.Decimal, 0, len(parts))
	for _, part := range parts {
		v, err := decimal.NewFromString(part)
		if err != nil {
			return nil, fmt.Errorf("%w: commission %q: %w", ErrInvalidInput, s, err)
		}
		if v.IsNegative() {
			return nil, fmt.Errorf("%w: commission %q must not be negative", ErrInvalidInput, s)
		}
		values = append(values, v)
	}
	switch {
	case kind == "percent" && len(values) == 1:
		if !values[0].LessThan(hundred) {
			return nil, fmt.Errorf("%w: commission %q must be below 100%%", ErrInvalidInput, s)
		}
		return Percent{Rate: values[0]}, nil
	case kind == "pershare" && len(values) == 1:
		return PerUnit{Rate: values[0]}, nil
	case kind == "flat" && len(values) == 1:
		return Flat{Amount: values[0]}, nil
	case kind == "minimum" && len(values) == 2:
		return PerUnitMinimum{Rate: values[0], Minimum: values[1]}, nil
	default:
		return nil, fmt.Errorf("%w: unknown commission %q", ErrInvalidInput, s)
	}
}
