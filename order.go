package vest

import (
	"fmt"

	"github.com/geomat0101/vest/date"
)

// OrderType is the kind of ledger entry an Order creates.
type OrderType string

const (
	Buy        OrderType = "buy"
	Sell       OrderType = "sell"
	Adjustment OrderType = "cash"
	Split      OrderType = "split"
)

// Order is an executed market order, the immutable input of a ledger entry.
//
// Qty is signed: positive for a buy, negative for a sell. A zero Qty is a
// cash adjustment of Price (e.g. an option premium) unless Split is set. A
// positive Split is a forward split (1:Split), a negative one a reverse split
// (|Split|:1).
type Order struct {
	Date  date.Date
	Qty   Quantity
	Price Money
	Split int
}

// NewBuy creates a buy of qty units at price.
func NewBuy(day date.Date, qty int64, price Money) Order {
	return Order{Date: day, Qty: Q(qty), Price: price}
}

// NewSell creates a sell of qty units at price. qty is a positive number of units.
func NewSell(day date.Date, qty int64, price Money) Order {
	return Order{Date: day, Qty: Q(-qty), Price: price}
}

// NewAdjustment creates a cash adjustment credited to the account.
func NewAdjustment(day date.Date, amount Money) Order {
	return Order{Date: day, Price: amount}
}

// NewSplit creates a split record.
func NewSplit(day date.Date, factor int) Order {
	return Order{Date: day, Split: factor}
}

// Type returns the kind of entry this order creates.
func (o Order) Type() OrderType {
	switch {
	case o.Qty.IsPositive():
		return Buy
	case o.Qty.IsNegative():
		return Sell
	case o.Split != 0:
		return Split
	default:
		return Adjustment
	}
}

// IsTrade reports whether the order moved units.
func (o Order) IsTrade() bool { return !o.Qty.IsZero() }

// Validate checks the order in isolation.
func (o Order) Validate() error {
	if o.Date.IsZero() {
		return fmt.Errorf("%w: order has no date", ErrInvalidInput)
	}
	if !o.Qty.Equal(Q(o.Qty.Int())) {
		return fmt.Errorf("%w: order quantity %v is not a whole number of units", ErrInvalidInput, o.Qty)
	}
	switch o.Type() {
	case Buy, Sell:
		if !o.Price.IsPositive() {
			return fmt.Errorf("%w: %s price must be positive, got %v", ErrInvalidInput, o.Type(), o.Price)
		}
		if o.Split != 0 {
			return fmt.Errorf("%w: a %s cannot carry a split", ErrInvalidInput, o.Type())
		}
	case Split:
		if !o.Price.IsZero() {
			return fmt.Errorf("%w: split record cannot carry a price", ErrInvalidInput)
		}
	case Adjustment:
		if o.Price.IsZero() {
			return fmt.Errorf("%w: empty cash adjustment", ErrInvalidInput)
		}
	}
	return nil
}

func (o Order) String() string {
	switch o.Type() {
	case Split:
		return fmt.Sprintf("%s : split %d", o.Date, o.Split)
	case Adjustment:
		return fmt.Sprintf("%s : cash %s", o.Date, o.Price)
	default:
		return fmt.Sprintf("%s : %3d @ %s", o.Date, o.Qty.Int(), o.Price)
	}
}
