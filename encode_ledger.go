package vest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/geomat0101/vest/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Account is a ledger loaded from an account file together with the orders
// resting in the market.
type Account struct {
	Name   string
	Units  string // optional description of the traded units, e.g. "oz"
	Ledger *Ledger
	Open   []LimitOrder
}

// FullName returns the account name with its units, if any.
func (a *Account) FullName() string {
	if a.Units == "" {
		return a.Name
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Units)
}

// account file record kinds, in the first field of a line.
const (
	recordTrade  = "TRADE"
	recordConfig = "CONFIG"
	recordSplit  = "SPLIT"
)

// DecodeAccount reads an account file.
//
// Each line is a colon separated record:
//
//	09/26/2010:2:50.00       buy 2 units at 50.00 (negative quantity to sell)
//	09/27/2010:0:12.50       cash adjustment of 12.50
//	06/01/2012:SPLIT:2       2 for 1 split (negative for a reverse split)
//	CONFIG:COMM:IB           commission policy, see ParsePolicy
//	CONFIG:fixed_value:6000  fixed capital base
//	TRADE:-2:55.00           order open in the market
//
// Lines starting with # are comments. Lines that are not records and invalid
// open orders are logged and skipped. An unknown configuration key or an order
// that cannot be parsed or appended fails the whole decoding.
func DecodeAccount(r io.Reader, name string, opts ...Option) (*Account, error) {
	ledger := NewLedger(name, opts...)
	account := &Account{Name: name, Ledger: ledger}
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, ":", 3)
		if len(fields) != 3 {
			log.Printf("%s:%d: invalid line %q", name, n, line)
			continue
		}
		switch fields[0] {
		case recordConfig:
			if err := ledger.Configure(fields[1], fields[2]); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, n, err)
			}
		case recordTrade:
			o, err := decodeLimitOrder(fields[1], fields[2], ledger.currency)
			if err != nil {
				log.Printf("%s:%d: invalid open order %q: %v", name, n, line, err)
				continue
			}
			account.Open = append(account.Open, o)
		default:
			o, err := decodeOrder(fields, ledger.currency)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w: order %q: %w", name, n, ErrInvalidInput, line, err)
			}
			if _, err := ledger.Append(o); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, n, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read account %q: %w", name, err)
	}
	return account, nil
}

func decodeLimitOrder(qty, price, currency string) (LimitOrder, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
	if err != nil {
		return LimitOrder{}, err
	}
	p, err := ParseMoney(strings.TrimSpace(price), currency)
	if err != nil {
		return LimitOrder{}, err
	}
	if q == 0 || !p.IsPositive() {
		return LimitOrder{}, fmt.Errorf("%w: open order %d @ %v", ErrInvalidInput, q, p)
	}
	return LimitOrder{Qty: Q(q), Price: p}, nil
}

func decodeOrder(fields []string, currency string) (Order, error) {
	day, err := date.ParseUS(fields[0])
	if err != nil {
		return Order{}, err
	}
	if fields[1] == recordSplit {
		factor, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return Order{}, err
		}
		return NewSplit(day, factor), nil
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return Order{}, err
	}
	price, err := ParseMoney(strings.TrimSpace(fields[2]), currency)
	if err != nil {
		return Order{}, err
	}
	return Order{Date: day, Qty: Q(qty), Price: price}, nil
}

// EncodeAccount writes an account file that DecodeAccount reads back into the
// same ledger.
//
// The commission and the fixed value are written before the first order they
// apply to, and again wherever they changed.
func EncodeAccount(w io.Writer, a *Account) error {
	bw := bufio.NewWriter(w)
	l := a.Ledger
	var fixed *decimal.Decimal
	policy := DefaultPolicy().String()
	config := func(acct sizing) {
		if acct.fixed != nil && !sameFixed(acct.fixed, fixed) {
			fmt.Fprintf(bw, "%s:fixed_value:%s\n", recordConfig, acct.fixed.String())
			fixed = acct.fixed
		}
		if p := acct.policy.String(); p != policy {
			fmt.Fprintf(bw, "%s:COMM:%s\n", recordConfig, p)
			policy = p
		}
	}
	for _, s := range l.entries {
		config(sizing{policy: s.policy, fixed: s.fixed})
		fmt.Fprintln(bw, encodeOrder(s.Order))
	}
	// settings changed after the last order
	config(l.acct)
	for _, o := range a.Open {
		fmt.Fprintf(bw, "%s:%d:%s\n", recordTrade, o.Qty.Int(), o.Price.value.StringFixed(2))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write account %q: %w", a.Name, err)
	}
	return nil
}

func encodeOrder(o Order) string {
	day := fmt.Sprintf("%d/%d/%d", o.Date.Month(), o.Date.Day(), o.Date.Year())
	if o.Type() == Split {
		return fmt.Sprintf("%s:%s:%d", day, recordSplit, o.Split)
	}
	return fmt.Sprintf("%s:%d:%s", day, o.Qty.Int(), o.Price.value.StringFixed(2))
}

// MarshalJSON writes the order fields in a fixed order.
func (o Order) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", o.Type())
	w.Append("date", o.Date)
	w.Optional("qty", o.Qty)
	w.Optional("price", o.Price)
	w.Optional("split", o.Split)
	return w.MarshalJSON()
}

// MarshalJSON writes the snapshot as a flat object, order fields first.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	order, err := s.Order.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var w jsonObjectWriter
	w.Embed(order)
	w.Append("subtotal", s.Subtotal)
	w.Append("fee", s.Fee)
	w.Append("netCost", s.NetCost)
	w.Append("refPrice", s.RefPrice)
	w.Append("positionCost", s.PositionCost)
	w.Append("positionQty", s.PositionQty)
	w.Append("cash", s.Cash)
	w.Append("lastBuy", s.LastBuy)
	w.Append("lastSell", s.LastSell)
	w.Append("mark", s.Mark)
	w.Append("markSpread", s.MarkSpread)
	w.Append("markedValue", s.MarkedValue)
	w.Append("totalValue", s.TotalValue)
	w.Append("breakeven", s.Breakeven)
	w.Append("paperProfit", s.PaperProfit)
	w.Append("totalInvested", s.TotalInvested)
	w.Append("investmentDiff", s.InvestmentDiff)
	w.Append("shares", s.Shares.Round(4))
	w.Append("totalShares", s.TotalShares)
	w.Append("sharePrice", s.SharePrice)
	w.Append("roi", s.ROI)
	w.Optional("fifoStart", s.FIFOStart)
	w.Optional("fifoEnd", s.FIFOEnd)
	w.Append("buyCounter", s.BuyCounter)
	w.Append("sellCounter", s.SellCounter)
	w.PrefixFrom("nextBuy", s.NextBuy)
	w.PrefixFrom("nextSell", s.NextSell)
	w.Append("reserveReq", s.ReserveReq)
	if s.Anomalies != 0 {
		w.Append("anomalies", s.Anomalies.String())
	}
	w.Append("commission", s.policy.String())
	if fixed, ok := s.FixedValue(); ok {
		w.Append("fixedValue", fixed)
	}
	return w.MarshalJSON()
}

// EncodeSnapshots writes every snapshot of the ledger as a JSON line.
func EncodeSnapshots(w io.Writer, l *Ledger) error {
	for _, s := range l.Snapshots() {
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot on %v: %w", s.Date, err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
	}
	return nil
}

// sameFixed reports whether two fixed value settings are the same.
func sameFixed(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
