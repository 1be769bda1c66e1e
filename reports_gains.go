package vest

import (
	"fmt"

	"github.com/geomat0101/vest/date"
)

// Sale is a realized sell with its FIFO cost basis.
type Sale struct {
	Index    int
	Date     date.Date
	Qty      Quantity // units sold, positive
	Price    Money
	Proceeds Money // Qty * Price, before commission
	Fee      Money
	Basis    Money // matched buy costs plus the sell commission
	Gain     Money // Proceeds - Basis
	Term     Term
	Matches  []Match
}

// GainsRow aggregates the sales of a single day.
type GainsRow struct {
	Date      date.Date
	Qty       Quantity
	Proceeds  Money
	Basis     Money
	Gain      Money
	BasisDate date.Date // most recent buy matched by the day sales
	Term      Term
	Sales     int
}

// GainsReport is the realized gain or loss of a calendar year, FIFO matched.
type GainsReport struct {
	Range    date.Range
	Rows     []GainsRow
	Qty      Quantity
	Proceeds Money
	Basis    Money
	Gain     Money
}

// term classifies matches against a sale date.
func term(sold date.Date, matches []Match) Term {
	boundary := sold.Add(-365)
	t := ShortTerm
	for i, m := range matches {
		mt := ShortTerm
		if m.Date.Before(boundary) {
			mt = LongTerm
		}
		if i == 0 {
			t = mt
			continue
		}
		t = t.combine(mt)
	}
	return t
}

// sale computes the sale of the sell entry i.
func (l *Ledger) sale(i int) (Sale, error) {
	e := l.entries[i]
	matches, err := l.match(i, e.FIFOStart, e.FIFOEnd)
	if err != nil {
		return Sale{}, fmt.Errorf("sale on %v: %w", e.Date, err)
	}
	s := Sale{
		Index:    i,
		Date:     e.Date,
		Qty:      e.Qty.Neg(),
		Price:    e.Price,
		Proceeds: e.Subtotal.Abs(),
		Fee:      e.Fee,
		Basis:    e.Fee,
		Term:     term(e.Date, matches),
		Matches:  matches,
	}
	matched := Q(0)
	for _, m := range matches {
		matched = matched.Add(m.Qty)
		s.Basis = s.Basis.Add(m.Cost())
	}
	if !matched.Equal(s.Qty) {
		return Sale{}, fmt.Errorf("%w: %s sold %v units on %v, matched %v", ErrIntegrity, l.name, s.Qty, e.Date, matched)
	}
	s.Gain = s.Proceeds.Sub(s.Basis)
	return s, nil
}

// Sales returns the sells dated within period with their FIFO cost basis.
//
// Any integrity failure aborts the whole computation.
func (l *Ledger) Sales(period date.Range) ([]Sale, error) {
	if len(l.entries) == 0 {
		return nil, fmt.Errorf("%w: %s ledger is empty", ErrState, l.name)
	}
	var sales []Sale
	for i, e := range l.entries {
		if e.Type() != Sell || !period.Contains(e.Date) {
			continue
		}
		s, err := l.sale(i)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}

// FIFOReport returns the realized gains of year grouped by sale date.
func (l *Ledger) FIFOReport(year int) (*GainsReport, error) {
	period := date.Year(year)
	sales, err := l.Sales(period)
	if err != nil {
		return nil, err
	}
	zero := Money{cur: l.currency}
	report := &GainsReport{Range: period, Proceeds: zero, Basis: zero, Gain: zero}
	for _, s := range sales {
		n := len(report.Rows)
		if n == 0 || report.Rows[n-1].Date != s.Date {
			report.Rows = append(report.Rows, GainsRow{Date: s.Date, Term: s.Term, Proceeds: zero, Basis: zero, Gain: zero})
			n++
		}
		row := &report.Rows[n-1]
		if row.Sales > 0 {
			row.Term = row.Term.combine(s.Term)
		}
		row.Sales++
		row.Qty = row.Qty.Add(s.Qty)
		row.Proceeds = row.Proceeds.Add(s.Proceeds)
		row.Basis = row.Basis.Add(s.Basis)
		row.Gain = row.Gain.Add(s.Gain)
		if k := len(s.Matches); k > 0 && s.Matches[k-1].Date.After(row.BasisDate) {
			row.BasisDate = s.Matches[k-1].Date
		}

		report.Qty = report.Qty.Add(s.Qty)
		report.Proceeds = report.Proceeds.Add(s.Proceeds)
		report.Basis = report.Basis.Add(s.Basis)
		report.Gain = report.Gain.Add(s.Gain)
	}
	return report, nil
}
