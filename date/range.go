package date

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// Year returns the calendar year as a Range.
func Year(year int) Range {
	return Range{From: EndOfYear(year - 1).Add(1), To: EndOfYear(year)}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// String returns "from..to".
func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
