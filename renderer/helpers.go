package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// percent formats a value already expressed in percent.
func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// ratio formats a ratio as a signed percentage, "-" when zero.
func ratio(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	p := d.Shift(2).StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + p
	}
	return p
}

// factor formats a leverage factor.
func factor(d decimal.Decimal) string {
	return "x" + d.StringFixed(2)
}

// row writes a markdown table row.
func row(w io.Writer, cells ...any) {
	for _, c := range cells {
		fmt.Fprintf(w, "| %v ", c)
	}
	fmt.Fprintln(w, "|")
}
