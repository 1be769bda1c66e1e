package vest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleAccount = `# gold coins
CONFIG:fixed_value:1000
1/10/2024:10:10.00
not a record
1/20/2024:-1:10.33
2/1/2024:SPLIT:2
2/2/2024:0:5.00
TRADE:2:9.00
TRADE:-1:abc
`

func TestDecodeAccount(t *testing.T) {
	a, err := DecodeAccount(strings.NewReader(sampleAccount), "gold")
	if err != nil {
		t.Fatalf("DecodeAccount() error: %v", err)
	}
	l := a.Ledger
	if l.Len() != 4 {
		t.Fatalf("DecodeAccount() = %d entries, want 4", l.Len())
	}
	wantTypes := []OrderType{Buy, Sell, Split, Adjustment}
	for i, want := range wantTypes {
		if got := l.At(i).Type(); got != want {
			t.Errorf("entry #%d type = %v, want %v", i, got, want)
		}
	}
	if got := l.At(2).Split; got != 2 {
		t.Errorf("split = %d, want 2", got)
	}
	if fixed, ok := l.FixedValue(); !ok || !fixed.Equal(NO(1000)) {
		t.Errorf("FixedValue() = %v, %v, want 1000", fixed, ok)
	}
	if len(a.Open) != 1 {
		t.Fatalf("Open = %v, want a single bid", a.Open)
	}
	if o := a.Open[0]; !o.Qty.Equal(Q(2)) || !o.Price.Equal(NO(9)) {
		t.Errorf("Open[0] = %v, want bid 2 @ 9.00", o)
	}
}

func TestDecodeAccount_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "unknown config", content: "CONFIG:leverage:3\n"},
		{name: "bad commission", content: "CONFIG:COMM:percent:abc\n"},
		{name: "out of order", content: "2/1/2024:1:10.00\n1/1/2024:1:10.00\n"},
		{name: "bad date", content: "9/26/2010:10:50.00\n13/45/2010:5:40.00\n"},
		{name: "bad qty", content: "9/26/2010:10:50.00\n9/28/2010:x:40.00\n"},
		{name: "bad price", content: "9/26/2010:10:50.00\n9/28/2010:5:abc\n"},
		{name: "bad split", content: "9/26/2010:10:50.00\n9/28/2010:SPLIT:two\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeAccount(strings.NewReader(tc.content), tc.name)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("DecodeAccount() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestDecodeAccount_CommissionChange(t *testing.T) {
	content := `1/10/2024:10:10.00
CONFIG:COMM:flat:5
1/20/2024:1:9.00
`
	a, err := DecodeAccount(strings.NewReader(content), "comm")
	if err != nil {
		t.Fatalf("DecodeAccount() error: %v", err)
	}
	l := a.Ledger
	checkMoney(t, "first fee", l.At(0).Fee, 1)
	checkMoney(t, "second fee", l.At(1).Fee, 5)
	if got := l.Policy().String(); got != "flat:5" {
		t.Errorf("Policy() = %q, want flat:5", got)
	}
}

func TestEncodeAccount_RoundTrip(t *testing.T) {
	content := sampleAccount + "CONFIG:COMM:IB\n3/1/2024:5:4.80\n"
	a, err := DecodeAccount(strings.NewReader(content), "gold")
	if err != nil {
		t.Fatalf("DecodeAccount() error: %v", err)
	}
	var first bytes.Buffer
	if err := EncodeAccount(&first, a); err != nil {
		t.Fatalf("EncodeAccount() error: %v", err)
	}
	if !strings.Contains(first.String(), "CONFIG:COMM:") {
		t.Errorf("EncodeAccount() = %s\nwant the commission change", first.String())
	}

	b, err := DecodeAccount(bytes.NewReader(first.Bytes()), "gold")
	if err != nil {
		t.Fatalf("DecodeAccount(EncodeAccount()) error: %v", err)
	}
	var second bytes.Buffer
	if err := EncodeAccount(&second, b); err != nil {
		t.Fatalf("EncodeAccount() error: %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("round trip mismatch:\n%s\nwant:\n%s", second.String(), first.String())
	}
	if b.Ledger.Len() != a.Ledger.Len() {
		t.Errorf("round trip has %d entries, want %d", b.Ledger.Len(), a.Ledger.Len())
	}
	last, _ := b.Ledger.Last()
	want, _ := a.Ledger.Last()
	if !last.TotalValue.Equal(want.TotalValue) || !last.Fee.Equal(want.Fee) {
		t.Errorf("round trip last entry = %v %v, want %v %v", last.TotalValue, last.Fee, want.TotalValue, want.Fee)
	}
}

func TestEncodeAccount_FixedValueChange(t *testing.T) {
	content := `1/10/2024:10:10.00
CONFIG:fixed_value:1000
1/20/2024:1:9.00
CONFIG:fixed_value:2000
`
	a, err := DecodeAccount(strings.NewReader(content), "gold")
	if err != nil {
		t.Fatalf("DecodeAccount() error: %v", err)
	}
	if _, ok := a.Ledger.At(0).FixedValue(); ok {
		t.Error("first entry FixedValue() ok = true, want false")
	}
	if fixed, ok := a.Ledger.At(1).FixedValue(); !ok || !fixed.Equal(NO(1000)) {
		t.Errorf("second entry FixedValue() = %v, %v, want 1000", fixed, ok)
	}

	var buf bytes.Buffer
	if err := EncodeAccount(&buf, a); err != nil {
		t.Fatalf("EncodeAccount() error: %v", err)
	}
	want := "1/10/2024:10:10.00\nCONFIG:fixed_value:1000\n1/20/2024:1:9.00\nCONFIG:fixed_value:2000\n"
	if got := buf.String(); got != want {
		t.Errorf("EncodeAccount() = %q, want %q", got, want)
	}

	b, err := DecodeAccount(&buf, "gold")
	if err != nil {
		t.Fatalf("DecodeAccount(EncodeAccount()) error: %v", err)
	}
	for i, s := range a.Ledger.Snapshots() {
		if diff := cmp.Diff(s, b.Ledger.At(i), snapshotCmp); diff != "" {
			t.Errorf("round trip entry #%d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if fixed, ok := b.Ledger.FixedValue(); !ok || !fixed.Equal(NO(2000)) {
		t.Errorf("FixedValue() = %v, %v, want 2000", fixed, ok)
	}
}

func TestEncodeSnapshots(t *testing.T) {
	l := newTestLedger(t, []Order{
		NewBuy(day("2024-01-10"), 10, NO(10)),
		NewSplit(day("2024-02-01"), 2),
	})
	var buf bytes.Buffer
	if err := EncodeSnapshots(&buf, l); err != nil {
		t.Fatalf("EncodeSnapshots() error: %v", err)
	}
	var lines []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("EncodeSnapshots() = %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		var v map[string]any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			t.Errorf("invalid JSON line %s: %v", line, err)
		}
	}
	for _, want := range []string{`"type":"buy"`, `"date":"2024-01-10"`, `"nextBuyQty":1`, `"nextBuyPrice":9.67`, `"commission":"percent:1"`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("first line = %s\nwant %s", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], `"split":2`) {
		t.Errorf("second line = %s\nwant the split factor", lines[1])
	}
}
