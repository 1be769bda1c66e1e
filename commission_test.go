package vest

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPolicy_Fee(t *testing.T) {
	testCases := []struct {
		name   string
		policy Policy
		qty    int64
		price  float64
		want   Money
	}{
		{"percent 10", Percent{Rate: dec("10")}, 10, 10, NO(10)},
		{"percent 10 sell", Percent{Rate: dec("10")}, -10, 10, NO(10)},
		{"percent 1", Percent{Rate: dec("1")}, 10, 10, NO(1)},
		{"percent rounds half even", Percent{Rate: dec("1")}, 5, 10.10, NO(0.50)},
		{"per unit", PerUnit{Rate: dec("0.05")}, 10, 10, NO(0.50)},
		{"per unit sell", PerUnit{Rate: dec("0.05")}, -10, 10, NO(0.50)},
		{"flat", Flat{Amount: dec("7.95")}, 3, 100, NO(7.95)},
		{"minimum applies", PerUnitMinimum{Rate: dec("0.005"), Minimum: dec("1")}, 100, 10, NO(1)},
		{"minimum exceeded", PerUnitMinimum{Rate: dec("0.005"), Minimum: dec("1")}, -1000, 10, NO(5)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.policy.Fee(Q(tc.qty), NO(tc.price))
			if !got.Equal(tc.want) {
				t.Errorf("Fee(%d, %v) = %v, want %v", tc.qty, tc.price, got, tc.want)
			}
			if got.IsNegative() {
				t.Errorf("Fee(%d, %v) = %v, want a non negative fee", tc.qty, tc.price, got)
			}
		})
	}
}

func TestPolicy_Breakeven(t *testing.T) {
	testCases := []struct {
		name   string
		policy Policy
		cost   float64
		qty    int64
		want   Money
	}{
		{"percent", Percent{Rate: dec("1")}, 101, 10, NO(10.20)},
		{"per unit", PerUnit{Rate: dec("0.05")}, 100.50, 10, NO(10.10)},
		{"flat", Flat{Amount: dec("7.95")}, 107.95, 10, NO(11.59)},
		{"minimum", PerUnitMinimum{Rate: dec("0.005"), Minimum: dec("1")}, 101, 10, NO(10.20)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.policy.Breakeven(NO(tc.cost), Q(tc.qty))
			if err != nil {
				t.Fatalf("Breakeven() error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Breakeven(%v, %d) = %v, want %v", tc.cost, tc.qty, got, tc.want)
			}
		})
	}
}

func TestPolicy_BreakevenSingular(t *testing.T) {
	testCases := []struct {
		policy Policy
		qty    int64
	}{
		{Percent{Rate: dec("1")}, 0},
		{Percent{Rate: dec("100")}, 10},
		{PerUnit{Rate: dec("0.05")}, 0},
		{Flat{Amount: dec("7.95")}, 0},
		{PerUnitMinimum{Rate: dec("0.005"), Minimum: dec("1")}, 0},
	}
	for _, tc := range testCases {
		_, err := tc.policy.Breakeven(NO(100), Q(tc.qty))
		if !errors.Is(err, ErrSingular) {
			t.Errorf("%v.Breakeven(100, %d) error = %v, want ErrSingular", tc.policy, tc.qty, err)
		}
		if !errors.Is(err, ErrState) {
			t.Errorf("%v.Breakeven(100, %d) error = %v, want a state error", tc.policy, tc.qty, err)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	testCases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "percent:1", want: "percent:1"},
		{input: "pershare:0.01", want: "pershare:0.01"},
		{input: "flat:7.95", want: "flat:7.95"},
		{input: "minimum:0.005:1", want: "minimum:0.005:1"},
		{input: "ZERO", want: "pershare:0"},
		{input: "FID", want: "flat:7.95"},
		{input: "SB", want: "flat:9.95"},
		{input: "ib", want: "minimum:0.005:1"},
		{input: " IB ", want: "minimum:0.005:1"},
		{input: "percent:100", wantErr: true},
		{input: "pershare:-1", wantErr: true},
		{input: "percent:x", wantErr: true},
		{input: "minimum:1", wantErr: true},
		{input: "bogus", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParsePolicy(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("ParsePolicy(%q) error = %v, want ErrInvalidInput", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePolicy(%q) error: %v", tc.input, err)
			}
			if got.String() != tc.want {
				t.Errorf("ParsePolicy(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}
