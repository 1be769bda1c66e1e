package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "07/01/2025", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseUS(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "09/26/2010", want: New(2010, time.September, 26)},
		{in: "9/6/2010", want: New(2010, time.September, 6)},
		{in: "2010-09-26", wantErr: true},
		{in: "13/01/2010", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseUS(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseUS(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseUS(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalization(t *testing.T) {
	if got, want := New(2024, time.December, 32), New(2025, time.January, 1); got != want {
		t.Errorf("New(2024, 12, 32) = %v, want %v", got, want)
	}
	if got, want := New(2024, time.March, 1).Add(-1), New(2024, time.February, 29); got != want {
		t.Errorf("Add(-1) = %v, want %v", got, want)
	}
	if got := New(2025, time.March, 1).Since(New(2024, time.March, 1)); got != 365 {
		t.Errorf("Since() = %d, want 365", got)
	}
}

func TestYear(t *testing.T) {
	r := Year(2024)
	if r.From != New(2024, time.January, 1) || r.To != New(2024, time.December, 31) {
		t.Fatalf("Year(2024) = %v", r)
	}
	if r.Contains(New(2023, time.December, 31)) {
		t.Error("Year(2024) should not contain 2023-12-31")
	}
	if !r.Contains(New(2024, time.December, 31)) {
		t.Error("Year(2024) should contain 2024-12-31")
	}
}

func TestJSON(t *testing.T) {
	d := New(2025, time.January, 5)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2025-01-05"` {
		t.Errorf("Marshal = %s", b)
	}
	var got Date
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got != d {
		t.Errorf("Unmarshal = %v, want %v", got, d)
	}
}
