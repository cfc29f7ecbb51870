package core

import (
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"1.234,56", 1234.56, true},
		{"R$ 50", 50, true},
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	got := FormatCurrency(1234.5)
	if !strings.HasPrefix(got, "R$ ") {
		t.Fatalf("expected R$ prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ",50") {
		t.Fatalf("expected comma decimals, got %q", got)
	}
}
