package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatARS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0"},
		{"999", "$999"},
		{"1000", "$1.000"},
		{"2783", "$2.783"},
		{"584.43", "$584"},
		{"3367.5", "$3.368"},
		{"12345", "$12.345"},
		{"1234567.4", "$1.234.567"},
		{"-1500", "-$1.500"},
	}
	for _, tt := range tests {
		if got := FormatARS(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("FormatARS(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGroup(t *testing.T) {
	if got := Group("100000"); got != "100.000" {
		t.Fatalf("unexpected grouping %q", got)
	}
	if got := Group("12"); got != "12" {
		t.Fatalf("unexpected grouping %q", got)
	}
}
