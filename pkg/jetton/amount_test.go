package jetton

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1000.23", "1000230000000", false},
		{"2.31", "2310000000", false},
		{"0.5", "500000000", false},
		{"0", "0", false},
		{".5", "500000000", false},
		{"1", "1000000000", false},
		{"0.000000001", "1", false},
		{"0.0000000001", "", true},
		{"-1", "", true},
		{"", "", true},
		{"1.2.3", "", true},
		{"abc", "", true},
		{"1329227995784915872903807060280344576", "", true}, // 2^120 whole tokens
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in, Decimals)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q) = %s, want error", tt.in, got.Dec())
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tt.in, err)
			continue
		}
		if got.Dec() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got.Dec(), tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{999730000000, "999.73"},
		{3620000000, "3.62"},
		{1, "0.000000001"},
		{0, "0"},
		{5000000000, "5"},
	}
	for _, tt := range tests {
		if got := FormatAmount(uint256.NewInt(tt.in), Decimals); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmount_RoundTrip(t *testing.T) {
	for _, s := range []string{"1005.66", "0.05", "123456789.123456789"} {
		x := MustParseAmount(s, Decimals)
		if got := FormatAmount(x, Decimals); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}
