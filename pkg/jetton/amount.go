package jetton

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// Decimals is the default number of fractional digits of a jetton amount.
const Decimals = 9

// MaxAmountBits is the widest amount a Coins field (VarUInteger 16) holds.
const MaxAmountBits = 120

// MaxAmount is the largest encodable jetton amount.
var MaxAmount = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), MaxAmountBits), uint256.NewInt(1))

// FitsCoins reports whether x can be stored as Coins.
func FitsCoins(x *uint256.Int) bool {
	return x.BitLen() <= MaxAmountBits
}

func storeAmount(b *cell.Builder, x *uint256.Int) error {
	if x == nil {
		x = new(uint256.Int)
	}
	if !FitsCoins(x) {
		return ErrAmountRange
	}
	return b.StoreBigCoins(x.ToBig())
}

func loadAmount(s *cell.Slice) (*uint256.Int, error) {
	v, err := s.LoadBigCoins()
	if err != nil {
		return nil, err
	}
	x, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrAmountRange
	}
	return x, nil
}

func storeTon(b *cell.Builder, v *big.Int) error {
	if v == nil {
		v = new(big.Int)
	}
	if v.Sign() < 0 || v.BitLen() > MaxAmountBits {
		return ErrAmountRange
	}
	return b.StoreBigCoins(v)
}

// ParseAmount converts a decimal string such as "1000.23" into base units
// with the given number of fractional digits.
func ParseAmount(s string, decimals int) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, errors.New("negative amount")
	}

	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]
	if whole == "" {
		whole = "0"
	}
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
		if len(frac) > decimals {
			return nil, fmt.Errorf("too many decimal places (max %d)", decimals)
		}
	}
	frac += strings.Repeat("0", decimals-len(frac))

	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("invalid amount %q", s)
		}
	}
	x, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !FitsCoins(x) {
		return nil, ErrAmountRange
	}
	return x, nil
}

// MustParseAmount is ParseAmount for constants in tests and examples.
func MustParseAmount(s string, decimals int) *uint256.Int {
	x, err := ParseAmount(s, decimals)
	if err != nil {
		panic(err)
	}
	return x
}

// FormatAmount renders base units as a decimal string, trimming trailing
// zeros of the fractional part.
func FormatAmount(x *uint256.Int, decimals int) string {
	if x == nil {
		return "0"
	}
	s := x.Dec()
	if decimals <= 0 {
		return s
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-decimals], strings.TrimRight(s[len(s)-decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
