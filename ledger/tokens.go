package ledger

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// E8sPerICP is the number of indivisible e8s units in one ICP.
const E8sPerICP uint64 = 100_000_000

// DefaultFee is the standard ledger transaction fee.
const DefaultFee = Tokens(10_000)

var (
	ErrAmountSyntax   = errors.New("ledger: malformed amount")
	ErrAmountOverflow = errors.New("ledger: amount out of range")
)

// Tokens is a non-negative amount of e8s. All arithmetic is checked; an
// operation that would wrap fails instead.
type Tokens uint64

// ParseTokens parses a human decimal ICP amount ("2.5", "0.00010000") into
// e8s. At most 8 fractional digits are accepted.
func ParseTokens(amount string) (Tokens, error) {
	whole, frac, hasFrac := strings.Cut(amount, ".")
	if whole == "" {
		return 0, fmt.Errorf("%w: %q", ErrAmountSyntax, amount)
	}
	icp, err := parseDecimal(whole)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrAmountOverflow, amount)
		}
		return 0, fmt.Errorf("%w: %q", ErrAmountSyntax, amount)
	}

	var e8s uint64
	if hasFrac {
		if frac == "" || len(frac) > 8 {
			return 0, fmt.Errorf("%w: %q", ErrAmountSyntax, amount)
		}
		padded := frac + strings.Repeat("0", 8-len(frac))
		e8s, err = parseDecimal(padded)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrAmountSyntax, amount)
		}
	}

	if icp > math.MaxUint64/E8sPerICP {
		return 0, fmt.Errorf("%w: %q", ErrAmountOverflow, amount)
	}
	total := icp * E8sPerICP
	if total > math.MaxUint64-e8s {
		return 0, fmt.Errorf("%w: %q", ErrAmountOverflow, amount)
	}
	return Tokens(total + e8s), nil
}

// ParseE8s parses a raw e8s count. A value that does not fit in 64 bits fails
// rather than wrapping.
func ParseE8s(amount string) (Tokens, error) {
	v, err := parseDecimal(amount)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrAmountOverflow, amount)
		}
		return 0, fmt.Errorf("%w: %q", ErrAmountSyntax, amount)
	}
	return Tokens(v), nil
}

// parseDecimal accepts plain base-10 digits only: no sign, no spaces, no
// exponent. strconv's leniencies would otherwise let "+1" or "1e3" through.
func parseDecimal(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

// Add returns t+other, failing on wrap-around.
func (t Tokens) Add(other Tokens) (Tokens, error) {
	if uint64(t) > math.MaxUint64-uint64(other) {
		return 0, ErrAmountOverflow
	}
	return t + other, nil
}

// Sub returns t-other, failing on underflow.
func (t Tokens) Sub(other Tokens) (Tokens, error) {
	if other > t {
		return 0, ErrAmountOverflow
	}
	return t - other, nil
}

// E8s returns the raw e8s count.
func (t Tokens) E8s() uint64 {
	return uint64(t)
}

// String renders a human decimal ICP amount. Trailing fractional zeros are
// trimmed; whole amounts render without a fraction ("2.5", "42").
func (t Tokens) String() string {
	whole := uint64(t) / E8sPerICP
	frac := uint64(t) % E8sPerICP
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%08d", frac), "0")
	return strconv.FormatUint(whole, 10) + "." + fracStr
}
