package analytics

import (
	"math"
	"math/big"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders a count with English thousands separators ("1,234").
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFixed1 renders x with exactly one decimal place. Rounding works on the
// exact binary value of x and resolves ties away from zero, so 1.25 renders as
// "1.3" while 0.15 (stored as 0.1499...) renders as "0.1".
func FormatFixed1(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', 1, 64)
	}

	negative := x < 0
	exact := new(big.Float).SetPrec(256).SetFloat64(math.Abs(x))
	exact.Mul(exact, big.NewFloat(10))
	exact.Add(exact, big.NewFloat(0.5))

	tenths, _ := exact.Int(nil)
	whole, frac := new(big.Int).QuoRem(tenths, big.NewInt(10), new(big.Int))

	out := whole.String() + "." + frac.String()
	if negative && tenths.Sign() != 0 {
		out = "-" + out
	}
	return out
}

// parseFixed1 reads back a value produced by FormatFixed1.
func parseFixed1(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
