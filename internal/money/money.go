// Package money converts between user-facing decimal prices and integer
// amounts in minor currency units.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

var (
	// ErrUnknownCurrency is returned for codes that are not ISO 4217 currencies.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrInvalidAmount is returned for text that is not a non-negative decimal amount.
	ErrInvalidAmount = errors.New("invalid amount")
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"CAD": "CA$",
	"AUD": "A$",
}

// Unit resolves an ISO 4217 code such as "USD".
func Unit(code string) (currency.Unit, error) {
	u, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return u, nil
}

// Scale returns the number of minor-unit digits of the currency (2 for USD, 0 for JPY).
func Scale(code string) (int, error) {
	u, err := Unit(code)
	if err != nil {
		return 0, err
	}
	scale, _ := currency.Standard.Rounding(u)
	return scale, nil
}

// Parse converts decimal text such as "19.99" into minor units (1999 for USD).
// Digits beyond the currency scale are rounded half up.
func Parse(text, code string) (int64, error) {
	scale, err := Scale(code)
	if err != nil {
		return 0, err
	}

	text = strings.TrimSpace(text)
	whole, frac, _ := strings.Cut(text, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}

	roundUp := false
	if len(frac) > scale {
		roundUp = frac[scale] >= '5'
		frac = frac[:scale]
	}
	frac += strings.Repeat("0", scale-len(frac))

	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		digits = "0"
	}
	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, text)
	}
	if roundUp {
		if amount == math.MaxInt64 {
			return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, text)
		}
		amount++
	}
	return amount, nil
}

// Format renders minor units for display, e.g. Format(1999, "USD") == "$19.99".
// Currencies without a known symbol are prefixed with their code.
func Format(amount int64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	scale, err := Scale(code)
	if err != nil {
		scale = 2
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	if scale > 0 {
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	}

	if sym, ok := symbols[code]; ok {
		return sign + sym + digits
	}
	return sign + code + " " + digits
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
