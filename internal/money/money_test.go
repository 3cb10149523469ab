package money

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		code string
		want int64
	}{
		{"two decimals", "19.99", "USD", 1999},
		{"whole number", "20", "USD", 2000},
		{"one decimal", "0.5", "USD", 50},
		{"leading dot", ".25", "USD", 25},
		{"trailing dot", "7.", "USD", 700},
		{"round half up", "0.125", "USD", 13},
		{"round down", "0.1249", "USD", 12},
		{"round carries", "19.995", "USD", 2000},
		{"surrounding space", " 3.10 ", "EUR", 310},
		{"zero scale", "500", "JPY", 500},
		{"zero scale rounds", "500.5", "JPY", 501},
		{"zero", "0.00", "USD", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code string
		want error
	}{
		{"empty", "", "USD", ErrInvalidAmount},
		{"only dot", ".", "USD", ErrInvalidAmount},
		{"negative", "-1.00", "USD", ErrInvalidAmount},
		{"letters", "12a", "USD", ErrInvalidAmount},
		{"comma", "1,99", "USD", ErrInvalidAmount},
		{"two dots", "1.2.3", "USD", ErrInvalidAmount},
		{"overflow", "99999999999999999999", "USD", ErrInvalidAmount},
		{"rounding overflow", "92233720368547758.075", "USD", ErrInvalidAmount},
		{"unknown currency", "1.00", "XXZ", ErrUnknownCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, tt.code)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q, %q) error = %v; want %v", tt.text, tt.code, err, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$19.99", Format(1999, "USD"))
	assert.Equal(t, "$0.05", Format(5, "USD"))
	assert.Equal(t, "$0.00", Format(0, "usd"))
	assert.Equal(t, "-$1.50", Format(-150, "USD"))
	assert.Equal(t, "€3.10", Format(310, "EUR"))
	assert.Equal(t, "¥500", Format(500, "JPY"))
	assert.Equal(t, "CHF 12.00", Format(1200, "CHF"))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, amount := range []int64{1, 9, 10, 99, 100, 1999, 123456} {
		shown := Format(amount, "CHF")[len("CHF "):]
		got, err := Parse(shown, "CHF")
		require.NoError(t, err)
		assert.Equal(t, amount, got, "round trip of %d via %q", amount, shown)
	}
}
