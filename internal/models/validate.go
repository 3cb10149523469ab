package models

import (
	"fmt"
	"strings"

	"github.com/atinyakov/GophMarket/internal/money"
)

// Validate checks a normalized product input. Errors wrap ErrInvalidInput.
func (in ProductInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if _, err := money.Unit(in.Currency); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// ValidateCompanyName trims name and rejects it when empty.
func ValidateCompanyName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	return name, nil
}
