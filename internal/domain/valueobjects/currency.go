// Package valueobjects contains immutable value types shared by the domain.
package valueobjects

import (
	"fmt"
)

// Currency is an ISO-4217 style currency code supported by the ledger.
type Currency string

const (
	CurrencyKES Currency = "KES"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// SupportedCurrencies lists every currency the ledger accepts.
var SupportedCurrencies = []Currency{CurrencyKES, CurrencyUSD, CurrencyEUR}

// NewCurrency validates a currency code and returns the Currency.
func NewCurrency(code string) (Currency, error) {
	c := Currency(code)
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency: %q", code)
	}
	return c, nil
}

// MustNewCurrency is NewCurrency that panics on invalid input. Test helper.
func MustNewCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// IsValid checks whether the currency is supported.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyKES, CurrencyUSD, CurrencyEUR:
		return true
	default:
		return false
	}
}

// Code returns the three-letter code.
func (c Currency) Code() string {
	return string(c)
}

// Equals compares two currencies.
func (c Currency) Equals(other Currency) bool {
	return c == other
}
