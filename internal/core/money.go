// Package core provides money parsing and handling utilities.
//
// This file contains the amount parser shared by balance computation and the
// weekly aggregation, plus the ruble formatting used by the session cards.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount   = errors.New("empty amount")
	ErrInvalidAmount = errors.New("invalid amount")
)

// ParseAmount converts user input to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. Negative values are accepted as given.
//
// Examples:
//
//	ParseAmount("1000")  -> 1000, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("")      -> 0, ErrEmptyAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountOrZero parses s, falling back to zero on any failure.
func AmountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Balance returns paid - cost rounded to two places. Unparseable inputs
// count as zero.
func Balance(paid, cost string) string {
	return AmountOrZero(paid).Sub(AmountOrZero(cost)).StringFixed(2)
}

// FormatRubles renders an amount for display, e.g. "1500.00₽".
func FormatRubles(d decimal.Decimal) string {
	return d.StringFixed(2) + "₽"
}
