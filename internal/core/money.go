// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed by drivers
// (Brazilian or plain decimal notation) and formatting them as BRL.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ParseAmount converts a user-typed amount to a float rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. When a
// comma is present, dots are treated as thousands separators, so "1.234,56"
// parses as 1234.56. An optional "R$" prefix is ignored. Returns
// ErrInvalidAmount for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34, nil
//	ParseAmount("12,34")    -> 12.34, nil
//	ParseAmount("1.234,56") -> 1234.56, nil
//	ParseAmount("R$ 50")    -> 50, nil
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	v = math.Round(v*100) / 100
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatCurrency renders v as Brazilian reais, e.g. "R$ 1.234,56".
func FormatCurrency(v float64) string {
	p := message.NewPrinter(language.BrazilianPortuguese)
	return p.Sprintf("R$ %v", number.Decimal(v, number.Scale(2)))
}
