package extract

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	errInvalidAmount = errors.New("invalid amount format")
	errInvalidDate   = errors.New("invalid date format")
)

// Date formats seen in exported fleet records, tried in order.
var dateFormats = []string{
	// ISO (YYYY-MM-DD)
	"2006-01-02",
	"2006/01/02",

	// American (MM/DD/YYYY variants)
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",

	// European (DD.MM.YYYY)
	"02.01.2006",

	// Long forms from printed work orders
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// parseFlexibleDate attempts to parse a date using the known formats.
func parseFlexibleDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errInvalidDate
	}

	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, raw, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errInvalidDate
}

// parseAmount converts a currency string to a non-negative float64.
// Currency symbols and thousands separators are stripped; a negative sign is
// dropped because candidate amounts are always magnitudes.
func parseAmount(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, strings.ReplaceAll(raw, ",", ""))

	if cleaned == "" || cleaned == "-" {
		return 0, errInvalidAmount
	}

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errInvalidAmount
	}

	return math.Abs(val), nil
}

// cleanText trims and collapses runs of whitespace.
func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
