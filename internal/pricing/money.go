package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money represents a monetary value stored in minor units (cents).
type Money = int64

// ErrInvalidAmount is returned when a decimal amount string cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseMoney converts a 2-decimal amount string such as "65.00" into minor units.
func ParseMoney(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty amount: %w", ErrInvalidAmount)
	}
	negative := strings.HasPrefix(trimmed, "-")
	if negative {
		trimmed = trimmed[1:]
	}
	whole := trimmed
	frac := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		whole = trimmed[:idx]
		frac = trimmed[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("more than two decimal places in %q: %w", value, ErrInvalidAmount)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", value, ErrInvalidAmount)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", value, ErrInvalidAmount)
	}
	total := units*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}

// FormatMoney renders minor units as a 2-decimal string for presentation.
func FormatMoney(m Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}
