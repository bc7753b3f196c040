package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Price is an amount in cents
type Price int64

// ErrInvalidPrice is returned for prices that cannot be parsed or are negative
var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice parses a decimal amount such as "5", "5.5" or "5.00".
// At most two decimal places are accepted.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if !isDigits(whole) || !isDigits(frac) {
		return 0, ErrInvalidPrice
	}
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, ErrInvalidPrice
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}

	// Six digits in total, two of them after the point
	if units > 9999 {
		return 0, ErrInvalidPrice
	}

	return Price(units*100 + cents), nil
}

// isDigits reports whether s holds only ASCII digits
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the price with two decimals, e.g. "5.00"
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}
