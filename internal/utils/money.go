package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidMoney is returned when a monetary text cannot be parsed.
var ErrInvalidMoney = errors.New("invalid monetary value")

// ParseMoney parses a currency formatted text such as "R$ 1.234,56" or "1,234.56".
// When both separators are present the last one is the decimal separator;
// a lone comma is always decimal. Blank text is zero.
func ParseMoney(text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	value := strings.TrimSpace(strings.ReplaceAll(text, "R$", ""))

	comma := strings.LastIndex(value, ",")
	dot := strings.LastIndex(value, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			value = strings.ReplaceAll(value, ".", "")
			value = strings.ReplaceAll(value, ",", ".")
		} else {
			value = strings.ReplaceAll(value, ",", "")
		}
	case comma >= 0:
		value = strings.ReplaceAll(value, ",", ".")
	}

	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, text)
	}
	return amount, nil
}
