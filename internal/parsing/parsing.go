// Package parsing converts format tokens to bounded numbers and enum values.
package parsing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/OCAP2/osu-parsers/pkg/core"
)

// Magnitude limits applied to parsed values.
const (
	MaxParseValue      = 2147483647
	MaxCoordinateValue = 131072
)

var (
	ErrValueOutOfRange  = errors.New("value out of range")
	ErrValueTooLow      = fmt.Errorf("%w: value is too low", ErrValueOutOfRange)
	ErrValueTooHigh     = fmt.Errorf("%w: value is too high", ErrValueOutOfRange)
	ErrNotANumber       = errors.New("not a number")
	ErrUnknownEnumValue = errors.New("unknown enum value")
)

// ParseInt parses an integer token bounded by MaxParseValue.
func ParseInt(s string) (int, error) {
	return ParseIntLimit(s, MaxParseValue)
}

// ParseIntLimit parses an integer token bounded by ±limit. Like the legacy
// writers, only the leading integer part of the token is read ("12.5" is 12).
func ParseIntLimit(s string, limit float64) (int, error) {
	v := math.NaN()
	if prefix := intPrefix(s); prefix != "" {
		if f, err := strconv.ParseFloat(prefix, 64); err == nil {
			v = f
		}
	}
	v, err := checkValue(s, v, limit, false)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// ParseFloat parses a float token bounded by MaxParseValue; NaN is rejected.
func ParseFloat(s string) (float64, error) {
	return ParseFloatLimit(s, MaxParseValue, false)
}

// ParseFloatLimit parses the leading decimal number of a token bounded by ±limit.
func ParseFloatLimit(s string, limit float64, allowNaN bool) (float64, error) {
	v := math.NaN()
	if prefix := floatPrefix(s); prefix != "" {
		if f, err := strconv.ParseFloat(prefix, 64); err == nil {
			v = f
		}
	}
	return checkValue(s, v, limit, allowNaN)
}

// ParseByte parses a colour channel in 0..255.
func ParseByte(s string) (uint8, error) {
	v, err := ParseInt(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("%w: %q is not a byte", ErrValueOutOfRange, s)
	}
	return uint8(v), nil
}

// ParseEnum accepts either the constant name or its integer value.
func ParseEnum[T ~int](table *core.EnumTable[T], s string) (T, error) {
	s = strings.TrimSpace(s)
	if v, ok := table.ByName(s); ok {
		return v, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if v, ok := table.ByValue(n); ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownEnumValue, table.Kind(), s)
}

// ParseBool reads the format's "1" flag.
func ParseBool(s string) bool {
	return s == "1"
}

func checkValue(s string, v, limit float64, allowNaN bool) (float64, error) {
	if v < -limit {
		return 0, fmt.Errorf("%w: %q", ErrValueTooLow, s)
	}
	if v > limit {
		return 0, fmt.Errorf("%w: %q", ErrValueTooHigh, s)
	}
	if !allowNaN && math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return v, nil
}

// intPrefix returns the optional sign and leading digits of s.
func intPrefix(s string) string {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return ""
	}
	return s[:i]
}

// floatPrefix returns the longest leading decimal literal of s, including
// signed "Infinity".
func floatPrefix(s string) string {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return strings.TrimSuffix(s[:i], ".")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
