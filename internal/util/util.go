// Package util provides common string helpers shared by the decoders and encoders.
package util

import (
	"math"
	"strconv"
	"strings"
)

// StripQuotes removes every double quote from a string.
func StripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// SplitTrim splits s on sep and trims surrounding whitespace from every part.
func SplitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// SplitKeyValue splits a `key: value` line on the first colon.
func SplitKeyValue(line string) (key, value string) {
	key, value, _ = strings.Cut(line, ":")
	return strings.TrimSpace(key), strings.TrimSpace(value)
}

// FormatFloat renders a number in its shortest round-trip decimal form.
func FormatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatInt renders an integer.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// FormatBool renders the format's 0/1 flag.
func FormatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// JoinFloats renders and joins numbers with sep.
func JoinFloats(values []float64, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatFloat(v)
	}
	return strings.Join(parts, sep)
}
