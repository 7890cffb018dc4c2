package types

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// decimalChars are the only characters a numeric string may contain.
const decimalChars = "0123456789.+-eE"

// Coerce converts a caller-supplied calorie or duration value to a
// non-negative float64. Numbers and numeric strings are accepted; strings
// are trimmed first and must be plain decimal: digit separators and hex
// literals yield 0. Anything unparseable, NaN, infinite, or negative
// yields 0. Coerce never fails.
func Coerce(v any) float64 {
	switch x := v.(type) {
	case nil, bool:
		return 0
	case string:
		x = strings.TrimSpace(x)
		if x == "" || strings.Trim(x, decimalChars) != "" {
			return 0
		}
		v = x
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
