package codec

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type numberKind int

const (
	numInteger numberKind = iota
	numFloat
	numDecimal
)

// Integer returns a Codec producing int64 values. Strings are normalized with
// the given decimal separator first.
func Integer(separator string) Codec { return numberCodec{kind: numInteger, sep: separator} }

// Float returns a Codec producing float64 values.
func Float(separator string) Codec { return numberCodec{kind: numFloat, sep: separator} }

// Decimal returns a Codec producing decimal.Decimal values. Encode renders them
// as strings using the separator.
func Decimal(separator string) Codec { return numberCodec{kind: numDecimal, sep: separator} }

type numberCodec struct {
	kind numberKind
	sep  string
}

func (c numberCodec) Decode(_ context.Context, v any) (any, error) {
	if s, ok := v.(string); ok {
		return c.fromString(s)
	}
	if d, ok := v.(decimal.Decimal); ok {
		switch c.kind {
		case numInteger:
			return d.IntPart(), nil
		case numFloat:
			f, _ := d.Float64()
			return f, nil
		}
		return d, nil
	}
	if i, ok := asInt64(v); ok {
		switch c.kind {
		case numFloat:
			return float64(i), nil
		case numDecimal:
			return decimal.NewFromInt(i), nil
		}
		return i, nil
	}
	if f, ok := asFloat64(v); ok {
		switch c.kind {
		case numInteger:
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidFormat, f)
			}
			return int64(f), nil
		case numDecimal:
			return decimal.NewFromFloat(f), nil
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: number from %T", ErrInvalidType, v)
}

func (c numberCodec) Encode(_ context.Context, v any) (any, error) {
	if c.kind != numDecimal {
		return v, nil
	}
	d, ok := v.(decimal.Decimal)
	if !ok {
		return v, nil
	}
	s := DecimalString(d)
	if c.sep != "" && c.sep != "." {
		s = strings.Replace(s, ".", c.sep, 1)
	}
	return s, nil
}

func (c numberCodec) fromString(raw string) (any, error) {
	s := NormalizeNumber(raw, c.sep)
	if s == "" || s == "-" {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, raw)
	}
	switch c.kind {
	case numInteger:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, raw, err)
		}
		return i, nil
	case numFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, raw, err)
		}
		return f, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, raw, err)
	}
	return d, nil
}

// NormalizeNumber rewrites a human formatted number into a plain one. With a
// separator other than ".", every "." is treated as a thousands mark and
// dropped, then the separator becomes ".". Characters other than digits, "."
// and "-" are removed.
func NormalizeNumber(s, separator string) string {
	if separator != "" && separator != "." {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, separator, ".")
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DecimalString renders d keeping its scale, so 10.10 stays "10.10".
func DecimalString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
