// Package wire encodes item mappings as CBOR. Values without a native CBOR form
// (decimals, civil dates and times) travel as tagged strings so a decoded
// mapping carries the same Go types as the one that was encoded.
package wire

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"cloud.google.com/go/civil"
	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
)

// Tag numbers. 1004 is the RFC 8943 full-date string; the others sit in the
// first-come-first-served range.
const (
	TagDate     uint64 = 1004
	TagDecimal  uint64 = 39901
	TagTime     uint64 = 39902
	TagDateTime uint64 = 39903
	TagInstant  uint64 = 39904
)

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Marshal encodes a mapping tree built from map[string]any, []any and scalars.
func Marshal(v any) ([]byte, error) {
	tree, err := toWire(v)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(tree)
}

// Unmarshal decodes data produced by Marshal.
func Unmarshal(data []byte) (any, error) {
	var raw any
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromWire(raw)
}

func toWire(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, []byte, float32, float64,
		int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return x, nil
	case int:
		return int64(x), nil
	case uint:
		return uint64(x), nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			w, err := toWire(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = w
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			w, err := toWire(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = w
		}
		return out, nil
	case decimal.Decimal:
		s := x.String()
		if exp := x.Exponent(); exp < 0 {
			s = x.StringFixed(-exp)
		}
		return cbor.Tag{Number: TagDecimal, Content: s}, nil
	case civil.Date:
		return cbor.Tag{Number: TagDate, Content: x.String()}, nil
	case civil.Time:
		return cbor.Tag{Number: TagTime, Content: x.String()}, nil
	case civil.DateTime:
		return cbor.Tag{Number: TagDateTime, Content: x.String()}, nil
	case time.Time:
		return cbor.Tag{Number: TagInstant, Content: x.Format(time.RFC3339Nano)}, nil
	}
	return nil, fmt.Errorf("wire: unsupported value type %T", v)
}

func fromWire(v any) (any, error) {
	switch x := v.(type) {
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), nil
		}
		return x, nil
	case map[string]any:
		for k, e := range x {
			d, err := fromWire(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			x[k] = d
		}
		return x, nil
	case []any:
		for i, e := range x {
			d, err := fromWire(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			x[i] = d
		}
		return x, nil
	case cbor.Tag:
		return fromTag(x)
	}
	return v, nil
}

func fromTag(t cbor.Tag) (any, error) {
	s, ok := t.Content.(string)
	if !ok {
		return nil, fmt.Errorf("wire: tag %d carries %T, want string", t.Number, t.Content)
	}
	switch t.Number {
	case TagDecimal:
		return decimal.NewFromString(s)
	case TagDate:
		return civil.ParseDate(s)
	case TagTime:
		return civil.ParseTime(s)
	case TagDateTime:
		return civil.ParseDateTime(s)
	case TagInstant:
		return time.Parse(time.RFC3339Nano, s)
	}
	return nil, fmt.Errorf("wire: unknown tag %d", t.Number)
}
