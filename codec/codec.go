// Package codec holds the bidirectional scalar conversions applied to item
// fields. Decode turns a loosely typed input into the field's domain value,
// Encode renders a domain value back into its loose form.
package codec

import (
	"context"
	"errors"
)

// Codec performs bidirectional transformation between the loose (wire) form of
// a field value and its typed (domain) form.
type Codec interface {
	Decode(ctx context.Context, v any) (any, error) // loose -> typed
	Encode(ctx context.Context, v any) (any, error) // typed -> loose
}

var (
	// ErrInvalidType reports an input whose Go type the codec cannot convert.
	ErrInvalidType = errors.New("codec: invalid type")
	// ErrInvalidFormat reports a string input that matches none of the accepted
	// formats.
	ErrInvalidFormat = errors.New("codec: invalid format")
)
