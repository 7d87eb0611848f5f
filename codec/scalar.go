package codec

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Binary returns a Codec converting strings into byte slices. Encode turns
// valid UTF-8 byte slices back into strings.
func Binary() Codec { return binaryCodec{} }

type binaryCodec struct{}

func (binaryCodec) Decode(_ context.Context, v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	}
	return nil, fmt.Errorf("%w: binary from %T", ErrInvalidType, v)
}

func (binaryCodec) Encode(_ context.Context, v any) (any, error) {
	if b, ok := v.([]byte); ok && utf8.Valid(b) {
		return string(b), nil
	}
	return v, nil
}

// Boolean returns a Codec accepting the given words (case-insensitive) as true
// and false.
func Boolean(trueWords, falseWords []string) Codec {
	c := boolCodec{words: make(map[string]bool, len(trueWords)+len(falseWords))}
	for _, w := range trueWords {
		c.words[strings.ToLower(w)] = true
	}
	for _, w := range falseWords {
		c.words[strings.ToLower(w)] = false
	}
	return c
}

type boolCodec struct {
	words map[string]bool
}

func (c boolCodec) Decode(_ context.Context, v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		if b, ok := c.words[strings.ToLower(x)]; ok {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %q is not a boolean word", ErrInvalidFormat, x)
	}
	return nil, fmt.Errorf("%w: boolean from %T", ErrInvalidType, v)
}

func (boolCodec) Encode(_ context.Context, v any) (any, error) { return v, nil }

// Text returns a Codec that stringifies any value.
func Text() Codec { return textCodec{} }

type textCodec struct{}

func (textCodec) Decode(_ context.Context, v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return fmt.Sprint(v), nil
}

func (textCodec) Encode(_ context.Context, v any) (any, error) { return v, nil }
