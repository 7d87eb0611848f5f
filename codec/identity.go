package codec

import "context"

// Identity returns a Codec that passes values through unchanged in both
// directions.
func Identity() Codec { return identityCodec{} }

type identityCodec struct{}

func (identityCodec) Decode(_ context.Context, v any) (any, error) { return v, nil }
func (identityCodec) Encode(_ context.Context, v any) (any, error) { return v, nil }
