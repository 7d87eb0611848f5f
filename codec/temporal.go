package codec

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

type temporalKind int

const (
	kindDate temporalKind = iota
	kindTime
	kindDateTime
)

// Date returns a Codec converting strings into civil.Date using the given
// strftime formats in order; the first format that parses wins. Encode renders
// with the first format.
func Date(formats ...string) Codec { return temporalCodec{kind: kindDate, formats: formats} }

// Time is the civil.Time counterpart of Date.
func Time(formats ...string) Codec { return temporalCodec{kind: kindTime, formats: formats} }

// DateTime is the civil.DateTime counterpart of Date.
func DateTime(formats ...string) Codec { return temporalCodec{kind: kindDateTime, formats: formats} }

type temporalCodec struct {
	kind    temporalKind
	formats []string
}

func (c temporalCodec) Decode(_ context.Context, v any) (any, error) {
	switch x := v.(type) {
	case string:
		t, err := c.parse(x)
		if err != nil {
			return nil, err
		}
		return c.fromTime(t), nil
	case time.Time:
		return c.fromTime(x), nil
	case civil.Date:
		if c.kind == kindDate {
			return x, nil
		}
		if c.kind == kindDateTime {
			return civil.DateTime{Date: x}, nil
		}
	case civil.Time:
		if c.kind == kindTime {
			return x, nil
		}
	case civil.DateTime:
		switch c.kind {
		case kindDateTime:
			return x, nil
		case kindDate:
			return x.Date, nil
		case kindTime:
			return x.Time, nil
		}
	}
	return nil, fmt.Errorf("%w: %s from %T", ErrInvalidType, c.kindName(), v)
}

func (c temporalCodec) Encode(_ context.Context, v any) (any, error) {
	var t time.Time
	switch x := v.(type) {
	case civil.Date:
		t = x.In(time.UTC)
	case civil.Time:
		t = time.Date(0, time.January, 1, x.Hour, x.Minute, x.Second, x.Nanosecond, time.UTC)
	case civil.DateTime:
		t = x.In(time.UTC)
	case time.Time:
		t = x
	default:
		return v, nil
	}
	if len(c.formats) == 0 {
		return nil, fmt.Errorf("%w: no %s format declared", ErrInvalidFormat, c.kindName())
	}
	layout, err := Layout(c.formats[0], false)
	if err != nil {
		return nil, err
	}
	return t.Format(layout), nil
}

func (c temporalCodec) parse(s string) (time.Time, error) {
	for _, f := range c.formats {
		layout, err := Layout(f, true)
		if err != nil {
			return time.Time{}, err
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q matches no %s format %q", ErrInvalidFormat, s, c.kindName(), c.formats)
}

func (c temporalCodec) fromTime(t time.Time) any {
	switch c.kind {
	case kindDate:
		return civil.DateOf(t)
	case kindTime:
		return civil.TimeOf(t)
	}
	return civil.DateTimeOf(t)
}

func (c temporalCodec) kindName() string {
	switch c.kind {
	case kindDate:
		return "date"
	case kindTime:
		return "time"
	}
	return "datetime"
}
