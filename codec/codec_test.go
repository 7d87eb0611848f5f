package codec

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func TestIdentity_RoundTrip(t *testing.T) {
	c := Identity()
	ctx := context.Background()
	v, err := c.Decode(ctx, 42)
	if err != nil || v != 42 {
		t.Fatalf("decode: %v %v", v, err)
	}
	v, err = c.Encode(ctx, "x")
	if err != nil || v != "x" {
		t.Fatalf("encode: %v %v", v, err)
	}
}

func TestBoolean_Words(t *testing.T) {
	c := Boolean([]string{"true", "yes", "on", "1", "+"}, []string{"false", "no", "off", "0", "-"})
	ctx := context.Background()
	for in, want := range map[string]bool{"TRUE": true, "Yes": true, "+": true, "off": false, "0": false} {
		got, err := c.Decode(ctx, in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
	if _, err := c.Decode(ctx, "maybe"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if _, err := c.Decode(ctx, 3.5); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestNumber_SeparatorAware(t *testing.T) {
	ctx := context.Background()
	f, err := Float(",").Decode(ctx, "1.120,30")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f != 1120.3 {
		t.Fatalf("unexpected float: %v", f)
	}
	i, err := Integer(".").Decode(ctx, "1 000")
	if err != nil || i != int64(1000) {
		t.Fatalf("unexpected int: %v %v", i, err)
	}
	i, err = Integer(".").Decode(ctx, "-12")
	if err != nil || i != int64(-12) {
		t.Fatalf("unexpected negative int: %v %v", i, err)
	}
	if _, err := Integer(".").Decode(ctx, "abc"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestDecimal_EncodeKeepsScale(t *testing.T) {
	ctx := context.Background()
	c := Decimal(",")
	v, err := c.Decode(ctx, "10,10")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	d := v.(decimal.Decimal)
	if !d.Equal(decimal.RequireFromString("10.1")) {
		t.Fatalf("unexpected decimal: %v", d)
	}
	out, err := c.Encode(ctx, d)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out != "10,10" {
		t.Fatalf("unexpected revert: %v", out)
	}
}

func TestDate_FirstMatchingFormatWins(t *testing.T) {
	ctx := context.Background()
	c := Date("%d.%m.%Y", "%d.%m.%y")
	v, err := c.Decode(ctx, "20.10.10")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := civil.Date{Year: 2010, Month: time.October, Day: 20}
	if v != want {
		t.Fatalf("got %v want %v", v, want)
	}
	out, err := c.Encode(ctx, v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out != "20.10.2010" {
		t.Fatalf("revert must use the first format, got %v", out)
	}
}

func TestTime_RevertPads(t *testing.T) {
	ctx := context.Background()
	c := Time("%H:%M:%S", "%H:%M")
	v, err := c.Decode(ctx, "10:20")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, _ := c.Encode(ctx, v)
	if out != "10:20:00" {
		t.Fatalf("unexpected revert: %v", out)
	}
}

func TestDateTime_NoMatch(t *testing.T) {
	c := DateTime("%Y-%m-%d %H:%M:%S")
	_, err := c.Decode(context.Background(), "yesterday")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestBinary_RevertToString(t *testing.T) {
	ctx := context.Background()
	v, err := Binary().Decode(ctx, "payload")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(v.([]byte)) != "payload" {
		t.Fatalf("unexpected bytes: %v", v)
	}
	out, _ := Binary().Encode(ctx, v)
	if out != "payload" {
		t.Fatalf("unexpected revert: %v", out)
	}
}

func TestLayout_UnsupportedDirective(t *testing.T) {
	if _, err := Layout("%Q", true); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	got, err := Layout("%d.%m.%Y %%", false)
	if err != nil || got != "02.01.2006 %" {
		t.Fatalf("unexpected layout %q %v", got, err)
	}
}
