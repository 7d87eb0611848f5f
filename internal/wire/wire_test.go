package wire

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func TestMarshal_TypedScalarsSurvive(t *testing.T) {
	in := map[string]any{
		"id": 3,
		"item": map[string]any{
			"f_integer":  int64(-4),
			"f_float":    20.5,
			"f_decimal":  decimal.RequireFromString("10.10"),
			"f_date":     civil.Date{Year: 2010, Month: time.October, Day: 20},
			"f_time":     civil.Time{Hour: 10, Minute: 20},
			"f_datetime": civil.DateTime{Date: civil.Date{Year: 2020, Month: time.January, Day: 2}, Time: civil.Time{Hour: 3}},
			"f_binary":   []byte("raw"),
			"f_boolean":  true,
			"f_null":     nil,
		},
		"bulk": []any{},
	}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := out.(map[string]any)
	if m["id"] != int64(3) {
		t.Fatalf("id: %#v", m["id"])
	}
	item := m["item"].(map[string]any)
	if item["f_integer"] != int64(-4) || item["f_float"] != 20.5 || item["f_boolean"] != true {
		t.Fatalf("numbers/bool: %#v", item)
	}
	if d := item["f_decimal"].(decimal.Decimal); d.String() != "10.1" || d.Exponent() != -2 {
		t.Fatalf("decimal: %v exp %d", d, d.Exponent())
	}
	if item["f_date"] != in["item"].(map[string]any)["f_date"] {
		t.Fatalf("date: %#v", item["f_date"])
	}
	if item["f_time"] != (civil.Time{Hour: 10, Minute: 20}) {
		t.Fatalf("time: %#v", item["f_time"])
	}
	if string(item["f_binary"].([]byte)) != "raw" {
		t.Fatalf("binary: %#v", item["f_binary"])
	}
	if v, ok := item["f_null"]; !ok || v != nil {
		t.Fatalf("null: %#v %v", v, ok)
	}
	if b, ok := m["bulk"].([]any); !ok || len(b) != 0 {
		t.Fatalf("bulk: %#v", m["bulk"])
	}
}

func TestMarshal_UnsupportedType(t *testing.T) {
	if _, err := Marshal(map[string]any{"x": struct{}{}}); err == nil {
		t.Fatalf("expected error for struct value")
	}
}
