package itemgraph_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ig "github.com/reoring/itemgraph"
)

var ctx = context.Background()

var cmpDecimal = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func withGeneralFields(b *ig.SchemaBuilder) *ig.SchemaBuilder {
	return b.
		Field("f_binary", ig.Binary).
		Field("f_boolean", ig.Boolean).
		Field("f_string", ig.String).
		Field("f_text", ig.Text).
		Field("f_integer", ig.Integer).
		Field("f_float", ig.Float).
		Field("f_decimal", ig.Decimal).
		Field("f_date", ig.Date).
		Field("f_time", ig.Time).
		Field("f_datetime", ig.DateTime)
}

// catalog declares ItemGeneralOne with one relation of every cardinality to
// ItemGeneralTwo. ItemGeneralTwo gets the reverse relations derived. Options
// can extend the declarations before the catalog is frozen.
func catalog(t testing.TB, opts ...func(one, two *ig.SchemaBuilder)) *ig.Catalog {
	t.Helper()
	one := withGeneralFields(ig.Define("ItemGeneralOne")).
		Relation("two_1_1", ig.OneToOne, "ItemGeneralTwo", "one_1_1").
		Relation("two_1_x", ig.OneToMany, "ItemGeneralTwo", "one_x_1").
		Relation("two_x_1", ig.ManyToOne, "ItemGeneralTwo", "one_1_x").
		Relation("two_x_x", ig.ManyToMany, "ItemGeneralTwo", "one_x_x")
	two := withGeneralFields(ig.Define("ItemGeneralTwo"))
	for _, o := range opts {
		o(one, two)
	}
	c, err := ig.NewCatalog(one, two)
	require.NoError(t, err)
	return c
}

func schemas(t testing.TB, opts ...func(one, two *ig.SchemaBuilder)) (*ig.Schema, *ig.Schema) {
	c := catalog(t, opts...)
	return c.MustSchema("ItemGeneralOne"), c.MustSchema("ItemGeneralTwo")
}

func get(t testing.TB, n interface {
	Get(string) (any, bool)
}, key string) any {
	t.Helper()
	v, ok := n.Get(key)
	require.True(t, ok, "missing %s", key)
	return v
}

// dictDiff compares two mapping forms.
func dictDiff(a, b map[string]any) string {
	return cmp.Diff(a, b, cmpDecimal)
}
