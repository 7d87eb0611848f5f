package itemgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ig "github.com/reoring/itemgraph"
)

func TestNew_UnknownNameIsConstructionError(t *testing.T) {
	one, _ := schemas(t)
	_, err := one.New(ig.Values{"f_nope": 1})
	require.Error(t, err)
	assert.True(t, ig.HasCode(err, ig.CodeConstruction))

	_, err = one.New(ig.Values{"f_integer__deeper": 1})
	assert.True(t, ig.HasCode(err, ig.CodeConstruction))

	_, err = one.New(ig.Values{"two_x_x": one.MustNew(nil)})
	assert.True(t, ig.HasCode(err, ig.CodeConstruction), "item given for a to-many relation")
}

func TestNew_AliasesAndPostSuffix(t *testing.T) {
	one, two := schemas(t, func(one, _ *ig.SchemaBuilder) {
		one.Alias("number", "f_integer").
			Alias("child", "two_1_1").
			Alias("child_number", "child__f_integer")
	})
	path, err := one.ResolvePath("child_number")
	require.NoError(t, err)
	assert.Equal(t, "two_1_1__f_integer", path)

	it := one.MustNew(ig.Values{"number": "1", "child_number": "2"})
	assert.Equal(t, "1", get(t, it, "f_integer"))
	assert.Equal(t, "2", get(t, it, "two_1_1__f_integer"))
	assert.Equal(t, ig.Values{"number": "1", "child_number": "2"}, it.Raw())

	given := two.MustNew(nil)
	it = one.MustNew(ig.Values{"child": given, "two_1_1__f_text__post": "after"})
	assert.Same(t, given, get(t, it, "two_1_1"))
	assert.Equal(t, "after", get(t, given, "f_text"))
}

func TestAlias_MatchesWholeSegments(t *testing.T) {
	c, err := ig.NewCatalog(ig.Define("A").
		Field("ab", ig.Integer).
		Field("abc", ig.Integer).
		Alias("a", "ab"))
	require.NoError(t, err)
	s := c.MustSchema("A")

	p, err := s.ResolvePath("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", p)
	p, err = s.ResolvePath("a")
	require.NoError(t, err)
	assert.Equal(t, "ab", p)
}

func TestItem_PresenceAndDelete(t *testing.T) {
	one, _ := schemas(t, func(one, _ *ig.SchemaBuilder) { one.Default("f_text", ig.Literal("d")) })
	it := one.MustNew(ig.Values{"f_integer": nil})
	assert.True(t, it.Has("f_integer"))
	assert.True(t, it.Presence("f_integer").Has(ig.PresenceSeen|ig.PresenceWasNull))
	assert.False(t, it.Has("f_text"))

	require.NoError(t, it.Process(ctx))
	assert.True(t, it.Presence("f_text").Has(ig.PresenceDefaultApplied))
	assert.Equal(t, []string{"f_text", "f_integer"}, it.Keys())

	require.NoError(t, it.Delete("f_integer"))
	assert.False(t, it.Has("f_integer"))
	assert.Equal(t, ig.Presence(0), it.Presence("f_integer"))
}

func TestItem_OneAndMany(t *testing.T) {
	one, _ := schemas(t)
	it := one.MustNew(nil)

	c1, err := it.One("two_1_1")
	require.NoError(t, err)
	c2, err := it.One("two_1_1")
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	_, err = it.One("two_x_x")
	assert.True(t, ig.HasCode(err, ig.CodeConstruction))
	_, err = it.Many("f_integer")
	assert.True(t, ig.HasCode(err, ig.CodeConstruction))

	b, err := it.Many("two_1_1__one_1_x")
	require.NoError(t, err)
	v, ok := c1.Get("one_1_x")
	require.True(t, ok)
	assert.Same(t, b, v)
}

func TestBulk_API(t *testing.T) {
	one, two := schemas(t)
	b, err := one.NewBulk(ig.Values{"f_integer": 1})
	require.NoError(t, err)

	x, err := b.Gen(nil)
	require.NoError(t, err)
	y := one.MustNew(nil)
	require.NoError(t, b.Add(y))
	assert.True(t, ig.HasCode(b.Add(two.MustNew(nil)), ig.CodeConstruction))
	assert.Equal(t, 2, b.Len())
	assert.Same(t, x, b.At(0))
	list, err := b.AsList()
	require.NoError(t, err)
	assert.Equal(t, []*ig.Item{x, y}, list)
	assert.Equal(t, 1, get(t, x, "f_integer"), "defaults are folded into the members")
	assert.True(t, x.Presence("f_integer").Has(ig.PresenceDefaultApplied))

	require.NoError(t, b.Set("f_text", "t"))
	assert.Equal(t, []string{"f_integer", "f_text"}, b.DefaultKeys())
	d, ok := b.Default("f_text")
	require.True(t, ok)
	assert.Equal(t, "t", d.Value())
	require.NoError(t, b.Delete("f_text"))
	assert.False(t, b.Has("f_text"))

	tmpl, err := b.One("two_x_1")
	require.NoError(t, err)
	require.NoError(t, tmpl.Set("f_text", "parent"))
	v, ok := b.Get("two_x_1__f_text")
	require.True(t, ok)
	assert.Equal(t, "parent", v)

	s := b.Slice(1, 2)
	assert.Equal(t, []*ig.Item{y}, s.Items())
	assert.Equal(t, b.DefaultKeys(), s.DefaultKeys())

	require.NoError(t, b.Process(ctx))
	assert.Equal(t, int64(1), get(t, y, "f_integer"))
	assert.Equal(t, "parent", get(t, y, "two_x_1__f_text"))
}

func TestNewCatalog_ConfigurationErrors(t *testing.T) {
	cases := map[string][]*ig.SchemaBuilder{
		"duplicate schema": {ig.Define("A"), ig.Define("A")},
		"unknown target":   {ig.Define("A").Relation("b", ig.OneToOne, "B", "a")},
		"missing reverse":  {ig.Define("A"), ig.Define("B").Relation("a", ig.OneToOne, "A", "")},
		"asymmetric": {
			ig.Define("A").Relation("b", ig.OneToMany, "B", "a"),
			ig.Define("B").Relation("a", ig.OneToOne, "A", "b"),
		},
		"reverse is a field": {ig.Define("A").Relation("b", ig.OneToOne, "B", "x"), ig.Define("B").Field("x", ig.Integer)},
		"duplicate name":     {ig.Define("A").Field("x", ig.Integer).Field("x", ig.Text)},
		"bad alias":          {ig.Define("A").Alias("y", "nope")},
		"alias cycle":        {ig.Define("A").Alias("x", "y").Alias("y", "x")},
		"bad nullable":       {ig.Define("A").Nullables("nope")},
		"bad id field":       {ig.Define("A").IDField("nope")},
		"bad default":        {ig.Define("A").Default("nope", ig.Literal(1))},
		"asymmetric self":    {ig.Define("A").Relation("p", ig.OneToMany, "A", "p")},
	}
	for name, builders := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ig.NewCatalog(builders...)
			require.Error(t, err)
			assert.True(t, ig.HasCode(err, ig.CodeConfiguration), "got %v", err)
		})
	}
}

func TestRelationType_Parse(t *testing.T) {
	rt, err := ig.ParseRelationType("many-to-one")
	require.NoError(t, err)
	assert.Equal(t, ig.ManyToOne, rt)
	assert.Equal(t, ig.OneToMany, rt.Reverse())
	_, err = ig.ParseRelationType("lots")
	assert.Error(t, err)

	k, err := ig.ParseFieldKind("DateTime")
	require.NoError(t, err)
	assert.Equal(t, ig.DateTime, k)
	assert.Equal(t, "datetime", k.String())
}
