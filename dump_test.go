package itemgraph_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	ig "github.com/reoring/itemgraph"
)

func TestDumps_RoundTrip(t *testing.T) {
	c := catalog(t)
	one, two := c.MustSchema("ItemGeneralOne"), c.MustSchema("ItemGeneralTwo")
	a := graph(t, one, two)

	data, err := ig.Dumps(ctx, a)
	require.NoError(t, err)
	loaded, err := c.Loads(data)
	require.NoError(t, err)
	assert.Equal(t, "ItemGeneralOne", loaded.Schema().Name())
	assert.Empty(t, dictDiff(a.ToDict(), loaded.ToDict()))
}

func TestDump_StreamOfItems(t *testing.T) {
	c := catalog(t)
	one := c.MustSchema("ItemGeneralOne")

	var buf bytes.Buffer
	var want []map[string]any
	for _, n := range []string{"1", "2", "3"} {
		it := one.MustNew(ig.Values{"f_integer": n})
		require.NoError(t, ig.Dump(ctx, &buf, it))
		want = append(want, it.ToDict())
	}
	b, err := one.NewBulk(ig.Values{"f_text": "bulk"})
	require.NoError(t, err)
	_, _ = b.Gen(nil)
	require.NoError(t, ig.Dump(ctx, &buf, b))
	want = append(want, b.ToDict())

	r := bytes.NewReader(buf.Bytes())
	for i, w := range want {
		n, err := c.Load(r)
		require.NoError(t, err, "frame %d", i)
		assert.Empty(t, dictDiff(w, n.ToDict()), "frame %d", i)
	}
	_, err = c.Load(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLoad_Truncated(t *testing.T) {
	c := catalog(t)
	data, err := ig.Dumps(ctx, c.MustSchema("ItemGeneralOne").MustNew(ig.Values{"f_text": "x"}))
	require.NoError(t, err)

	_, err = c.Loads(data[:len(data)-1])
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, ig.HasCode(err, ig.CodeInvalidReference))
}

func TestLoad_UnknownSchema(t *testing.T) {
	data, err := ig.Dumps(ctx, catalog(t).MustSchema("ItemGeneralOne").MustNew(nil))
	require.NoError(t, err)
	other, err := ig.NewCatalog(ig.Define("Other"))
	require.NoError(t, err)
	_, err = other.Loads(data)
	assert.True(t, ig.HasCode(err, ig.CodeConfiguration))
}

func TestToJSON_LoadJSON(t *testing.T) {
	c := catalog(t)
	one, two := c.MustSchema("ItemGeneralOne"), c.MustSchema("ItemGeneralTwo")
	a := graph(t, one, two)

	data, err := ig.ToJSON(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"f_decimal":"10.10"`)

	n, err := c.LoadJSON("ItemGeneralOne", data)
	require.NoError(t, err)
	require.NoError(t, n.Process(ctx))
	assert.Empty(t, dictDiff(a.ToDict(), n.ToDict()))
}

func TestFprint(t *testing.T) {
	one, _ := schemas(t)
	it := one.MustNew(ig.Values{"f_decimal": "10.10", "f_text": "hello"})
	require.NoError(t, it.Process(ctx))

	var sb strings.Builder
	ig.Fprint(&sb, it)
	out := sb.String()
	assert.Contains(t, out, `"f_decimal"`)
	assert.Contains(t, out, `"10.10"`)
	assert.Contains(t, out, `"hello"`)
}

func TestLogger_TracesPasses(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ig.SetLogger(zap.New(core))
	t.Cleanup(func() { ig.SetLogger(nil) })

	one, _ := schemas(t)
	it := one.MustNew(ig.Values{"f_integer": "1"})
	_, err := ig.Dumps(ctx, it)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("process pass").Len())
	assert.Equal(t, 1, logs.FilterMessage("dumped").Len())
	entry := logs.FilterMessage("process pass").All()[0]
	assert.Equal(t, "itemgraph", entry.LoggerName)
	assert.Equal(t, "ItemGeneralOne", entry.ContextMap()["schema"])
}
