package itemgraph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/reoring/itemgraph/internal/frame"
	"github.com/reoring/itemgraph/internal/wire"
)

// DumpVersion is the version written into every dump.
const DumpVersion = 1

const (
	dumpKeyVersion = "v"
	dumpKeySchema  = "schema"
	dumpKeyNode    = "node"
)

// Dumps processes n and serializes it into one self-delimiting frame. Frames
// can be concatenated and read back one at a time with Catalog.Load.
func Dumps(ctx context.Context, n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Dump(ctx, &buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Dump is Dumps writing to w.
func Dump(ctx context.Context, w io.Writer, n Node) error {
	if err := n.Process(ctx); err != nil {
		return err
	}
	payload, err := wire.Marshal(map[string]any{
		dumpKeyVersion: DumpVersion,
		dumpKeySchema:  n.Schema().name,
		dumpKeyNode:    n.ToDict(),
	})
	if err != nil {
		return fmt.Errorf("itemgraph: encode %s: %w", n.Schema().name, err)
	}
	if err := frame.Write(w, payload); err != nil {
		return err
	}
	Logger().Debug("dumped", zap.String("schema", n.Schema().name), zap.Int("bytes", len(payload)))
	return nil
}

// Loads decodes the first frame of data.
func (c *Catalog) Loads(data []byte) (Node, error) {
	return c.Load(bytes.NewReader(data))
}

// Load reads the next frame from r. At the end of the stream it returns
// io.EOF.
func (c *Catalog) Load(r io.Reader) (Node, error) {
	payload, err := frame.Read(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, Issues{{Path: "/", Code: CodeInvalidReference, Message: "read frame", Cause: err}}
	}
	decoded, err := wire.Unmarshal(payload)
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeInvalidReference, Message: "decode dump", Cause: err}}
	}
	env, ok := decoded.(map[string]any)
	if !ok {
		return nil, issueAt("", CodeInvalidReference, fmt.Sprintf("dump is %T, not a mapping", decoded), nil)
	}
	if v := normalizeKey(env[dumpKeyVersion]); v != int64(DumpVersion) {
		return nil, issueAt("", CodeInvalidReference, fmt.Sprintf("unsupported dump version %v", env[dumpKeyVersion]), nil)
	}
	name, _ := env[dumpKeySchema].(string)
	node, ok := env[dumpKeyNode].(map[string]any)
	if !ok {
		return nil, issueAt("", CodeInvalidReference, "dump without node", nil)
	}
	return c.LoadDict(name, node)
}
