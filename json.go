package itemgraph

import (
	"github.com/goccy/go-json"
)

// ToJSON renders the reverted mapping form of n as JSON.
func ToJSON(n Node) ([]byte, error) {
	return json.Marshal(n.ToDict(DictOpt{Revert: true}))
}

// LoadJSON rebuilds a node from ToJSON output. Field values stay in their
// loose form until the node is processed.
func (c *Catalog) LoadJSON(schema string, data []byte) (Node, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, Issues{{Path: "/", Code: CodeInvalidReference, Message: "decode json", Cause: err}}
	}
	return c.LoadDict(schema, m)
}
