package itemgraph

import "context"

// Node is an Item or a Bulk.
type Node interface {
	Schema() *Schema
	// Process converts field values, applies defaults and nullables, and
	// resolves reverse relations for the whole reachable graph.
	Process(ctx context.Context) error
	// Revert turns processed field values back into their loose form.
	Revert(ctx context.Context) error
	// ToDict renders the nested mapping form.
	ToDict(opts ...DictOpt) map[string]any
	isNode()
}

var (
	_ Node = (*Item)(nil)
	_ Node = (*Bulk)(nil)
)
