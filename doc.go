// Package itemgraph builds graphs of records ("items") and ordered record
// collections ("bulks") from loosely typed values, processes them into typed
// values with every reverse relation filled in, and serializes the result.
//
//   - Schemas are declared with Define and frozen by NewCatalog; reverse
//     relations are derived there.
//   - Process converts fields through the codec package, applies schema and bulk
//     defaults, nullables and remove-null names, and keeps both sides of every
//     relation in sync.
//   - ToDict and LoadDict convert to and from nested mappings in which shared
//     nodes appear once and are referenced by id elsewhere.
//   - Dump and Load write length-delimited CBOR frames that can be concatenated
//     in one stream.
//   - Errors are Issues carrying a JSON Pointer path and a code.
//
// Typical usage:
//
//	cat, err := itemgraph.NewCatalog(
//		itemgraph.Define("Order").Field("total", itemgraph.Decimal).
//			Relation("lines", itemgraph.OneToMany, "Line", "order"),
//		itemgraph.Define("Line").Field("qty", itemgraph.Integer),
//	)
//	order := cat.MustSchema("Order").MustNew(itemgraph.Values{"total": "10.50"})
//	lines, _ := order.Many("lines")
//	lines.Gen(itemgraph.Values{"qty": "2"})
//	err = order.Process(ctx)
//	data, err := itemgraph.Dumps(ctx, order)
package itemgraph
