package itemgraph

import (
	"context"

	"go.uber.org/zap"
)

// ToDict renders the item and everything reachable from it as nested
// mappings. Every item receives a sequential id the first time the walk
// reaches it; later occurrences are rendered as {"id": N}. Items with a
// persisted id use {"pk": V} instead.
func (it *Item) ToDict(opts ...DictOpt) map[string]any {
	w := newDictWriter(opts)
	out := w.item(it)
	w.done(it)
	return out
}

// ToDict renders the bulk as {"bulk": [...], "defaults": {...}}.
func (b *Bulk) ToDict(opts ...DictOpt) map[string]any {
	w := newDictWriter(opts)
	out := w.bulk(b)
	w.done(b)
	return out
}

type dictWriter struct {
	ctx  context.Context
	opt  DictOpt
	next int
	seen map[*Item]bool
}

func newDictWriter(opts []DictOpt) *dictWriter {
	return &dictWriter{ctx: context.Background(), opt: dictOpt(opts), seen: map[*Item]bool{}}
}

func (w *dictWriter) done(root Node) {
	Logger().Debug("dict written",
		zap.String("schema", root.Schema().name),
		zap.Int("items", len(w.seen)),
		zap.Bool("revert", w.opt.Revert))
}

func (w *dictWriter) item(it *Item) map[string]any {
	pk, persisted := it.PersistedID()
	if persisted {
		pk = w.scalar(it.schema, it.schema.idField, pk)
	}
	if w.seen[it] {
		if persisted {
			return map[string]any{keyPK: pk}
		}
		return map[string]any{keyID: it.sid}
	}
	w.seen[it] = true

	out := map[string]any{}
	if persisted {
		out[keyPK] = pk
	} else {
		w.next++
		it.sid = w.next
		out[keyID] = it.sid
	}
	body := make(map[string]any, len(it.data))
	for _, f := range it.schema.fields {
		if v, ok := it.data[f.Name]; ok {
			body[f.Name] = w.scalar(it.schema, f.Name, v)
		}
	}
	for _, rel := range it.schema.relations {
		if v, ok := it.data[rel.Name]; ok {
			body[rel.Name] = w.node(v)
		}
	}
	out[keyItem] = body
	if it.getOnly != nil && *it.getOnly != it.schema.getOnly {
		out[keyGetOnly] = *it.getOnly
	}
	if it.updateOnly != nil && *it.updateOnly != it.schema.updateOnly {
		out[keyUpdateOnly] = *it.updateOnly
	}
	return out
}

func (w *dictWriter) bulk(b *Bulk) map[string]any {
	members := make([]any, 0, len(b.items))
	for _, m := range b.items {
		members = append(members, w.item(m))
	}
	defaults := map[string]any{}
	for _, k := range b.orderedKeys() {
		v, ok := b.effective(k)
		if !ok {
			continue
		}
		t, err := b.schema.terminal(k)
		if err != nil {
			continue
		}
		if t.rel != nil {
			defaults[k] = w.node(v)
			continue
		}
		defaults[k] = w.scalar(b.schema, k, v)
	}
	return map[string]any{keyBulk: members, keyDefaults: defaults}
}

func (w *dictWriter) node(v any) any {
	switch x := v.(type) {
	case *Item:
		return w.item(x)
	case *Bulk:
		return w.bulk(x)
	}
	return nil
}

// scalar renders a field value, reverting it when asked. A value the field
// conversion cannot revert is kept as is.
func (w *dictWriter) scalar(s *Schema, name string, v any) any {
	if !w.opt.Revert {
		return v
	}
	t, err := s.terminal(name)
	if err != nil || t.field == nil {
		return v
	}
	out, err := t.owner.revert(w.ctx, t.field, name, v)
	if err != nil {
		return v
	}
	return out
}
