package itemgraph

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// processor carries the visited sets of one Process pass so shared nodes and
// cycles are handled once.
type processor struct {
	ctx   context.Context
	items map[*Item]bool
	bulks map[*Bulk]bool
}

func newProcessor(ctx context.Context) *processor {
	return &processor{ctx: ctx, items: map[*Item]bool{}, bulks: map[*Bulk]bool{}}
}

func (p *processor) done(root Node, err error) error {
	Logger().Debug("process pass",
		zap.String("schema", root.Schema().name),
		zap.Int("items", len(p.items)),
		zap.Int("bulks", len(p.bulks)),
		zap.Error(err))
	return err
}

// Process converts the item and everything reachable from it. A second call
// changes nothing. Field conversion is item-atomic: when a field or a schema
// default fails, no field of that item is updated. The schema's BeforeProcess
// and AfterProcess hooks run around each item.
func (it *Item) Process(ctx context.Context) error {
	p := newProcessor(ctx)
	return p.done(it, p.item(it))
}

// Process applies the bulk defaults to every member and processes them.
func (b *Bulk) Process(ctx context.Context) error {
	p := newProcessor(ctx)
	return p.done(b, p.bulk(b))
}

func (p *processor) item(it *Item) error {
	if p.items[it] {
		return nil
	}
	p.items[it] = true
	if err := p.ctx.Err(); err != nil {
		return err
	}
	s := it.schema
	for _, h := range s.beforeProcess {
		if err := h(it); err != nil {
			return err
		}
	}

	converted := make(map[string]any, len(it.data))
	for name, v := range it.data {
		f := s.fieldByName[name]
		if f == nil || v == nil {
			continue
		}
		cv, err := s.convert(p.ctx, f, name, v)
		if err != nil {
			return err
		}
		converted[name] = cv
	}
	data, presence := cloneMap(it.data), cloneMap(it.presence)
	for name, v := range converted {
		it.data[name] = v
	}
	if err := p.defaults(it); err != nil {
		it.data, it.presence = data, presence
		return err
	}

	for _, rel := range s.relations {
		if v := it.data[rel.Name]; v != nil {
			if err := link(it, rel, v); err != nil {
				return err
			}
		}
	}
	for _, rel := range s.relations {
		var err error
		switch v := it.data[rel.Name].(type) {
		case *Item:
			err = p.item(v)
		case *Bulk:
			err = p.bulk(v)
		}
		if err != nil {
			return prefixIssues(rel.Name, err)
		}
	}

	for _, name := range s.nullables {
		if _, ok := it.data[name]; ok {
			continue
		}
		if rel := s.relByName[name]; rel != nil && rel.Type.ToMany() {
			it.put(name, newBulk(rel.target), PresenceNullInjected)
			continue
		}
		it.put(name, nil, PresenceNullInjected)
	}
	for _, name := range s.removeNull {
		v, ok := it.data[name]
		if !ok {
			continue
		}
		if b, isBulk := v.(*Bulk); v == nil || (isBulk && b.Len() == 0) {
			it.drop(name)
		}
	}
	for _, h := range s.afterProcess {
		if err := h(it); err != nil {
			return err
		}
	}
	return nil
}

// defaults applies the schema-level defaults it lacks.
func (p *processor) defaults(it *Item) error {
	s := it.schema
	for _, d := range s.defaults {
		r, err := s.resolve(d.key)
		if err != nil {
			return err
		}
		if it.hasResolved(r) {
			continue
		}
		v, err := p.defaultValue(r, d.def.resolve(it))
		if err != nil {
			return err
		}
		if err := it.setResolved(r, v, PresenceDefaultApplied); err != nil {
			return err
		}
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (p *processor) bulk(b *Bulk) error {
	if p.bulks[b] {
		return nil
	}
	p.bulks[b] = true
	s := b.schema
	keys := b.orderedKeys()
	paths := make(map[string]resolved, len(keys))
	for _, k := range keys {
		r, err := s.resolve(k)
		if err != nil {
			return err
		}
		paths[k] = r
	}

	// one instance of every literal default per bulk
	for _, k := range keys {
		r := paths[k]
		if v, ok := b.resolved[k]; ok {
			if f := r.last().field; f != nil && v != nil {
				cv, err := r.last().owner.convert(p.ctx, f, k, v)
				if err != nil {
					return err
				}
				b.resolved[k] = cv
			}
			continue
		}
		d, ok := b.defaults[k]
		if !ok || d.IsComputed() {
			continue
		}
		v, err := p.defaultValue(r, d.value)
		if err != nil {
			return err
		}
		b.resolved[k] = v
	}

	for i, m := range b.items {
		for _, k := range keys {
			r := paths[k]
			if m.hasResolved(r) {
				continue
			}
			v, ok := b.resolved[k]
			if !ok {
				d := b.defaults[k]
				if !d.IsComputed() {
					continue
				}
				var err error
				if v, err = p.defaultValue(r, d.fn(m)); err != nil {
					return prefixIssues(strconv.Itoa(i), err)
				}
			}
			if err := m.setResolved(r, v, PresenceDefaultApplied); err != nil {
				return prefixIssues(strconv.Itoa(i), err)
			}
		}
	}
	for i, m := range b.items {
		if err := p.item(m); err != nil {
			return prefixIssues(strconv.Itoa(i), err)
		}
	}
	for _, k := range keys {
		var err error
		switch v := b.resolved[k].(type) {
		case *Item:
			err = p.item(v)
		case *Bulk:
			err = p.bulk(v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// defaultValue turns a default into the value stored for one consumer:
// scalars are converted, relation templates are instantiated.
func (p *processor) defaultValue(r resolved, raw any) (any, error) {
	last := r.last()
	if last.rel == nil {
		return last.owner.convert(p.ctx, last.field, r.path(), raw)
	}
	v, err := relationValue(last.rel, raw, r.path())
	if err != nil {
		return nil, err
	}
	return instantiate(v)
}

// Revert turns processed field values of the reachable graph back into their
// loose form. Process restores them.
func (it *Item) Revert(ctx context.Context) error {
	return newReverter(ctx).item(it)
}

// Revert is Item.Revert for every member and resolved default.
func (b *Bulk) Revert(ctx context.Context) error {
	return newReverter(ctx).bulk(b)
}

type reverter struct {
	ctx   context.Context
	items map[*Item]bool
	bulks map[*Bulk]bool
}

func newReverter(ctx context.Context) *reverter {
	return &reverter{ctx: ctx, items: map[*Item]bool{}, bulks: map[*Bulk]bool{}}
}

func (rv *reverter) item(it *Item) error {
	if rv.items[it] {
		return nil
	}
	rv.items[it] = true
	s := it.schema
	for _, f := range s.fields {
		v, ok := it.data[f.Name]
		if !ok {
			continue
		}
		out, err := s.revert(rv.ctx, f, f.Name, v)
		if err != nil {
			return err
		}
		it.data[f.Name] = out
	}
	for _, rel := range s.relations {
		var err error
		switch v := it.data[rel.Name].(type) {
		case *Item:
			err = rv.item(v)
		case *Bulk:
			err = rv.bulk(v)
		}
		if err != nil {
			return prefixIssues(rel.Name, err)
		}
	}
	return nil
}

func (rv *reverter) bulk(b *Bulk) error {
	if rv.bulks[b] {
		return nil
	}
	rv.bulks[b] = true
	for k, v := range b.resolved {
		switch x := v.(type) {
		case *Item:
			if err := rv.item(x); err != nil {
				return err
			}
		case *Bulk:
			if err := rv.bulk(x); err != nil {
				return err
			}
		default:
			t, err := b.schema.terminal(k)
			if err != nil || t.field == nil {
				continue
			}
			out, err := t.owner.revert(rv.ctx, t.field, k, v)
			if err != nil {
				return err
			}
			b.resolved[k] = out
		}
	}
	for i, m := range b.items {
		if err := rv.item(m); err != nil {
			return prefixIssues(strconv.Itoa(i), err)
		}
	}
	return nil
}
