package itemgraph

import (
	"sort"
	"strings"
)

// Item is one record of a schema. Values are keyed by real field or relation
// name; relation values are nil, *Item or *Bulk.
type Item struct {
	schema     *Schema
	data       map[string]any
	presence   PresenceMap
	raw        Values
	getOnly    *bool
	updateOnly *bool
	sid        int
}

func newItem(s *Schema) *Item {
	return &Item{schema: s, data: map[string]any{}, presence: PresenceMap{}, raw: Values{}}
}

func (*Item) isNode() {}

// New builds an item from named construction arguments. Names ending in
// PostSuffix are applied last; the rest are applied in lexical order.
func (s *Schema) New(vals Values) (*Item, error) {
	it := newItem(s)
	if err := it.apply(vals); err != nil {
		return nil, err
	}
	return it, nil
}

// MustNew is New that panics on error.
func (s *Schema) MustNew(vals Values) *Item {
	it, err := s.New(vals)
	if err != nil {
		panic(err)
	}
	return it
}

func (it *Item) apply(vals Values) error {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := strings.HasSuffix(keys[i], PostSuffix), strings.HasSuffix(keys[j], PostSuffix)
		if pi != pj {
			return pj
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if err := it.Set(k, vals[k]); err != nil {
			return err
		}
	}
	return nil
}

// Schema returns the item's schema.
func (it *Item) Schema() *Schema { return it.schema }

// Set assigns a value by name, alias or path. Intermediate single relations
// are created on the way; a path that crosses a to-many relation stores the
// rest of the path as a default of that bulk.
func (it *Item) Set(key string, v any) error {
	r, err := it.schema.resolve(key)
	if err != nil {
		return err
	}
	if err := it.setResolved(r, v, PresenceSeen); err != nil {
		return err
	}
	it.raw[key] = v
	return nil
}

func (it *Item) setResolved(r resolved, v any, flag Presence) error {
	owner, bulk, at, _ := it.walk(r, true)
	if bulk != nil {
		return bulk.SetDefault(r.pathFrom(at), Literal(v))
	}
	last := r.last()
	if last.rel != nil {
		nv, err := relationValue(last.rel, v, r.path())
		if err != nil {
			return err
		}
		v = nv
	}
	owner.put(last.name, v, flag)
	return nil
}

// walk follows r to the owner of its last step. When the path crosses a
// to-many relation it stops at that bulk and returns the index of the first
// step stored in the bulk's defaults. With create unset, a missing
// intermediate makes walk report false.
func (it *Item) walk(r resolved, create bool) (*Item, *Bulk, int, bool) {
	owner := it
	for i := 0; i < len(r.steps)-1; i++ {
		rel := r.steps[i].rel
		cur := owner.data[rel.Name]
		if rel.Type.ToMany() {
			b, _ := cur.(*Bulk)
			if b == nil {
				if !create {
					return nil, nil, 0, false
				}
				b = newBulk(rel.target)
				owner.put(rel.Name, b, PresenceSeen)
			}
			return nil, b, i + 1, true
		}
		child, _ := cur.(*Item)
		if child == nil {
			if !create {
				return nil, nil, 0, false
			}
			child = newItem(rel.target)
			owner.put(rel.Name, child, PresenceSeen)
		}
		owner = child
	}
	return owner, nil, len(r.steps) - 1, true
}

func (it *Item) put(name string, v any, flag Presence) {
	it.data[name] = v
	it.presence[name] = presenceOf(v, flag)
}

func (it *Item) drop(name string) {
	delete(it.data, name)
	delete(it.presence, name)
}

// Get returns the value stored under a name or path.
func (it *Item) Get(key string) (any, bool) {
	r, err := it.schema.resolve(key)
	if err != nil {
		return nil, false
	}
	owner, bulk, at, ok := it.walk(r, false)
	if !ok {
		return nil, false
	}
	if bulk != nil {
		return bulk.Get(r.pathFrom(at))
	}
	v, ok := owner.data[r.last().name]
	return v, ok
}

// Has reports whether a name or path holds a value, nil included.
func (it *Item) Has(key string) bool {
	r, err := it.schema.resolve(key)
	if err != nil {
		return false
	}
	return it.hasResolved(r)
}

func (it *Item) hasResolved(r resolved) bool {
	owner, bulk, at, ok := it.walk(r, false)
	if !ok {
		return false
	}
	if bulk != nil {
		return bulk.Has(r.pathFrom(at))
	}
	_, ok = owner.data[r.last().name]
	return ok
}

// Delete removes the value under a name or path.
func (it *Item) Delete(key string) error {
	r, err := it.schema.resolve(key)
	if err != nil {
		return err
	}
	owner, bulk, at, ok := it.walk(r, false)
	if !ok {
		return nil
	}
	if bulk != nil {
		return bulk.Delete(r.pathFrom(at))
	}
	owner.drop(r.last().name)
	return nil
}

// One returns the item held by a single relation path, creating it when unset.
func (it *Item) One(key string) (*Item, error) {
	r, err := it.relationPath(key, false)
	if err != nil {
		return nil, err
	}
	owner, bulk, at, _ := it.walk(r, true)
	if bulk != nil {
		return bulk.One(r.pathFrom(at))
	}
	rel := r.last().rel
	if child, ok := owner.data[rel.Name].(*Item); ok {
		return child, nil
	}
	child := newItem(rel.target)
	owner.put(rel.Name, child, PresenceSeen)
	return child, nil
}

// Many returns the bulk held by a to-many relation path, creating it when
// unset.
func (it *Item) Many(key string) (*Bulk, error) {
	r, err := it.relationPath(key, true)
	if err != nil {
		return nil, err
	}
	owner, bulk, at, _ := it.walk(r, true)
	if bulk != nil {
		return bulk.Many(r.pathFrom(at))
	}
	rel := r.last().rel
	if b, ok := owner.data[rel.Name].(*Bulk); ok {
		return b, nil
	}
	b := newBulk(rel.target)
	owner.put(rel.Name, b, PresenceSeen)
	return b, nil
}

func (it *Item) relationPath(key string, toMany bool) (resolved, error) {
	r, err := it.schema.resolve(key)
	if err != nil {
		return resolved{}, err
	}
	rel := r.last().rel
	if rel == nil || rel.Type.ToMany() != toMany {
		want := "single"
		if toMany {
			want = "to-many"
		}
		return resolved{}, issueAt(r.path(), CodeConstruction, key+" is not a "+want+" relation", nil)
	}
	return r, nil
}

// Keys returns the names holding a value: fields in declaration order, then
// relations.
func (it *Item) Keys() []string {
	out := make([]string, 0, len(it.data))
	for _, f := range it.schema.fields {
		if _, ok := it.data[f.Name]; ok {
			out = append(out, f.Name)
		}
	}
	for _, r := range it.schema.relations {
		if _, ok := it.data[r.Name]; ok {
			out = append(out, r.Name)
		}
	}
	return out
}

// Raw returns the values as the caller supplied them through Set and New.
func (it *Item) Raw() Values {
	out := make(Values, len(it.raw))
	for k, v := range it.raw {
		out[k] = v
	}
	return out
}

// Presence returns the flags recorded for a real name.
func (it *Item) Presence(name string) Presence { return it.presence[name] }

// PersistedID returns the identifier field value when the schema declares one
// and it is set.
func (it *Item) PersistedID() (any, bool) {
	if it.schema.idField == "" {
		return nil, false
	}
	v, ok := it.data[it.schema.idField]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// SyntheticID returns the id assigned by the last serialization pass that
// reached the item.
func (it *Item) SyntheticID() (int, bool) { return it.sid, it.sid > 0 }

// GetOnly returns the effective get-only flag.
func (it *Item) GetOnly() bool {
	if it.getOnly != nil {
		return *it.getOnly
	}
	return it.schema.getOnly
}

// SetGetOnly overrides the schema get-only flag for this item.
func (it *Item) SetGetOnly(on bool) { it.getOnly = &on }

// UpdateOnly returns the effective update-only flag.
func (it *Item) UpdateOnly() bool {
	if it.updateOnly != nil {
		return *it.updateOnly
	}
	return it.schema.updateOnly
}

// SetUpdateOnly overrides the schema update-only flag for this item.
func (it *Item) SetUpdateOnly(on bool) { it.updateOnly = &on }

// AsList returns the item as a one-element list.
func (it *Item) AsList() []*Item { return []*Item{it} }

// relationValue checks v against rel and normalizes []*Item into a *Bulk.
func relationValue(rel *Relation, v any, path string) (any, error) {
	wrong := func(msg string) error {
		return issueAt(path, CodeConstruction, msg, map[string]any{"relation": rel.Name, "target": rel.Target})
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *Item:
		if rel.Type.ToMany() {
			return nil, wrong("to-many relation needs a bulk or a list of items")
		}
		if x.schema != rel.target {
			return nil, wrong("item of " + x.schema.name + " given for " + rel.Target)
		}
		return x, nil
	case *Bulk:
		if !rel.Type.ToMany() {
			return nil, wrong("single relation needs an item")
		}
		if x.schema != rel.target {
			return nil, wrong("bulk of " + x.schema.name + " given for " + rel.Target)
		}
		return x, nil
	case []*Item:
		if !rel.Type.ToMany() {
			return nil, wrong("single relation needs an item")
		}
		b := newBulk(rel.target)
		if err := b.Add(x...); err != nil {
			return nil, prefixIssues(path, err)
		}
		return b, nil
	}
	return nil, wrong("unsupported relation value")
}
