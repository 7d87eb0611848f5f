package itemgraph

import "strconv"

// Bulk is an ordered list of items of one schema plus defaults shared by its
// members. Defaults are keyed by real path; relation defaults are templates.
type Bulk struct {
	schema   *Schema
	items    []*Item
	defaults map[string]Default
	// resolved holds the per-bulk values derived from defaults during
	// Process, plus back-references written by relation bookkeeping.
	resolved map[string]any
	backRefs map[string]bool // resolved keys written by relation bookkeeping
	keys     []string        // insertion order over defaults and resolved
}

func newBulk(s *Schema) *Bulk {
	return &Bulk{schema: s, defaults: map[string]Default{}, resolved: map[string]any{}, backRefs: map[string]bool{}}
}

func (*Bulk) isNode() {}

// NewBulk creates an empty bulk whose defaults are the given values.
func (s *Schema) NewBulk(defaults Values) (*Bulk, error) {
	b := newBulk(s)
	for _, k := range sortedKeys(defaults) {
		if err := b.Set(k, defaults[k]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Schema returns the member schema.
func (b *Bulk) Schema() *Schema { return b.schema }

// Gen creates a member from construction arguments, appends and returns it.
func (b *Bulk) Gen(vals Values) (*Item, error) {
	it, err := b.schema.New(vals)
	if err != nil {
		return nil, err
	}
	b.items = append(b.items, it)
	return it, nil
}

// Add appends existing items.
func (b *Bulk) Add(items ...*Item) error {
	for i, it := range items {
		if it == nil || it.schema != b.schema {
			got := "nil"
			if it != nil {
				got = it.schema.name
			}
			return Issues{{Path: pointer(strconv.Itoa(i)), Code: CodeConstruction,
				Message: "cannot add " + got + " item to bulk of " + b.schema.name}}
		}
	}
	b.items = append(b.items, items...)
	return nil
}

// Len returns the number of members.
func (b *Bulk) Len() int { return len(b.items) }

// At returns the i-th member.
func (b *Bulk) At(i int) *Item { return b.items[i] }

// Items returns the members.
func (b *Bulk) Items() []*Item { return append([]*Item(nil), b.items...) }

// AsList applies the bulk's defaults to its members and returns them as a
// plain list. Used as a relation default the list behaves like the bulk.
func (b *Bulk) AsList() ([]*Item, error) {
	if err := b.fold(); err != nil {
		return nil, err
	}
	return b.Items(), nil
}

// fold applies every default except back-references to the members lacking
// it. Values stay unconverted until the members are processed.
func (b *Bulk) fold() error {
	for _, k := range b.orderedKeys() {
		if b.backRefs[k] {
			continue
		}
		r, err := b.schema.resolve(k)
		if err != nil {
			return err
		}
		for i, m := range b.items {
			if m.hasResolved(r) {
				continue
			}
			v, ok := b.effective(k)
			if !ok {
				d, declared := b.defaults[k]
				if !declared || !d.IsComputed() {
					continue
				}
				v = d.fn(m)
			}
			if err := m.setResolved(r, v, PresenceDefaultApplied); err != nil {
				return prefixIssues(strconv.Itoa(i), err)
			}
		}
	}
	return nil
}

// flatten folds the defaults of a bulk with members into them and forgets
// the folded keys, leaving the shape AsList produces.
func (b *Bulk) flatten() error {
	if len(b.items) == 0 {
		return nil
	}
	if err := b.fold(); err != nil {
		return err
	}
	keys := b.keys[:0]
	for _, k := range b.keys {
		if b.backRefs[k] {
			keys = append(keys, k)
			continue
		}
		delete(b.defaults, k)
		delete(b.resolved, k)
	}
	b.keys = keys
	return nil
}

// Slice returns a bulk holding members i..j-1 and a copy of the defaults.
func (b *Bulk) Slice(i, j int) *Bulk {
	n := newBulk(b.schema)
	n.items = append(n.items, b.items[i:j]...)
	for k, d := range b.defaults {
		n.defaults[k] = d
	}
	for k, v := range b.resolved {
		n.resolved[k] = v
	}
	for k := range b.backRefs {
		n.backRefs[k] = true
	}
	n.keys = append(n.keys, b.keys...)
	return n
}

// Set declares a literal default for a name or path.
func (b *Bulk) Set(key string, v any) error { return b.SetDefault(key, Literal(v)) }

// SetDefault declares a default for a name or path. A node default for a
// one-to-one or one-to-many relation is rejected: every member would claim
// the same child.
func (b *Bulk) SetDefault(key string, d Default) error {
	r, err := b.schema.resolve(key)
	if err != nil {
		return err
	}
	path := r.path()
	if rel := r.last().rel; rel != nil {
		if rel.Type.OneToX() && (d.IsComputed() || d.value != nil) {
			return issueAt(path, CodeConflict,
				"bulk default for "+rel.Type.String()+" relation "+rel.Name+" would give one child many parents", nil)
		}
		if !d.IsComputed() {
			v, err := relationValue(rel, d.value, path)
			if err != nil {
				return err
			}
			d = Literal(v)
		}
	}
	b.track(path)
	b.defaults[path] = d
	delete(b.resolved, path)
	delete(b.backRefs, path)
	return nil
}

// Default returns the declared default for a real path.
func (b *Bulk) Default(key string) (Default, bool) {
	path, err := b.schema.ResolvePath(key)
	if err != nil {
		return Default{}, false
	}
	d, ok := b.defaults[path]
	return d, ok
}

// Get returns the effective default value for a path: the processed value when
// the bulk has been processed, the literal otherwise.
func (b *Bulk) Get(key string) (any, bool) {
	r, err := b.schema.resolve(key)
	if err != nil {
		return nil, false
	}
	path := r.path()
	if v, ok := b.effective(path); ok {
		return v, true
	}
	if len(r.steps) > 1 {
		switch n := b.nodeAt(r.steps[0].name).(type) {
		case *Item:
			return n.Get(r.pathFrom(1))
		case *Bulk:
			return n.Get(r.pathFrom(1))
		}
	}
	return nil, false
}

// Has reports whether a default exists for a path.
func (b *Bulk) Has(key string) bool {
	r, err := b.schema.resolve(key)
	if err != nil {
		return false
	}
	path := r.path()
	if _, ok := b.defaults[path]; ok {
		return true
	}
	if _, ok := b.resolved[path]; ok {
		return true
	}
	if len(r.steps) > 1 {
		switch n := b.nodeAt(r.steps[0].name).(type) {
		case *Item:
			return n.Has(r.pathFrom(1))
		case *Bulk:
			return n.Has(r.pathFrom(1))
		}
	}
	return false
}

// Delete removes the default for a path.
func (b *Bulk) Delete(key string) error {
	path, err := b.schema.ResolvePath(key)
	if err != nil {
		return err
	}
	delete(b.defaults, path)
	delete(b.resolved, path)
	delete(b.backRefs, path)
	for i, k := range b.keys {
		if k == path {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			break
		}
	}
	return nil
}

// DefaultKeys returns the default paths in insertion order.
func (b *Bulk) DefaultKeys() []string { return append([]string(nil), b.keys...) }

// One returns the item template of a single relation default, creating it
// when unset. Members receive a copy of it when the bulk is processed.
func (b *Bulk) One(key string) (*Item, error) {
	n, rest, err := b.templateFor(key, false)
	if err != nil || rest == "" {
		it, _ := n.(*Item)
		return it, err
	}
	switch x := n.(type) {
	case *Item:
		return x.One(rest)
	case *Bulk:
		return x.One(rest)
	}
	return nil, nil
}

// Many is One for to-many relation defaults.
func (b *Bulk) Many(key string) (*Bulk, error) {
	n, rest, err := b.templateFor(key, true)
	if err != nil || rest == "" {
		bk, _ := n.(*Bulk)
		return bk, err
	}
	switch x := n.(type) {
	case *Item:
		return x.Many(rest)
	case *Bulk:
		return x.Many(rest)
	}
	return nil, nil
}

// templateFor returns the node default under the first relation of key and
// the remaining path.
func (b *Bulk) templateFor(key string, toMany bool) (any, string, error) {
	r, err := b.schema.resolve(key)
	if err != nil {
		return nil, "", err
	}
	first := r.steps[0]
	if first.rel == nil {
		return nil, "", issueAt(r.path(), CodeConstruction, first.name+" is not a relation", nil)
	}
	if first.rel.Type.OneToX() {
		return nil, "", issueAt(r.path(), CodeConflict,
			"bulk default for "+first.rel.Type.String()+" relation "+first.name+" would give one child many parents", nil)
	}
	if len(r.steps) == 1 && first.rel.Type.ToMany() != toMany {
		return nil, "", issueAt(r.path(), CodeConstruction, key+" has the wrong cardinality", nil)
	}
	n := b.nodeAt(first.name)
	if n == nil {
		if first.rel.Type.ToMany() {
			n = newBulk(first.rel.target)
		} else {
			n = newItem(first.rel.target)
		}
		b.track(first.name)
		b.defaults[first.name] = Literal(n)
	}
	if len(r.steps) == 1 {
		return n, "", nil
	}
	return n, r.pathFrom(1), nil
}

// nodeAt returns the item or bulk default stored under a real relation name.
func (b *Bulk) nodeAt(name string) any {
	if v, ok := b.resolved[name]; ok {
		switch v.(type) {
		case *Item, *Bulk:
			return v
		}
		return nil
	}
	if d, ok := b.defaults[name]; ok && !d.IsComputed() {
		switch d.value.(type) {
		case *Item, *Bulk:
			return d.value
		}
	}
	return nil
}

// effective returns the resolved value for path, falling back to a literal
// default. Computed defaults have no effective value.
func (b *Bulk) effective(path string) (any, bool) {
	if v, ok := b.resolved[path]; ok {
		return v, true
	}
	if d, ok := b.defaults[path]; ok && !d.IsComputed() {
		return d.value, true
	}
	return nil, false
}

func (b *Bulk) track(path string) {
	if _, ok := b.defaults[path]; ok {
		return
	}
	if _, ok := b.resolved[path]; ok {
		return
	}
	b.keys = append(b.keys, path)
}

func (b *Bulk) putResolved(path string, v any) {
	b.track(path)
	b.resolved[path] = v
}

func (b *Bulk) putBackRef(name string, v any) {
	b.putResolved(name, v)
	b.backRefs[name] = true
}

func (b *Bulk) contains(it *Item) bool {
	for _, m := range b.items {
		if m == it {
			return true
		}
	}
	return false
}

func (b *Bulk) include(it *Item) {
	if !b.contains(it) {
		b.items = append(b.items, it)
	}
}

// orderedKeys returns the default paths in processing order.
func (b *Bulk) orderedKeys() []string {
	keys := append([]string(nil), b.keys...)
	sortDefaultKeys(keys,
		func(k string) bool {
			if _, ok := b.resolved[k]; ok {
				return false
			}
			return b.defaults[k].IsComputed()
		},
		func(k string) bool {
			t, err := b.schema.terminal(k)
			return err == nil && t.rel != nil
		})
	return keys
}
