package itemgraph

import (
	"fmt"
	"sort"
)

// SchemaBuilder declares one record type. Builders are consumed by NewCatalog,
// which links relations across schemas and freezes the result.
type SchemaBuilder struct {
	name       string
	fields     []Field
	relations  []Relation
	aliases    []alias
	conv       Conversions
	defaults   []builderDefault
	nullables  []string
	removeNull []string
	idField    string
	getOnly    bool
	updateOnly bool
	before     []Hook
	after      []Hook
}

// Hook runs against one item while it is processed. An error stops the pass.
type Hook func(*Item) error

type builderDefault struct {
	key string
	def Default
}

// Define starts a schema declaration.
func Define(name string) *SchemaBuilder {
	return &SchemaBuilder{name: name}
}

// Field declares a scalar field.
func (b *SchemaBuilder) Field(name string, kind FieldKind) *SchemaBuilder {
	b.fields = append(b.fields, Field{Name: name, Kind: kind})
	return b
}

// Relation declares a relation to target. The reverse relation is derived on
// target unless target declares it itself.
func (b *SchemaBuilder) Relation(name string, typ RelationType, target, reverse string) *SchemaBuilder {
	b.relations = append(b.relations, Relation{Name: name, Type: typ, Target: target, Reverse: reverse})
	return b
}

// Alias maps name to a real path. A name ending in PostSuffix is applied
// after the other construction arguments.
func (b *SchemaBuilder) Alias(name, path string) *SchemaBuilder {
	b.aliases = append(b.aliases, alias{name: name, path: path})
	return b
}

// Conversions sets the conversions; unset members keep their defaults.
func (b *SchemaBuilder) Conversions(c Conversions) *SchemaBuilder {
	b.conv = c
	return b
}

// Default declares a schema-level default for a field or relation path.
func (b *SchemaBuilder) Default(key string, d Default) *SchemaBuilder {
	b.defaults = append(b.defaults, builderDefault{key: key, def: d})
	return b
}

// Nullables declares names that are present after processing even if unset.
func (b *SchemaBuilder) Nullables(names ...string) *SchemaBuilder {
	b.nullables = append(b.nullables, names...)
	return b
}

// RemoveNullFields declares names dropped after processing when null.
func (b *SchemaBuilder) RemoveNullFields(names ...string) *SchemaBuilder {
	b.removeNull = append(b.removeNull, names...)
	return b
}

// IDField names the field holding the persisted identifier.
func (b *SchemaBuilder) IDField(name string) *SchemaBuilder {
	b.idField = name
	return b
}

// GetOnlyMode sets the schema-level get-only flag.
func (b *SchemaBuilder) GetOnlyMode(on bool) *SchemaBuilder {
	b.getOnly = on
	return b
}

// UpdateOnlyMode sets the schema-level update-only flag.
func (b *SchemaBuilder) UpdateOnlyMode(on bool) *SchemaBuilder {
	b.updateOnly = on
	return b
}

// BeforeProcess registers a hook run before the item's fields are converted.
func (b *SchemaBuilder) BeforeProcess(h Hook) *SchemaBuilder {
	b.before = append(b.before, h)
	return b
}

// AfterProcess registers a hook run once the item, its children included, is
// processed.
func (b *SchemaBuilder) AfterProcess(h Hook) *SchemaBuilder {
	b.after = append(b.after, h)
	return b
}

// Catalog is an immutable set of linked schemas. It is safe for concurrent
// use.
type Catalog struct {
	schemas map[string]*Schema
	order   []*Schema
}

// NewCatalog validates the declarations, derives reverse relations and
// returns the frozen catalog. Every problem found is reported as a
// CodeConfiguration issue.
func NewCatalog(builders ...*SchemaBuilder) (*Catalog, error) {
	c := &Catalog{schemas: make(map[string]*Schema, len(builders))}
	var iss Issues
	bad := func(format string, args ...any) {
		iss = AppendIssues(iss, Issue{Path: "/", Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)})
	}

	for _, b := range builders {
		if b.name == "" {
			bad("schema without a name")
			continue
		}
		if _, dup := c.schemas[b.name]; dup {
			bad("duplicate schema %s", b.name)
			continue
		}
		s := &Schema{
			name:        b.name,
			fieldByName: map[string]*Field{},
			relByName:   map[string]*Relation{},
			conv:        b.conv.withDefaults(),
			idField:     b.idField,
			getOnly:     b.getOnly,
			updateOnly:  b.updateOnly,
			catalog:     c,

			beforeProcess: append([]Hook(nil), b.before...),
			afterProcess:  append([]Hook(nil), b.after...),
		}
		for _, f := range b.fields {
			if s.taken(f.Name) {
				bad("%s: duplicate name %s", b.name, f.Name)
				continue
			}
			fd := &Field{Name: f.Name, Kind: f.Kind, codec: s.conv.codecFor(f.Kind)}
			s.fields = append(s.fields, fd)
			s.fieldByName[f.Name] = fd
		}
		for _, r := range b.relations {
			if s.taken(r.Name) {
				bad("%s: duplicate name %s", b.name, r.Name)
				continue
			}
			rd := &Relation{Name: r.Name, Type: r.Type, Target: r.Target, Reverse: r.Reverse, owner: s}
			s.relations = append(s.relations, rd)
			s.relByName[r.Name] = rd
		}
		c.schemas[b.name] = s
		c.order = append(c.order, s)
	}
	if len(iss) > 0 {
		return nil, iss
	}

	// link forward relations and derive the missing reverse sides
	for _, s := range c.order {
		for _, r := range append([]*Relation(nil), s.relations...) {
			if r.target != nil {
				continue
			}
			t, ok := c.schemas[r.Target]
			if !ok {
				bad("%s.%s: unknown target schema %s", s.name, r.Name, r.Target)
				continue
			}
			if r.Reverse == "" {
				bad("%s.%s: reverse name is required", s.name, r.Name)
				continue
			}
			r.target = t
			if t == s && r.Reverse == r.Name {
				if r.Type.Reverse() != r.Type {
					bad("%s.%s: self-reverse relation must be symmetric, got %s", s.name, r.Name, r.Type)
					continue
				}
				r.reverse = r
				continue
			}
			back, declared := t.relByName[r.Reverse]
			switch {
			case declared:
				if back.Type != r.Type.Reverse() || back.Target != s.name || back.Reverse != r.Name {
					bad("%s.%s and %s.%s are not symmetric", s.name, r.Name, t.name, back.Name)
					continue
				}
				back.target = s
			case t.fieldByName[r.Reverse] != nil:
				bad("%s.%s: reverse name %s is a field of %s", s.name, r.Name, r.Reverse, t.name)
				continue
			default:
				back = &Relation{Name: r.Reverse, Type: r.Type.Reverse(), Target: s.name, Reverse: r.Name, owner: t, target: s}
				t.relations = append(t.relations, back)
				t.relByName[back.Name] = back
			}
			r.reverse, back.reverse = back, r
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}

	for i, b := range builders {
		s := c.order[i]
		s.aliases = append(s.aliases, b.aliases...)
		sort.SliceStable(s.aliases, func(x, y int) bool { return len(s.aliases[x].name) > len(s.aliases[y].name) })
	}
	for i, b := range builders {
		s := c.order[i]
		for _, a := range s.aliases {
			if _, err := s.resolve(a.path); err != nil {
				bad("%s: alias %s -> %s: %v", s.name, a.name, a.path, err)
			}
		}
		for _, d := range b.defaults {
			r, err := s.resolve(d.key)
			if err != nil {
				bad("%s: default %s: %v", s.name, d.key, err)
				continue
			}
			path := r.path()
			s.defaults = append(s.defaults, schemaDefault{key: path, relation: r.last().rel != nil, def: d.def})
		}
		byKey := map[string]schemaDefault{}
		keys := make([]string, 0, len(s.defaults))
		for _, d := range s.defaults {
			if _, dup := byKey[d.key]; !dup {
				keys = append(keys, d.key)
			}
			byKey[d.key] = d
		}
		sortDefaultKeys(keys,
			func(k string) bool { return byKey[k].def.IsComputed() },
			func(k string) bool { return byKey[k].relation })
		s.defaults = s.defaults[:0]
		for _, k := range keys {
			s.defaults = append(s.defaults, byKey[k])
		}
		for _, n := range b.nullables {
			if !s.taken(n) {
				bad("%s: nullable %s is not a field or relation", s.name, n)
				continue
			}
			s.nullables = append(s.nullables, n)
		}
		for _, n := range b.removeNull {
			if !s.taken(n) {
				bad("%s: remove-null name %s is not a field or relation", s.name, n)
				continue
			}
			s.removeNull = append(s.removeNull, n)
		}
		if s.idField != "" && s.fieldByName[s.idField] == nil {
			bad("%s: id field %s is not a declared field", s.name, s.idField)
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return c, nil
}

func (s *Schema) taken(name string) bool {
	return s.fieldByName[name] != nil || s.relByName[name] != nil
}

// Schema returns the named schema.
func (c *Catalog) Schema(name string) (*Schema, error) {
	s, ok := c.schemas[name]
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeConfiguration, Message: "unknown schema " + name}}
	}
	return s, nil
}

// MustSchema is Schema that panics on a missing name.
func (c *Catalog) MustSchema(name string) *Schema {
	s, err := c.Schema(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Schemas returns the schemas in declaration order.
func (c *Catalog) Schemas() []*Schema {
	return append([]*Schema(nil), c.order...)
}
