package itemgraph

import (
	"context"
	"sort"
	"strings"

	"github.com/reoring/itemgraph/codec"
)

// Conversions configures how raw strings are converted for a schema.
// Zero-valued members fall back to DefaultConversions.
type Conversions struct {
	DecimalSeparator string
	BooleanTrue      []string
	BooleanFalse     []string
	DateFormats      []string
	TimeFormats      []string
	DateTimeFormats  []string
}

// DefaultConversions returns the conversions used when a schema declares none.
func DefaultConversions() Conversions {
	return Conversions{
		DecimalSeparator: ".",
		BooleanTrue:      []string{"true", "yes", "on", "1", "+"},
		BooleanFalse:     []string{"false", "no", "off", "0", "-"},
		DateFormats:      []string{"%Y-%m-%d"},
		TimeFormats:      []string{"%H:%M:%S"},
		DateTimeFormats:  []string{"%Y-%m-%d %H:%M:%S"},
	}
}

func (c Conversions) withDefaults() Conversions {
	d := DefaultConversions()
	if c.DecimalSeparator == "" {
		c.DecimalSeparator = d.DecimalSeparator
	}
	if len(c.BooleanTrue) == 0 {
		c.BooleanTrue = d.BooleanTrue
	}
	if len(c.BooleanFalse) == 0 {
		c.BooleanFalse = d.BooleanFalse
	}
	if len(c.DateFormats) == 0 {
		c.DateFormats = d.DateFormats
	}
	if len(c.TimeFormats) == 0 {
		c.TimeFormats = d.TimeFormats
	}
	if len(c.DateTimeFormats) == 0 {
		c.DateTimeFormats = d.DateTimeFormats
	}
	return c
}

func (c Conversions) codecFor(k FieldKind) codec.Codec {
	switch k {
	case Binary:
		return codec.Binary()
	case Boolean:
		return codec.Boolean(c.BooleanTrue, c.BooleanFalse)
	case String, Text:
		return codec.Text()
	case Integer:
		return codec.Integer(c.DecimalSeparator)
	case Float:
		return codec.Float(c.DecimalSeparator)
	case Decimal:
		return codec.Decimal(c.DecimalSeparator)
	case Date:
		return codec.Date(c.DateFormats...)
	case Time:
		return codec.Time(c.TimeFormats...)
	case DateTime:
		return codec.DateTime(c.DateTimeFormats...)
	}
	return codec.Identity()
}

// Default is a schema- or bulk-level default: either a literal value or a
// value computed from the owning item at process time.
type Default struct {
	value any
	fn    func(*Item) any
}

// Literal wraps a fixed default value. Relation defaults (*Item, *Bulk,
// []*Item) act as templates and are copied for every consumer.
func Literal(v any) Default { return Default{value: v} }

// Computed wraps a function evaluated once per item when it is processed.
func Computed(fn func(*Item) any) Default { return Default{fn: fn} }

// IsComputed reports whether d is Computed.
func (d Default) IsComputed() bool { return d.fn != nil }

// Value returns the literal value; it is nil for Computed defaults.
func (d Default) Value() any { return d.value }

func (d Default) resolve(it *Item) any {
	if d.fn != nil {
		return d.fn(it)
	}
	return d.value
}

// Field is a declared scalar field.
type Field struct {
	Name string
	Kind FieldKind

	codec codec.Codec
}

// Relation is a declared association. Reverse names the relation on the
// target schema that points back.
type Relation struct {
	Name    string
	Type    RelationType
	Target  string
	Reverse string

	owner   *Schema
	target  *Schema
	reverse *Relation
}

type alias struct {
	name string
	path string
}

type schemaDefault struct {
	key      string // real path
	relation bool
	def      Default
}

// Schema is an immutable record type produced by NewCatalog.
type Schema struct {
	name        string
	fields      []*Field
	relations   []*Relation
	fieldByName map[string]*Field
	relByName   map[string]*Relation
	aliases     []alias // longest name first
	conv        Conversions
	defaults    []schemaDefault
	nullables   []string
	removeNull  []string
	idField     string
	getOnly     bool
	updateOnly  bool
	catalog     *Catalog

	beforeProcess []Hook
	afterProcess  []Hook
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Catalog returns the catalog the schema belongs to.
func (s *Schema) Catalog() *Catalog { return s.catalog }

// Conversions returns the effective conversions.
func (s *Schema) Conversions() Conversions { return s.conv }

// IDField returns the identifier field name, empty when none is declared.
func (s *Schema) IDField() string { return s.idField }

// GetOnlyMode and UpdateOnlyMode return the schema-level mode flags.
func (s *Schema) GetOnlyMode() bool    { return s.getOnly }
func (s *Schema) UpdateOnlyMode() bool { return s.updateOnly }

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = Field{Name: f.Name, Kind: f.Kind}
	}
	return out
}

// Relations returns declared and derived relations in order.
func (s *Schema) Relations() []Relation {
	out := make([]Relation, len(s.relations))
	for i, r := range s.relations {
		out[i] = Relation{Name: r.Name, Type: r.Type, Target: r.Target, Reverse: r.Reverse}
	}
	return out
}

// Relation looks up a relation by its real name.
func (s *Schema) Relation(name string) (Relation, bool) {
	r, ok := s.relByName[name]
	if !ok {
		return Relation{}, false
	}
	return Relation{Name: r.Name, Type: r.Type, Target: r.Target, Reverse: r.Reverse}, true
}

// Nullables returns the nullable names.
func (s *Schema) Nullables() []string { return append([]string(nil), s.nullables...) }

// RemoveNullFields returns the names dropped when null.
func (s *Schema) RemoveNullFields() []string { return append([]string(nil), s.removeNull...) }

func (s *Schema) convert(ctx context.Context, f *Field, path string, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := f.codec.Decode(ctx, raw)
	if err != nil {
		return nil, codecIssue(path, err)
	}
	return v, nil
}

func (s *Schema) revert(ctx context.Context, f *Field, path string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(string); ok {
		return v, nil
	}
	out, err := f.codec.Encode(ctx, v)
	if err != nil {
		return nil, codecIssue(path, err)
	}
	return out, nil
}

// pathDepth is the number of relation hops in a real path.
func pathDepth(path string) int { return strings.Count(path, PathSeparator) }

// sortDefaultKeys orders default paths by depth, literal before computed,
// field before relation, then lexically. Processing follows this order so
// the result never depends on insertion order.
func sortDefaultKeys(keys []string, computed, relation func(string) bool) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if da, db := pathDepth(a), pathDepth(b); da != db {
			return da < db
		}
		if ca, cb := computed(a), computed(b); ca != cb {
			return cb
		}
		if ra, rb := relation(a), relation(b); ra != rb {
			return rb
		}
		return a < b
	})
}
