package itemgraph

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoadDict rebuilds a node of the named schema from the form produced by
// ToDict. References may appear before the definition they point to.
func (c *Catalog) LoadDict(schema string, m map[string]any) (Node, error) {
	s, err := c.Schema(schema)
	if err != nil {
		return nil, err
	}
	return s.LoadDict(m)
}

// LoadDict is Catalog.LoadDict for this schema.
func (s *Schema) LoadDict(m map[string]any) (Node, error) {
	l := &loader{items: map[nodeKey]*Item{}, defined: map[nodeKey]bool{}, filled: map[*Item]bool{}}
	_, isBulk := m[keyBulk]
	var err error
	l.anon = 0
	if isBulk {
		err = l.registerBulk(s, m, "")
	} else {
		err = l.registerItem(s, m, "")
	}
	if err != nil {
		return nil, err
	}
	var iss Issues
	for _, k := range l.order {
		if !l.defined[k] {
			iss = AppendIssues(iss, Issue{Path: "/", Code: CodeInvalidReference,
				Message: "reference to undefined node " + k.String(), Params: map[string]any{"key": k.v}})
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}

	var out Node
	l.anon = 0
	if isBulk {
		out, err = l.bulk(s, m, "")
	} else {
		out, err = l.item(s, m, "")
	}
	if err != nil {
		return nil, err
	}
	Logger().Debug("dict loaded", zap.String("schema", s.name), zap.Int("items", len(l.items)))
	return out, nil
}

// nodeKey identifies an item inside one mapping: a synthetic id, a persisted
// id scoped by schema, or the position of an item mapping carrying neither.
type nodeKey struct {
	schema string
	pk     bool
	v      any
	anon   int
}

func (k nodeKey) String() string {
	switch {
	case k.pk:
		return fmt.Sprintf("%s pk %v", k.schema, k.v)
	case k.anon > 0:
		return fmt.Sprintf("anonymous item %d", k.anon)
	}
	return fmt.Sprintf("id %v", k.v)
}

type loader struct {
	items   map[nodeKey]*Item
	order   []nodeKey
	defined map[nodeKey]bool
	filled  map[*Item]bool
	// anon numbers id-less item mappings; both passes walk them in the
	// same order.
	anon int
}

func (l *loader) keyOf(s *Schema, m map[string]any) nodeKey {
	if v, ok := m[keyPK]; ok {
		return nodeKey{schema: s.name, pk: true, v: normalizeKey(v)}
	}
	if v, ok := m[keyID]; ok {
		return nodeKey{v: normalizeKey(v)}
	}
	l.anon++
	return nodeKey{anon: l.anon}
}

// normalizeKey makes ids that went through different encoders compare equal.
func normalizeKey(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
		return strconv.FormatUint(x, 10)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case string, bool:
		return x
	case []byte:
		return string(x)
	case decimal.Decimal:
		if x.IsInteger() && x.Abs().LessThan(decimal.New(1, 18)) {
			return x.IntPart()
		}
		return x.String()
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func asMap(v any, path string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, issueAt(path, CodeInvalidReference, fmt.Sprintf("expected a mapping, got %T", v), nil)
	}
	return m, nil
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + PathSeparator + name
}

func (l *loader) registerItem(s *Schema, m map[string]any, path string) error {
	k := l.keyOf(s, m)
	it, ok := l.items[k]
	if !ok {
		it = newItem(s)
		if !k.pk && k.anon == 0 {
			if id, isInt := k.v.(int64); isInt {
				it.sid = int(id)
			}
		}
		l.items[k] = it
		l.order = append(l.order, k)
	} else if it.schema != s {
		return issueAt(path, CodeConflict, k.String()+" is both "+it.schema.name+" and "+s.name, nil)
	}
	raw, ok := m[keyItem]
	if !ok {
		if k.anon > 0 {
			l.defined[k] = true
		}
		return nil
	}
	if l.defined[k] {
		return issueAt(path, CodeConflict, k.String()+" is defined twice", nil)
	}
	l.defined[k] = true
	body, err := asMap(raw, path)
	if err != nil {
		return err
	}
	for key := range m {
		switch key {
		case keyID, keyPK, keyItem, keyGetOnly, keyUpdateOnly:
		default:
			return issueAt(path, CodeConstruction, "unknown item key "+key, nil)
		}
	}
	for _, name := range sortedKeys(body) {
		v := body[name]
		if s.fieldByName[name] != nil {
			continue
		}
		rel := s.relByName[name]
		if rel == nil {
			return issueAt(join(path, name), CodeConstruction, "unknown name "+name+" for "+s.name, nil)
		}
		if v == nil {
			continue
		}
		if err := l.registerNode(rel, v, join(path, name)); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) registerNode(rel *Relation, v any, path string) error {
	m, err := asMap(v, path)
	if err != nil {
		return err
	}
	if rel.Type.ToMany() {
		return l.registerBulk(rel.target, m, path)
	}
	return l.registerItem(rel.target, m, path)
}

func (l *loader) registerBulk(s *Schema, m map[string]any, path string) error {
	members, defaults, err := bulkParts(m, path)
	if err != nil {
		return err
	}
	for i, v := range members {
		mm, err := asMap(v, join(path, strconv.Itoa(i)))
		if err != nil {
			return err
		}
		if err := l.registerItem(s, mm, join(path, strconv.Itoa(i))); err != nil {
			return err
		}
	}
	for _, k := range sortedKeys(defaults) {
		v := defaults[k]
		t, err := s.terminal(k)
		if err != nil {
			return prefixIssues(path, err)
		}
		if t.rel == nil || v == nil {
			continue
		}
		if err := l.registerNode(t.rel, v, join(path, k)); err != nil {
			return err
		}
	}
	return nil
}

func bulkParts(m map[string]any, path string) ([]any, map[string]any, error) {
	for k := range m {
		if k != keyBulk && k != keyDefaults {
			return nil, nil, issueAt(path, CodeConstruction, "unknown bulk key "+k, nil)
		}
	}
	members, ok := m[keyBulk].([]any)
	if !ok && m[keyBulk] != nil {
		return nil, nil, issueAt(path, CodeInvalidReference, fmt.Sprintf("bulk members must be a list, got %T", m[keyBulk]), nil)
	}
	var defaults map[string]any
	if raw, ok := m[keyDefaults]; ok && raw != nil {
		d, err := asMap(raw, path)
		if err != nil {
			return nil, nil, err
		}
		defaults = d
	}
	return members, defaults, nil
}

func (l *loader) item(s *Schema, m map[string]any, path string) (*Item, error) {
	it := l.items[l.keyOf(s, m)]
	raw, ok := m[keyItem]
	if !ok || l.filled[it] {
		return it, nil
	}
	l.filled[it] = true
	body, _ := raw.(map[string]any)
	for _, name := range sortedKeys(body) {
		v := body[name]
		rel := s.relByName[name]
		if rel == nil || v == nil {
			it.put(name, v, PresenceSeen)
			continue
		}
		n, err := l.node(rel, v, join(path, name))
		if err != nil {
			return nil, err
		}
		it.put(name, n, PresenceSeen)
	}
	for _, key := range []string{keyGetOnly, keyUpdateOnly} {
		v, ok := m[key]
		if !ok {
			continue
		}
		on, ok := v.(bool)
		if !ok {
			return nil, issueAt(path, CodeInvalidReference, key+" must be a boolean", nil)
		}
		if key == keyGetOnly {
			it.SetGetOnly(on)
		} else {
			it.SetUpdateOnly(on)
		}
	}
	return it, nil
}

func (l *loader) node(rel *Relation, v any, path string) (any, error) {
	m := v.(map[string]any)
	if rel.Type.ToMany() {
		return l.bulk(rel.target, m, path)
	}
	return l.item(rel.target, m, path)
}

func (l *loader) bulk(s *Schema, m map[string]any, path string) (*Bulk, error) {
	members, defaults, _ := bulkParts(m, path)
	b := newBulk(s)
	for i, v := range members {
		it, err := l.item(s, v.(map[string]any), join(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		b.items = append(b.items, it)
	}
	for _, k := range sortedKeys(defaults) {
		v := defaults[k]
		t, _ := s.terminal(k)
		if t.rel != nil && v != nil {
			n, err := l.node(t.rel, v, join(path, k))
			if err != nil {
				return nil, err
			}
			v = n
		}
		b.putResolved(k, v)
	}
	return b, nil
}
