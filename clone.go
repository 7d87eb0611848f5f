package itemgraph

// instantiate deep-copies a relation template so every consumer of a default
// gets its own nodes. Nodes shared inside the template stay shared in the copy.
// Back-references are left out; processing the copy links it to its consumer.
// A bulk template comes out flattened, like its AsList form.
func instantiate(v any) (any, error) {
	c := cloner{items: map[*Item]*Item{}, bulks: map[*Bulk]*Bulk{}}
	out := c.value(v)
	if b, ok := out.(*Bulk); ok {
		if err := b.flatten(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type cloner struct {
	items map[*Item]*Item
	bulks map[*Bulk]*Bulk
}

func (c cloner) value(v any) any {
	switch x := v.(type) {
	case *Item:
		return c.item(x)
	case *Bulk:
		return c.bulk(x)
	case []byte:
		return append([]byte(nil), x...)
	}
	return v
}

func (c cloner) item(it *Item) *Item {
	if n, ok := c.items[it]; ok {
		return n
	}
	n := newItem(it.schema)
	c.items[it] = n
	for k, v := range it.data {
		p := it.presence[k]
		if p.Has(PresenceBackRef) {
			continue
		}
		n.data[k] = c.value(v)
		n.presence[k] = p
	}
	for k, v := range it.raw {
		n.raw[k] = v
	}
	if it.getOnly != nil {
		n.SetGetOnly(*it.getOnly)
	}
	if it.updateOnly != nil {
		n.SetUpdateOnly(*it.updateOnly)
	}
	return n
}

func (c cloner) bulk(b *Bulk) *Bulk {
	if n, ok := c.bulks[b]; ok {
		return n
	}
	n := newBulk(b.schema)
	c.bulks[b] = n
	for _, m := range b.items {
		n.items = append(n.items, c.item(m))
	}
	for k, d := range b.defaults {
		if !d.IsComputed() {
			switch d.value.(type) {
			case *Item, *Bulk:
				d = Literal(c.value(d.value))
			}
		}
		n.defaults[k] = d
	}
	for k, v := range b.resolved {
		if b.backRefs[k] {
			continue
		}
		n.resolved[k] = c.value(v)
	}
	for _, k := range b.keys {
		_, declared := b.defaults[k]
		if b.backRefs[k] && !declared {
			continue
		}
		n.keys = append(n.keys, k)
	}
	return n
}
