package itemgraph

// link records owner on the reverse side of rel for value v, which is the
// non-nil *Item or *Bulk owner holds under rel.
func link(owner *Item, rel *Relation, v any) error {
	rev := rel.reverse
	switch rel.Type {
	case OneToOne:
		return setBackRef(v.(*Item), rev.Name, owner, rel.Name)

	case ManyToOne:
		parent := v.(*Item)
		bk, _ := parent.data[rev.Name].(*Bulk)
		if bk == nil {
			bk = newBulk(owner.schema)
			parent.put(rev.Name, bk, PresenceBackRef)
		}
		bk.include(owner)
		return setBackRefDefault(bk, rel.Name, parent, rel.Name)

	case OneToMany:
		bk := v.(*Bulk)
		if bk.Len() > 0 {
			if err := setBackRefDefault(bk, rev.Name, owner, rel.Name); err != nil {
				return err
			}
		}
		for _, m := range bk.items {
			if err := setBackRef(m, rev.Name, owner, rel.Name); err != nil {
				return err
			}
		}

	case ManyToMany:
		bk := v.(*Bulk)
		if bk.Len() > 0 {
			if _, declared := bk.defaults[rev.Name]; !declared {
				switch cur := bk.resolved[rev.Name].(type) {
				case *Bulk:
					cur.include(owner)
				case nil:
					if _, ok := bk.resolved[rev.Name]; !ok {
						back := newBulk(owner.schema)
						back.include(owner)
						bk.putBackRef(rev.Name, back)
					}
				}
			}
		}
		for _, m := range bk.items {
			switch cur := m.data[rev.Name].(type) {
			case *Bulk:
				cur.include(owner)
			case nil:
				back := newBulk(owner.schema)
				back.include(owner)
				m.put(rev.Name, back, PresenceBackRef)
			}
		}
	}
	return nil
}

// setBackRef stores owner under name on child unless child already points to
// another item there.
func setBackRef(child *Item, name string, owner *Item, via string) error {
	switch cur := child.data[name].(type) {
	case nil:
		child.put(name, owner, PresenceBackRef)
		return nil
	case *Item:
		if cur == owner {
			return nil
		}
	}
	return issueAt(via, CodeConflict, "item of "+child.schema.name+" already belongs to another "+owner.schema.name+" through "+name,
		map[string]any{"relation": name})
}

// setBackRefDefault makes owner the default of name for every member of bk.
func setBackRefDefault(bk *Bulk, name string, owner *Item, via string) error {
	conflict := issueAt(via, CodeConflict, "bulk of "+bk.schema.name+" already declares another "+owner.schema.name+" for "+name,
		map[string]any{"relation": name})
	if d, ok := bk.defaults[name]; ok {
		if d.IsComputed() || d.value != nil && d.value != any(owner) {
			return conflict
		}
	}
	if cur, ok := bk.resolved[name]; ok && cur != nil {
		if cur != any(owner) {
			return conflict
		}
		return nil
	}
	bk.putBackRef(name, owner)
	return nil
}
