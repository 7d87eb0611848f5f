package itemgraph

import (
	"strings"
)

// step is one segment of a resolved path: a field or a relation of owner.
type step struct {
	owner *Schema
	name  string
	field *Field
	rel   *Relation
}

// resolved is a name expanded through aliases into real segments.
type resolved struct {
	steps []step
}

func (r resolved) last() step { return r.steps[len(r.steps)-1] }

func (r resolved) path() string { return r.pathFrom(0) }

func (r resolved) pathFrom(i int) string {
	names := make([]string, 0, len(r.steps)-i)
	for _, s := range r.steps[i:] {
		names = append(names, s.name)
	}
	return strings.Join(names, PathSeparator)
}

// resolve expands aliases and walks relations until the name is consumed.
// A trailing PostSuffix that is not part of an alias is ignored.
func (s *Schema) resolve(name string) (resolved, error) {
	r, err := s.resolveSegments(name)
	if err != nil && strings.HasSuffix(name, PostSuffix) {
		if r2, err2 := s.resolveSegments(strings.TrimSuffix(name, PostSuffix)); err2 == nil {
			return r2, nil
		}
	}
	return r, err
}

func (s *Schema) resolveSegments(name string) (resolved, error) {
	var r resolved
	cur, sch := name, s
	for {
		expanded, err := sch.expandAlias(cur)
		if err != nil {
			return resolved{}, err
		}
		cur = expanded
		head, rest, more := strings.Cut(cur, PathSeparator)
		if f, ok := sch.fieldByName[head]; ok {
			if more {
				return resolved{}, issueAt(name, CodeConstruction,
					"path continues past field "+head+" of "+sch.name, map[string]any{"schema": sch.name})
			}
			r.steps = append(r.steps, step{owner: sch, name: head, field: f})
			return r, nil
		}
		rel, ok := sch.relByName[head]
		if !ok {
			return resolved{}, issueAt(name, CodeConstruction,
				"unknown name "+head+" for "+sch.name, map[string]any{"schema": sch.name, "name": head})
		}
		r.steps = append(r.steps, step{owner: sch, name: head, rel: rel})
		if !more {
			return r, nil
		}
		cur, sch = rest, rel.target
	}
}

// expandAlias rewrites a leading alias (matched on whole segments) into its
// path, repeating while aliases chain.
func (s *Schema) expandAlias(cur string) (string, error) {
	for hops := 0; ; hops++ {
		if hops > len(s.aliases) {
			return "", issueAt(cur, CodeConfiguration, "alias cycle in "+s.name, nil)
		}
		matched := false
		for _, a := range s.aliases {
			if cur == a.name || strings.HasPrefix(cur, a.name+PathSeparator) {
				cur = a.path + cur[len(a.name):]
				matched = true
				break
			}
		}
		if !matched {
			return cur, nil
		}
	}
}

// terminal resolves a real path and returns its last step.
func (s *Schema) terminal(path string) (step, error) {
	r, err := s.resolve(path)
	if err != nil {
		return step{}, err
	}
	return r.last(), nil
}

// ResolvePath returns the real path a name refers to after alias expansion.
func (s *Schema) ResolvePath(name string) (string, error) {
	r, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	return r.path(), nil
}
