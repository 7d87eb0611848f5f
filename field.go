package itemgraph

import "context"

// ProcessField converts a raw value the way Process would for the field a name
// or path refers to.
func (s *Schema) ProcessField(ctx context.Context, name string, raw any) (any, error) {
	r, f, err := s.fieldPath(name)
	if err != nil {
		return nil, err
	}
	return r.last().owner.convert(ctx, f, r.path(), raw)
}

// RevertField is the inverse of ProcessField.
func (s *Schema) RevertField(ctx context.Context, name string, v any) (any, error) {
	r, f, err := s.fieldPath(name)
	if err != nil {
		return nil, err
	}
	return r.last().owner.revert(ctx, f, r.path(), v)
}

func (s *Schema) fieldPath(name string) (resolved, *Field, error) {
	r, err := s.resolve(name)
	if err != nil {
		return resolved{}, nil, err
	}
	f := r.last().field
	if f == nil {
		return resolved{}, nil, issueAt(r.path(), CodeConstruction, name+" is a relation, not a field", nil)
	}
	return r, f, nil
}
