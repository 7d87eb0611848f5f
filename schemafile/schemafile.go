// Package schemafile reads schema declarations from YAML and turns them into an
// itemgraph.Catalog.
//
//	schemas:
//	  - name: Order
//	    id_field: order_id
//	    fields:
//	      order_id: integer
//	      total: decimal
//	    relations:
//	      - {name: lines, type: one_to_many, target: Line, reverse: order}
//	    conversions:
//	      decimal_separator: ","
//	    defaults:
//	      total: "0"
//	    nullables: [lines]
package schemafile

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/reoring/itemgraph"
)

// File is the top-level document.
type File struct {
	Schemas []SchemaDecl `yaml:"schemas"`
}

// SchemaDecl declares one schema.
type SchemaDecl struct {
	Name             string            `yaml:"name"`
	IDField          string            `yaml:"id_field,omitempty"`
	Fields           yaml.Node         `yaml:"fields,omitempty"`
	Relations        []RelationDecl    `yaml:"relations,omitempty"`
	Aliases          map[string]string `yaml:"aliases,omitempty"`
	Conversions      *ConversionsDecl  `yaml:"conversions,omitempty"`
	Defaults         map[string]any    `yaml:"defaults,omitempty"`
	Nullables        []string          `yaml:"nullables,omitempty"`
	RemoveNullFields []string          `yaml:"remove_null_fields,omitempty"`
	GetOnlyMode      bool              `yaml:"get_only_mode,omitempty"`
	UpdateOnlyMode   bool              `yaml:"update_only_mode,omitempty"`
}

// RelationDecl declares one relation.
type RelationDecl struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Target  string `yaml:"target"`
	Reverse string `yaml:"reverse"`
}

// ConversionsDecl mirrors itemgraph.Conversions.
type ConversionsDecl struct {
	DecimalSeparator string   `yaml:"decimal_separator,omitempty"`
	BooleanTrue      []string `yaml:"boolean_true,omitempty"`
	BooleanFalse     []string `yaml:"boolean_false,omitempty"`
	DateFormats      []string `yaml:"date_formats,omitempty"`
	TimeFormats      []string `yaml:"time_formats,omitempty"`
	DateTimeFormats  []string `yaml:"datetime_formats,omitempty"`
}

// FieldDecl is one entry of the fields mapping, in document order.
type FieldDecl struct {
	Name string
	Kind string
}

// Parse decodes a YAML document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// FieldDecls returns the declared fields in document order. Fields are a YAML
// mapping so the order is taken from the node, not from a Go map.
func (d SchemaDecl) FieldDecls() ([]FieldDecl, error) {
	if d.Fields.Kind == 0 {
		return nil, nil
	}
	if d.Fields.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schemafile: %s: fields must be a mapping (line %d)", d.Name, d.Fields.Line)
	}
	out := make([]FieldDecl, 0, len(d.Fields.Content)/2)
	for i := 0; i+1 < len(d.Fields.Content); i += 2 {
		k, v := d.Fields.Content[i], d.Fields.Content[i+1]
		out = append(out, FieldDecl{Name: k.Value, Kind: v.Value})
	}
	return out, nil
}

// Catalog builds the catalog the file declares. Declaration errors are
// reported as itemgraph.CodeConfiguration issues pointing into the document.
func (f *File) Catalog() (*itemgraph.Catalog, error) {
	builders := make([]*itemgraph.SchemaBuilder, 0, len(f.Schemas))
	var iss itemgraph.Issues
	for i, d := range f.Schemas {
		b, errs := d.builder(fmt.Sprintf("/schemas/%d", i))
		iss = itemgraph.AppendIssues(iss, errs...)
		builders = append(builders, b)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return itemgraph.NewCatalog(builders...)
}

func configIssue(path string, err error) itemgraph.Issue {
	return itemgraph.Issue{Path: path, Code: itemgraph.CodeConfiguration, Message: err.Error(), Cause: err}
}

func (d SchemaDecl) builder(at string) (*itemgraph.SchemaBuilder, []itemgraph.Issue) {
	b := itemgraph.Define(d.Name)
	var errs []itemgraph.Issue
	fields, err := d.FieldDecls()
	if err != nil {
		errs = append(errs, configIssue(at+"/fields", err))
	}
	for _, fd := range fields {
		k, err := itemgraph.ParseFieldKind(fd.Kind)
		if err != nil {
			errs = append(errs, configIssue(at+"/fields/"+fd.Name, fmt.Errorf("schemafile: %s.%s: %w", d.Name, fd.Name, err)))
			continue
		}
		b.Field(fd.Name, k)
	}
	for i, r := range d.Relations {
		t, err := itemgraph.ParseRelationType(r.Type)
		if err != nil {
			errs = append(errs, configIssue(fmt.Sprintf("%s/relations/%d", at, i), fmt.Errorf("schemafile: %s.%s: %w", d.Name, r.Name, err)))
			continue
		}
		b.Relation(r.Name, t, r.Target, r.Reverse)
	}
	for _, name := range sortedNames(d.Aliases) {
		b.Alias(name, d.Aliases[name])
	}
	if c := d.Conversions; c != nil {
		b.Conversions(itemgraph.Conversions{
			DecimalSeparator: c.DecimalSeparator,
			BooleanTrue:      c.BooleanTrue,
			BooleanFalse:     c.BooleanFalse,
			DateFormats:      c.DateFormats,
			TimeFormats:      c.TimeFormats,
			DateTimeFormats:  c.DateTimeFormats,
		})
	}
	for _, key := range sortedNames(d.Defaults) {
		b.Default(key, itemgraph.Literal(d.Defaults[key]))
	}
	b.Nullables(d.Nullables...)
	b.RemoveNullFields(d.RemoveNullFields...)
	if d.IDField != "" {
		b.IDField(d.IDField)
	}
	b.GetOnlyMode(d.GetOnlyMode)
	b.UpdateOnlyMode(d.UpdateOnlyMode)
	return b, errs
}

func sortedNames[V any](m map[string]V) []string {
	var names []string
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
