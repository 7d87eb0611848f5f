package itemgraph

import (
	"fmt"
	"sort"
	"strings"
)

// PathSeparator joins relation names into a path ("two_1_1__f_integer").
const PathSeparator = "__"

// PostSuffix marks a construction name that is applied after every other
// construction argument, once the sub-items it points into exist.
const PostSuffix = "__post"

// FieldKind selects the conversion applied to a field.
type FieldKind int

const (
	Raw      FieldKind = iota // No conversion.
	Binary                    // string -> []byte
	Boolean                   // words -> bool
	String                    // any -> string
	Text                      // any -> string
	Integer                   // -> int64
	Float                     // -> float64
	Decimal                   // -> decimal.Decimal
	Date                      // -> civil.Date
	Time                      // -> civil.Time
	DateTime                  // -> civil.DateTime
)

var fieldKindNames = [...]string{
	Raw: "raw", Binary: "binary", Boolean: "boolean", String: "string", Text: "text",
	Integer: "integer", Float: "float", Decimal: "decimal",
	Date: "date", Time: "time", DateTime: "datetime",
}

func (k FieldKind) String() string {
	if int(k) < len(fieldKindNames) {
		return fieldKindNames[k]
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// ParseFieldKind maps a kind name ("integer", "datetime", ...) to a FieldKind.
func ParseFieldKind(s string) (FieldKind, error) {
	for i, n := range fieldKindNames {
		if n == strings.ToLower(s) {
			return FieldKind(i), nil
		}
	}
	return Raw, fmt.Errorf("unknown field kind %q", s)
}

// RelationType is the cardinality of a relation seen from its owner.
type RelationType int

const (
	OneToOne RelationType = iota
	OneToMany
	ManyToOne
	ManyToMany
)

var relationTypeNames = [...]string{
	OneToOne: "one_to_one", OneToMany: "one_to_many",
	ManyToOne: "many_to_one", ManyToMany: "many_to_many",
}

func (t RelationType) String() string {
	if int(t) < len(relationTypeNames) {
		return relationTypeNames[t]
	}
	return fmt.Sprintf("RelationType(%d)", int(t))
}

// ParseRelationType accepts "one_to_many" as well as "one-to-many".
func ParseRelationType(s string) (RelationType, error) {
	norm := strings.ReplaceAll(strings.ToLower(s), "-", "_")
	for i, n := range relationTypeNames {
		if n == norm {
			return RelationType(i), nil
		}
	}
	return OneToOne, fmt.Errorf("unknown relation type %q", s)
}

// Reverse returns the cardinality seen from the target.
func (t RelationType) Reverse() RelationType {
	switch t {
	case OneToMany:
		return ManyToOne
	case ManyToOne:
		return OneToMany
	}
	return t
}

// ToMany reports whether the owner holds a bulk of targets.
func (t RelationType) ToMany() bool { return t == OneToMany || t == ManyToMany }

// OneToX reports whether a target may have only one owner.
func (t RelationType) OneToX() bool { return t == OneToOne || t == OneToMany }

// Values are named construction arguments. Keys are field names, relation
// names, aliases or paths joined with PathSeparator.
type Values map[string]any

func sortedKeys(vals Values) []string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DictOpt configures ToDict.
type DictOpt struct {
	// Revert renders each field through its inverse conversion while walking.
	Revert bool
}

func dictOpt(opts []DictOpt) DictOpt {
	var o DictOpt
	for _, x := range opts {
		o.Revert = o.Revert || x.Revert
	}
	return o
}

// Mapping keys of the nested dictionary form.
const (
	keyID         = "id"
	keyPK         = "pk"
	keyItem       = "item"
	keyBulk       = "bulk"
	keyDefaults   = "defaults"
	keyGetOnly    = "get_only_mode"
	keyUpdateOnly = "update_only_mode"
)
