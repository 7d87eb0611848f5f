package itemgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	// CodeConstruction: unknown or unsupported name given to a schema, or a
	// value of the wrong shape for a relation.
	CodeConstruction = "construction"
	// CodeInvalidType: a field conversion received a Go type it cannot convert.
	CodeInvalidType = "invalid_type"
	// CodeInvalidFormat: no declared format matches a raw string.
	CodeInvalidFormat = "invalid_format"
	// CodeConflict: resolution gives one child two different parents.
	CodeConflict = "conflict"
	// CodeConfiguration: duplicate, missing or inconsistent schema declaration.
	CodeConfiguration = "configuration"
	// CodeInvalidReference: malformed mapping or an id that is never defined.
	CodeInvalidReference = "invalid_reference"
)

// Issue is a single error entry.
type Issue struct {
	Path    string // JSON Pointer of the item path (for example: /two_1_1/f_date).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters such as the schema or the rejected
	// value.
	Params map[string]any
}

func (it Issue) Error() string {
	if it.Path == "" {
		return fmt.Sprintf("%s: %s", it.Code, it.Message)
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

func (it Issue) Unwrap() error { return it.Cause }

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].Error())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes every issue to errors.Is / errors.As.
func (iss Issues) Unwrap() []error {
	out := make([]error, len(iss))
	for i := range iss {
		out[i] = iss[i]
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}
