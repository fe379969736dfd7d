// Package validation checks JSON request bodies against JSON Schemas and
// reports problems keyed by field name.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/qri-io/jsonschema"
)

// Messages used for the field-keyed error body.
const (
	MsgRequired     = "Missing data for required field."
	MsgInvalidInput = "Invalid input type."
	MsgTaken        = "Username already exists."

	// SchemaKey collects errors that do not belong to a single field.
	SchemaKey = "_schema"
)

// Error maps field names to the problems found with them. It marshals to the
// bare map, e.g. {"title": ["Missing data for required field."]}.
type Error struct {
	Fields map[string][]string
}

// FieldError builds an Error holding a single message for field.
func FieldError(field, msg string) *Error {
	return &Error{Fields: map[string][]string{field: {msg}}}
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields)
}

func (e *Error) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	for _, m := range e.Fields[field] {
		if m == msg {
			return
		}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Schema is a compiled JSON Schema together with its top-level required keys.
type Schema struct {
	schema   *jsonschema.Schema
	required []string
}

// MustCompile builds a Schema from its JSON source and panics on bad input.
func MustCompile(src string) *Schema {
	var head struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal([]byte(src), &head); err != nil {
		panic(fmt.Sprintf("validation: bad schema: %v", err))
	}
	return &Schema{schema: jsonschema.Must(src), required: head.Required}
}

// Validate returns nil when body satisfies the schema and an *Error otherwise.
func (s *Schema) Validate(ctx context.Context, body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return FieldError(SchemaKey, MsgInvalidInput)
	}
	obj, isObject := doc.(map[string]any)

	keyErrs, err := s.schema.ValidateBytes(ctx, body)
	if err != nil {
		return FieldError(SchemaKey, MsgInvalidInput)
	}
	if len(keyErrs) == 0 {
		return nil
	}

	verr := &Error{}
	for _, ke := range keyErrs {
		field := fieldOf(ke.PropertyPath)
		if field != "" {
			if _, present := obj[field]; isObject && !present {
				verr.add(field, MsgRequired)
			} else {
				verr.add(field, ke.Message)
			}
			continue
		}

		// root level failures are either missing required keys or a non-object body
		missing := false
		if isObject {
			for _, k := range s.required {
				if _, ok := obj[k]; !ok {
					verr.add(k, MsgRequired)
					missing = true
				}
			}
		}
		if !missing {
			if isObject {
				verr.add(SchemaKey, ke.Message)
			} else {
				verr.add(SchemaKey, MsgInvalidInput)
			}
		}
	}

	return verr
}

// fieldOf returns the top-level property named by a JSON pointer, or "" for
// the document root.
func fieldOf(pointer string) string {
	p := strings.TrimPrefix(pointer, "#")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(p)
}

// IsEmpty reports whether body carries no input: nothing at all, or a JSON
// value that is null, false, zero, or an empty string, array or object.
func IsEmpty(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return true
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return false
	}

	switch v := doc.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
