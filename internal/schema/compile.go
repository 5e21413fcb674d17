// Package schema compiles a user-supplied, JSON-like field schema into a typed
// validator able to coerce raw model output into structured values. Nested
// object fields are supported exactly one level deep: a nested field's own
// "properties" are ignored, matching the behavior callers already rely on.
package schema

import (
	"encoding/json"
	"sort"
	"strings"

	"extractos/internal/domain"
)

// FieldType is the tagged variant over the supported field shapes.
type FieldType int

const (
	TypeAny FieldType = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeList
	TypeMap
	TypeObject
)

// Field is one compiled schema field.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
	Default     any
	Nested      []Field // populated when Type == TypeObject
}

// Compiled is a validator/coercer for one schema definition. Fields are held
// in sorted name order so prompts and generated schemas are deterministic.
type Compiled struct {
	Fields []Field
}

// Parse unmarshals a raw schema_definition JSON object. Malformed input (not a
// mapping from field name to field spec) fails with a CompilationError.
func Parse(raw []byte) (domain.SchemaDefinition, error) {
	var def domain.SchemaDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, &CompilationError{Reason: "schema_definition must be a JSON object of field specs: " + err.Error()}
	}
	return def, nil
}

// Compile builds a Compiled validator from a schema definition.
func Compile(def domain.SchemaDefinition) (*Compiled, error) {
	if def == nil {
		return nil, &CompilationError{Reason: "schema definition is empty"}
	}

	names := make([]string, 0, len(def))
	for name := range def {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		spec := def[name]
		f, err := compileField(name, spec, true)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return &Compiled{Fields: fields}, nil
}

func compileField(name string, spec domain.FieldSpec, allowNested bool) (Field, error) {
	f := Field{
		Name:        name,
		Description: spec.Description,
		Required:    spec.Default == nil,
	}

	if spec.Default != nil {
		var v any
		if err := json.Unmarshal(*spec.Default, &v); err != nil {
			return Field{}, &CompilationError{Field: name, Reason: "invalid default value: " + err.Error()}
		}
		f.Default = v
	}

	if allowNested && len(spec.Properties) > 0 {
		f.Type = TypeObject
		nestedNames := make([]string, 0, len(spec.Properties))
		for n := range spec.Properties {
			nestedNames = append(nestedNames, n)
		}
		sort.Strings(nestedNames)
		for _, n := range nestedNames {
			nf, err := compileField(n, spec.Properties[n], false)
			if err != nil {
				return Field{}, err
			}
			f.Nested = append(f.Nested, nf)
		}
		return f, nil
	}

	f.Type = parseFieldType(spec.Type)
	return f, nil
}

// parseFieldType maps a declared type string to a FieldType. Unrecognized or
// absent type strings accept anything.
func parseFieldType(s string) FieldType {
	switch strings.ToLower(s) {
	case "string", "str":
		return TypeString
	case "int", "integer":
		return TypeInteger
	case "float", "number":
		return TypeFloat
	case "bool", "boolean":
		return TypeBoolean
	case "list", "array":
		return TypeList
	case "dict", "object":
		return TypeMap
	default:
		return TypeAny
	}
}
