package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"extractos/internal/domain"
)

// JSONSchema renders the compiled schema as a JSON-Schema document (generic
// map form). It is sent to the model alongside the prompt and used locally to
// validate the structured response.
func (c *Compiled) JSONSchema() map[string]any {
	props := map[string]any{}
	var required []string
	for _, f := range c.Fields {
		props[f.Name] = fieldJSONSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func fieldJSONSchema(f Field) map[string]any {
	s := map[string]any{}
	switch f.Type {
	case TypeString:
		s["type"] = "string"
	case TypeInteger:
		s["type"] = "integer"
	case TypeFloat:
		s["type"] = "number"
	case TypeBoolean:
		s["type"] = "boolean"
	case TypeList:
		s["type"] = "array"
	case TypeMap:
		s["type"] = "object"
	case TypeObject:
		nested := &Compiled{Fields: f.Nested}
		s = nested.JSONSchema()
	case TypeAny:
		// empty schema accepts anything
	}
	if f.Description != "" {
		s["description"] = f.Description
	}
	return s
}

// Coerce validates a raw JSON-like mapping against the schema and returns a
// record holding the declared fields only, with defaults filled in for absent
// optional fields. Missing required fields and un-coercible type mismatches
// fail with a ValidationError naming the offending field.
func (c *Compiled) Coerce(raw map[string]any) (domain.Record, error) {
	out := domain.Record{}
	// payload holds only values that were actually present, post-coercion;
	// user-supplied defaults are not re-validated.
	payload := map[string]any{}

	for _, f := range c.Fields {
		v, ok := raw[f.Name]
		if !ok {
			if f.Required {
				return nil, &ValidationError{Field: f.Name, Reason: "missing required field"}
			}
			out[f.Name] = f.Default
			continue
		}
		val, pay, err := coerceField(f, v)
		if err != nil {
			return nil, err
		}
		out[f.Name] = val
		payload[f.Name] = pay
	}

	if err := validateAgainst(c.JSONSchema(), payload); err != nil {
		return nil, err
	}
	return out, nil
}

func coerceField(f Field, v any) (val any, payload any, err error) {
	if f.Type != TypeObject {
		cv := coerceScalar(f.Type, v)
		return cv, cv, nil
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil, &ValidationError{Field: f.Name, Reason: "expected a nested object"}
	}
	outVal := map[string]any{}
	outPay := map[string]any{}
	for _, nf := range f.Nested {
		nv, ok := m[nf.Name]
		if !ok {
			if nf.Required {
				return nil, nil, &ValidationError{Field: f.Name + "." + nf.Name, Reason: "missing required field"}
			}
			outVal[nf.Name] = nf.Default
			continue
		}
		cv := coerceScalar(nf.Type, nv)
		outVal[nf.Name] = cv
		outPay[nf.Name] = cv
	}
	return outVal, outPay, nil
}

// coerceScalar converts commonly confused representations (numeric strings,
// stringified booleans, numbers for string fields) toward the declared type.
// Values that cannot be coerced are returned as-is for the validator to reject.
func coerceScalar(t FieldType, v any) any {
	switch t {
	case TypeInteger, TypeFloat:
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
		}
	case TypeBoolean:
		if s, ok := v.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
	case TypeString:
		switch n := v.(type) {
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(n)
		}
	}
	return v
}

// validateAgainst validates "payload" against "schemaMap" using jsonschema.
func validateAgainst(schemaMap map[string]any, payload map[string]any) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return &CompilationError{Reason: "add schema: " + err.Error()}
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return &CompilationError{Reason: "compile schema: " + err.Error()}
	}

	// Round-trip to plain JSON types so the validator sees what a client would.
	pb, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	var instance any
	if err := json.Unmarshal(pb, &instance); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := compiled.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			field := strings.ReplaceAll(strings.TrimPrefix(leaf.InstanceLocation, "/"), "/", ".")
			return &ValidationError{Field: field, Reason: leaf.Message}
		}
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}
