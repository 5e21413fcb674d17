package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extractos/internal/domain"
	"extractos/internal/schema"
)

func mustCompile(t *testing.T, def domain.SchemaDefinition) *schema.Compiled {
	t.Helper()
	compiled, err := schema.Compile(def)
	require.NoError(t, err)
	return compiled
}

func TestJSONSchema_Shape(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"vendor":   {Type: "string", Description: "Vendor name"},
		"total":    {Type: "float"},
		"currency": {Type: "string", Default: rawDefault(t, "USD")},
	})

	js := compiled.JSONSchema()
	assert.Equal(t, "object", js["type"])

	props := js["properties"].(map[string]any)
	require.Len(t, props, 3)
	vendor := props["vendor"].(map[string]any)
	assert.Equal(t, "string", vendor["type"])
	assert.Equal(t, "Vendor name", vendor["description"])

	// only fields without defaults are required
	assert.ElementsMatch(t, []string{"total", "vendor"}, js["required"])
}

func TestCoerce_DropsUndeclaredFields(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"vendor": {Type: "string"},
	})

	rec, err := compiled.Coerce(map[string]any{
		"vendor":     "Acme Corp",
		"hallucined": "should not survive",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Record{"vendor": "Acme Corp"}, rec)
}

func TestCoerce_MissingRequiredField(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"vendor": {Type: "string"},
		"total":  {Type: "float"},
	})

	_, err := compiled.Coerce(map[string]any{"vendor": "Acme Corp"})
	require.Error(t, err)

	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "total", valErr.Field)
}

func TestCoerce_FillsDefaults(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"vendor":   {Type: "string"},
		"currency": {Type: "string", Default: rawDefault(t, "USD")},
		"notes":    {Type: "string", Default: rawDefault(t, nil)},
	})

	rec, err := compiled.Coerce(map[string]any{"vendor": "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "USD", rec["currency"])
	assert.Nil(t, rec["notes"])
}

func TestCoerce_NumericStringForNumberField(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"total": {Type: "float"},
		"count": {Type: "int"},
	})

	rec, err := compiled.Coerce(map[string]any{
		"total": "1234.56",
		"count": "42",
	})
	require.NoError(t, err)
	assert.Equal(t, 1234.56, rec["total"])
	assert.Equal(t, 42.0, rec["count"])
}

func TestCoerce_StringifiedBoolean(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"paid": {Type: "bool"},
	})

	rec, err := compiled.Coerce(map[string]any{"paid": "true"})
	require.NoError(t, err)
	assert.Equal(t, true, rec["paid"])
}

func TestCoerce_NumberForStringField(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"invoice_number": {Type: "string"},
	})

	rec, err := compiled.Coerce(map[string]any{"invoice_number": 10045.0})
	require.NoError(t, err)
	assert.Equal(t, "10045", rec["invoice_number"])
}

func TestCoerce_UncoercibleTypeMismatch(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"total": {Type: "float"},
	})

	_, err := compiled.Coerce(map[string]any{"total": "not a number"})
	require.Error(t, err)

	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "total", valErr.Field)
}

func TestCoerce_NonIntegerForIntegerField(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"count": {Type: "int"},
	})

	_, err := compiled.Coerce(map[string]any{"count": 41.5})
	require.Error(t, err)

	var valErr *schema.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestCoerce_NestedObject(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"seller": {
			Properties: map[string]domain.FieldSpec{
				"name": {Type: "string"},
				"city": {Type: "string", Default: rawDefault(t, "unknown")},
			},
		},
	})

	rec, err := compiled.Coerce(map[string]any{
		"seller": map[string]any{"name": "Acme Corp"},
	})
	require.NoError(t, err)

	seller := rec["seller"].(map[string]any)
	assert.Equal(t, "Acme Corp", seller["name"])
	assert.Equal(t, "unknown", seller["city"])
}

func TestCoerce_NestedMissingRequired(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"seller": {
			Properties: map[string]domain.FieldSpec{
				"name": {Type: "string"},
			},
		},
	})

	_, err := compiled.Coerce(map[string]any{
		"seller": map[string]any{},
	})
	require.Error(t, err)

	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "seller.name", valErr.Field)
}

func TestCoerce_NestedNotAnObject(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"seller": {
			Properties: map[string]domain.FieldSpec{
				"name": {Type: "string"},
			},
		},
	})

	_, err := compiled.Coerce(map[string]any{"seller": "Acme Corp"})
	require.Error(t, err)

	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "seller", valErr.Field)
}

func TestCoerce_AnyFieldAcceptsAnything(t *testing.T) {
	compiled := mustCompile(t, domain.SchemaDefinition{
		"extra": {},
	})

	rec, err := compiled.Coerce(map[string]any{
		"extra": []any{"a", 1.0, true},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", 1.0, true}, rec["extra"])
}
