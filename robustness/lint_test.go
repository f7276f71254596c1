package robustness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sg "github.com/reoring/schemaguard"
	"github.com/reoring/schemaguard/robustness"
)

func obj(props map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": props}
}

func str() map[string]any { return map[string]any{"type": "string"} }

func TestIsSnakeCase(t *testing.T) {
	for _, name := range []string{"foo_bar", "$ref", "$schema", "a1", "dt"} {
		assert.True(t, robustness.IsSnakeCase(name), name)
	}
	for _, name := range []string{"fooBar", "Foo_bar", "_foo", "1abc", "foo-bar", ""} {
		assert.False(t, robustness.IsSnakeCase(name), name)
	}
}

func TestAssertSnakeCase(t *testing.T) {
	good := obj(map[string]any{
		"$schema": str(),
		"meta":    obj(map[string]any{"request_id": str()}),
	})
	assert.NoError(t, robustness.AssertSnakeCase(good))

	nested := obj(map[string]any{
		"meta": obj(map[string]any{"requestId": str()}),
	})
	err := robustness.AssertSnakeCase(nested)
	require.True(t, sg.HasCode(err, sg.CodeNamingConvention), "got %v", err)
	assert.Equal(t, "#/properties/meta/properties/requestId", err.(sg.Issues).First().Path)
	assert.Contains(t, err.(sg.Issues).First().Message, `"requestId"`)
}

func TestAssertSnakeCase_AllOfSharesPath(t *testing.T) {
	schema := map[string]any{
		"allOf": []any{
			obj(map[string]any{"ok_name": str()}),
			obj(map[string]any{"Foo_bar": str()}),
		},
	}
	err := robustness.AssertSnakeCase(schema)
	require.True(t, sg.HasCode(err, sg.CodeNamingConvention))
	assert.Equal(t, "#/properties/Foo_bar", err.(sg.Issues).First().Path)
}

func TestAssertMonomorphTypes(t *testing.T) {
	assert.NoError(t, robustness.AssertMonomorphTypes(obj(map[string]any{"a": str()})))

	root := map[string]any{"type": []any{"string", "null"}}
	err := robustness.AssertMonomorphTypes(root)
	require.True(t, sg.HasCode(err, sg.CodePolymorphicType))
	assert.Equal(t, "#", err.(sg.Issues).First().Path)
}

func TestAssertMonomorphTypes_PolymorphicAtAnyDepth(t *testing.T) {
	deep := obj(map[string]any{
		"a": obj(map[string]any{
			"b": obj(map[string]any{
				"c": map[string]any{"type": []any{"string", "null"}},
			}),
		}),
	})
	err := robustness.AssertMonomorphTypes(deep)
	require.True(t, sg.HasCode(err, sg.CodePolymorphicType), "got %v", err)
	assert.Equal(t, "#/properties/a/properties/b/properties/c", err.(sg.Issues).First().Path)

	inAllOf := map[string]any{
		"allOf": []any{obj(map[string]any{"x": map[string]any{"type": []any{"integer", "string"}}})},
	}
	assert.True(t, sg.HasCode(robustness.AssertMonomorphTypes(inAllOf), sg.CodePolymorphicType))
}

func TestAssertMonomorphTypes_MissingType(t *testing.T) {
	cases := map[string]any{
		"no type":     map[string]any{"description": "untyped"},
		"empty type":  map[string]any{"type": ""},
		"bool schema": true,
		"null type":   map[string]any{"type": nil},
	}
	for name, prop := range cases {
		t.Run(name, func(t *testing.T) {
			err := robustness.AssertMonomorphTypes(obj(map[string]any{"untyped": prop}))
			require.True(t, sg.HasCode(err, sg.CodeMissingType), "got %v", err)
			assert.Equal(t, "#/properties/untyped", err.(sg.Issues).First().Path)
		})
	}
}

func TestAssertRequired(t *testing.T) {
	ok := obj(map[string]any{"id": str(), "dt": str()})
	ok["required"] = []any{"id"}
	assert.NoError(t, robustness.AssertRequired(ok))

	missing := obj(map[string]any{"id": str()})
	missing["required"] = []any{"x"}
	err := robustness.AssertRequired(missing)
	require.True(t, sg.HasCode(err, sg.CodeRequiredPropertyUndeclared), "got %v", err)
	assert.Equal(t, "#/properties/x", err.(sg.Issues).First().Path)
}

func TestAssertRequired_WithoutProperties(t *testing.T) {
	schema := map[string]any{"type": "object", "required": []any{"x"}}
	err := robustness.AssertRequired(schema)
	require.True(t, sg.HasCode(err, sg.CodeRequiredPropertyUndeclared))
	assert.Equal(t, "#/properties", err.(sg.Issues).First().Path)

	schema["properties"] = map[string]any{}
	assert.True(t, sg.HasCode(robustness.AssertRequired(schema), sg.CodeRequiredPropertyUndeclared))
}

func TestAssertRequired_DescendsWithoutOwnRequired(t *testing.T) {
	inner := obj(map[string]any{"a": str()})
	inner["required"] = []any{"b"}
	schema := obj(map[string]any{"meta": inner})

	err := robustness.AssertRequired(schema)
	require.True(t, sg.HasCode(err, sg.CodeRequiredPropertyUndeclared))
	assert.Equal(t, "#/properties/meta/properties/b", err.(sg.Issues).First().Path)
}
