package robustness

import (
	"fmt"
	"regexp"

	sg "github.com/reoring/schemaguard"
	"github.com/reoring/schemaguard/i18n"
)

var snakeCase = regexp.MustCompile(`^[$a-z]+[a-z0-9_]*$`)

// IsSnakeCase reports whether a property name follows the naming convention.
func IsSnakeCase(name string) bool { return snakeCase.MatchString(name) }

// AssertSnakeCase fails on the first property name, at any depth and inside
// allOf members, that is not snake_case.
func AssertSnakeCase(node any) error {
	return assertSnakeCase(node, sg.Root())
}

func assertSnakeCase(node any, path sg.PathRef) error {
	for _, member := range sg.AllOf(node) {
		if err := assertSnakeCase(member, path); err != nil {
			return err
		}
	}
	props := sg.Properties(node)
	for _, name := range sg.SortedKeys(props) {
		propPath := path.Field("properties").Field(name)
		if !IsSnakeCase(name) {
			return sg.Fail(sg.Assertion(propPath, sg.CodeNamingConvention,
				map[string]string{"property": fmt.Sprintf("%q", name)}, snakeCase.String(), name))
		}
		if err := assertSnakeCase(props[name], propPath); err != nil {
			return err
		}
	}
	return nil
}

// AssertMonomorphTypes fails when a node declares a list of types, or when a
// declared property has no type. It descends into properties and allOf.
func AssertMonomorphTypes(node any) error {
	return assertMonomorphTypes(node, sg.Root())
}

func assertMonomorphTypes(node any, path sg.PathRef) error {
	if m, ok := sg.Object(node); ok {
		if types, isList := m["type"].([]any); isList {
			return sg.Fail(sg.Assertion(path, sg.CodePolymorphicType, nil, "a single type", types))
		}
	}
	props := sg.Properties(node)
	for _, name := range sg.SortedKeys(props) {
		propPath := path.Field("properties").Field(name)
		if !hasType(props[name]) {
			return sg.Fail(sg.Assertion(propPath, sg.CodeMissingType, nil, "a type", nil))
		}
		if err := assertMonomorphTypes(props[name], propPath); err != nil {
			return err
		}
	}
	for _, member := range sg.AllOf(node) {
		if err := assertMonomorphTypes(member, path); err != nil {
			return err
		}
	}
	return nil
}

// hasType treats a missing, null, false or empty type as absent.
func hasType(prop any) bool {
	m, ok := sg.Object(prop)
	if !ok {
		return false
	}
	switch t := m["type"].(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	default:
		return true
	}
}

// AssertRequired fails when a node declares `required` without a non-empty
// `properties` mapping, or lists a name that `properties` does not declare.
// Nested properties are always visited.
func AssertRequired(node any) error {
	return assertRequired(node, sg.Root())
}

func assertRequired(node any, path sg.PathRef) error {
	m, _ := sg.Object(node)
	props := sg.Properties(node)
	if required, declared := m["required"]; declared && required != nil {
		if len(props) == 0 {
			it := sg.Assertion(path.Field("properties"), sg.CodeRequiredPropertyUndeclared, nil,
				"a non-empty properties mapping", m["properties"])
			it.Message = i18n.T("properties_missing", nil)
			return sg.Fail(it)
		}
		names, _ := sg.StringList(required)
		for _, name := range names {
			if _, ok := props[name]; !ok {
				return sg.Fail(sg.Assertion(path.Field("properties").Field(name), sg.CodeRequiredPropertyUndeclared,
					map[string]string{"property": fmt.Sprintf("%q", name)}, name, sg.SortedKeys(props)))
			}
		}
	}
	for _, name := range sg.SortedKeys(props) {
		if err := assertRequired(props[name], path.Field("properties").Field(name)); err != nil {
			return err
		}
	}
	return nil
}
