package compat

import (
	"fmt"
	"strings"

	sg "github.com/reoring/schemaguard"
)

// AllowedChangeFields lists the fields that may differ freely between versions.
var AllowedChangeFields = []string{"$id", "description", "examples"}

// Checker compares schema versions. The zero value is not usable; build one
// with New.
type Checker struct {
	allowed         map[string]struct{}
	removedBreaking bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithRemovedFieldsBreaking reports keys (and list entries) that the old schema
// declares but the new one dropped. By default such removals are tolerated and
// only fields present in both versions are compared.
func WithRemovedFieldsBreaking() Option {
	return func(c *Checker) { c.removedBreaking = true }
}

// WithAllowedChanges adds field names that may differ between versions.
func WithAllowedChanges(fields ...string) Option {
	return func(c *Checker) {
		for _, f := range fields {
			c.allowed[f] = struct{}{}
		}
	}
}

// New returns a Checker with AllowedChangeFields exempt from comparison.
func New(opts ...Option) *Checker {
	c := &Checker{allowed: make(map[string]struct{}, len(AllowedChangeFields))}
	for _, f := range AllowedChangeFields {
		c.allowed[f] = struct{}{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var defaultChecker = New()

// IsCompatible fails when oldSchema cannot be safely replaced by newSchema.
func IsCompatible(newSchema, oldSchema any) error {
	return defaultChecker.IsCompatible(newSchema, oldSchema)
}

// IsCompatible fails when oldSchema cannot be safely replaced by newSchema.
func (c *Checker) IsCompatible(newSchema, oldSchema any) error {
	return c.isCompatible(newSchema, oldSchema, sg.Root())
}

func (c *Checker) isAllowedToChange(field string) bool {
	_, ok := c.allowed[field]
	return ok
}

func (c *Checker) isCompatible(newSchema, oldSchema any, path sg.PathRef) error {
	oldKind, newKind := sg.KindOf(oldSchema), sg.KindOf(newSchema)
	if oldKind != newKind {
		return sg.Fail(sg.Assertion(path, sg.CodeShapeMismatch,
			map[string]string{"path": path.Fragment()}, oldSchema, newSchema))
	}

	switch oldKind {
	case sg.KindObject:
		return c.objectCompatible(newSchema.(map[string]any), oldSchema.(map[string]any), path)
	case sg.KindArray:
		return c.arrayCompatible(newSchema.([]any), oldSchema.([]any), path)
	default:
		if !sg.ScalarEqual(newSchema, oldSchema) {
			return sg.Fail(sg.Assertion(path, sg.CodeValueChanged,
				map[string]string{"path": path.Fragment()}, oldSchema, newSchema))
		}
		return nil
	}
}

func (c *Checker) objectCompatible(newSchema, oldSchema map[string]any, path sg.PathRef) error {
	for _, key := range sg.SortedKeys(oldSchema) {
		if c.isAllowedToChange(key) {
			continue
		}
		keyPath := path.Field(key)
		oldValue := oldSchema[key]
		newValue, present := newSchema[key]

		if key == "required" {
			if _, isList := oldValue.([]any); isList {
				if err := IsRequiredCompatible(newValue, oldValue, keyPath); err != nil {
					return err
				}
				continue
			}
		}

		if !present {
			if c.removedBreaking {
				return sg.Fail(sg.Assertion(keyPath, sg.CodeFieldRemoved,
					map[string]string{"field": key, "path": path.Fragment()}, oldValue, nil))
			}
			continue
		}
		if err := c.isCompatible(newValue, oldValue, keyPath); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) arrayCompatible(newSchema, oldSchema []any, path sg.PathRef) error {
	for i, oldValue := range oldSchema {
		itemPath := path.Index(i)
		if i >= len(newSchema) {
			if c.removedBreaking {
				return sg.Fail(sg.Assertion(itemPath, sg.CodeFieldRemoved,
					map[string]string{"field": fmt.Sprint(i), "path": path.Fragment()}, oldValue, nil))
			}
			continue
		}
		if err := c.isCompatible(newSchema[i], oldValue, itemPath); err != nil {
			return err
		}
	}
	return nil
}

// IsRequiredCompatible fails when a name listed in oldRequired is missing from
// newRequired. Names may be added freely. A missing or malformed newRequired
// counts as an empty list.
func IsRequiredCompatible(newRequired, oldRequired any, path sg.PathRef) error {
	oldNames, _ := sg.StringList(oldRequired)
	newNames, _ := sg.StringList(newRequired)
	if newNames == nil {
		newNames = []string{}
	}

	present := make(map[string]struct{}, len(newNames))
	for _, n := range newNames {
		present[n] = struct{}{}
	}
	var removed []string
	for _, n := range oldNames {
		if _, ok := present[n]; !ok {
			removed = append(removed, n)
		}
	}
	if len(removed) == 0 {
		return nil
	}

	quoted := make([]string, len(removed))
	for i, n := range removed {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	it := sg.Assertion(path, sg.CodeRequiredPropertyRemoved,
		map[string]string{"property": strings.Join(quoted, ", "), "path": path.Fragment()},
		oldNames, newNames)
	it.Params = map[string]any{"property": removed[0], "removed": removed}
	return sg.Fail(it)
}
