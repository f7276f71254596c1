package robustness

import (
	"fmt"
	"strconv"

	sg "github.com/reoring/schemaguard"
	"github.com/reoring/schemaguard/validator"
)

// ExampleCache is the schema-by-$id cache examples are validated through.
// Registering an $id that is still cached fails, so every registration is
// paired with an eviction.
type ExampleCache interface {
	Register(id string, schema map[string]any) error
	Validate(id string, instance any) error
	Evict(id string)
}

// CheckExamples validates every entry of schema's `examples` against the
// schema itself and requires each example's $schema to equal the schema's $id.
// A schema without examples passes.
//
// The schema is registered in cache for each example and evicted right after,
// whatever the outcome, so the same $id can be checked again for another
// content type.
func CheckExamples(schema map[string]any, cache ExampleCache) error {
	raw, ok := schema["examples"]
	if !ok {
		return nil
	}
	examples, _ := raw.([]any)
	id, _ := schema["$id"].(string)
	for i, example := range examples {
		if err := checkExample(schema, id, i, example, cache); err != nil {
			return err
		}
	}
	return nil
}

func checkExample(schema map[string]any, id string, i int, example any, cache ExampleCache) error {
	path := sg.Root().Field("examples").Index(i)
	if err := cache.Register(id, schema); err != nil {
		it := sg.Assertion(path, sg.CodeExampleInvalid,
			map[string]string{"index": strconv.Itoa(i)}, sg.Issues{}, validator.Flatten(err))
		it.Params = map[string]any{"stage": "register", "id": id}
		it.Cause = fmt.Errorf("robustness: register schema %q: %w", id, err)
		return sg.Fail(it)
	}
	defer cache.Evict(id)

	if err := cache.Validate(id, example); err != nil {
		it := sg.Assertion(path, sg.CodeExampleInvalid,
			map[string]string{"index": strconv.Itoa(i)}, sg.Issues{}, validator.Flatten(err))
		it.Cause = err
		return sg.Fail(it)
	}

	declared, _ := sg.Object(example)
	if !sg.ScalarEqual(declared["$schema"], schema["$id"]) {
		return sg.Fail(sg.Assertion(path.Field("$schema"), sg.CodeExampleSchemaMismatch, nil,
			schema["$id"], declared["$schema"]))
	}
	return nil
}
