package suite

import (
	"fmt"
	"sort"

	"golang.org/x/mod/semver"

	sg "github.com/reoring/schemaguard"
	"github.com/reoring/schemaguard/compat"
	"github.com/reoring/schemaguard/registry"
	"github.com/reoring/schemaguard/robustness"
	"github.com/reoring/schemaguard/validator"
)

// Check names used by DeclareRobustness.
const (
	CheckValidSchema     = "must be valid JSON-Schema"
	CheckSecureSchema    = "must be a secure JSON-Schema"
	CheckSnakeCase       = "must use snake_case"
	CheckMonomorphTypes  = "must only have monomorphic types"
	CheckRequiredExist   = "all required properties must exist"
	CheckExamplesMatchID = "examples must validate against schema and have $schema == $id"
)

// DeclareCompatibility declares one check per adjacent pair of materialized
// primary versions, grouped by title and major version. Majors with fewer
// than two such versions get no group.
func DeclareCompatibility(reg *registry.Registry, opts ...compat.Option) (*Group, error) {
	cfg := reg.Config()
	grouped, err := reg.FindSchemasByTitleAndMajor()
	if err != nil {
		return nil, err
	}
	checker := compat.New(opts...)
	primary := cfg.PrimaryContentType()

	root := NewGroup(fmt.Sprintf("Schema Compatibility in Repository %s", cfg.SchemaBasePath))
	for _, title := range sortedKeys(grouped) {
		majors := grouped[title]
		root.Describe(title, func(g *Group) {
			for _, major := range sortedMajors(majors) {
				pairs := compat.AdjacentPairs(majors[major], primary)
				if len(pairs) == 0 {
					continue
				}
				g.Describe("Major Version "+major, func(g *Group) {
					for _, p := range pairs {
						g.It(p.Name(), func() error { return checker.CheckPair(p) })
					}
				})
			}
		})
	}
	return root, nil
}

// DeclareRobustness declares the lint and metaschema checks for every schema
// of the repository. Requiredness and examples are only checked on
// materialized versions.
func DeclareRobustness(reg *registry.Registry, v *validator.Validator, cache robustness.ExampleCache) (*Group, error) {
	cfg := reg.Config()
	byTitle, err := reg.FindSchemasByTitle()
	if err != nil {
		return nil, err
	}

	root := NewGroup(fmt.Sprintf("Schema Robustness in Repository %s", cfg.SchemaBasePath))
	for _, title := range sortedKeys(byTitle) {
		root.Describe(title, func(g *Group) {
			for _, sv := range byTitle[title] {
				g.Describe(sv.Name(), func(g *Group) { declareSchemaChecks(g, sv, v, cache) })
			}
		})
	}
	return root, nil
}

func declareSchemaChecks(g *Group, sv sg.SchemaVersion, v *validator.Validator, cache robustness.ExampleCache) {
	schema := sv.Schema
	g.It(CheckValidSchema, func() error { return v.ValidateSchema(schema) })
	g.It(CheckSecureSchema, func() error { return v.ValidateSecure(schema) })
	g.It(CheckSnakeCase, func() error { return robustness.AssertSnakeCase(schema) })
	g.It(CheckMonomorphTypes, func() error { return robustness.AssertMonomorphTypes(schema) })
	if sv.Current {
		return
	}
	g.It(CheckRequiredExist, func() error { return robustness.AssertRequired(schema) })
	if sv.HasExamples() {
		g.It(CheckExamplesMatchID, func() error { return robustness.CheckExamples(schema, cache) })
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedMajors orders major version keys numerically.
func sortedMajors(m map[string][]sg.SchemaVersion) []string {
	keys := sortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return semver.Compare("v"+keys[i], "v"+keys[j]) < 0
	})
	return keys
}
