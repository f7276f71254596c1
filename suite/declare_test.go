package suite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sg "github.com/reoring/schemaguard"
	"github.com/reoring/schemaguard/compat"
	"github.com/reoring/schemaguard/registry"
	"github.com/reoring/schemaguard/suite"
	"github.com/reoring/schemaguard/validator"
)

const fragmentV100 = `title: fragment
$id: /fragment/1.0.0
$schema: https://json-schema.org/draft-07/schema#
type: object
properties:
  id:
    type: string
    maxLength: 64
required:
  - id
examples:
  - $schema: /fragment/1.0.0
    id: abc
`

const fragmentV110 = `title: fragment
$id: /fragment/1.1.0
$schema: https://json-schema.org/draft-07/schema#
type: object
properties:
  id:
    type: string
    maxLength: 64
  note:
    type: string
    maxLength: 256
required:
  - id
examples:
  - $schema: /fragment/1.1.0
    id: abc
    note: hello
`

const fragmentV110JSON = `{
  "title": "fragment",
  "$id": "/fragment/1.1.0",
  "$schema": "https://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "id": {"type": "string", "maxLength": 64},
    "note": {"type": "string", "maxLength": 256}
  },
  "required": ["id"],
  "examples": [{"$schema": "/fragment/1.1.0", "id": "abc", "note": "hello"}]
}`

const brokenV100 = `title: broken
$id: /broken/1.0.0
type: object
properties:
  id:
    type: string
required:
  - id
`

const brokenV110 = `title: broken
$id: /broken/1.1.0
type: object
properties:
  id:
    type: string
  fooBar:
    type: [string, "null"]
required: []
examples:
  - $schema: /broken/1.0.0
    id: abc
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func newRegistry(t *testing.T, files map[string]string) *registry.Registry {
	t.Helper()
	cfg, err := registry.ReadConfig(map[string]any{"schemaBasePath": writeTree(t, files)})
	require.NoError(t, err)
	return registry.New(cfg)
}

func healthyTree() map[string]string {
	return map[string]string{
		"fragment/1.0.0.yaml":   fragmentV100,
		"fragment/1.1.0.yaml":   fragmentV110,
		"fragment/1.1.0.json":   fragmentV110JSON,
		"fragment/current.yaml": fragmentV110,
	}
}

func resultsByName(rep *suite.Report) map[string]error {
	out := map[string]error{}
	for _, r := range rep.Results {
		out[r.Name()] = r.Err
	}
	return out
}

func TestDeclareCompatibility_Tree(t *testing.T) {
	files := healthyTree()
	files["broken/1.0.0.yaml"] = brokenV100
	files["broken/1.1.0.yaml"] = brokenV110
	files["single/2.0.0.yaml"] = "title: single\ntype: object\n"
	reg := newRegistry(t, files)

	root, err := suite.DeclareCompatibility(reg)
	require.NoError(t, err)
	assert.Equal(t, "Schema Compatibility in Repository "+reg.Config().SchemaBasePath, root.Name)

	require.Len(t, root.Groups, 3)
	assert.Equal(t, "broken", root.Groups[0].Name)
	assert.Equal(t, "fragment", root.Groups[1].Name)
	assert.Equal(t, "single", root.Groups[2].Name)
	assert.Empty(t, root.Groups[2].Groups, "a single version has nothing to compare")

	major := root.Groups[1].Groups
	require.Len(t, major, 1)
	assert.Equal(t, "Major Version 1", major[0].Name)
	require.Len(t, major[0].Checks, 1, "json variants and current are not compared")
	assert.Equal(t, "1.1.0 must be compatible with 1.0.0", major[0].Checks[0].Name)

	rep := suite.Run(root)
	require.Len(t, rep.Failed(), 1)
	failed := rep.Failed()[0]
	assert.Equal(t, "broken", failed.Path[1])
	assert.True(t, sg.HasCode(failed.Err, sg.CodeRequiredPropertyRemoved), "got %v", failed.Err)
}

func TestDeclareCompatibility_Options(t *testing.T) {
	files := map[string]string{
		"thing/1.0.0.yaml": "title: thing\ntype: object\nproperties:\n  a:\n    type: string\n",
		"thing/1.1.0.yaml": "title: thing\ntype: object\nproperties: {}\n",
	}
	reg := newRegistry(t, files)

	root, err := suite.DeclareCompatibility(reg)
	require.NoError(t, err)
	assert.True(t, suite.Run(root).OK())

	root, err = suite.DeclareCompatibility(reg, compat.WithRemovedFieldsBreaking())
	require.NoError(t, err)
	rep := suite.Run(root)
	require.Len(t, rep.Failed(), 1)
	assert.True(t, sg.HasCode(rep.Failed()[0].Err, sg.CodeFieldRemoved))
}

func TestDeclareRobustness_Healthy(t *testing.T) {
	reg := newRegistry(t, healthyTree())
	v, err := validator.New()
	require.NoError(t, err)
	cache := validator.NewCache()

	root, err := suite.DeclareRobustness(reg, v, cache)
	require.NoError(t, err)

	require.Len(t, root.Groups, 1)
	var names []string
	for _, g := range root.Groups[0].Groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"1.0.0.yaml", "1.1.0.yaml", "1.1.0.json", "current.yaml"}, names)

	current := root.Groups[0].Groups[3]
	assert.Len(t, current.Checks, 4, "current schemas skip required and example checks")
	assert.Len(t, root.Groups[0].Groups[0].Checks, 6)

	rep := suite.Run(root)
	for _, r := range rep.Failed() {
		t.Errorf("%s: %s", r.Name(), suite.Describe(r.Err))
	}
	assert.Zero(t, cache.Len(), "every registered schema is evicted")
}

func TestDeclareRobustness_Failures(t *testing.T) {
	reg := newRegistry(t, map[string]string{
		"broken/1.1.0.yaml": brokenV110,
	})
	v, err := validator.New()
	require.NoError(t, err)

	root, err := suite.DeclareRobustness(reg, v, validator.NewCache())
	require.NoError(t, err)
	results := resultsByName(suite.Run(root))

	prefix := root.Name + " > broken > 1.1.0.yaml > "
	assert.NoError(t, results[prefix+suite.CheckValidSchema])
	assert.NoError(t, results[prefix+suite.CheckSecureSchema])
	assert.True(t, sg.HasCode(results[prefix+suite.CheckSnakeCase], sg.CodeNamingConvention))
	assert.True(t, sg.HasCode(results[prefix+suite.CheckMonomorphTypes], sg.CodePolymorphicType))
	assert.NoError(t, results[prefix+suite.CheckRequiredExist])
	assert.True(t, sg.HasCode(results[prefix+suite.CheckExamplesMatchID], sg.CodeExampleSchemaMismatch))
}

func TestDeclare_RegistryErrors(t *testing.T) {
	reg := newRegistry(t, map[string]string{
		"dup/1.0.0.yaml": "title: dup\ntitle: again\n",
	})
	_, err := suite.DeclareCompatibility(reg)
	assert.Error(t, err)

	v, verr := validator.New()
	require.NoError(t, verr)
	_, err = suite.DeclareRobustness(reg, v, validator.NewCache())
	assert.Error(t, err)
}
