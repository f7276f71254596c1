package registry_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemaguard/registry"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

const fragment100YAML = `title: fragment
$id: /fragment/1.0.0
$schema: https://json-schema.org/draft-07/schema#
type: object
properties:
  id:
    type: string
    maxLength: 64
required:
  - id
`

const fragment110YAML = `title: fragment
$id: /fragment/1.1.0
$schema: https://json-schema.org/draft-07/schema#
type: object
properties:
  id:
    type: string
    maxLength: 64
  note:
    type: string
required:
  - id
`

const fragment100JSON = `{
  "title": "fragment",
  "$id": "/fragment/1.0.0",
  "$schema": "https://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {"id": {"type": "string", "maxLength": 64}},
  "required": ["id"]
}`

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "fragment/1.0.0.yaml", fragment100YAML)
	writeFile(t, dir, "fragment/1.0.0.json", fragment100JSON)
	writeFile(t, dir, "fragment/1.1.0.yaml", fragment110YAML)
	writeFile(t, dir, "fragment/current.yaml", fragment110YAML)
	writeFile(t, dir, "fragment/2.0.0.yaml", `title: fragment
$id: /fragment/2.0.0
type: object
`)
	writeFile(t, dir, "fragment/README.md", "# fragment\n")
	writeFile(t, dir, "fragment/latest", "not a schema")
	writeFile(t, dir, ".git/1.0.0.yaml", "title: ignored\n")
	writeFile(t, dir, "untitled/1.0.0.yaml", "type: object\n")
	return dir
}

func newRegistry(t *testing.T, dir string) *registry.Registry {
	t.Helper()
	cfg, err := registry.ReadConfig(map[string]any{"schemaBasePath": dir})
	require.NoError(t, err)
	return registry.New(cfg)
}

func TestFindSchemasByTitle(t *testing.T) {
	dir := fixture(t)
	byTitle, err := newRegistry(t, dir).FindSchemasByTitle()
	require.NoError(t, err)

	require.Contains(t, byTitle, "fragment")
	require.Contains(t, byTitle, "untitled", "title falls back to the directory")
	assert.NotContains(t, byTitle, "ignored")

	var names []string
	for _, sv := range byTitle["fragment"] {
		names = append(names, sv.Name())
	}
	assert.Equal(t, []string{"1.0.0.yaml", "1.0.0.json", "1.1.0.yaml", "2.0.0.yaml", "current.yaml"}, names)

	current := byTitle["fragment"][4]
	assert.True(t, current.Current)
	assert.Equal(t, "1.1.0", current.Version)
	assert.Equal(t, "1", current.Major)
	assert.Equal(t, "/fragment/1.1.0", current.ID())
}

func TestFindSchemasByTitleAndMajor(t *testing.T) {
	dir := fixture(t)
	grouped, err := newRegistry(t, dir).FindSchemasByTitleAndMajor()
	require.NoError(t, err)

	require.Contains(t, grouped["fragment"], "1")
	require.Contains(t, grouped["fragment"], "2")
	major1 := grouped["fragment"]["1"]
	require.Len(t, major1, 4)
	assert.Equal(t, "1.0.0", major1[0].Version)
	assert.Equal(t, "yaml", major1[0].ContentType)
	assert.Equal(t, "json", major1[1].ContentType)
	assert.Equal(t, "1.1.0", major1[2].Version)
	assert.True(t, major1[3].Current)
	assert.Len(t, grouped["fragment"]["2"], 1)
}

func TestLoad_DecodesNumbersConsistently(t *testing.T) {
	dir := fixture(t)
	byTitle, err := newRegistry(t, dir).FindSchemasByTitle()
	require.NoError(t, err)

	yamlID := byTitle["fragment"][0].Schema["properties"].(map[string]any)["id"].(map[string]any)
	jsonID := byTitle["fragment"][1].Schema["properties"].(map[string]any)["id"].(map[string]any)
	assert.Equal(t, int64(64), yamlID["maxLength"])
	assert.Equal(t, int64(64), jsonID["maxLength"])
}

func TestLoad_DuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dup/1.0.0.json", `{"title": "dup", "type": "object", "type": "string"}`)
	_, err := newRegistry(t, dir).Load()
	var dup *registry.DuplicateKeyError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, "type", dup.Key)
	assert.Equal(t, "/type", dup.Path)

	dir = t.TempDir()
	writeFile(t, dir, "dup/1.0.0.yaml", "title: dup\ntype: object\ntype: string\n")
	_, err = newRegistry(t, dir).Load()
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, 3, dup.Line)
	assert.Equal(t, 2, dup.FirstLine)
	assert.Equal(t, "/type", dup.Path)
}

func TestLoad_RootMustBeObject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "list/1.0.0.json", `[1, 2]`)
	_, err := newRegistry(t, dir).Load()
	assert.ErrorContains(t, err, "schema root must be an object")
}

func TestLoad_OnlyConfiguredContentTypes(t *testing.T) {
	dir := fixture(t)
	cfg, err := registry.ReadConfig(map[string]any{"schemaBasePath": dir, "contentTypes": "yaml"})
	require.NoError(t, err)
	all, err := registry.New(cfg).Load()
	require.NoError(t, err)
	for _, sv := range all {
		assert.Equal(t, "yaml", sv.ContentType, sv.Path)
	}
}
