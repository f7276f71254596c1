// Package registry discovers the schema files of a repository and groups them
// by title and major version.
//
// A title directory holds the floating current schema (Config.CurrentName)
// and materialized releases named <version>.<contentType>, for example:
//
//	fragment/current.yaml
//	fragment/1.0.0.yaml
//	fragment/1.0.0.json
//	fragment/1.1.0.yaml
package registry

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	sg "github.com/reoring/schemaguard"
)

type format int

const (
	formatYAML format = iota
	formatJSON
)

// Registry loads schema versions from Config.SchemaBasePath.
type Registry struct {
	cfg    *Config
	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used while scanning.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Registry for cfg.
func New(cfg *Config, opts ...Option) *Registry {
	r := &Registry{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Config returns the registry configuration.
func (r *Registry) Config() *Config { return r.cfg }

// FindSchemasByTitleAndMajor groups every schema by title and major version.
// Each list is in ascending version order with current schemas last.
func FindSchemasByTitleAndMajor(cfg *Config) (map[string]map[string][]sg.SchemaVersion, error) {
	return New(cfg).FindSchemasByTitleAndMajor()
}

// FindSchemasByTitle groups every schema, current and materialized, by title.
func FindSchemasByTitle(cfg *Config) (map[string][]sg.SchemaVersion, error) {
	return New(cfg).FindSchemasByTitle()
}

// FindSchemasByTitleAndMajor groups every schema by title and major version.
// Current schemas whose version cannot be determined are left out.
func (r *Registry) FindSchemasByTitleAndMajor() (map[string]map[string][]sg.SchemaVersion, error) {
	all, err := r.Load()
	if err != nil {
		return nil, err
	}
	out := map[string]map[string][]sg.SchemaVersion{}
	for _, sv := range all {
		if sv.Major == "" {
			continue
		}
		if out[sv.Title] == nil {
			out[sv.Title] = map[string][]sg.SchemaVersion{}
		}
		out[sv.Title][sv.Major] = append(out[sv.Title][sv.Major], sv)
	}
	return out, nil
}

// FindSchemasByTitle groups every schema, current and materialized, by title.
func (r *Registry) FindSchemasByTitle() (map[string][]sg.SchemaVersion, error) {
	all, err := r.Load()
	if err != nil {
		return nil, err
	}
	out := map[string][]sg.SchemaVersion{}
	for _, sv := range all {
		out[sv.Title] = append(out[sv.Title], sv)
	}
	return out, nil
}

// Load scans the base path and returns every schema version sorted by title,
// then version, then content type order; current schemas sort last within a
// title.
func (r *Registry) Load() ([]sg.SchemaVersion, error) {
	base := r.cfg.SchemaBasePath
	var out []sg.SchemaVersion
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != base && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		sv, ok, err := r.loadFile(p)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, sv)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("registry: scan %s: %w", base, err)
	}
	r.sort(out)
	r.logger.Debug("schemas loaded", zap.String("base", base), zap.Int("count", len(out)))
	return out, nil
}

// loadFile classifies and decodes one file; ok is false for files that are
// not schema versions.
func (r *Registry) loadFile(p string) (sg.SchemaVersion, bool, error) {
	name := filepath.Base(p)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	sv := sg.SchemaVersion{Path: p, ContentType: ext}
	switch {
	case name == r.cfg.CurrentName:
		sv.Current = true
	case r.isContentType(ext) && isVersion(stem):
		sv.Version = stem
	default:
		r.logger.Debug("skipping file", zap.String("path", p))
		return sg.SchemaVersion{}, false, nil
	}

	schema, err := decodeFile(p, ext)
	if err != nil {
		return sg.SchemaVersion{}, false, fmt.Errorf("%s: %w", p, err)
	}
	sv.Schema = schema

	if sv.Current {
		sv.Version = r.currentVersion(schema)
		if sv.Version == "" {
			r.logger.Warn("current schema has no usable version",
				zap.String("path", p), zap.String("field", r.cfg.SchemaVersionField))
		}
	}
	if sv.Version != "" {
		sv.Major = strings.TrimPrefix(semver.Major("v"+sv.Version), "v")
	}
	sv.Title = r.title(schema, p)
	return sv, true, nil
}

func (r *Registry) isContentType(ext string) bool {
	for _, ct := range r.cfg.ContentTypes {
		if ct == ext {
			return true
		}
	}
	return false
}

func (r *Registry) contentTypeIndex(ct string) int {
	for i, c := range r.cfg.ContentTypes {
		if c == ct {
			return i
		}
	}
	return len(r.cfg.ContentTypes)
}

// title reads the configured title field, falling back to the directory of
// the file relative to the base path.
func (r *Registry) title(schema map[string]any, p string) string {
	if t, ok := schema[r.cfg.SchemaTitleField].(string); ok && t != "" {
		return t
	}
	rel, err := filepath.Rel(r.cfg.SchemaBasePath, filepath.Dir(p))
	if err != nil {
		return filepath.ToSlash(filepath.Dir(p))
	}
	return filepath.ToSlash(rel)
}

// currentVersion takes the last path segment of the version field, e.g.
// "1.1.0" from "$id: /fragment/1.1.0".
func (r *Registry) currentVersion(schema map[string]any) string {
	raw, _ := schema[r.cfg.SchemaVersionField].(string)
	if raw == "" {
		return ""
	}
	v := path.Base(strings.TrimSuffix(raw, "#"))
	if !isVersion(v) {
		return ""
	}
	return v
}

func (r *Registry) sort(svs []sg.SchemaVersion) {
	sort.SliceStable(svs, func(i, j int) bool {
		a, b := svs[i], svs[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Current != b.Current {
			return !a.Current
		}
		if c := semver.Compare("v"+a.Version, "v"+b.Version); c != 0 {
			return c < 0
		}
		return r.contentTypeIndex(a.ContentType) < r.contentTypeIndex(b.ContentType)
	})
}

// isVersion accepts full MAJOR.MINOR.PATCH versions without a "v" prefix.
func isVersion(s string) bool {
	if s == "" || strings.HasPrefix(s, "v") {
		return false
	}
	v := "v" + s
	return semver.IsValid(v) && semver.Canonical(v) == v
}

func decodeFile(p, ext string) (map[string]any, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	f, ok := supportedContentTypes[ext]
	if !ok {
		f = formatYAML
	}
	var doc any
	switch f {
	case formatJSON:
		doc, err = NewStrictJSONReader(bytes.NewReader(data)).Read()
	default:
		doc, err = NewStrictYAMLReader(bytes.NewReader(data)).Next()
	}
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema root must be an object, got %s", sg.KindOf(doc))
	}
	return m, nil
}
