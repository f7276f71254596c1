package schemaguard

// SchemaVersion is one schema file of the repository: either the floating
// current schema or an immutable materialized release of a title.
type SchemaVersion struct {
	Title       string
	Major       string
	Version     string // semver without a leading "v", e.g. "1.1.0".
	ContentType string // file extension variant, e.g. "yaml" or "json".
	Current     bool
	Path        string // file the schema was read from.
	Schema      map[string]any
}

// Name renders the version label used in check names: "current" or the
// version, suffixed with the content type when known.
func (sv SchemaVersion) Name() string {
	name := sv.Version
	if sv.Current {
		name = "current"
	}
	if sv.ContentType != "" {
		name += "." + sv.ContentType
	}
	return name
}

// ID returns the schema's $id, or "" when absent.
func (sv SchemaVersion) ID() string {
	id, _ := sv.Schema["$id"].(string)
	return id
}

// HasExamples reports whether the schema declares an `examples` list.
func (sv SchemaVersion) HasExamples() bool {
	_, ok := sv.Schema["examples"]
	return ok
}
