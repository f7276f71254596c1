package registry

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	sg "github.com/reoring/schemaguard"
)

// DuplicateKeyError reports a duplicate key found in a schema file. Path is
// the JSON Pointer of the duplicate; YAML inputs also carry the positions of
// both occurrences.
type DuplicateKeyError struct {
	Key       string
	Path      string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("duplicate YAML key %q at %s (line %d:%d, first at %d:%d)",
			e.Key, e.Path, e.Line, e.Col, e.FirstLine, e.FirstCol)
	}
	return fmt.Sprintf("duplicate JSON key %q at %s", e.Key, e.Path)
}

// StrictYAMLReader decodes YAML schema documents through yaml.Node so that
// duplicate keys are rejected. Values come out in the same shape as
// StrictJSONReader produces.
type StrictYAMLReader struct {
	dec *yaml.Decoder
}

// NewStrictYAMLReader constructs a StrictYAMLReader.
func NewStrictYAMLReader(r io.Reader) *StrictYAMLReader {
	return &StrictYAMLReader{dec: yaml.NewDecoder(r)}
}

// Next returns the next document of the stream, or io.EOF when exhausted.
func (s *StrictYAMLReader) Next() (any, error) {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return yamlValue(&root, sg.Root())
}

func yamlValue(n *yaml.Node, path sg.PathRef) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0], path)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return yamlValue(n.Alias, path)
	case yaml.MappingNode:
		return yamlObject(n, path)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlValue(c, path.Index(i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n), nil
	}
	return nil, nil
}

func yamlObject(n *yaml.Node, path sg.PathRef) (any, error) {
	m := make(map[string]any, len(n.Content)/2)
	seen := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if first, dup := seen[k.Value]; dup {
			return nil, &DuplicateKeyError{
				Key:       k.Value,
				Path:      path.Field(k.Value).Pointer(),
				FirstLine: first.Line,
				FirstCol:  first.Column,
				Line:      k.Line,
				Col:       k.Column,
			}
		}
		seen[k.Value] = k
		val, err := yamlValue(v, path.Field(k.Value))
		if err != nil {
			return nil, err
		}
		m[k.Value] = val
	}
	return m, nil
}

// yamlScalar resolves tagged scalars; values that fail to parse stay strings.
func yamlScalar(n *yaml.Node) any {
	switch n.Tag {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int", "!!float":
		if num, ok := parseNumber(n.Value); ok {
			return num
		}
	}
	return n.Value
}
