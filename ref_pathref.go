package schemaguard

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	// Fragment renders the pointer as a URI fragment ("#", "#/properties/id").
	Fragment() string
}

// Root returns the empty path.
func Root() PathRef { return &pathRef{parts: nil} }

// At parses a JSON Pointer (with or without a leading '#').
func At(path string) PathRef {
	path = strings.TrimPrefix(path, "#")
	if path == "" || path == "/" {
		return Root()
	}
	parts := []string{}
	for _, p := range strings.Split(path, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return &pathRef{parts: parts}
}

type pathRef struct {
	parts []string
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pathRef{parts: append(append([]string{}, p.parts...), esc)}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p *pathRef) Fragment() string {
	if len(p.parts) == 0 {
		return "#"
	}
	return "#/" + strings.Join(p.parts, "/")
}
