package registry

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	sg "github.com/reoring/schemaguard"
)

// StrictJSONReader decodes one JSON document token by token with go-json,
// rejecting duplicate object keys. Integers decode to int64 and other numbers
// to float64, matching StrictYAMLReader.
type StrictJSONReader struct {
	dec *j.Decoder
}

// NewStrictJSONReader constructs a StrictJSONReader.
func NewStrictJSONReader(r io.Reader) *StrictJSONReader {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &StrictJSONReader{dec: dec}
}

// Read decodes the single document of the stream. Trailing data is an error.
func (s *StrictJSONReader) Read() (any, error) {
	v, err := s.value(sg.Root())
	if err != nil {
		return nil, err
	}
	if _, err := s.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON document")
	}
	return v, nil
}

func (s *StrictJSONReader) value(path sg.PathRef) (any, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return s.object(path)
		case '[':
			return s.array(path)
		}
		return nil, fmt.Errorf("unexpected delimiter %q at %s", rune(v), path.Pointer())
	case string:
		return v, nil
	case bool:
		return v, nil
	case nil:
		return nil, nil
	case j.Number:
		return number(string(v))
	case float64:
		return v, nil
	}
	return nil, fmt.Errorf("unexpected token %v at %s", tok, path.Pointer())
}

func (s *StrictJSONReader) object(path sg.PathRef) (any, error) {
	m := map[string]any{}
	for s.dec.More() {
		tok, err := s.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at %s, got %v", path.Pointer(), tok)
		}
		if _, dup := m[key]; dup {
			return nil, &DuplicateKeyError{Key: key, Path: path.Field(key).Pointer()}
		}
		val, err := s.value(path.Field(key))
		if err != nil {
			return nil, err
		}
		m[key] = val
	}
	if _, err := s.dec.Token(); err != nil { // '}'
		return nil, err
	}
	return m, nil
}

func (s *StrictJSONReader) array(path sg.PathRef) (any, error) {
	arr := []any{}
	for i := 0; s.dec.More(); i++ {
		val, err := s.value(path.Index(i))
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := s.dec.Token(); err != nil { // ']'
		return nil, err
	}
	return arr, nil
}

func number(text string) (any, error) {
	num, ok := parseNumber(text)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", text)
	}
	return num, nil
}

// parseNumber keeps integers exact as int64 and reads everything else as
// float64. Both readers use it so YAML and JSON variants of a schema compare
// equal.
func parseNumber(text string) (any, bool) {
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}
