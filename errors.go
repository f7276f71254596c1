package schemaguard

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Compatibility between materialized versions.
	CodeShapeMismatch           = "shape_mismatch"
	CodeValueChanged            = "value_changed"
	CodeRequiredPropertyRemoved = "required_property_removed"
	CodeFieldRemoved            = "field_removed"
	// Robustness of a single schema.
	CodeInvalidSchema              = "invalid_schema"
	CodeInsecureSchema             = "insecure_schema"
	CodeNamingConvention           = "naming_convention"
	CodePolymorphicType            = "polymorphic_type"
	CodeMissingType                = "missing_type"
	CodeRequiredPropertyUndeclared = "required_property_undeclared"
	CodeExampleInvalid             = "example_invalid"
	CodeExampleSchemaMismatch      = "example_schema_mismatch"
	// Raw validator output flattened into issues.
	CodeValidation = "validation"
)

// Issue is a single structured assertion failure.
type Issue struct {
	Path    string `json:"path,omitempty"` // JSON Pointer as a URI fragment (for example: #/properties/id/type).
	Code    string `json:"code"`           // One of the codes listed above.
	Message string `json:"message"`
	// Expected and Actual carry the diagnostic payloads shown next to the message
	// (for example the old and new required lists).
	Expected any   `json:"expected,omitempty"`
	Actual   any   `json:"actual,omitempty"`
	Cause    error `json:"-"` // Optional: underlying error.
	// Params carries structured parameters (e.g., {"property":"id"}) for i18n
	// and reporting.
	Params map[string]any `json:"params,omitempty"`
}

// Unwrap exposes the underlying cause.
func (it Issue) Unwrap() error { return it.Cause }

// String renders "message at path".
func (it Issue) String() string {
	msg := it.Message
	if msg == "" {
		msg = it.Code
	}
	if it.Path == "" {
		return msg
	}
	return fmt.Sprintf("%s at %s", msg, it.Path)
}

// Issues is a collection of assertion failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap returns the causes of the contained issues.
func (iss Issues) Unwrap() []error {
	var errs []error
	for _, it := range iss {
		if it.Cause != nil {
			errs = append(errs, it.Cause)
		}
	}
	return errs
}

// First returns the first issue, or the zero Issue when empty.
func (iss Issues) First() Issue {
	if len(iss) == 0 {
		return Issue{}
	}
	return iss[0]
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// Fail wraps a single issue as an error. Checks stop at the first violation, so
// this is the usual way to return from a walk.
func Fail(it Issue) error { return Issues{it} }
