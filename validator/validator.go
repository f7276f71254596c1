// Package validator wraps github.com/santhosh-tekuri/jsonschema/v6 for the
// checks that need a real JSON Schema implementation: draft-07 metaschema
// validity, the secure-schema profile, and validation of embedded examples
// through a schema cache keyed by $id.
package validator

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	sg "github.com/reoring/schemaguard"
	"github.com/reoring/schemaguard/i18n"
)

// Metaschema locations.
const (
	Draft07URL      = "http://json-schema.org/draft-07/schema"
	draft07HTTPSURL = "https://json-schema.org/draft-07/schema"
	SecureSchemaURL = "https://schemaguard.reoring.dev/meta/secure-schema.json"
)

//go:embed secure-schema.json
var secureSchemaJSON []byte

// Validator checks schema documents against the draft-07 metaschema and the
// secure-schema profile. It is safe for concurrent use once built.
type Validator struct {
	draft07 *jsonschema.Schema
	secure  *jsonschema.Schema
}

// New compiles both metaschemas.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(secureSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("validator: decode secure metaschema: %w", err)
	}
	if err := c.AddResource(SecureSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("validator: add secure metaschema: %w", err)
	}

	draft07, err := c.Compile(Draft07URL)
	if err != nil {
		return nil, fmt.Errorf("validator: compile draft-07 metaschema: %w", err)
	}
	secure, err := c.Compile(SecureSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("validator: compile secure metaschema: %w", err)
	}
	return &Validator{draft07: draft07, secure: secure}, nil
}

// ValidateSchema fails with an invalid_schema issue when doc is not a valid
// draft-07 JSON Schema.
func (v *Validator) ValidateSchema(doc any) error {
	if err := v.draft07.Validate(doc); err != nil {
		return sg.Fail(metaschemaIssue(sg.CodeInvalidSchema, err))
	}
	return nil
}

// ValidateSecure fails with an insecure_schema issue when doc uses constructs
// the secure profile rejects (unbounded patterns, formats and so on).
func (v *Validator) ValidateSecure(doc any) error {
	if err := v.secure.Validate(doc); err != nil {
		return sg.Fail(metaschemaIssue(sg.CodeInsecureSchema, err))
	}
	return nil
}

func metaschemaIssue(code string, err error) sg.Issue {
	return sg.Issue{
		Path:     "#",
		Code:     code,
		Message:  i18n.T(code, nil),
		Expected: sg.Issues{},
		Actual:   Flatten(err),
		Cause:    err,
	}
}

var printer = message.NewPrinter(language.English)

// Flatten turns a validator error into a flat list of leaf issues, one per
// failing keyword, with the instance location as path.
func Flatten(err error) sg.Issues {
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return sg.Issues{{Path: "#", Code: sg.CodeValidation, Message: err.Error(), Cause: err}}
	}
	var out sg.Issues
	collect(verr, &out)
	return out
}

func collect(verr *jsonschema.ValidationError, out *sg.Issues) {
	if verr == nil {
		return
	}
	if len(verr.Causes) == 0 {
		path := sg.Root()
		for _, tok := range verr.InstanceLocation {
			path = path.Field(tok)
		}
		it := sg.Issue{Path: path.Fragment(), Code: sg.CodeValidation, Params: map[string]any{"schema_url": verr.SchemaURL}}
		if verr.ErrorKind != nil {
			it.Message = verr.ErrorKind.LocalizedString(printer)
			it.Params["keyword"] = strings.Join(verr.ErrorKind.KeywordPath(), "/")
		} else {
			it.Message = verr.Error()
		}
		*out = append(*out, it)
		return
	}
	for _, cause := range verr.Causes {
		collect(cause, out)
	}
}
