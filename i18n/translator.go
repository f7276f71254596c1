package i18n

import (
	"sort"
	"strings"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "property" or "path").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Messages may
// reference data keys as {key}.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"shape_mismatch":               "incompatible type change at {path}",
		"value_changed":                "incompatible value change at {path}",
		"required_property_removed":    "removed required property {property} at path {path}",
		"field_removed":                "removed field {field} at path {path}",
		"invalid_schema":               "schema is invalid",
		"insecure_schema":              "schema is insecure",
		"naming_convention":            "non snake_case property name {property}",
		"polymorphic_type":             "polymorphic type property",
		"missing_type":                 "missing type",
		"required_property_undeclared": "required property {property} is not declared in properties",
		"properties_missing":           "properties must exist when required is declared",
		"example_invalid":              "example {index} does not validate against the schema",
		"example_schema_mismatch":      "example $schema value must match schema's $id value",
		"validation":                   "validation error",
	},
	"ja": {
		"shape_mismatch":               "{path} で互換性のない型変更があります",
		"value_changed":                "{path} で互換性のない値変更があります",
		"required_property_removed":    "{path} で必須プロパティ {property} が削除されました",
		"field_removed":                "{path} でフィールド {field} が削除されました",
		"invalid_schema":               "スキーマが不正です",
		"insecure_schema":              "スキーマが安全ではありません",
		"naming_convention":            "snake_case ではないプロパティ名 {property}",
		"polymorphic_type":             "型が複数指定されています",
		"missing_type":                 "型が指定されていません",
		"required_property_undeclared": "必須プロパティ {property} が properties に存在しません",
		"properties_missing":           "required を宣言する場合は properties が必要です",
		"example_invalid":              "例 {index} がスキーマに適合しません",
		"example_schema_mismatch":      "例の $schema はスキーマの $id と一致する必要があります",
		"validation":                   "検証エラー",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := dictionaries[t.lang]
	if !ok {
		dict = dictionaries["en"]
	}
	msg, ok := dict[code]
	if !ok {
		return code
	}
	return fill(msg, data)
}

// fill substitutes {key} placeholders. Keys are applied in sorted order so the
// result does not depend on map iteration.
func fill(msg string, data map[string]string) string {
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
