package schemaguard

import "github.com/reoring/schemaguard/i18n"

// Assertion builds an Issue whose message is looked up in the i18n dictionary
// for code. data fills the message placeholders.
func Assertion(p PathRef, code string, data map[string]string, expected, actual any) Issue {
	return Issue{
		Path:     p.Fragment(),
		Code:     code,
		Message:  i18n.T(code, data),
		Expected: expected,
		Actual:   actual,
	}
}
