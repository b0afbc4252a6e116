package catalog

import (
	"regexp"
)

const referencePrefix = "cloudtruth.parameters."

// Reference returns the placeholder text for a parameter name.
func Reference(name string) string {
	return "{{ " + referencePrefix + name + " }}"
}

// ReferencePattern matches the placeholder for name, tolerating any amount of
// whitespace inside the braces. The whole reference is capture group 1.
func ReferencePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(\{\{\s+` + regexp.QuoteMeta(referencePrefix+name) + `\s+\}\})`)
}

// QuotedReferencePattern matches the placeholder for name wrapped in the
// given quote character. The unquoted reference is capture group 1.
func QuotedReferencePattern(name string, quote byte) *regexp.Regexp {
	q := regexp.QuoteMeta(string(quote))
	return regexp.MustCompile(q + `(\{\{\s+` + regexp.QuoteMeta(referencePrefix+name) + `\s+\}\})` + q)
}
