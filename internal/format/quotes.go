package format

import (
	"strings"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
)

// unquoteReferences strips the given quote characters from around the
// reference of every parameter whose type is not string. Writers quote every
// placeholder because it is inserted as a string leaf; this restores bare
// boolean, integer and null tokens.
func unquoteReferences(body string, cat *catalog.Catalog, quotes string) string {
	for _, param := range cat.All() {
		if param.Type.Quoted() {
			continue
		}
		for i := 0; i < len(quotes); i++ {
			if !strings.Contains(body, param.ParamName) {
				break
			}
			body = catalog.QuotedReferencePattern(param.ParamName, quotes[i]).ReplaceAllString(body, "$1")
		}
	}
	return body
}

// substituteLiterals replaces, in source, every occurrence of each
// parameter's value in env with the parameter's reference. Occurrences must
// be delimited by characters that cannot belong to an identifier or number,
// so "80" never matches inside "8080".
//
// String values are also matched in their escaped spelling, since the
// catalog holds the decoded text of a quoted literal.
//
// Two parameters sharing the same value text are indistinguishable here:
// the first one in catalog order takes every occurrence.
func substituteLiterals(source string, cat *catalog.Catalog, env string) string {
	for _, param := range cat.All() {
		v, ok := param.Values.Get(env)
		if !ok {
			continue
		}
		text, ok := document.Text(v)
		if !ok || text == "" {
			continue
		}
		source = replaceLiteral(source, text, param.Reference())
		if _, isString := v.(string); isString {
			if escaped := hclEscaper.Replace(text); escaped != text {
				source = replaceLiteral(source, escaped, param.Reference())
			}
		}
	}
	return source
}

// hclEscaper spells decoded text the way it appears inside a quoted HCL
// string.
var hclEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"${", "$${",
	"%{", "%%{",
)

func replaceLiteral(s, literal, ref string) string {
	var b strings.Builder
	last, start := 0, 0
	for {
		i := strings.Index(s[start:], literal)
		if i < 0 {
			break
		}
		i += start
		end := i + len(literal)
		if delimiter(s, i-1) && delimiter(s, end) {
			b.WriteString(s[last:i])
			b.WriteString(ref)
			last, start = end, end
			continue
		}
		start = i + 1
	}
	b.WriteString(s[last:])
	return b.String()
}

func delimiter(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	switch c := s[i]; {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return false
	case c == '_' || c == '-' || c == '.':
		return false
	}
	return true
}
