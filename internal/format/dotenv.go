package format

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
)

var dotenvKey = regexp.MustCompile(`(?m)^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_.\-]*)\s*[=:]`)

type dotenvAdapter struct{}

func newDotenv() *dotenvAdapter {
	return &dotenvAdapter{}
}

func (dotenvAdapter) Parse(_, filename string, src []byte) (document.Node, error) {
	values, err := godotenv.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, &DecodeError{Filename: filename, Format: "dotenv", Err: err}
	}

	m := document.NewMapping()
	for _, match := range dotenvKey.FindAllSubmatch(src, -1) {
		key := string(match[1])
		if v, ok := values[key]; ok && !m.Has(key) {
			m.Set(key, document.String(v))
		}
	}
	// Keys the line scan could not place keep a stable order.
	var rest []string
	for key := range values {
		if !m.Has(key) {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	for _, key := range rest {
		m.Set(key, document.String(values[key]))
	}
	return m, nil
}

func (dotenvAdapter) Encode(template document.Node, cat *catalog.Catalog) (string, error) {
	m, ok := template.(*document.Mapping)
	if !ok {
		return "", fmt.Errorf("%w: dotenv template must be a mapping, got %T", ErrTemplateShape, template)
	}

	lines := make([]string, 0, m.Len())
	for _, e := range m.Entries {
		s, ok := e.Value.(*document.Scalar)
		if !ok {
			return "", fmt.Errorf("%w: dotenv value of %q is not a scalar", ErrTemplateShape, e.Key)
		}
		// Marshal sorts its lines, so each key is rendered on its own.
		line, err := godotenv.Marshal(map[string]string{e.Key: s.Raw})
		if err != nil {
			return "", fmt.Errorf("failed to encode dotenv key %q: %w", e.Key, err)
		}
		lines = append(lines, line)
	}

	body := strings.Join(lines, "\n")
	if len(lines) > 0 {
		body += "\n"
	}
	return unquoteReferences(body, cat, `"`), nil
}
