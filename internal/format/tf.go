package format

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
	"github.com/specialistvlad/dynimport/internal/engine"
)

// hclSource keeps the raw text of every parsed environment. HCL has no
// writer that preserves the original layout, so templates are produced by
// substituting literals in the seed source.
type hclSource struct {
	format string
	parsed sources[[]byte]
}

func (h *hclSource) Parse(env, filename string, src []byte) (document.Node, error) {
	n, err := parseHCL(h.format, filename, src)
	if err != nil {
		return nil, err
	}
	h.parsed.add(env, src)
	return n, nil
}

func (h *hclSource) Encode(_ document.Node, cat *catalog.Catalog) (string, error) {
	src, env, ok := h.parsed.seed()
	if !ok {
		return "", fmt.Errorf("%w: no %s source to seed the template", ErrTemplateShape, h.format)
	}
	return substituteLiterals(string(src), cat, env), nil
}

type tfAdapter struct {
	hclSource
}

func newTF() *tfAdapter {
	return &tfAdapter{hclSource{format: "HCL"}}
}

var _ engine.Interceptor = (*tfAdapter)(nil)

// Intercept treats every mapping with both "type" and "default" keys, the
// shape of a variable block, as a single parameter.
func (*tfAdapter) Intercept(_ document.Path, m *document.Mapping) (engine.Claim, bool) {
	if !m.Has("type", "default") {
		return engine.Claim{}, false
	}
	def, _ := m.Get("default")
	claim := engine.Claim{Value: def, Type: variableType(m, def)}

	if v, ok := m.Get("sensitive"); ok {
		if s, ok := v.(*document.Scalar); ok && s.Kind == document.KindBool {
			claim.Secret = s.Raw == "true"
		}
	}
	if v, ok := m.Get("description"); ok {
		if s, ok := v.(*document.Scalar); ok && s.Kind == document.KindString {
			claim.Description = s.Raw
		}
	}
	return claim, true
}

func variableType(m *document.Mapping, def document.Node) catalog.Type {
	t, _ := m.Get("type")
	s, ok := t.(*document.Scalar)
	if !ok {
		return catalog.TypeString
	}
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s.Raw, "${"), "}"))

	switch name {
	case "bool":
		return catalog.TypeBoolean
	case "number":
		if d, ok := def.(*document.Scalar); ok && d.Kind == document.KindInt {
			return catalog.TypeInteger
		}
	}
	return catalog.TypeString
}
