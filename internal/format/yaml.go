package format

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
	"gopkg.in/yaml.v3"
)

// yamlAdapter keeps the node tree of every environment so the template can
// be written back with the default document's comments and layout.
type yamlAdapter struct {
	parsed sources[*yaml.Node]
}

func newYAML() *yamlAdapter {
	return &yamlAdapter{}
}

func (a *yamlAdapter) Parse(env, filename string, src []byte) (document.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, &DecodeError{Filename: filename, Format: "YAML", Err: err}
	}
	a.parsed.add(env, &root)

	body := yamlBody(&root)
	if body == nil {
		return document.NewMapping(), nil
	}
	if resolveAlias(body).Kind == yaml.ScalarNode {
		return nil, &DecodeError{Filename: filename, Format: "YAML", Err: errors.New("top-level value must be a mapping or a sequence")}
	}
	n, err := yamlToNode(expandYAML(cloneYAML(body, make(map[*yaml.Node]*yaml.Node))), "")
	if err != nil {
		return nil, &DecodeError{Filename: filename, Format: "YAML", Err: err}
	}
	return n, nil
}

// yamlBody returns the root content node, or nil for an empty document.
func yamlBody(root *yaml.Node) *yaml.Node {
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		return root.Content[0]
	}
	if root.Kind == 0 {
		return nil
	}
	return root
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// yamlToNode converts n. comment carries the annotations found on the key
// that owns n, so that a leaf picks up "key: value # comment" as well as a
// comment written above the key.
func yamlToNode(n *yaml.Node, comment string) (document.Node, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		m := document.NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := resolveAlias(n.Content[i]), n.Content[i+1]
			child, err := yamlToNode(val, joinComments(key.HeadComment, key.LineComment))
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key.Value, err)
			}
			m.Set(key.Value, child)
		}
		return m, nil
	case yaml.SequenceNode:
		seq := &document.Sequence{}
		for i, item := range n.Content {
			child, err := yamlToNode(item, "")
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			seq.Append(child)
		}
		return seq, nil
	case yaml.ScalarNode:
		s, err := yamlScalar(n)
		if err != nil {
			return nil, err
		}
		s.Comment = joinComments(comment, n.HeadComment, n.LineComment)
		return s, nil
	}
	return nil, fmt.Errorf("unexpected node kind %d at line %d", n.Kind, n.Line)
}

func yamlScalar(n *yaml.Node) (*document.Scalar, error) {
	switch n.ShortTag() {
	case "!!null":
		return document.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return document.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// Out of int64 range; keep the digits.
			return document.Number(n.Value, true), nil
		}
		return document.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return document.Number(strconv.FormatFloat(f, 'g', -1, 64), false), nil
	}
	return document.String(n.Value), nil
}

func joinComments(parts ...string) string {
	var lines []string
	for _, p := range parts {
		for _, line := range strings.Split(p, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (a *yamlAdapter) Encode(template document.Node, cat *catalog.Catalog) (string, error) {
	seed, env, ok := a.parsed.seed()
	if !ok {
		return "", fmt.Errorf("%w: no YAML source to seed the template", ErrTemplateShape)
	}

	root := cloneYAML(seed, make(map[*yaml.Node]*yaml.Node))
	body := yamlBody(root)
	if body == nil {
		return "{}\n", nil
	}
	body = expandYAML(body)
	if root.Kind == yaml.DocumentNode {
		root.Content[0] = body
	}
	if err := rewriteYAML(body, template); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", fmt.Errorf("failed to encode YAML template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML template: %w", err)
	}

	out := unquoteReferences(buf.String(), cat, `'"`)
	return doubleQuoteQuotedStrings(out, cat, env), nil
}

// doubleQuoteQuotedStrings switches the reference of a string parameter to
// double quotes when the value it stands for is itself wrapped in single
// quotes.
func doubleQuoteQuotedStrings(body string, cat *catalog.Catalog, env string) string {
	for _, param := range cat.All() {
		if !param.Type.Quoted() {
			continue
		}
		v, ok := param.Values.Get(env)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
			continue
		}
		ref := param.Reference()
		body = strings.ReplaceAll(body, "'"+ref+"'", `"`+ref+`"`)
	}
	return body
}

// rewriteYAML walks n and the extracted template side by side and writes
// every placeholder into the node tree as a plain string. n must have been
// through expandYAML.
func rewriteYAML(n *yaml.Node, t document.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		m, ok := t.(*document.Mapping)
		if !ok {
			return fmt.Errorf("%w: expected a mapping at line %d", ErrTemplateShape, n.Line)
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			child, ok := m.Get(resolveAlias(n.Content[i]).Value)
			if !ok {
				continue
			}
			if err := rewriteYAML(n.Content[i+1], child); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		seq, ok := t.(*document.Sequence)
		if !ok {
			return fmt.Errorf("%w: expected a sequence at line %d", ErrTemplateShape, n.Line)
		}
		for i, item := range n.Content {
			if i >= len(seq.Items) {
				break
			}
			if err := rewriteYAML(item, seq.Items[i]); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		s, ok := t.(*document.Scalar)
		if !ok {
			return fmt.Errorf("%w: expected a scalar at line %d", ErrTemplateShape, n.Line)
		}
		if s.Kind == document.KindString && (n.ShortTag() != "!!str" || n.Value != s.Raw) {
			n.Tag = "!!str"
			n.Style = 0
			n.Value = s.Raw
		}
	}
	return nil
}

// expandYAML replaces every alias under n with a copy of its target and
// folds "<<" merge entries into their mapping, so that each path of the
// document owns its node. Keys written in the mapping win over merged keys,
// and earlier merge sources win over later ones. Merged keys take the place
// of the merge entry.
func expandYAML(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode {
		c := cloneYAML(resolveAlias(n), make(map[*yaml.Node]*yaml.Node))
		stripAnchors(c)
		if n.LineComment != "" {
			c.LineComment = n.LineComment
		}
		n = c
	}

	switch n.Kind {
	case yaml.MappingNode:
		explicit := make(map[string]bool, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			if !isMergeKey(n.Content[i]) {
				explicit[resolveAlias(n.Content[i]).Value] = true
			}
		}
		content := make([]*yaml.Node, 0, len(n.Content))
		merged := make(map[string]bool)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if !isMergeKey(key) {
				content = append(content, key, expandYAML(val))
				continue
			}
			for _, src := range mergeSources(val) {
				src = expandYAML(cloneYAML(src, make(map[*yaml.Node]*yaml.Node)))
				stripAnchors(src)
				for j := 0; j+1 < len(src.Content); j += 2 {
					name := src.Content[j].Value
					if explicit[name] || merged[name] {
						continue
					}
					merged[name] = true
					content = append(content, src.Content[j], src.Content[j+1])
				}
			}
		}
		n.Content = content
	case yaml.SequenceNode:
		for i, item := range n.Content {
			n.Content[i] = expandYAML(item)
		}
	}
	return n
}

func isMergeKey(k *yaml.Node) bool {
	k = resolveAlias(k)
	return k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge"
}

// mergeSources returns the mappings a merge entry pulls in.
func mergeSources(v *yaml.Node) []*yaml.Node {
	v = resolveAlias(v)
	switch v.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{v}
	case yaml.SequenceNode:
		var out []*yaml.Node
		for _, item := range v.Content {
			if item = resolveAlias(item); item.Kind == yaml.MappingNode {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

func stripAnchors(n *yaml.Node) {
	n.Anchor = ""
	for _, c := range n.Content {
		stripAnchors(c)
	}
}

func cloneYAML(n *yaml.Node, memo map[*yaml.Node]*yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if c, ok := memo[n]; ok {
		return c
	}
	c := *n
	memo[n] = &c
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneYAML(child, memo)
		}
	}
	c.Alias = cloneYAML(n.Alias, memo)
	return &c
}
