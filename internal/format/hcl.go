package format

import (
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dynimport/internal/document"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// parseHCL decodes an HCL body into a document. Attributes and blocks keep
// their source order. Blocks of one type are collected into a sequence under
// the type name and every label adds one mapping level, so
// `variable "x" { ... }` lands at [variable][0][x].
func parseHCL(format, filename string, src []byte) (document.Node, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, &DecodeError{Filename: filename, Format: format, Err: diags}
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &DecodeError{Filename: filename, Format: format, Err: fmt.Errorf("unexpected body type %T", file.Body)}
	}
	m, err := bodyToNode(body, src)
	if err != nil {
		return nil, &DecodeError{Filename: filename, Format: format, Err: err}
	}
	return m, nil
}

type hclItem struct {
	offset int
	attr   *hclsyntax.Attribute
	block  *hclsyntax.Block
}

func bodyToNode(body *hclsyntax.Body, src []byte) (*document.Mapping, error) {
	items := make([]hclItem, 0, len(body.Attributes)+len(body.Blocks))
	for _, attr := range body.Attributes {
		items = append(items, hclItem{offset: attr.SrcRange.Start.Byte, attr: attr})
	}
	for _, block := range body.Blocks {
		items = append(items, hclItem{offset: block.TypeRange.Start.Byte, block: block})
	}
	slices.SortFunc(items, func(a, b hclItem) int { return a.offset - b.offset })

	m := document.NewMapping()
	for _, it := range items {
		if it.attr != nil {
			n, err := exprToNode(it.attr.Expr, src)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", it.attr.Name, err)
			}
			m.Set(it.attr.Name, n)
			continue
		}

		n, err := bodyToNode(it.block.Body, src)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", it.block.Type, err)
		}
		var node document.Node = n
		for i := len(it.block.Labels) - 1; i >= 0; i-- {
			wrap := document.NewMapping()
			wrap.Set(it.block.Labels[i], node)
			node = wrap
		}

		group, ok := m.Get(it.block.Type)
		seq, isSeq := group.(*document.Sequence)
		if !ok || !isSeq {
			seq = &document.Sequence{}
			m.Set(it.block.Type, seq)
		}
		seq.Append(node)
	}
	return m, nil
}

// exprToNode converts object and tuple constructors structurally and
// evaluates everything else without a context. Expressions that need
// variables or functions are kept as their source text: template strings
// without their quotes, anything else wrapped in ${...}.
func exprToNode(expr hclsyntax.Expression, src []byte) (document.Node, error) {
	switch e := expr.(type) {
	case *hclsyntax.ObjectConsExpr:
		m := document.NewMapping()
		for _, item := range e.Items {
			key := objectKey(item.KeyExpr, src)
			v, err := exprToNode(item.ValueExpr, src)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			m.Set(key, v)
		}
		return m, nil
	case *hclsyntax.TupleConsExpr:
		seq := &document.Sequence{}
		for _, item := range e.Exprs {
			v, err := exprToNode(item, src)
			if err != nil {
				return nil, err
			}
			seq.Append(v)
		}
		return seq, nil
	}

	if v, diags := expr.Value(nil); !diags.HasErrors() && v.IsWhollyKnown() {
		return ctyToNode(v)
	}

	text := string(expr.Range().SliceBytes(src))
	if _, ok := expr.(*hclsyntax.TemplateExpr); ok && len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return document.String(text[1 : len(text)-1]), nil
	}
	return document.String("${" + text + "}"), nil
}

func objectKey(expr hclsyntax.Expression, src []byte) string {
	if v, diags := expr.Value(nil); !diags.HasErrors() && v.IsKnown() && !v.IsNull() {
		if s, err := convert.Convert(v, cty.String); err == nil {
			return s.AsString()
		}
	}
	return strings.Trim(string(expr.Range().SliceBytes(src)), `"`)
}

// ctyToNode recursively converts a known cty value to a document node.
func ctyToNode(v cty.Value) (document.Node, error) {
	if v.IsNull() {
		return document.Null(), nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value of type %s is not known", v.Type().FriendlyName())
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return document.String(v.AsString()), nil

	case ty == cty.Number:
		return numberNode(v.AsBigFloat()), nil

	case ty == cty.Bool:
		return document.Bool(v.True()), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		seq := &document.Sequence{}
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			n, err := ctyToNode(elem)
			if err != nil {
				return nil, err
			}
			seq.Append(n)
		}
		return seq, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := document.NewMapping()
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			n, err := ctyToNode(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			m.Set(key.AsString(), n)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
}

func numberNode(f *big.Float) *document.Scalar {
	if f.IsInt() {
		if i, acc := f.Int64(); acc == big.Exact {
			return document.Int(i)
		}
		return document.Number(f.Text('f', 0), true)
	}
	return document.Number(f.Text('g', -1), false)
}
