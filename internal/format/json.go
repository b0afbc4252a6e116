package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
)

type jsonAdapter struct {
	indent int
}

func newJSON(o Options) *jsonAdapter {
	return &jsonAdapter{indent: o.JSONIndent}
}

func (a *jsonAdapter) Parse(_, filename string, src []byte) (document.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	n, err := decodeJSONValue(dec)
	if err != nil {
		return nil, &DecodeError{Filename: filename, Format: "JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Filename: filename, Format: "JSON", Err: errors.New("unexpected data after the top-level value")}
	}
	if _, ok := n.(*document.Scalar); ok {
		return nil, &DecodeError{Filename: filename, Format: "JSON", Err: errors.New("top-level value must be an object or an array")}
	}
	return n, nil
}

func decodeJSONValue(dec *json.Decoder) (document.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := document.NewMapping()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("expected an object key, got %v", kt)
				}
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, v)
			}
			_, err := dec.Token()
			return m, err
		case '[':
			seq := &document.Sequence{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				seq.Append(v)
			}
			_, err := dec.Token()
			return seq, err
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return document.String(t), nil
	case json.Number:
		return document.Number(t.String(), !strings.ContainsAny(t.String(), ".eE")), nil
	case bool:
		return document.Bool(t), nil
	case nil:
		return document.Null(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func (a *jsonAdapter) Encode(template document.Node, cat *catalog.Catalog) (string, error) {
	var b strings.Builder
	if err := a.write(&b, template, 0); err != nil {
		return "", err
	}
	return unquoteReferences(b.String(), cat, `"`), nil
}

// write renders n with the layout of Python's json.dumps: ", " and ": "
// separators on a single line, or one element per line when indenting.
func (a *jsonAdapter) write(b *strings.Builder, n document.Node, depth int) error {
	switch v := n.(type) {
	case *document.Mapping:
		if len(v.Entries) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteByte('{')
		for i, e := range v.Entries {
			a.separate(b, i, depth+1)
			b.WriteString(quoteJSON(e.Key))
			b.WriteString(": ")
			if err := a.write(b, e.Value, depth+1); err != nil {
				return err
			}
		}
		a.close(b, depth)
		b.WriteByte('}')
	case *document.Sequence:
		if len(v.Items) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteByte('[')
		for i, it := range v.Items {
			a.separate(b, i, depth+1)
			if err := a.write(b, it, depth+1); err != nil {
				return err
			}
		}
		a.close(b, depth)
		b.WriteByte(']')
	case *document.Scalar:
		if v.Kind == document.KindString {
			b.WriteString(quoteJSON(v.Raw))
			return nil
		}
		b.WriteString(v.Raw)
	default:
		return fmt.Errorf("%w: unexpected node %T", ErrTemplateShape, n)
	}
	return nil
}

func (a *jsonAdapter) separate(b *strings.Builder, i, depth int) {
	if i > 0 {
		b.WriteByte(',')
		if a.indent == 0 {
			b.WriteByte(' ')
		}
	}
	if a.indent > 0 {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", a.indent*depth))
	}
}

func (a *jsonAdapter) close(b *strings.Builder, depth int) {
	if a.indent > 0 {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", a.indent*depth))
	}
}

func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
