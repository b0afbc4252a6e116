// Package catalog holds the parameter catalog produced by an extraction run:
// an ordered mapping from document path to parameter metadata and
// per-environment values. A persisted catalog is fed back into later runs as
// hints.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/specialistvlad/dynimport/internal/document"
)

// Parameter is one externally managed value.
type Parameter struct {
	ParamName   string `json:"param_name"`
	Type        Type   `json:"type"`
	Secret      bool   `json:"secret"`
	Description string `json:"description,omitempty"`
	Values      Values `json:"values"`
}

// Clone returns a copy that shares nothing with p.
func (p *Parameter) Clone() *Parameter {
	c := *p
	c.Values = p.Values.Clone()
	return &c
}

// Reference is the placeholder text for the parameter.
func (p *Parameter) Reference() string {
	return Reference(p.ParamName)
}

// Catalog is an insertion-ordered set of parameters keyed by path. A nil
// *Catalog behaves as an empty one for reads.
type Catalog struct {
	paths   []document.Path
	entries map[document.Path]*Parameter
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[document.Path]*Parameter)}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.paths)
}

// Get returns the parameter stored at p.
func (c *Catalog) Get(p document.Path) (*Parameter, bool) {
	if c == nil {
		return nil, false
	}
	param, ok := c.entries[p]
	return param, ok
}

// Put stores param at p. A new path is appended; an existing one keeps its
// position.
func (c *Catalog) Put(p document.Path, param *Parameter) {
	if _, ok := c.entries[p]; !ok {
		c.paths = append(c.paths, p)
	}
	c.entries[p] = param
}

// Paths lists the stored paths in insertion order.
func (c *Catalog) Paths() []document.Path {
	if c == nil {
		return nil
	}
	return append([]document.Path(nil), c.paths...)
}

// All iterates over the catalog in insertion order.
func (c *Catalog) All() iter.Seq2[document.Path, *Parameter] {
	return func(yield func(document.Path, *Parameter) bool) {
		if c == nil {
			return
		}
		for _, p := range c.paths {
			if !yield(p, c.entries[p]) {
				return
			}
		}
	}
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range c.Paths() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(p))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.entries[p])
		if err != nil {
			return nil, fmt.Errorf("failed to encode parameter %s: %w", p, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	*c = *New()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeObject(dec, func(key string) error {
		var param Parameter
		if err := dec.Decode(&param); err != nil {
			return fmt.Errorf("parameter %s: %w", key, err)
		}
		if param.ParamName == "" {
			return fmt.Errorf("parameter %s: %w", key, ErrMissingName)
		}
		c.Put(document.Path(key), &param)
		return nil
	})
}

// ErrMissingName is returned when a persisted entry carries no param_name.
var ErrMissingName = errors.New("param_name is required")

// Decode reads a persisted catalog.
func Decode(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return c, nil
}

// Encode writes c as indented JSON, preserving catalog order.
func Encode(w io.Writer, c *Catalog) error {
	if c == nil {
		c = New()
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return fmt.Errorf("failed to indent catalog: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}
