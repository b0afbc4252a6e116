package document

import (
	"strconv"
)

// Node is one element of a Document. It is implemented only by *Mapping,
// *Sequence and *Scalar.
type Node interface {
	node()
	// Clone returns a deep copy of the node.
	Clone() Node
}

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Node
}

// Mapping is an ordered key/value node. Entry order is the source order.
type Mapping struct {
	Entries []Entry
}

// Sequence is an ordered list node.
type Sequence struct {
	Items []Node
}

// ScalarKind identifies the literal type of a Scalar.
type ScalarKind int

const (
	KindNull ScalarKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k ScalarKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Scalar is a leaf. Raw holds the literal text: the string contents for
// KindString, the source spelling for numbers, "true"/"false" for booleans
// and "null" for KindNull.
type Scalar struct {
	Kind ScalarKind
	Raw  string
	// Comment is the human annotation an adapter found next to the leaf, if
	// it collects any.
	Comment string
}

func (*Mapping) node()  {}
func (*Sequence) node() {}
func (*Scalar) node()   {}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{}
}

// Set appends key or replaces its value if it is already present.
func (m *Mapping) Set(key string, value Node) {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries[i].Value = value
			return
		}
	}
	m.Entries = append(m.Entries, Entry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether every key is present.
func (m *Mapping) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := m.Get(k); !ok {
			return false
		}
	}
	return true
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.Entries) }

func (m *Mapping) Clone() Node {
	out := &Mapping{Entries: make([]Entry, len(m.Entries))}
	for i, e := range m.Entries {
		out.Entries[i] = Entry{Key: e.Key, Value: cloneNode(e.Value)}
	}
	return out
}

// Append adds items to the end of the sequence.
func (s *Sequence) Append(items ...Node) {
	s.Items = append(s.Items, items...)
}

func (s *Sequence) Clone() Node {
	out := &Sequence{Items: make([]Node, len(s.Items))}
	for i, it := range s.Items {
		out.Items[i] = cloneNode(it)
	}
	return out
}

func (s *Scalar) Clone() Node {
	c := *s
	return &c
}

func cloneNode(n Node) Node {
	if n == nil {
		return nil
	}
	return n.Clone()
}

// Null returns a null scalar.
func Null() *Scalar { return &Scalar{Kind: KindNull, Raw: "null"} }

// Bool returns a boolean scalar.
func Bool(b bool) *Scalar { return &Scalar{Kind: KindBool, Raw: strconv.FormatBool(b)} }

// Int returns an integer scalar.
func Int(i int64) *Scalar { return &Scalar{Kind: KindInt, Raw: strconv.FormatInt(i, 10)} }

// Number returns an integer or float scalar holding raw as written in the
// source. Raw must already be a valid numeric literal.
func Number(raw string, integral bool) *Scalar {
	if integral {
		return &Scalar{Kind: KindInt, Raw: raw}
	}
	return &Scalar{Kind: KindFloat, Raw: raw}
}

// String returns a string scalar.
func String(s string) *Scalar { return &Scalar{Kind: KindString, Raw: s} }

// Equal reports whether two scalars hold the same literal.
func (s *Scalar) Equal(o *Scalar) bool {
	return s.Kind == o.Kind && s.Raw == o.Raw
}
