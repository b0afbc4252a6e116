package document

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Native converts n into plain Go values suitable for JSON encoding:
// map[string]any, []any, bool, int64, float64, json.Number, string or nil.
func Native(n Node) any {
	switch v := n.(type) {
	case *Mapping:
		out := make(map[string]any, len(v.Entries))
		for _, e := range v.Entries {
			out[e.Key] = Native(e.Value)
		}
		return out
	case *Sequence:
		out := make([]any, len(v.Items))
		for i, it := range v.Items {
			out[i] = Native(it)
		}
		return out
	case *Scalar:
		return v.Native()
	}
	return nil
}

// Native returns the Go value of the scalar.
func (s *Scalar) Native() any {
	switch s.Kind {
	case KindNull:
		return nil
	case KindBool:
		return s.Raw == "true"
	case KindInt:
		if i, err := strconv.ParseInt(s.Raw, 0, 64); err == nil {
			return i
		}
		// Too large for int64; keep the literal.
		if json.Valid([]byte(s.Raw)) {
			return json.Number(s.Raw)
		}
		return s.Raw
	case KindFloat:
		if f, err := strconv.ParseFloat(s.Raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
		return s.Raw
	}
	return s.Raw
}

// Text renders a Go value produced by Native (or decoded from a persisted
// catalog) the way it is usually spelled in configuration source. ok is
// false for nil and for collections, which have no single literal form.
func Text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case map[string]any, []any:
		return "", false
	}
	return fmt.Sprint(v), true
}
