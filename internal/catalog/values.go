package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Values maps environment names to the literal a parameter had in that
// environment. Environments keep the order in which they were first set.
type Values struct {
	envs []string
	m    map[string]any
}

// Set records val for env, replacing any earlier value for that environment.
func (v *Values) Set(env string, val any) {
	if v.m == nil {
		v.m = make(map[string]any)
	}
	if _, ok := v.m[env]; !ok {
		v.envs = append(v.envs, env)
	}
	v.m[env] = val
}

// Get returns the value recorded for env.
func (v Values) Get(env string) (any, bool) {
	val, ok := v.m[env]
	return val, ok
}

// Environments lists the environments in insertion order.
func (v Values) Environments() []string {
	return append([]string(nil), v.envs...)
}

func (v Values) Len() int { return len(v.envs) }

// Merge writes every environment named in o into v. Environments o does not
// name are left alone.
func (v *Values) Merge(o Values) {
	for _, env := range o.envs {
		v.Set(env, o.m[env])
	}
}

func (v Values) Clone() Values {
	var out Values
	for _, env := range v.envs {
		out.Set(env, v.m[env])
	}
	return out
}

func (v Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, env := range v.envs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(env)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.m[env])
		if err != nil {
			return nil, fmt.Errorf("failed to encode value for environment %q: %w", env, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v *Values) UnmarshalJSON(data []byte) error {
	*v = Values{}
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeObject(dec, func(key string) error {
		var val any
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("environment %q: %w", key, err)
		}
		v.Set(key, val)
		return nil
	})
}

// decodeObject walks one JSON object from dec in document order, calling fn
// with each key while dec is positioned at the matching value.
func decodeObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
