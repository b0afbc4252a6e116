package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/specialistvlad/dynimport/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReference(t *testing.T) {
	assert.Equal(t, "{{ cloudtruth.parameters.db_password }}", Reference("db_password"))
}

func TestQuotedReferencePattern(t *testing.T) {
	re := QuotedReferencePattern("a.b", '"')
	out := re.ReplaceAllString(`x: "{{  cloudtruth.parameters.a.b }}", y: "{{ cloudtruth.parameters.aXb }}"`, "$1")
	assert.Equal(t, `x: {{  cloudtruth.parameters.a.b }}, y: "{{ cloudtruth.parameters.aXb }}"`, out)
}

func TestType_Coerce(t *testing.T) {
	assert.Equal(t, TypeString, TypeNull.Coerce())
	assert.Equal(t, TypeString, TypeTemplate.Coerce())
	assert.Equal(t, TypeInteger, TypeInteger.Coerce())
	assert.Equal(t, TypeBoolean, TypeBoolean.Coerce())
	assert.Equal(t, TypeString, Type("").Coerce())
}

func TestValues_MergeOnlyNamedEnvironments(t *testing.T) {
	var v Values
	v.Set("default", int64(80))
	v.Set("staging", int64(8080))

	var incoming Values
	incoming.Set("production", int64(443))
	v.Merge(incoming)

	assert.Equal(t, []string{"default", "staging", "production"}, v.Environments())
	got, ok := v.Get("default")
	require.True(t, ok)
	assert.Equal(t, int64(80), got)
}

func TestCatalog_PreservesOrderThroughJSON(t *testing.T) {
	// --- Arrange ---
	c := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		p := &Parameter{ParamName: name, Type: TypeInteger}
		p.Values.Set("default", int64(1))
		p.Values.Set("production", int64(2))
		c.Put(document.Path("").Key(name), p)
	}

	// --- Act ---
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, c))
	decoded, err := Decode(&buf)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, c.Paths(), decoded.Paths())
	p, ok := decoded.Get("[alpha]")
	require.True(t, ok)
	assert.Equal(t, []string{"default", "production"}, p.Values.Environments())
	v, _ := p.Values.Get("production")
	assert.Equal(t, json.Number("2"), v)
}

func TestCatalog_EncodeLayout(t *testing.T) {
	c := New()
	p := &Parameter{ParamName: "port", Type: TypeInteger}
	p.Values.Set("default", int64(80))
	c.Put("[port]", p)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, c))

	want := `{
    "[port]": {
        "param_name": "port",
        "type": "integer",
        "secret": false,
        "values": {
            "default": 80
        }
    }
}
`
	assert.Equal(t, want, buf.String())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader(`[1, 2]`))
	require.Error(t, err)

	_, err = Decode(strings.NewReader(`{"[a]": {"type": "string"}}`))
	require.ErrorIs(t, err, ErrMissingName)
}

func TestCatalog_NilIsEmpty(t *testing.T) {
	var c *Catalog
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("[x]")
	assert.False(t, ok)
	for range c.All() {
		t.Fatal("nil catalog yielded an entry")
	}
}

func TestParameter_CloneIsIndependent(t *testing.T) {
	p := &Parameter{ParamName: "a", Type: TypeString}
	p.Values.Set("default", "x")
	c := p.Clone()
	c.Values.Set("default", "y")

	v, _ := p.Values.Get("default")
	assert.Equal(t, "x", v)
}
