package format

import (
	"testing"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceYAML = `service:
  name: billing
  # port the service listens on
  port: 8080
  debug: false
  greeting: "hello {{ user }}"
hosts:
  - a.example.com
  - b.example.com
`

func TestYAML_Template(t *testing.T) {
	// --- Arrange ---
	f, err := Lookup("yaml")
	require.NoError(t, err)

	// --- Act ---
	out, cat := roundTrip(t, f, DefaultOptions(), nil, envSource{env: "default", src: serviceYAML})

	// --- Assert ---
	assert.Contains(t, out, "name: '{{ cloudtruth.parameters.service_name }}'")
	assert.Contains(t, out, "port: {{ cloudtruth.parameters.service_port }}")
	assert.Contains(t, out, "debug: {{ cloudtruth.parameters.service_debug }}")
	assert.Contains(t, out, "# port the service listens on")
	assert.Contains(t, out, "- '{{ cloudtruth.parameters.hosts_1 }}'")
	assert.NotContains(t, out, "billing")

	p, ok := cat.Get("[service][greeting]")
	require.True(t, ok)
	assert.Equal(t, catalog.TypeTemplate, p.Type)
	p, _ = cat.Get("[service][port]")
	assert.Equal(t, catalog.TypeInteger, p.Type)
	assert.Equal(t, "port the service listens on", p.Description)
}

func TestYAML_MultipleEnvironments(t *testing.T) {
	f, err := Lookup("yaml")
	require.NoError(t, err)

	_, cat := roundTrip(t, f, DefaultOptions(), nil,
		envSource{env: "default", src: "replicas: 1\nregion: eu-west-1\n"},
		envSource{env: "production", src: "replicas: 5\nregion: us-east-1\n"},
	)

	p, ok := cat.Get("[replicas]")
	require.True(t, ok)
	v, _ := p.Values.Get("production")
	assert.Equal(t, int64(5), v)
	p, _ = cat.Get("[region]")
	v, _ = p.Values.Get("default")
	assert.Equal(t, "eu-west-1", v)
}

func TestYAML_SingleQuotedValueUsesDoubleQuotes(t *testing.T) {
	f, err := Lookup("yaml")
	require.NoError(t, err)

	out, _ := roundTrip(t, f, DefaultOptions(), nil, envSource{env: "default", src: `quoted: "'literal'"` + "\n"})

	assert.Equal(t, "quoted: \"{{ cloudtruth.parameters.quoted }}\"\n", out)
}

func TestYAML_ParseResolvesAliasesAndComments(t *testing.T) {
	src := `base: &base
  timeout: 30 # seconds
copy: *base
`
	n, err := newYAML().Parse("default", "a.yaml", []byte(src))
	require.NoError(t, err)

	m := n.(*document.Mapping)
	copied, ok := m.Get("copy")
	require.True(t, ok)
	timeout, ok := copied.(*document.Mapping).Get("timeout")
	require.True(t, ok)
	assert.Equal(t, "30", timeout.(*document.Scalar).Raw)
	assert.Equal(t, "seconds", timeout.(*document.Scalar).Comment)
}

func TestYAML_EmptyAndScalarDocuments(t *testing.T) {
	a := newYAML()
	n, err := a.Parse("default", "empty.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, document.NewMapping(), n)

	out, err := a.Encode(n, catalog.New())
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)

	_, err = newYAML().Parse("default", "scalar.yaml", []byte("just text\n"))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "YAML", decodeErr.Format)
}

func TestYAML_AliasesAndMergeKeysGetTheirOwnReferences(t *testing.T) {
	// --- Arrange ---
	f, err := Lookup("yaml")
	require.NoError(t, err)
	src := `base: &b
  host: db.local
  port: 5432
svc:
  <<: *b
  port: 6543
primary: &p 8080
fallback: *p
`

	// --- Act ---
	out, cat := roundTrip(t, f, DefaultOptions(), nil, envSource{env: "default", src: src})

	// --- Assert ---
	assert.Equal(t, []document.Path{
		"[base][host]", "[base][port]",
		"[svc][host]", "[svc][port]",
		"[primary]", "[fallback]",
	}, cat.Paths())
	for _, p := range cat.All() {
		assert.Contains(t, out, p.Reference(), "every parameter is referenced by the template")
	}
	assert.Contains(t, out, "svc:\n  host: '{{ cloudtruth.parameters.svc_host }}'\n  port: {{ cloudtruth.parameters.svc_port }}\n")
	assert.Contains(t, out, "fallback: {{ cloudtruth.parameters.fallback }}")
	assert.NotContains(t, out, "<<")
	assert.NotContains(t, out, "*b")
	assert.NotContains(t, out, "*p")

	p, _ := cat.Get("[svc][port]")
	v, _ := p.Values.Get("default")
	assert.Equal(t, int64(6543), v)
	p, _ = cat.Get("[svc][host]")
	v, _ = p.Values.Get("default")
	assert.Equal(t, "db.local", v)
}
