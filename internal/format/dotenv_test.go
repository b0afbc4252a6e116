package format

import (
	"testing"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotenv_Template(t *testing.T) {
	// --- Arrange ---
	f, err := Lookup("dotenv")
	require.NoError(t, err)
	src := `# database settings
DB_HOST=localhost
export DB_PORT=5432
API_KEY="abc 123"
`

	// --- Act ---
	out, cat := roundTrip(t, f, DefaultOptions(), nil, envSource{env: "default", src: src})

	// --- Assert ---
	want := `DB_HOST="{{ cloudtruth.parameters.DB_HOST }}"
DB_PORT="{{ cloudtruth.parameters.DB_PORT }}"
API_KEY="{{ cloudtruth.parameters.API_KEY }}"
`
	assert.Equal(t, want, out)

	require.Equal(t, []document.Path{"[DB_HOST]", "[DB_PORT]", "[API_KEY]"}, cat.Paths())
	p, _ := cat.Get("[DB_PORT]")
	assert.Equal(t, catalog.TypeString, p.Type)
	v, _ := p.Values.Get("default")
	assert.Equal(t, "5432", v)
	p, _ = cat.Get("[API_KEY]")
	assert.True(t, p.Secret)
}

func TestDotenv_FirstOccurrenceOrderLastValue(t *testing.T) {
	n, err := newDotenv().Parse("default", ".env", []byte("B=1\nA=2\nB=3\n"))
	require.NoError(t, err)

	want := &document.Mapping{Entries: []document.Entry{
		{Key: "B", Value: document.String("3")},
		{Key: "A", Value: document.String("2")},
	}}
	assert.Equal(t, want, n)
}

func TestDotenv_EncodeRejectsNestedTemplate(t *testing.T) {
	tmpl := &document.Mapping{Entries: []document.Entry{{Key: "A", Value: document.NewMapping()}}}
	_, err := newDotenv().Encode(tmpl, catalog.New())
	assert.ErrorIs(t, err, ErrTemplateShape)
}
