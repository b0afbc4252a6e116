package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/engine"
	"github.com/specialistvlad/dynimport/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_WritesTemplateAndCatalog(t *testing.T) {
	// --- Arrange ---
	a, fs, logs := SetupAppTest(t, Config{
		Sources: []Source{
			{Environment: "default", Path: "/in/app.json"},
			{Environment: "production", Path: "/in/app.prod.json"},
		},
		Project:    "billing",
		OutputDir:  "/out",
		JSONIndent: 0,
	}, map[string]string{
		"/in/app.json":      `{"retries": 3, "debug": false, "name": "svc"}`,
		"/in/app.prod.json": `{"retries": 5, "debug": false, "name": "svc-prod"}`,
	})

	// --- Act ---
	out, err := a.Process(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "billing-json.cttemplate"), out.TemplatePath)
	assert.Equal(t, filepath.Join("/out", "billing-json.ctconfig"), out.CatalogPath)

	body, err := afero.ReadFile(fs, out.TemplatePath)
	require.NoError(t, err)
	assert.Equal(t, `{"retries": {{ cloudtruth.parameters.retries }}, "debug": {{ cloudtruth.parameters.debug }}, "name": "{{ cloudtruth.parameters.name }}"}`, string(body))

	data, err := afero.ReadFile(fs, out.CatalogPath)
	require.NoError(t, err)
	cat, err := catalog.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	p, ok := cat.Get("[name]")
	require.True(t, ok)
	v, _ := p.Values.Get("production")
	assert.Equal(t, "svc-prod", v)

	assert.Contains(t, logs.String(), "Writing template.")
}

func TestRegenerate_ReusesCatalogNames(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"/in/values.yaml": "db:\n  password: hunter2\n  port: 5432\n",
	}
	cfg := Config{
		Sources:   []Source{{Environment: "default", Path: "/in/values.yaml"}},
		Project:   "svc",
		OutputDir: "/data",
	}
	a, fs, _ := SetupAppTest(t, cfg, files)
	first, err := a.Process(context.Background())
	require.NoError(t, err)

	// Rename a parameter the way a user would after the first import.
	data, err := afero.ReadFile(fs, first.CatalogPath)
	require.NoError(t, err)
	cat, err := catalog.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	p, _ := cat.Get("[db][port]")
	p.ParamName = "database_port"
	var buf bytes.Buffer
	require.NoError(t, catalog.Encode(&buf, cat))
	require.NoError(t, afero.WriteFile(fs, first.CatalogPath, buf.Bytes(), 0o644))

	cfg.DataFile = first.CatalogPath
	config, err := NewConfig(cfg)
	require.NoError(t, err)
	regen, err := NewApp(&SafeBuffer{}, fs, config)
	require.NoError(t, err)

	// --- Act ---
	out, err := regen.Regenerate(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "values.cttemplate"), out.TemplatePath)
	assert.Empty(t, out.CatalogPath)
	body, err := afero.ReadFile(fs, out.TemplatePath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "port: {{ cloudtruth.parameters.database_port }}")
	assert.Contains(t, string(body), "password: '{{ cloudtruth.parameters.db_password }}'")
}

func TestProcess_Errors(t *testing.T) {
	t.Run("unreadable input", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{
			Sources: []Source{{Environment: "default", Path: "/missing.json"}},
		}, nil)
		_, err := a.Process(context.Background())
		assert.Error(t, err)
	})

	t.Run("malformed input", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{
			Sources: []Source{{Environment: "default", Path: "/bad.json"}},
		}, map[string]string{"/bad.json": "{"})
		_, err := a.Process(context.Background())
		var decodeErr *format.DecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})

	t.Run("no default environment", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{
			FileType: "json",
			Sources: []Source{
				{Environment: "qa", Path: "/qa.json"},
				{Environment: "prod", Path: "/prod.json"},
			},
		}, map[string]string{"/qa.json": "{}", "/prod.json": "{}"})
		_, err := a.Process(context.Background())
		assert.ErrorIs(t, err, engine.ErrNoDefault)
	})

	t.Run("custom secret pattern", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{
			Sources:        []Source{{Environment: "default", Path: "/a.json"}},
			SecretPatterns: []string{"("},
		}, map[string]string{"/a.json": "{}"})
		_, err := a.Process(context.Background())
		assert.ErrorContains(t, err, "invalid secret pattern")
	})
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.True(t, errors.Is(err, ErrNoInputs))

	_, err = NewConfig(Config{Sources: []Source{{Environment: "default", Path: "a.ini"}}})
	assert.ErrorIs(t, err, format.ErrUnsupportedFormat)

	_, err = NewConfig(Config{Sources: []Source{
		{Environment: "default", Path: "a.json"},
		{Environment: "default", Path: "b.json"},
	}})
	assert.ErrorContains(t, err, "more than once")

	cfg, err := NewConfig(Config{Sources: []Source{{Environment: "default", Path: "deploy/.env.local"}}})
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.FileType)
	assert.Equal(t, ".", cfg.OutputDir)
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("production:config/prod.yaml")
	require.NoError(t, err)
	assert.Equal(t, Source{Environment: "production", Path: "config/prod.yaml"}, src)

	for _, bad := range []string{"prod", ":file", "prod:"} {
		_, err := ParseSource(bad)
		assert.Error(t, err, bad)
	}
}

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{"/repo/api/app.json", "/repo/api/.env.prod", "/repo/infra/main.tf", "/repo/infra/notes.txt"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte(""), 0o644))
	}

	found, err := Discover(fs, []string{"/repo"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []Discovered{
		{Path: "/repo/api/.env.prod", Format: "dotenv", Project: "api"},
		{Path: "/repo/api/app.json", Format: "json", Project: "api"},
		{Path: "/repo/infra/main.tf", Format: "tf", Project: "infra"},
	}, found)

	found, err = Discover(fs, []string{"/repo"}, nil, []string{"TF"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "tf", found[0].Format)

	_, err = Discover(fs, []string{"/repo"}, nil, []string{"ini"})
	assert.ErrorIs(t, err, format.ErrUnsupportedFormat)
}
