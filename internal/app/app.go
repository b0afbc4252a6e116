package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/classify"
	"github.com/specialistvlad/dynimport/internal/ctxlog"
	"github.com/specialistvlad/dynimport/internal/engine"
	"github.com/specialistvlad/dynimport/internal/format"
)

const (
	templateExt = ".cttemplate"
	catalogExt  = ".ctconfig"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	fs     afero.Fs
	logger *slog.Logger
	config *Config
	format format.Format
}

// Artifacts describes what a run produced.
type Artifacts struct {
	TemplatePath string
	// CatalogPath is empty for runs that only rewrite the template.
	CatalogPath string
	Template    string
	Catalog     *catalog.Catalog
}

// NewApp is the constructor for the main application. It returns an App with
// its own isolated logger writing to outW.
func NewApp(outW io.Writer, fs afero.Fs, cfg *Config) (*App, error) {
	f, err := format.Lookup(cfg.FileType)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{fs: fs, logger: logger, config: cfg, format: f}, nil
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Process extracts parameters from every configured source and writes
// <project>-<format>.cttemplate and <project>-<format>.ctconfig to the output
// directory.
func (a *App) Process(ctx context.Context) (*Artifacts, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Process method started.")

	adapter := a.format.New(a.formatOptions())
	res, err := a.extract(ctx, adapter, nil)
	if err != nil {
		return nil, err
	}
	body, err := adapter.Encode(res.Template, res.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s template: %w", a.format.Name, err)
	}

	if err := a.fs.MkdirAll(a.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	base := fmt.Sprintf("%s-%s", a.config.Project, a.format.Name)
	out := &Artifacts{
		TemplatePath: filepath.Join(a.config.OutputDir, base+templateExt),
		CatalogPath:  filepath.Join(a.config.OutputDir, base+catalogExt),
		Template:     body,
		Catalog:      res.Catalog,
	}

	a.logger.Info("Writing template.", "path", out.TemplatePath)
	if err := afero.WriteFile(a.fs, out.TemplatePath, []byte(body), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	a.logger.Info("Writing config data.", "path", out.CatalogPath, "parameters", res.Catalog.Len())
	if err := a.writeCatalog(out.CatalogPath, res.Catalog); err != nil {
		return nil, err
	}

	a.logger.Debug("App.Process method finished.")
	return out, nil
}

// Regenerate re-extracts the sources using the catalog in DataFile as hints
// and writes <first-input-basename>.cttemplate next to the catalog.
func (a *App) Regenerate(ctx context.Context) (*Artifacts, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Regenerate method started.", "data_file", a.config.DataFile)

	if a.config.DataFile == "" {
		return nil, fmt.Errorf("regeneration needs a config data file")
	}
	hints, err := a.readCatalog(a.config.DataFile)
	if err != nil {
		return nil, err
	}

	adapter := a.format.New(a.formatOptions())
	res, err := a.extract(ctx, adapter, hints)
	if err != nil {
		return nil, err
	}
	body, err := adapter.Encode(res.Template, res.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s template: %w", a.format.Name, err)
	}

	first := filepath.Base(a.config.Sources[0].Path)
	name := strings.TrimSuffix(first, filepath.Ext(first)) + templateExt
	out := &Artifacts{
		TemplatePath: filepath.Join(filepath.Dir(a.config.DataFile), name),
		Template:     body,
		Catalog:      res.Catalog,
	}

	a.logger.Info("Writing template.", "path", out.TemplatePath)
	if err := afero.WriteFile(a.fs, out.TemplatePath, []byte(body), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}

	a.logger.Debug("App.Regenerate method finished.")
	return out, nil
}

func (a *App) formatOptions() format.Options {
	return format.Options{JSONIndent: a.config.JSONIndent}
}

// extract parses every source with adapter and runs the engine over them.
func (a *App) extract(ctx context.Context, adapter format.Adapter, hints *catalog.Catalog) (*engine.Result, error) {
	inputs := make([]engine.Input, 0, len(a.config.Sources))
	for _, src := range a.config.Sources {
		a.logger.Info("Using environment values.", "env", src.Environment, "path", src.Path)
		data, err := afero.ReadFile(a.fs, src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s values for %q: %w", a.format.Name, src.Environment, err)
		}
		doc, err := adapter.Parse(src.Environment, src.Path, data)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, engine.Input{Environment: src.Environment, Document: doc})
	}

	eng, err := a.newEngine(adapter)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Processing files.", "format", a.format.Name, "environments", len(inputs), "hinted", hints.Len() > 0)
	res, err := eng.Extract(ctx, inputs, hints)
	if err != nil {
		return nil, fmt.Errorf("failed to extract parameters: %w", err)
	}
	return res, nil
}

func (a *App) newEngine(adapter format.Adapter) (*engine.Engine, error) {
	classifierOpts := []classify.Option{classify.WithTemplateDetection(a.format.TemplatedStrings)}
	if len(a.config.SecretPatterns) > 0 {
		classifierOpts = append(classifierOpts, classify.WithSecretPatterns(a.config.SecretPatterns...))
	}
	c, err := classify.New(classifierOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure classifier: %w", err)
	}

	opts := []engine.Option{
		engine.WithClassifier(c),
		engine.WithDescriptions(a.config.ParseDescriptions && a.format.Descriptions),
	}
	if i, ok := adapter.(engine.Interceptor); ok {
		opts = append(opts, engine.WithInterceptor(i))
	}
	return engine.New(opts...), nil
}

func (a *App) readCatalog(path string) (*catalog.Catalog, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config data: %w", err)
	}
	c, err := catalog.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config data %s: %w", path, err)
	}
	return c, nil
}

func (a *App) writeCatalog(path string, c *catalog.Catalog) error {
	var buf bytes.Buffer
	if err := catalog.Encode(&buf, c); err != nil {
		return fmt.Errorf("failed to encode config data: %w", err)
	}
	if err := afero.WriteFile(a.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config data: %w", err)
	}
	return nil
}
