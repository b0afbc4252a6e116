package format

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
	"github.com/specialistvlad/dynimport/internal/engine"
)

// Adapter parses and encodes one format. Adapters keep the sources they
// parsed, so a fresh instance is needed for every run.
type Adapter interface {
	// Parse decodes the file of one environment. It returns a *DecodeError
	// when src is not valid for the format.
	Parse(env, filename string, src []byte) (document.Node, error)
	// Encode renders the template text for the extracted document.
	Encode(template document.Node, cat *catalog.Catalog) (string, error)
}

// Options tune adapter output.
type Options struct {
	// JSONIndent is the number of spaces per JSON nesting level. Zero writes
	// a single line.
	JSONIndent int
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{JSONIndent: 4}
}

// Format describes one supported file type.
type Format struct {
	Name       string
	Extensions []string
	// TemplatedStrings enables detection of values that already contain
	// template references.
	TemplatedStrings bool
	// Descriptions is set when the adapter reports source comments.
	Descriptions bool

	newAdapter func(Options) Adapter
}

// New returns a fresh adapter for the format.
func (f Format) New(opts Options) Adapter {
	return f.newAdapter(opts)
}

var registry = map[string]Format{
	"json": {
		Name:       "json",
		Extensions: []string{".json"},
		newAdapter: func(o Options) Adapter { return newJSON(o) },
	},
	"yaml": {
		Name:             "yaml",
		Extensions:       []string{".yaml", ".yml"},
		TemplatedStrings: true,
		Descriptions:     true,
		newAdapter:       func(Options) Adapter { return newYAML() },
	},
	"dotenv": {
		Name:       "dotenv",
		Extensions: []string{".env"},
		newAdapter: func(Options) Adapter { return newDotenv() },
	},
	"tf": {
		Name:       "tf",
		Extensions: []string{".tf"},
		newAdapter: func(Options) Adapter { return newTF() },
	},
	"tfvars": {
		Name:       "tfvars",
		Extensions: []string{".tfvars"},
		newAdapter: func(Options) Adapter { return newTFVars() },
	},
}

// Lookup returns the format registered under name, ignoring case.
func Lookup(name string) (Format, error) {
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return Format{}, &UnsupportedFormatError{Name: name}
	}
	return f, nil
}

// ForFile picks a format from a file name. Any base name starting with
// ".env" is dotenv, whatever follows.
func ForFile(path string) (Format, error) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".env") {
		return registry["dotenv"], nil
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, name := range Names() {
		if slices.Contains(registry[name].Extensions, ext) {
			return registry[name], nil
		}
	}
	return Format{}, &UnsupportedFormatError{Name: base}
}

// Names lists the registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// sources remembers what an adapter parsed, per environment, and picks the
// one that seeds the template the same way the engine does.
type sources[T any] struct {
	envs  []string
	byEnv map[string]T
}

func (s *sources[T]) add(env string, v T) {
	if s.byEnv == nil {
		s.byEnv = make(map[string]T)
	}
	if _, ok := s.byEnv[env]; !ok {
		s.envs = append(s.envs, env)
	}
	s.byEnv[env] = v
}

func (s *sources[T]) seed() (T, string, bool) {
	if v, ok := s.byEnv[engine.DefaultEnvironment]; ok {
		return v, engine.DefaultEnvironment, true
	}
	var zero T
	if len(s.envs) != 1 {
		return zero, "", false
	}
	return s.byEnv[s.envs[0]], s.envs[0], true
}
