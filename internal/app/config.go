package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/dynimport/internal/format"
)

// ErrNoInputs is returned when a run is configured without any input file.
var ErrNoInputs = errors.New("at least one of the default values or environment values files must be provided")

// Source is one input file and the environment it belongs to.
type Source struct {
	Environment string
	Path        string
}

// ParseSource parses the "env:path" form used on the command line.
func ParseSource(s string) (Source, error) {
	env, path, ok := strings.Cut(s, ":")
	if !ok || env == "" || path == "" {
		return Source{}, fmt.Errorf("invalid environment values %q: expected env:file_path", s)
	}
	return Source{Environment: env, Path: path}, nil
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// FileType names the input format. When empty it is derived from the
	// first source's file name.
	FileType string
	Sources  []Source

	Project   string // process
	OutputDir string // process
	DataFile  string // regenerate

	ParseDescriptions bool
	SecretPatterns    []string
	JSONIndent        int

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Sources) == 0 {
		return nil, ErrNoInputs
	}
	seen := make(map[string]bool, len(cfg.Sources))
	for _, src := range cfg.Sources {
		if src.Environment == "" || src.Path == "" {
			return nil, fmt.Errorf("input %+v needs both an environment and a path", src)
		}
		if seen[src.Environment] {
			return nil, fmt.Errorf("environment %q is given more than once", src.Environment)
		}
		seen[src.Environment] = true
	}

	if cfg.FileType == "" {
		f, err := format.ForFile(cfg.Sources[0].Path)
		if err != nil {
			return nil, err
		}
		cfg.FileType = f.Name
	}
	if _, err := format.Lookup(cfg.FileType); err != nil {
		return nil, err
	}

	if cfg.JSONIndent < 0 {
		return nil, errors.New("JSONIndent cannot be negative")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &cfg, nil
}
