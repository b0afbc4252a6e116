package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/dynimport/internal/document"
)

var (
	// ErrNoInputs is returned when Extract is called without documents.
	ErrNoInputs = errors.New("no input documents")
	// ErrNoDefault is returned when several environments are given and none
	// of them is named "default".
	ErrNoDefault = errors.New(`the "default" environment is required when more than one environment is given`)
	// ErrDuplicateEnvironment is returned when two inputs name the same
	// environment.
	ErrDuplicateEnvironment = errors.New("duplicate environment")
)

// CollisionError reports distinct paths that derive the same parameter name.
type CollisionError struct {
	Name  string
	Paths []document.Path
}

func (e *CollisionError) Error() string {
	paths := make([]string, len(e.Paths))
	for i, p := range e.Paths {
		paths[i] = string(p)
	}
	return fmt.Sprintf("parameter name %q is derived from more than one path: %s", e.Name, strings.Join(paths, ", "))
}
