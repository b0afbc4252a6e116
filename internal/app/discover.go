package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/specialistvlad/dynimport/internal/format"
	"github.com/specialistvlad/dynimport/internal/fsutil"
)

// Discovered is a configuration file found under a scanned directory.
type Discovered struct {
	Path   string
	Format string
	// Project is the name of the directory holding the file, the default
	// project the file would be imported into.
	Project string
}

// Discover walks roots and reports every file with a supported format. When
// formats is not empty only those formats are reported.
func Discover(fs afero.Fs, roots, exclude, formats []string) ([]Discovered, error) {
	wanted := make(map[string]bool, len(formats))
	for _, name := range formats {
		f, err := format.Lookup(name)
		if err != nil {
			return nil, err
		}
		wanted[f.Name] = true
	}

	var found []Discovered
	for _, root := range roots {
		paths, err := fsutil.FindFiles(fs, root, exclude, func(path string) bool {
			f, err := format.ForFile(path)
			return err == nil && (len(wanted) == 0 || wanted[f.Name])
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
		for _, p := range paths {
			f, _ := format.ForFile(p)
			found = append(found, Discovered{
				Path:    p,
				Format:  f.Name,
				Project: filepath.Base(filepath.Dir(p)),
			})
		}
	}
	return found, nil
}
