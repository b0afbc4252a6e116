// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

// IgnoredDirs are directory names that never hold configuration worth
// importing.
var IgnoredDirs = []string{
	".git",
	".github",
	".vscode",
	"__pycache__",
	"venv",
	"node_modules",
	"dist",
	"build",
	"target",
}

// FindFiles recursively searches rootPath for files accepted by match. It
// does not descend into IgnoredDirs or into any directory whose cleaned path
// is listed in exclude. Paths are returned in lexical walk order.
func FindFiles(fs afero.Fs, rootPath string, exclude []string, match func(path string) bool) ([]string, error) {
	excluded := make([]string, len(exclude))
	for i, e := range exclude {
		excluded[i] = filepath.Clean(e)
	}

	var files []string
	err := afero.Walk(fs, rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != rootPath && (slices.Contains(IgnoredDirs, info.Name()) || slices.Contains(excluded, filepath.Clean(path))) {
				return filepath.SkipDir
			}
			return nil
		}
		if match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
