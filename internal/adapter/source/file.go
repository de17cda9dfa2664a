package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/couchcryptid/narcan-map/internal/domain"
)

// FileLoader reads the case CSV from the local filesystem.
// It implements domain.Loader.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for csvPath under basePath. An empty basePath
// leaves csvPath relative to the working directory.
func NewFileLoader(basePath, csvPath string) *FileLoader {
	if basePath == "" {
		return &FileLoader{path: filepath.Clean(csvPath)}
	}
	return &FileLoader{path: filepath.Join(basePath, csvPath)}
}

// Path returns the resolved file path.
func (l *FileLoader) Path() string { return l.path }

// Load reads the whole file.
func (l *FileLoader) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.LoadError(l.path, err)
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", domain.LoadError(l.path, err)
	}
	return string(data), nil
}
