// Package file provides a directory-backed document repository: each
// workflow document lives in <root>/<name>.yaml.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loadwise/tracy/pkg/dsl"
	"github.com/loadwise/tracy/pkg/repository"
)

const documentExtension = ".yaml"

// Repository implements repository.DocumentRepository over a directory of
// YAML documents.
type Repository struct {
	root string
}

func NewRepository(root string) *Repository {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Repository{root: cleanRoot}
}

func (r *Repository) Document(ctx context.Context, name string) (*dsl.Input, error) {
	path, err := r.documentPath(name)
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", repository.ErrDocumentNotFound, name)
		}

		return nil, fmt.Errorf("reading document %q: %w", name, err)
	}

	input, err := dsl.Load(source)
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", name, err)
	}

	return input, nil
}

func (r *Repository) Documents(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("listing documents in %q: %w", r.root, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentExtension) {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), documentExtension))
	}

	sort.Strings(names)

	return names, nil
}

func (r *Repository) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(r.root); err != nil {
		return fmt.Errorf("document root %q: %w", r.root, err)
	}

	return nil
}

func (r *Repository) Close(_ context.Context) error {
	return nil
}

// documentPath rejects names that would escape the document root.
func (r *Repository) documentPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", repository.ErrInvalidDocumentName, name)
	}

	return filepath.Join(r.root, name+documentExtension), nil
}
