package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File provides a file-based store with one JSON file per collection.
type File struct {
	basePath string
}

// NewFile creates a new File store and ensures the base directory exists.
func NewFile(basePath string) (*File, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &File{basePath: basePath}, nil
}

func (s *File) path(collection string) string {
	return filepath.Join(s.basePath, collection+".json")
}

// Load reads the collection file.
func (s *File) Load(_ context.Context, collection string) ([]byte, error) {
	if err := checkName(collection); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(collection))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}
	return data, nil
}

// Save writes the collection to a temporary file and renames it into place.
func (s *File) Save(_ context.Context, collection string, data []byte) error {
	if err := checkName(collection); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.basePath, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write collection file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close collection file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(collection)); err != nil {
		return fmt.Errorf("failed to replace collection file: %w", err)
	}
	return nil
}
