package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/docentes-portal/backend/internal/storage"
)

// Source supplies the workbook for a fixed-location sync.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads the workbook from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return data, nil
}

func (s FileSource) String() string { return "file " + s.Path }

// ObjectReader fetches an object from blob storage.
type ObjectReader interface {
	ReadObject(ctx context.Context, key string) ([]byte, error)
}

// ObjectSource reads the workbook from an object store key.
type ObjectSource struct {
	Store ObjectReader
	Key   string
}

func (s ObjectSource) Read(ctx context.Context) ([]byte, error) {
	data, err := s.Store.ReadObject(ctx, s.Key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: object %s", ErrSourceMissing, s.Key)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", s.Key, err)
	}
	return data, nil
}

func (s ObjectSource) String() string { return "object " + s.Key }
