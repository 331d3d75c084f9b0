package storage

import (
	"context"       // ImageStore signature
	"errors"        // Missing file check
	"io/fs"         // fs.ErrNotExist
	"os"            // File writes
	"path"          // URL joining
	"path/filepath" // Disk paths

	"github.com/google/uuid" // File names
)

// LocalStore writes images to a directory served under URLPrefix. Used in development.
type LocalStore struct {
	Dir       string
	URLPrefix string
	maxBytes  int64
}

// NewLocalStore creates dir if needed
func NewLocalStore(dir, urlPrefix string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap("create upload dir", err)
	}
	return &LocalStore{Dir: dir, URLPrefix: urlPrefix, maxBytes: maxBytes}, nil
}

func (s *LocalStore) Upload(_ context.Context, u Upload) (Image, error) {
	ext, err := Check(u, s.maxBytes)
	if err != nil {
		return Image{}, err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.Dir, name), u.Data, 0o644); err != nil {
		return Image{}, wrap("upload", err)
	}
	return Image{URL: path.Join(s.URLPrefix, name), Ref: name}, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	// refs are bare file names; never follow a path out of Dir
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(ref)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return wrap("delete", err)
	}
	return nil
}
