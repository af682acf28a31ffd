package annotation

import (
	"os"
	"path/filepath"
	"strings"

	"lungrisk/pkg/errors"
)

// FileStore keeps annotated documents in a single flat directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload folder %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes data under name, replacing any previous file.
func (s *FileStore) Save(name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	return nil
}

// Open returns the stored file. Unknown or unsafe names wrap errors.ErrNotFound.
func (s *FileStore) Open(name string) (*os.File, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, errors.Join(errors.ErrNotFound, err)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrNotFound, "file %s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, errors.Wrapf(errors.ErrNotFound, "file %s", name)
	}
	return f, nil
}

func (s *FileStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", errors.NewValidationError("filename", "Invalid file name", name)
	}
	return filepath.Join(s.dir, name), nil
}
