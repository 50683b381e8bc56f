package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SavedFile records where an uploaded file landed: the multipart field it
// arrived under, the generated filename, the path on disk and the URL it is
// served from.
type SavedFile struct {
	Field string `json:"field"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	URL   string `json:"url"`
}

// LocalStore writes uploaded files to a local directory served under /uploads.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

// Save writes src to a uniquely named file, keeping the original extension.
func (s *LocalStore) Save(field, originalName string, src io.Reader) (SavedFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return SavedFile{}, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return SavedFile{}, err
	}

	return SavedFile{
		Field: field,
		Name:  name,
		Path:  path,
		URL:   "/uploads/" + name,
	}, nil
}

// Delete removes a stored file by name. The name is sanitized so callers
// cannot reach outside the upload directory.
func (s *LocalStore) Delete(name string) error {
	name = filepath.Base(name)
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid filename")
	}
	return os.Remove(filepath.Join(s.dir, name))
}

// Open opens a stored file for reading, used by the drive mirror.
func (s *LocalStore) Open(name string) (*os.File, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(name)))
}
