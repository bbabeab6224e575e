package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Images persists uploaded files and hands back a relative path. Building an
// absolute URL from that path is left to clients.
type Images interface {
	Save(file *multipart.FileHeader, dir string) (string, error)
	Delete(relPath string) error
}

type Store struct {
	fs afero.Fs
}

// NewLocal stores files below root on the local disk.
func NewLocal(root string) (*Store, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{fs: afero.NewBasePathFs(afero.NewOsFs(), root)}, nil
}

func New(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

func (s *Store) Save(file *multipart.FileHeader, dir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := s.fs.MkdirAll(rooted(dir), os.ModePerm); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	rel := path.Join(dir, uuid.NewString()+ext)

	dst, err := s.fs.Create(rooted(rel))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", rel, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = s.fs.Remove(rooted(rel))
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	if err := dst.Close(); err != nil {
		_ = s.fs.Remove(rooted(rel))
		return "", fmt.Errorf("close %s: %w", rel, err)
	}
	return rel, nil
}

// Delete removes relPath. A missing file is not an error.
func (s *Store) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	if err := s.fs.Remove(rooted(relPath)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", relPath, err)
	}
	return nil
}

func (s *Store) Exists(relPath string) bool {
	ok, _ := afero.Exists(s.fs, rooted(relPath))
	return ok
}

// rooted anchors p at the store root and strips any "..".
func rooted(p string) string {
	return path.Clean("/" + p)
}

// HTTP serves stored files without directory listings.
func (s *Store) HTTP() http.FileSystem {
	return filesOnly{afero.NewHttpFs(s.fs).Dir("/")}
}

type filesOnly struct{ http.FileSystem }

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
