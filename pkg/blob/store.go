package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var ErrInvalidName = errors.New("blob: invalid name")

// Store is a flat, path-addressable file area. Names are single path elements;
// writes land under a temporary name and are renamed into place so readers never
// observe a partially written file.
type Store struct {
	fs   afero.Fs
	root string
}

// NewLocalStore opens (and creates) root on the OS filesystem.
func NewLocalStore(root string) (*Store, error) {
	return NewStore(afero.NewOsFs(), root)
}

func NewStore(fs afero.Fs, root string) (*Store, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root %s: %w", root, err)
	}
	return &Store{fs: fs, root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Path returns the filesystem path of name.
func (s *Store) Path(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

// Save copies r into name.
func (s *Store) Save(name string, r io.Reader) error {
	return s.Write(name, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

// Write streams fill into a temp file and renames it to name on success.
func (s *Store) Write(name string, fill func(w io.Writer) error) error {
	dst, err := s.Path(name)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, s.root, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("blob: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("blob: close %s: %w", name, err)
	}
	if err := s.fs.Rename(tmpName, dst); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("blob: rename %s: %w", name, err)
	}
	return nil
}

func (s *Store) Open(name string) (afero.File, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return s.fs.Open(p)
}

func (s *Store) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(s.fs, p)
	return ok
}

// Remove deletes name. A missing file is not an error.
func (s *Store) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || path.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
