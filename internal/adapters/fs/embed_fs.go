package fs

import (
	"errors"
	iofs "io/fs"
)

var ErrReadOnly = errors.New("filesystem is read-only")

// ReadOnlyFileSystem serves an fs.FS (usually an embed.FS sub-tree) through
// the FileSystem port. Writes fail with ErrReadOnly.
type ReadOnlyFileSystem struct {
	fs iofs.FS
}

func NewReadOnlyFileSystem(fsys iofs.FS) *ReadOnlyFileSystem {
	return &ReadOnlyFileSystem{fs: fsys}
}

func (fs *ReadOnlyFileSystem) ReadFile(path string) ([]byte, error) {
	return iofs.ReadFile(fs.fs, path)
}

func (fs *ReadOnlyFileSystem) ReadDir(path string) ([]iofs.DirEntry, error) {
	return iofs.ReadDir(fs.fs, path)
}

func (fs *ReadOnlyFileSystem) FileExists(path string) bool {
	_, err := iofs.Stat(fs.fs, path)
	return err == nil
}

func (fs *ReadOnlyFileSystem) WalkDir(root string, fn iofs.WalkDirFunc) error {
	return iofs.WalkDir(fs.fs, root, fn)
}

func (fs *ReadOnlyFileSystem) Sub(dir string) (iofs.FS, error) {
	return iofs.Sub(fs.fs, dir)
}

func (fs *ReadOnlyFileSystem) WriteFile(path string, data []byte, perm iofs.FileMode) error {
	return ErrReadOnly
}

func (fs *ReadOnlyFileSystem) MkdirAll(path string, perm iofs.FileMode) error {
	return ErrReadOnly
}

func (fs *ReadOnlyFileSystem) Remove(path string) error {
	return ErrReadOnly
}

func (fs *ReadOnlyFileSystem) RemoveAll(path string) error {
	return ErrReadOnly
}
