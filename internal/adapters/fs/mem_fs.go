package fs

import (
	iofs "io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// MemFileSystem keeps files in memory under absolute slash paths. It backs
// tests and dry runs.
type MemFileSystem struct {
	mu    sync.RWMutex
	files fstest.MapFS
}

func NewMemFileSystem(files map[string]string) *MemFileSystem {
	m := &MemFileSystem{files: fstest.MapFS{}}
	for p, content := range files {
		m.files[memKey(p)] = &fstest.MapFile{Data: []byte(content), Mode: 0644}
	}
	return m
}

func memKey(p string) string {
	p = strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
	if p == "" {
		return "."
	}
	return p
}

func (m *MemFileSystem) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return iofs.ReadFile(m.files, memKey(p))
}

func (m *MemFileSystem) ReadDir(p string) ([]iofs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return iofs.ReadDir(m.files, memKey(p))
}

func (m *MemFileSystem) FileExists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, err := iofs.Stat(m.files, memKey(p))
	return err == nil
}

func (m *MemFileSystem) WriteFile(p string, data []byte, perm iofs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[memKey(p)] = &fstest.MapFile{Data: append([]byte(nil), data...), Mode: perm, ModTime: time.Now()}
	return nil
}

func (m *MemFileSystem) MkdirAll(p string, perm iofs.FileMode) error {
	return nil
}

func (m *MemFileSystem) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(p)
	if _, ok := m.files[key]; !ok {
		return &iofs.PathError{Op: "remove", Path: p, Err: iofs.ErrNotExist}
	}
	delete(m.files, key)
	return nil
}

func (m *MemFileSystem) RemoveAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(p)
	for name := range m.files {
		if name == key || strings.HasPrefix(name, key+"/") {
			delete(m.files, name)
		}
	}
	return nil
}

// WalkDir visits paths in lexical order and hands fn absolute paths.
func (m *MemFileSystem) WalkDir(root string, fn iofs.WalkDirFunc) error {
	return iofs.WalkDir(m.snapshot(), memKey(root), func(p string, d iofs.DirEntry, err error) error {
		if p == "." {
			return fn("/", d, err)
		}
		return fn("/"+p, d, err)
	})
}

// Sub returns a point-in-time view of the tree rooted at dir.
func (m *MemFileSystem) Sub(dir string) (iofs.FS, error) {
	return iofs.Sub(m.snapshot(), memKey(dir))
}

func (m *MemFileSystem) snapshot() fstest.MapFS {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(fstest.MapFS, len(m.files))
	for k, v := range m.files {
		out[k] = v
	}
	return out
}

// Files lists every stored file path, sorted.
func (m *MemFileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for k := range m.files {
		out = append(out, "/"+k)
	}
	sort.Strings(out)
	return out
}
