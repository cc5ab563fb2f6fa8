package stages

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

var probeExts = []string{".tsx", ".ts", ".jsx", ".js", ".less", ".css", ".json"}

// packageFields are read from package.json in order; module wins over main.
var packageFields = []string{"module", "main"}

type resolver struct {
	fs     fs.FileSystem
	root   string
	dedupe map[string]bool
}

func newResolver(fsys fs.FileSystem, root string, dedupe []string) *resolver {
	r := &resolver{fs: fsys, root: root, dedupe: make(map[string]bool, len(dedupe))}
	for _, pkg := range dedupe {
		r.dedupe[pkg] = true
	}
	return r
}

func (r *resolver) abs(id string) string {
	return filepath.Join(r.root, filepath.FromSlash(id))
}

func (r *resolver) isFile(id string) bool {
	p := r.abs(id)
	if !r.fs.FileExists(p) {
		return false
	}
	_, err := r.fs.ReadDir(p)
	return err != nil
}

func (r *resolver) isDir(id string) bool {
	_, err := r.fs.ReadDir(r.abs(id))
	return err == nil
}

func (r *resolver) probe(base string) (string, bool) {
	if path.Ext(base) != "" && r.isFile(base) {
		return base, true
	}
	for _, ext := range probeExts {
		if r.isFile(base + ext) {
			return base + ext, true
		}
	}
	for _, ext := range probeExts {
		if candidate := base + "/index" + ext; r.isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Resolve maps an import specifier seen in module from to a module ID.
func (r *resolver) Resolve(from, spec string) (string, bool) {
	if isRelative(spec) {
		base := core.NormalizePath(path.Join(path.Dir(from), spec))
		if base == "" || strings.HasPrefix(base, "..") {
			return "", false
		}
		return r.probe(base)
	}
	if spec == "" || strings.HasPrefix(spec, "/") {
		return "", false
	}

	pkg, sub := splitPackage(spec)
	for _, dir := range r.packageDirs(from, pkg) {
		if !r.isDir(dir) {
			continue
		}
		if sub != "" {
			if id, ok := r.probe(dir + "/" + sub); ok {
				return id, true
			}
			continue
		}
		if id, ok := r.packageEntry(dir); ok {
			return id, true
		}
	}
	return "", false
}

// packageDirs lists the node_modules directories searched for pkg, nearest
// first. Deduplicated packages only ever come from the root.
func (r *resolver) packageDirs(from, pkg string) []string {
	if r.dedupe[pkg] {
		return []string{path.Join("node_modules", pkg)}
	}

	var dirs []string
	dir := path.Dir(from)
	for {
		if path.Base(dir) != "node_modules" {
			dirs = append(dirs, core.NormalizePath(path.Join(dir, "node_modules", pkg)))
		}
		if dir == "." || dir == "/" || dir == "" {
			break
		}
		dir = path.Dir(dir)
	}
	return dirs
}

func (r *resolver) packageEntry(dir string) (string, bool) {
	if data, err := r.fs.ReadFile(r.abs(dir + "/package.json")); err == nil {
		for _, field := range packageFields {
			v := gjson.GetBytes(data, field)
			if v.Type != gjson.String || v.String() == "" {
				continue
			}
			if id, ok := r.probe(core.NormalizePath(path.Join(dir, v.String()))); ok {
				return id, true
			}
		}
	}
	return r.probe(dir + "/index")
}

func splitPackage(spec string) (string, string) {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		pkg := parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			return pkg, parts[2]
		}
		return pkg, ""
	}
	pkg, sub, _ := strings.Cut(spec, "/")
	return pkg, sub
}

// Resolve walks the import graph breadth-first from the modules already in
// the bundle, loading every reachable module. Unresolvable relative imports
// fail the build; unresolvable packages are left external with a warning.
func Resolve(d Deps) (core.Stage, error) {
	if err := d.require(NameResolve, "project", "fs"); err != nil {
		return core.Stage{}, err
	}

	r := newResolver(d.FS, d.Project.Root(), d.Project.Dedupe())

	return core.Stage{
		Name: NameResolve,
		Role: core.RoleResolve,
		Bundle: func(ctx context.Context, b *core.Bundle, w core.Warner) error {
			queue := b.IDs()
			seen := make(map[string]bool, len(queue))
			for _, id := range queue {
				seen[id] = true
			}

			for i := 0; i < len(queue); i++ {
				if err := ctx.Err(); err != nil {
					return err
				}

				m, _ := b.Get(queue[i])
				if m.Kind != core.KindScript {
					continue
				}

				m.Imports = nil
				for _, spec := range scanImports(string(m.Content)) {
					id, ok := r.Resolve(m.ID, spec)
					if !ok {
						if isRelative(spec) {
							return fmt.Errorf("%s: could not resolve %q", m.ID, spec)
						}
						w.Warn(core.Warning(core.CodeUnresolvedImport, m.ID, "%q could not be resolved, treating it as external", spec))
						m.Imports = append(m.Imports, core.Import{Specifier: spec})
						continue
					}

					m.Imports = append(m.Imports, core.Import{Specifier: spec, Resolved: id})
					if seen[id] {
						continue
					}
					seen[id] = true

					content, err := d.FS.ReadFile(r.abs(id))
					if err != nil {
						return fmt.Errorf("failed to read %s: %w", id, err)
					}
					dep := core.NewModule(id, content)
					if d.Catalog != nil {
						dep.Entry = d.Catalog.Kind(id)
					}
					b.Put(dep)
					queue = append(queue, id)
				}
				b.Put(m)
			}
			return nil
		},
	}, nil
}
