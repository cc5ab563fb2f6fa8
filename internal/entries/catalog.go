package entries

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

// SeedID is the virtual module that imports every entry so the resolve stage
// has a single root to walk from. The strip stage removes it.
const SeedID = "__mini_entries__.js"

var scriptExts = []string{".tsx", ".ts", ".jsx", ".js"}

type Catalog struct {
	entries []core.Entry
	kinds   map[string]core.EntryKind
}

// Options are the parts of the project config entry discovery depends on.
type Options struct {
	SourceDir string
	Pages     []string
}

// Discover finds the app entry and the page entries under SourceDir. Explicit
// Pages win over globbing for pages/**/index.*.
func Discover(fsys fs.FS, opts Options) (*Catalog, error) {
	var list []core.Entry

	if app, ok := findApp(fsys, opts.SourceDir); ok {
		list = append(list, core.Entry{Path: app, Kind: core.EntryApp})
	}

	pages, err := findPages(fsys, opts)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages under %s", core.ErrNoEntries, path.Join(opts.SourceDir, "pages"))
	}
	for _, p := range pages {
		list = append(list, core.Entry{Path: p, Kind: core.EntryPage})
	}

	return New(list...)
}

func New(list ...core.Entry) (*Catalog, error) {
	if len(list) == 0 {
		return nil, core.ErrNoEntries
	}

	c := &Catalog{kinds: make(map[string]core.EntryKind, len(list))}
	for _, e := range list {
		e.Path = core.NormalizePath(e.Path)
		if e.Path == "" {
			return nil, fmt.Errorf("%w: empty entry path", core.ErrNoEntries)
		}
		if _, dup := c.kinds[e.Path]; dup {
			continue
		}
		c.kinds[e.Path] = e.Kind
		c.entries = append(c.entries, e)
	}
	return c, nil
}

func (c *Catalog) Entries() []core.Entry {
	return append([]core.Entry(nil), c.entries...)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (c *Catalog) Kind(p string) core.EntryKind {
	return c.kinds[core.NormalizePath(p)]
}

func (c *Catalog) Pages() []core.Entry {
	var out []core.Entry
	for _, e := range c.entries {
		if e.Kind == core.EntryPage {
			out = append(out, e)
		}
	}
	return out
}

// Seed builds the graph root module importing every entry in catalog order,
// followed by the extra package specifiers.
func (c *Catalog) Seed(extra ...string) core.Module {
	var sb strings.Builder
	for _, e := range c.entries {
		fmt.Fprintf(&sb, "import %q;\n", "./"+e.Path)
	}
	for _, spec := range extra {
		fmt.Fprintf(&sb, "import %q;\n", spec)
	}

	m := core.NewModule(SeedID, []byte(sb.String()))
	m.Seed = true
	return m
}

func findApp(fsys fs.FS, sourceDir string) (string, bool) {
	for _, ext := range scriptExts {
		p := path.Join(sourceDir, "app"+ext)
		if _, err := fs.Stat(fsys, p); err == nil {
			return p, true
		}
	}
	return "", false
}

func findPages(fsys fs.FS, opts Options) ([]string, error) {
	if len(opts.Pages) > 0 {
		pages := make([]string, 0, len(opts.Pages))
		for _, p := range opts.Pages {
			p = core.NormalizePath(p)
			if _, err := fs.Stat(fsys, p); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil, fmt.Errorf("%w: page %s does not exist", core.ErrNoEntries, p)
				}
				return nil, fmt.Errorf("failed to stat page %s: %w", p, err)
			}
			pages = append(pages, p)
		}
		return pages, nil
	}

	pattern := path.Join(opts.SourceDir, "pages", "**", "index.{tsx,ts,jsx,js}")
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pages: %w", err)
	}

	byDir := make(map[string]string)
	for _, m := range matches {
		if strings.Contains(m, "/node_modules/") {
			continue
		}
		dir := path.Dir(m)
		if prev, ok := byDir[dir]; ok && extRank(prev) <= extRank(m) {
			continue
		}
		byDir[dir] = m
	}

	pages := make([]string, 0, len(byDir))
	for _, m := range byDir {
		pages = append(pages, m)
	}
	sort.Strings(pages)
	return pages, nil
}

func extRank(p string) int {
	ext := path.Ext(p)
	for i, e := range scriptExts {
		if e == ext {
			return i
		}
	}
	return len(scriptExts)
}
