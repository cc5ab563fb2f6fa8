package entries

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func TestDiscoverGlobsPages(t *testing.T) {
	fsys := fstest.MapFS{
		"src/app.tsx":                     file("export default {}"),
		"src/pages/index/index.tsx":       file(""),
		"src/pages/index/index.js":        file(""),
		"src/pages/about/index.ts":        file(""),
		"src/pages/about/helper.ts":       file(""),
		"src/components/card.tsx":         file(""),
		"src/pages/deep/nested/index.jsx": file(""),
	}

	c, err := Discover(fsys, Options{SourceDir: "src"})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []core.Entry{
		{Path: "src/app.tsx", Kind: core.EntryApp},
		{Path: "src/pages/about/index.ts", Kind: core.EntryPage},
		{Path: "src/pages/deep/nested/index.jsx", Kind: core.EntryPage},
		{Path: "src/pages/index/index.tsx", Kind: core.EntryPage},
	}

	got := c.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entries()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if c.Kind("./src/app.tsx") != core.EntryApp {
		t.Error("Kind(app) != EntryApp")
	}
	if c.Kind("src/components/card.tsx") != core.EntryNone {
		t.Error("Kind(component) != EntryNone")
	}
	if len(c.Pages()) != 3 {
		t.Errorf("Pages() len = %d, want 3", len(c.Pages()))
	}
}

func TestDiscoverExplicitPages(t *testing.T) {
	fsys := fstest.MapFS{
		"src/pages/home.tsx":  file(""),
		"src/pages/other.tsx": file(""),
	}

	c, err := Discover(fsys, Options{SourceDir: "src", Pages: []string{"./src/pages/home.tsx"}})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if c.Len() != 1 || c.Entries()[0].Path != "src/pages/home.tsx" {
		t.Errorf("Entries() = %v", c.Entries())
	}
}

func TestDiscoverNoEntries(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		opts Options
	}{
		{
			name: "empty tree",
			fsys: fstest.MapFS{},
			opts: Options{SourceDir: "src"},
		},
		{
			name: "app without pages",
			fsys: fstest.MapFS{"src/app.ts": file("")},
			opts: Options{SourceDir: "src"},
		},
		{
			name: "missing explicit page",
			fsys: fstest.MapFS{"src/pages/index/index.tsx": file("")},
			opts: Options{SourceDir: "src", Pages: []string{"src/pages/missing.tsx"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Discover(tt.fsys, tt.opts)
			if !errors.Is(err, core.ErrNoEntries) {
				t.Errorf("Discover() error = %v, want ErrNoEntries", err)
			}
		})
	}
}

func TestSeedImportsEveryEntry(t *testing.T) {
	c, err := New(
		core.Entry{Path: "src/app.ts", Kind: core.EntryApp},
		core.Entry{Path: "src/pages/index/index.tsx", Kind: core.EntryPage},
		core.Entry{Path: "src/pages/index/index.tsx", Kind: core.EntryPage},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	seed := c.Seed("remax")
	if !seed.Seed || seed.ID != SeedID {
		t.Errorf("seed module = %+v", seed)
	}

	content := string(seed.Content)
	if strings.Count(content, "import") != 3 {
		t.Errorf("seed imports = %q, want three imports", content)
	}
	if !strings.HasSuffix(content, "import \"remax\";\n") {
		t.Errorf("seed does not end with the extra import: %q", content)
	}
	if !strings.Contains(content, `"./src/pages/index/index.tsx"`) {
		t.Errorf("seed missing page import: %q", content)
	}
}
