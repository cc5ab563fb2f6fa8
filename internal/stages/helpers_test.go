package stages

import (
	"context"
	"path"
	"sync"
	"testing"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/config"
	"github.com/3-lines-studio/bifrost-mini/internal/core"
	"github.com/3-lines-studio/bifrost-mini/internal/entries"
	"github.com/3-lines-studio/bifrost-mini/internal/hostcomponent"
)

const testRoot = "/proj"

type warnings struct {
	mu   sync.Mutex
	list []core.Diagnostic
}

func (w *warnings) Warn(d core.Diagnostic) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.list = append(w.list, d)
}

func (w *warnings) codes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.list))
	for i, d := range w.list {
		out[i] = d.Code
	}
	return out
}

// echoTransformer returns the source unchanged.
type echoTransformer struct {
	err error
}

func (t echoTransformer) Transform(ctx context.Context, req core.TransformRequest) (core.TransformResult, error) {
	if t.err != nil {
		return core.TransformResult{}, t.err
	}
	return core.TransformResult{Code: req.Source}, nil
}

func testProject(t *testing.T, f *config.File) *config.Project {
	t.Helper()
	if f == nil {
		f = &config.File{}
	}
	p, err := config.FromFile(testRoot, f, config.Overrides{})
	if err != nil {
		t.Fatalf("config.FromFile() error = %v", err)
	}
	return p
}

func testDeps(t *testing.T, f *config.File, files map[string]string, list ...core.Entry) Deps {
	t.Helper()

	abs := make(map[string]string, len(files))
	for p, content := range files {
		abs[path.Join(testRoot, p)] = content
	}

	if len(list) == 0 {
		list = []core.Entry{{Path: "src/pages/index/index.tsx", Kind: core.EntryPage}}
	}
	catalog, err := entries.New(list...)
	if err != nil {
		t.Fatalf("entries.New() error = %v", err)
	}

	return Deps{
		Project:     testProject(t, f),
		Catalog:     catalog,
		Registry:    hostcomponent.Default(),
		FS:          fs.NewMemFileSystem(abs),
		Transformer: echoTransformer{},
	}
}

func mustStage(t *testing.T, factory Factory, d Deps) core.Stage {
	t.Helper()
	s, err := factory(d)
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}
	return s
}

func module(id, content string, entry core.EntryKind) core.Module {
	m := core.NewModule(id, []byte(content))
	m.Entry = entry
	return m
}
