package pipeline

import (
	"context"
	"errors"
	"os"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/config"
	"github.com/3-lines-studio/bifrost-mini/internal/core"
	"github.com/3-lines-studio/bifrost-mini/internal/diagnostics"
	"github.com/3-lines-studio/bifrost-mini/internal/entries"
	"github.com/3-lines-studio/bifrost-mini/internal/hostcomponent"
	"github.com/3-lines-studio/bifrost-mini/internal/stages"
)

const testRoot = "/proj"

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

type echoTransformer struct{}

func (echoTransformer) Transform(ctx context.Context, req core.TransformRequest) (core.TransformResult, error) {
	return core.TransformResult{Code: req.Source}, nil
}

type failingRemoveFS struct {
	fs.FileSystem
}

func (failingRemoveFS) RemoveAll(string) error {
	return errors.New("device busy")
}

type recorder struct {
	mu       sync.Mutex
	started  []string
	finished []string
	diags    []core.Diagnostic
}

func (r *recorder) StageStarted(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, name)
}

func (r *recorder) StageFinished(name string, modules int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, name)
}

func (r *recorder) Report(d core.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

var projectFiles = map[string]string{
	"src/app.ts":  "import './app.css';\nexport default {};\n",
	"src/app.css": ".app { font-size: 14px; }\n",
	"src/pages/index/index.tsx": strings.Join([]string{
		"import { View, Text } from 'remax/toutiao';",
		"import styles from './styles.less';",
		"export default function Index() {",
		"  return <View className={styles.title} onTap={() => {}}><Text>hi</Text></View>;",
		"}",
	}, "\n") + "\n",
	"src/pages/index/styles.less": ".title { padding: 8px; }\n",

	"node_modules/remax/package.json":     `{"name":"remax","module":"esm/index.js"}`,
	"node_modules/remax/esm/index.js":     "export const createPageConfig = c => c;\nexport const createAppConfig = c => c;\n",
	"node_modules/remax/toutiao/index.js": "export const View = 'view';\nexport const Text = 'text';\n",

	"dist/stale.js": "old output",
}

func testDeps(t *testing.T, files map[string]string) stages.Deps {
	t.Helper()

	abs := make(map[string]string, len(files))
	for p, content := range files {
		abs[path.Join(testRoot, p)] = content
	}

	project, err := config.FromFile(testRoot, &config.File{}, config.Overrides{})
	if err != nil {
		t.Fatalf("config.FromFile() error = %v", err)
	}
	catalog, err := entries.New(
		core.Entry{Path: "src/app.ts", Kind: core.EntryApp},
		core.Entry{Path: "src/pages/index/index.tsx", Kind: core.EntryPage},
	)
	if err != nil {
		t.Fatalf("entries.New() error = %v", err)
	}

	return stages.Deps{
		Project:     project,
		Catalog:     catalog,
		Registry:    hostcomponent.Default(),
		FS:          fs.NewMemFileSystem(abs),
		Transformer: echoTransformer{},
	}
}

func stageNames(list []core.Stage) []string {
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
	}
	return names
}

func TestAssembleIsDeterministic(t *testing.T) {
	tests := []struct {
		name string
		dev  bool
		want string
	}{
		{name: "production", dev: false, want: "clean,progress,resolve,commonjs,script,page,style,rename,strip,template"},
		{name: "dev", dev: true, want: "progress,resolve,commonjs,script,page,style,rename,strip,template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDeps(t, nil)
			for i := 0; i < 3; i++ {
				list, err := Assemble(tt.dev, d)
				if err != nil {
					t.Fatalf("Assemble() error = %v", err)
				}
				if got := strings.Join(stageNames(list), ","); got != tt.want {
					t.Errorf("Assemble() = %s, want %s", got, tt.want)
				}
				if list[len(list)-1].Role != core.RoleEmit {
					t.Error("last stage is not the emit stage")
				}
			}
		})
	}
}

func TestAssembleRejectsUnknownFactory(t *testing.T) {
	factories := make(map[string]stages.Factory)
	for name, f := range stages.Factories {
		if name != stages.NameStrip {
			factories[name] = f
		}
	}

	if _, err := AssembleWith(false, testDeps(t, nil), factories); err == nil {
		t.Error("AssembleWith() error = nil, want missing factory error")
	}
}

func stage(name string, role core.Role, consumes ...string) core.Stage {
	return core.Stage{Name: name, Role: role, Consumes: consumes}
}

func TestValidate(t *testing.T) {
	rules := core.DefaultRenameRules(core.DefaultSandboxPrefix)

	clean := stage("clean", core.RoleClean)
	resolve := stage("resolve", core.RoleResolve)
	interop := stage("commonjs", core.RoleInterop, ".js")
	script := stage("script", core.RoleComponent, ".ts", ".tsx")
	style := stage("style", core.RoleStyle, ".css", ".less")
	rename := stage("rename", core.RoleRename)
	strip := stage("strip", core.RoleStrip)
	emit := stage("template", core.RoleEmit)
	emit2 := stage("manifest", core.RoleEmit)

	tests := []struct {
		name    string
		dev     bool
		list    []core.Stage
		wantErr bool
	}{
		{name: "production order", list: []core.Stage{clean, resolve, interop, script, style, rename, strip, emit}},
		{name: "dev order", dev: true, list: []core.Stage{resolve, interop, script, style, rename, strip, emit}},
		{name: "production without clean", list: []core.Stage{resolve, script, style, rename, strip, emit}, wantErr: true},
		{name: "clean not first", list: []core.Stage{resolve, clean, script, style, rename, strip, emit}, wantErr: true},
		{name: "dev with clean", dev: true, list: []core.Stage{clean, resolve, script, style, rename, strip, emit}, wantErr: true},
		{name: "emit not last", list: []core.Stage{clean, resolve, script, style, rename, emit, strip}, wantErr: true},
		{name: "two emit stages", list: []core.Stage{clean, resolve, script, style, rename, strip, emit2, emit}, wantErr: true},
		{name: "no emit stage", list: []core.Stage{clean, resolve, script, style, rename, strip}, wantErr: true},
		{name: "interop after component", list: []core.Stage{clean, resolve, script, interop, style, rename, strip, emit}, wantErr: true},
		{name: "consumer after rename", list: []core.Stage{clean, resolve, script, rename, style, strip, emit}, wantErr: true},
		{name: "consumer without rename", list: []core.Stage{clean, resolve, script, style, strip, emit}, wantErr: true},
		{name: "strip before content stage", list: []core.Stage{clean, resolve, script, strip, style, rename, emit}, wantErr: true},
		{name: "duplicate name", list: []core.Stage{clean, resolve, script, script, style, rename, strip, emit}, wantErr: true},
		{name: "empty", list: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.list, tt.dev, rules)
			if tt.wantErr {
				if !errors.Is(err, core.ErrStageOrder) {
					t.Errorf("Validate() error = %v, want ErrStageOrder", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestRunBuildsProject(t *testing.T) {
	d := testDeps(t, projectFiles)
	list, err := Assemble(false, d)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	rec := &recorder{}
	r := NewRunner(WithWorkers(2), WithSink(rec), WithObserver(rec))
	b, err := r.Run(context.Background(), list, d.Catalog.Seed(d.Project.RuntimeModule()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Join(rec.finished, ",") != strings.Join(Names(false), ",") {
		t.Errorf("finished stages = %v", rec.finished)
	}
	if len(rec.diags) != 0 {
		t.Errorf("diagnostics = %v, want none", rec.diags)
	}
	if b.Has(entries.SeedID) {
		t.Error("seed module was not stripped")
	}

	written, err := Write(d.FS, d.Project.OutDir(), b)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := []string{
		"app.js",
		"app.js.map",
		"app.acss",
		"pages/index/index.js",
		"pages/index/index.js.map",
		"pages/index/styles.js",
		"pages/index/styles.js.map",
		"pages/index/styles.acss",
		"node_modules/remax/esm/index.js",
		"node_modules/remax/toutiao/index.js",
		"base.ttml",
		"pages/index/index.ttml",
		"app.json",
	}
	have := make(map[string]bool, len(written))
	for _, p := range written {
		have[p] = true
	}
	for _, p := range want {
		if !have[p] {
			t.Errorf("output missing %s; wrote %v", p, written)
		}
	}
	if len(written) != len(want) {
		t.Errorf("wrote %d files, want %d: %v", len(written), len(want), written)
	}

	files := d.FS.(*fs.MemFileSystem)
	if files.FileExists(testRoot + "/dist/stale.js") {
		t.Error("stale output survived the clean stage")
	}

	read := func(p string) string {
		data, err := files.ReadFile(path.Join(testRoot, "dist", p))
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", p, err)
		}
		return string(data)
	}

	if styles := read("pages/index/styles.js"); !strings.HasSuffix(styles, "//# sourceMappingURL=styles.js.map\n") {
		t.Errorf("class-map module missing source map comment:\n%s", styles)
	}

	page := read("pages/index/index.js")
	for _, want := range []string{
		`from '../../node_modules/remax/toutiao/index.js'`,
		`from './styles.js'`,
		`from "../../node_modules/remax/esm/index.js"`,
		"export default Page(createPageConfig(__mini_entry));",
		"//# sourceMappingURL=index.js.map\n",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page output missing %q:\n%s", want, page)
		}
	}

	if got := read("app.acss"); got != ".app { font-size: 14rpx; }\n" {
		t.Errorf("app.acss = %q", got)
	}
	if app := read("app.js"); strings.Contains(app, "app.css") {
		t.Errorf("app.js still imports its stylesheet:\n%s", app)
	}

	base := read("base.ttml")
	if !strings.Contains(base, `<view id="{{node.props['id']}}" class="{{node.props['class']}}"`) {
		t.Errorf("base.ttml missing view template:\n%s", base)
	}
	if !strings.Contains(base, `REMAX_TPL_text`) {
		t.Errorf("base.ttml missing text template:\n%s", base)
	}

	snaps.MatchSnapshot(t, read("app.json"), read("pages/index/index.ttml"))
}

func TestRunCleanFailureAborts(t *testing.T) {
	d := testDeps(t, projectFiles)
	d.FS = failingRemoveFS{FileSystem: d.FS}

	list, err := Assemble(false, d)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	rec := &recorder{}
	_, err = NewRunner(WithObserver(rec)).Run(context.Background(), list, d.Catalog.Seed())
	if !errors.Is(err, core.ErrCleanFailed) {
		t.Fatalf("Run() error = %v, want ErrCleanFailed", err)
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != stages.NameClean {
		t.Errorf("Run() error = %#v, want StageError from clean", err)
	}
	if len(rec.started) != 1 {
		t.Errorf("started stages = %v, want only clean", rec.started)
	}
}

func TestRunFlushesWarningsInModuleOrder(t *testing.T) {
	s := core.Stage{
		Name: "warn",
		Role: core.RoleTransform,
		Transform: func(ctx context.Context, m *core.Module, w core.Warner) error {
			w.Warn(core.Warning("CUSTOM", m.ID, "first"))
			w.Warn(core.Warning(core.CodeThisIsUndefined, m.ID, "suppressed"))
			w.Warn(core.Warning("CUSTOM", m.ID, "second"))
			m.Content = []byte("done")
			return nil
		},
	}

	var seed []core.Module
	for _, id := range []string{"e.js", "d.js", "c.js", "b.js", "a.js"} {
		seed = append(seed, core.NewModule(id, nil))
	}

	rec := &recorder{}
	b, err := NewRunner(WithWorkers(4), WithSink(rec)).Run(context.Background(), []core.Stage{s}, seed...)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []string
	for _, d := range rec.diags {
		if d.Stage != "warn" {
			t.Errorf("diagnostic stage = %q, want warn", d.Stage)
		}
		got = append(got, d.Module+":"+d.Message)
	}
	want := "e.js:first,e.js:second,d.js:first,d.js:second,c.js:first,c.js:second,b.js:first,b.js:second,a.js:first,a.js:second"
	if strings.Join(got, ",") != want {
		t.Errorf("diagnostics = %v", got)
	}

	for _, m := range b.Modules() {
		if string(m.Content) != "done" {
			t.Errorf("%s was not committed", m.ID)
		}
	}
}

func TestRunWrapsTransformErrors(t *testing.T) {
	boom := errors.New("boom")
	var seen sync.Map
	s := core.Stage{
		Name:    "fail",
		Role:    core.RoleTransform,
		Include: core.Exts(".ts"),
		Transform: func(ctx context.Context, m *core.Module, w core.Warner) error {
			seen.Store(m.ID, true)
			if m.ID == "bad.ts" {
				return boom
			}
			return nil
		},
	}

	_, err := NewRunner(WithSink(diagnostics.SinkFunc(func(core.Diagnostic) {}))).Run(
		context.Background(),
		[]core.Stage{s},
		core.NewModule("bad.ts", nil),
		core.NewModule("skip.css", nil),
	)

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Run() error = %v, want *StageError", err)
	}
	if stageErr.Stage != "fail" || stageErr.Module != "bad.ts" || !errors.Is(err, boom) {
		t.Errorf("StageError = %+v", stageErr)
	}
	if _, ok := seen.Load("skip.css"); ok {
		t.Error("transform ran on an excluded module")
	}
}

func TestWriteRejectsEscapingPaths(t *testing.T) {
	m := core.NewModule("src/a.js", []byte("x"))
	m.Path = "../outside.js"

	_, err := Write(fs.NewMemFileSystem(nil), "/proj/dist", core.NewBundle(m))
	if err == nil {
		t.Error("Write() error = nil, want invalid output path")
	}
}
