// Package config resolves the project configuration a build runs with.
//
// The optional mini.config.yaml at the project root is read once, defaults
// are applied, and the result is validated into an immutable *Project that
// every stage receives by reference.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

const FileName = "mini.config.yaml"

type UnknownPropPolicy string

const (
	UnknownPropsDrop        UnknownPropPolicy = "drop"
	UnknownPropsPassthrough UnknownPropPolicy = "passthrough"
	UnknownPropsStrict      UnknownPropPolicy = "strict"
)

// File mirrors mini.config.yaml.
type File struct {
	SourceDir     string              `yaml:"sourceDir,omitempty"`
	OutDir        string              `yaml:"outDir,omitempty"`
	Platform      string              `yaml:"platform,omitempty"`
	CSSModules    bool                `yaml:"cssModules,omitempty"`
	UnknownProps  string              `yaml:"unknownProps,omitempty"`
	SandboxPrefix *string             `yaml:"sandboxPrefix,omitempty"`
	Pages         []string            `yaml:"pages,omitempty"`
	Dedupe        []string            `yaml:"dedupe,omitempty"`
	NamedExports  map[string][]string `yaml:"namedExports,omitempty"`
	RuntimeModule string              `yaml:"runtimeModule,omitempty"`
	HostModule    string              `yaml:"hostModule,omitempty"`
	PxMultiple    float64             `yaml:"pxMultiple,omitempty"`
	Workers       int                 `yaml:"workers,omitempty"`
}

// defaultNamedExports lists the bindings the CommonJS builds of react and
// scheduler expose, so ESM code can import them by name.
var defaultNamedExports = map[string][]string{
	"node_modules/react/index.js": {
		"Children", "Component", "Fragment", "Profiler", "PureComponent", "StrictMode", "Suspense",
		"cloneElement", "createContext", "createElement", "createFactory", "createRef", "forwardRef",
		"isValidElement", "lazy", "memo", "useCallback", "useContext", "useDebugValue", "useEffect",
		"useImperativeHandle", "useLayoutEffect", "useMemo", "useReducer", "useRef", "useState", "version",
	},
	"node_modules/scheduler/index.js": {
		"unstable_IdlePriority", "unstable_ImmediatePriority", "unstable_LowPriority", "unstable_NormalPriority",
		"unstable_UserBlockingPriority", "unstable_cancelCallback", "unstable_continueExecution",
		"unstable_getCurrentPriorityLevel", "unstable_getFirstCallbackNode", "unstable_next", "unstable_now",
		"unstable_pauseExecution", "unstable_runWithPriority", "unstable_scheduleCallback",
		"unstable_shouldYield", "unstable_wrapCallback",
	},
}

// Project is the resolved configuration. It is never mutated after Resolve;
// accessors hand out copies.
type Project struct {
	root          string
	sourceDir     string
	outDir        string
	platform      string
	cssModules    bool
	unknownProps  UnknownPropPolicy
	sandboxPrefix string
	pages         []string
	dedupe        []string
	namedExports  map[string][]string
	runtimeModule string
	hostModule    string
	pxMultiple    float64
	workers       int
}

// Overrides carries command-line settings that win over the file.
type Overrides struct {
	Strict   bool
	Platform string
}

func LoadOptional(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", core.ErrInvalidConfig, FileName, err)
	}

	return &f, nil
}

// Resolve loads mini.config.yaml (if present) from root and resolves defaults.
func Resolve(root string, overrides Overrides) (*Project, error) {
	f, err := LoadOptional(root)
	if err != nil {
		return nil, err
	}
	return FromFile(root, f, overrides)
}

func FromFile(root string, f *File, overrides Overrides) (*Project, error) {
	p := &Project{
		root:          root,
		sourceDir:     core.NormalizePath(strings.TrimSpace(f.SourceDir)),
		outDir:        strings.TrimSpace(f.OutDir),
		platform:      strings.TrimSpace(f.Platform),
		cssModules:    f.CSSModules,
		unknownProps:  UnknownPropPolicy(strings.TrimSpace(f.UnknownProps)),
		sandboxPrefix: core.DefaultSandboxPrefix,
		runtimeModule: strings.TrimSpace(f.RuntimeModule),
		hostModule:    strings.TrimSpace(f.HostModule),
		pxMultiple:    f.PxMultiple,
		workers:       f.Workers,
	}

	if f.SandboxPrefix != nil {
		p.sandboxPrefix = *f.SandboxPrefix
	}
	if overrides.Platform != "" {
		p.platform = overrides.Platform
	}
	if overrides.Strict {
		p.unknownProps = UnknownPropsStrict
	}

	if p.sourceDir == "" {
		p.sourceDir = "src"
	}
	if p.outDir == "" {
		p.outDir = "dist"
	}
	if p.platform == "" {
		p.platform = "toutiao"
	}
	if p.unknownProps == "" {
		p.unknownProps = UnknownPropsDrop
	}
	if p.runtimeModule == "" {
		p.runtimeModule = "remax"
	}
	if p.hostModule == "" {
		p.hostModule = p.runtimeModule + "/" + p.platform
	}
	if p.pxMultiple == 0 {
		p.pxMultiple = 1
	}
	if p.workers == 0 {
		p.workers = runtime.GOMAXPROCS(0)
	}

	p.dedupe = append([]string(nil), f.Dedupe...)
	if len(p.dedupe) == 0 {
		p.dedupe = []string{"react"}
	}

	for _, page := range f.Pages {
		p.pages = append(p.pages, core.NormalizePath(page))
	}

	named := f.NamedExports
	if named == nil {
		named = defaultNamedExports
	}
	p.namedExports = make(map[string][]string, len(named))
	for mod, names := range named {
		sorted := append([]string(nil), names...)
		sort.Strings(sorted)
		p.namedExports[core.NormalizePath(mod)] = sorted
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Project) validate() error {
	if p.root == "" {
		return fmt.Errorf("%w: project root is empty", core.ErrInvalidConfig)
	}

	switch p.unknownProps {
	case UnknownPropsDrop, UnknownPropsPassthrough, UnknownPropsStrict:
	default:
		return fmt.Errorf("%w: unknownProps must be drop, passthrough or strict, got %q", core.ErrInvalidConfig, p.unknownProps)
	}

	if filepath.IsAbs(p.outDir) {
		return fmt.Errorf("%w: outDir must be relative to the project root", core.ErrInvalidConfig)
	}
	if out := core.NormalizePath(p.outDir); out == "" || out == ".." || strings.HasPrefix(out, "../") {
		return fmt.Errorf("%w: outDir %q escapes the project root", core.ErrInvalidConfig, p.outDir)
	}
	if strings.HasPrefix(p.sourceDir, "..") {
		return fmt.Errorf("%w: sourceDir %q escapes the project root", core.ErrInvalidConfig, p.sourceDir)
	}

	if p.sandboxPrefix != "" && !strings.HasSuffix(p.sandboxPrefix, "/") {
		return fmt.Errorf("%w: sandboxPrefix must end with /", core.ErrInvalidConfig)
	}

	if p.pxMultiple < 0 {
		return fmt.Errorf("%w: pxMultiple must be positive", core.ErrInvalidConfig)
	}
	if p.workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", core.ErrInvalidConfig)
	}

	for _, page := range p.pages {
		if page == "" || strings.HasPrefix(page, "..") {
			return fmt.Errorf("%w: invalid page path %q", core.ErrInvalidConfig, page)
		}
	}

	return nil
}

func (p *Project) Root() string          { return p.root }
func (p *Project) SourceDir() string     { return p.sourceDir }
func (p *Project) OutDir() string        { return filepath.Join(p.root, p.outDir) }
func (p *Project) OutDirName() string    { return p.outDir }
func (p *Project) Platform() string      { return p.platform }
func (p *Project) CSSModules() bool      { return p.cssModules }
func (p *Project) SandboxPrefix() string { return p.sandboxPrefix }
func (p *Project) RuntimeModule() string { return p.runtimeModule }
func (p *Project) HostModule() string    { return p.hostModule }
func (p *Project) PxMultiple() float64   { return p.pxMultiple }
func (p *Project) Workers() int          { return p.workers }

func (p *Project) UnknownProps() UnknownPropPolicy { return p.unknownProps }

func (p *Project) Strict() bool { return p.unknownProps == UnknownPropsStrict }

func (p *Project) Pages() []string {
	return append([]string(nil), p.pages...)
}

func (p *Project) Dedupe() []string {
	return append([]string(nil), p.dedupe...)
}

func (p *Project) NamedExports(module string) []string {
	return append([]string(nil), p.namedExports[core.NormalizePath(module)]...)
}

// RenameRules strips the sandbox prefix and then the source directory so
// src/pages/index/index.tsx lands at pages/index/index.js.
func (p *Project) RenameRules() core.RenameRules {
	return core.DefaultRenameRules(p.sandboxPrefix, p.sourceDir+"/")
}
