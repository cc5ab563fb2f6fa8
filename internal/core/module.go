package core

type ModuleKind int

const (
	KindScript ModuleKind = iota
	KindStyle
	KindStyleModule
	KindJSON
	KindOther
)

func (k ModuleKind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindStyle:
		return "style"
	case KindStyleModule:
		return "style-module"
	case KindJSON:
		return "json"
	default:
		return "other"
	}
}

// KindForPath classifies a module by its source extension.
func KindForPath(path string) ModuleKind {
	switch NewModulePath(path, EntryNone).Ext() {
	case ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs":
		return KindScript
	case ".css":
		return KindStyle
	case ".less":
		return KindStyleModule
	case ".json":
		return KindJSON
	default:
		return KindOther
	}
}

type EntryKind int

const (
	EntryNone EntryKind = iota
	EntryApp
	EntryPage
)

type Entry struct {
	Path string
	Kind EntryKind
}

type Import struct {
	Specifier string
	Resolved  string
}

type HostUsage struct {
	Component   string
	Passthrough []string
}

type Asset struct {
	Path    string
	Content []byte
}

// Module is one unit flowing through the pipeline. ID is the project-relative
// source path and never changes; Path is the current output path.
type Module struct {
	ID      string
	Path    string
	Content []byte
	Map     []byte
	Entry   EntryKind
	Kind    ModuleKind
	Seed    bool
	Renamed bool
	Imports []Import
	Host    []HostUsage
	Assets  []Asset
}

func NewModule(id string, content []byte) Module {
	id = NormalizePath(id)
	return Module{
		ID:      id,
		Path:    id,
		Content: content,
		Kind:    KindForPath(id),
	}
}

func (m Module) Info() ModulePath {
	return NewModulePath(m.Path, m.Entry)
}

func (m Module) Clone() Module {
	c := m
	c.Content = cloneBytes(m.Content)
	c.Map = cloneBytes(m.Map)
	if m.Imports != nil {
		c.Imports = append([]Import(nil), m.Imports...)
	}
	if m.Host != nil {
		c.Host = make([]HostUsage, len(m.Host))
		for i, h := range m.Host {
			c.Host[i] = HostUsage{
				Component:   h.Component,
				Passthrough: append([]string(nil), h.Passthrough...),
			}
		}
	}
	if m.Assets != nil {
		c.Assets = make([]Asset, len(m.Assets))
		for i, a := range m.Assets {
			c.Assets[i] = Asset{Path: a.Path, Content: cloneBytes(a.Content)}
		}
	}
	return c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
