// Package hostcomponent maps portable component props and event handlers onto
// the native attribute and binding names of each target platform.
//
// Tables are YAML documents, one per platform, embedded into the binary and
// validated once on load. A table that maps two props onto the same native
// attribute is rejected.
package hostcomponent

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
)

//go:embed tables/*.yaml
var tablesFS embed.FS

var (
	ErrUnknownPlatform      = errors.New("unknown platform")
	ErrUnsupportedComponent = errors.New("component not supported on this platform")
	ErrUnrecognizedProp     = errors.New("unrecognized prop")
	ErrMalformedTable       = errors.New("malformed alias table")
)

type Registry struct {
	platforms map[string]*Platform
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded tables. It panics if
// any embedded table is malformed.
func Default() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(tablesFS, "tables")
		if err != nil {
			panic(fmt.Sprintf("hostcomponent: %v", err))
		}
		r, err := Load(sub)
		if err != nil {
			panic(fmt.Sprintf("hostcomponent: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Load reads every *.yaml table at the root of fsys.
func Load(fsys fs.FS) (*Registry, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	r := &Registry{platforms: make(map[string]*Platform)}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		p, err := ParseTable(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := r.Register(p); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return r, nil
}

func New(platforms ...*Platform) (*Registry, error) {
	r := &Registry{platforms: make(map[string]*Platform)}
	for _, p := range platforms {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a platform. It is meant for process start, before the
// registry is shared with a build.
func (r *Registry) Register(p *Platform) error {
	if _, exists := r.platforms[p.Name]; exists {
		return fmt.Errorf("%w: platform %q defined twice", ErrMalformedTable, p.Name)
	}
	r.platforms[p.Name] = p
	return nil
}

func (r *Registry) Platforms() []string {
	names := make([]string, 0, len(r.platforms))
	for name := range r.platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Platform(name string) (*Platform, error) {
	p, ok := r.platforms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	return p, nil
}

func (r *Registry) Component(platform, name string) (*Component, error) {
	p, err := r.Platform(platform)
	if err != nil {
		return nil, err
	}
	return p.Component(name)
}

// Lookup returns the native attribute for a portable prop or event handler.
func (r *Registry) Lookup(platform, component, prop string) (string, error) {
	c, err := r.Component(platform, component)
	if err != nil {
		return "", err
	}
	native, ok := c.Lookup(prop)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s on %s", ErrUnrecognizedProp, component, prop, platform)
	}
	return native, nil
}
