package core

import "sort"

// Bundle is the ordered module set a build pass works on, plus files emitted
// by bundle-level stages.
type Bundle struct {
	modules []Module
	index   map[string]int
	emitted []Asset
}

func NewBundle(modules ...Module) *Bundle {
	b := &Bundle{index: make(map[string]int)}
	for _, m := range modules {
		b.Put(m)
	}
	return b
}

func (b *Bundle) Len() int {
	return len(b.modules)
}

// Modules returns copies in bundle order.
func (b *Bundle) Modules() []Module {
	out := make([]Module, len(b.modules))
	for i, m := range b.modules {
		out[i] = m.Clone()
	}
	return out
}

func (b *Bundle) IDs() []string {
	ids := make([]string, len(b.modules))
	for i, m := range b.modules {
		ids[i] = m.ID
	}
	return ids
}

func (b *Bundle) Get(id string) (Module, bool) {
	i, ok := b.index[id]
	if !ok {
		return Module{}, false
	}
	return b.modules[i].Clone(), true
}

func (b *Bundle) Has(id string) bool {
	_, ok := b.index[id]
	return ok
}

// Put appends a new module or replaces the module with the same ID in place.
func (b *Bundle) Put(m Module) {
	if i, ok := b.index[m.ID]; ok {
		b.modules[i] = m
		return
	}
	b.index[m.ID] = len(b.modules)
	b.modules = append(b.modules, m)
}

func (b *Bundle) Remove(id string) bool {
	i, ok := b.index[id]
	if !ok {
		return false
	}
	b.modules = append(b.modules[:i], b.modules[i+1:]...)
	delete(b.index, id)
	for j := i; j < len(b.modules); j++ {
		b.index[b.modules[j].ID] = j
	}
	return true
}

func (b *Bundle) Emit(a Asset) {
	for i, existing := range b.emitted {
		if existing.Path == a.Path {
			b.emitted[i] = a
			return
		}
	}
	b.emitted = append(b.emitted, a)
}

// Emitted returns emitted files sorted by path.
func (b *Bundle) Emitted() []Asset {
	out := append([]Asset(nil), b.emitted...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ByPath finds a module by its current output path.
func (b *Bundle) ByPath(path string) (Module, bool) {
	for _, m := range b.modules {
		if m.Path == path {
			return m.Clone(), true
		}
	}
	return Module{}, false
}
