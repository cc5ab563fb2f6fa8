package hostcomponent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

type Platform struct {
	Name            string
	BindingMarker   string
	TemplateExt     string
	DirectivePrefix string

	components map[string]*Component
}

func (p *Platform) Component(name string) (*Component, error) {
	c, ok := p.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedComponent, name, p.Name)
	}
	return c, nil
}

// Components returns every component sorted by portable name.
func (p *Platform) Components() []*Component {
	out := make([]*Component, 0, len(p.components))
	for _, c := range p.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type Alias struct {
	Prop   string
	Native string
	Event  bool
}

// Component is the alias entry of one portable component on one platform.
type Component struct {
	Name string
	Tag  string

	aliases []Alias
	byProp  map[string]string
}

func (c *Component) Lookup(prop string) (string, bool) {
	native, ok := c.byProp[prop]
	return native, ok
}

func (c *Component) Aliases() []Alias {
	return append([]Alias(nil), c.aliases...)
}

// Props is the whitelist of native attributes this component may emit, in
// declaration order.
func (c *Component) Props() []string {
	out := make([]string, len(c.aliases))
	for i, a := range c.aliases {
		out[i] = a.Native
	}
	return out
}

func (c *Component) HasNative(native string) bool {
	for _, a := range c.aliases {
		if a.Native == native {
			return true
		}
	}
	return false
}

// PropSpec is one declared prop before the default rules are applied.
// An empty Override means the default rule decides the native name.
type PropSpec struct {
	Prop     string
	Override string
}

// NewComponent applies the default casing and event rules, lets overrides
// win, and rejects duplicate props or native names.
func NewComponent(name, tag, marker string, specs []PropSpec) (*Component, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: component without a name", ErrMalformedTable)
	}
	if tag == "" {
		tag = core.KebabCase(name)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: %s declares no props", ErrMalformedTable, name)
	}

	c := &Component{
		Name:   name,
		Tag:    tag,
		byProp: make(map[string]string, len(specs)),
	}
	owner := make(map[string]string, len(specs))

	for _, spec := range specs {
		if spec.Prop == "" {
			return nil, fmt.Errorf("%w: %s has an empty prop name", ErrMalformedTable, name)
		}
		if _, dup := c.byProp[spec.Prop]; dup {
			return nil, fmt.Errorf("%w: %s declares %s twice", ErrMalformedTable, name, spec.Prop)
		}

		event := core.IsEventProp(spec.Prop)
		native := spec.Override
		if native == "" {
			if event {
				native = core.EventBinding(marker, spec.Prop)
			} else {
				native = core.KebabCase(spec.Prop)
			}
		}
		if err := validateNative(native); err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrMalformedTable, name, spec.Prop, err)
		}
		if prev, dup := owner[native]; dup {
			return nil, fmt.Errorf("%w: %s maps %s and %s to %q", ErrMalformedTable, name, prev, spec.Prop, native)
		}

		owner[native] = spec.Prop
		c.byProp[spec.Prop] = native
		c.aliases = append(c.aliases, Alias{Prop: spec.Prop, Native: native, Event: event})
	}

	return c, nil
}

func validateNative(native string) error {
	if strings.ContainsAny(native, " \t\n\"'<>=/{}") {
		return fmt.Errorf("invalid native attribute %q", native)
	}
	return nil
}
