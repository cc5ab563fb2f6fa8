package stages

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/3-lines-studio/bifrost-mini/internal/config"
	"github.com/3-lines-studio/bifrost-mini/internal/core"
	"github.com/3-lines-studio/bifrost-mini/internal/hostcomponent"
)

// reservedProps are consumed by the component runtime and never reach markup.
var reservedProps = map[string]bool{
	"key":      true,
	"ref":      true,
	"children": true,
}

type jsxUsage struct {
	component string
	props     []string
}

// hostImportRe matches named imports from hostModule, e.g.
// `import { Video as Player } from 'remax/toutiao'`.
func hostImportRe(hostModule string) *regexp.Regexp {
	return regexp.MustCompile(`\bimport\s*\{([^}]*)\}\s*from\s*['"]` + regexp.QuoteMeta(hostModule) + `['"]`)
}

// hostImports maps local binding names to the host components re imports.
func hostImports(code string, re *regexp.Regexp) map[string]string {
	locals := make(map[string]string)
	for _, m := range re.FindAllStringSubmatch(code, -1) {
		for _, item := range strings.Split(m[1], ",") {
			fields := strings.Fields(item)
			switch {
			case len(fields) == 1:
				locals[fields[0]] = fields[0]
			case len(fields) == 2 && fields[0] == "type":
			case len(fields) == 3 && fields[1] == "as":
				locals[fields[2]] = fields[0]
			}
		}
	}
	return locals
}

// jsxUsages finds every opening JSX tag of the given locals and the attribute
// names written on it.
func jsxUsages(code string, locals map[string]string) []jsxUsage {
	var out []jsxUsage
	for i := 0; i < len(code); i++ {
		if code[i] != '<' {
			continue
		}
		j := i + 1
		for j < len(code) && (isIdentByte(code[j]) || code[j] == '.') {
			j++
		}
		component, ok := locals[code[i+1:j]]
		if !ok {
			continue
		}
		props, end := scanAttrs(code, j)
		out = append(out, jsxUsage{component: component, props: props})
		i = end
	}
	return out
}

// scanAttrs reads attribute names from position i up to the end of the
// opening tag. Values in quotes or braces are skipped.
func scanAttrs(code string, i int) ([]string, int) {
	var attrs []string
	depth := 0
	for ; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"' || c == '\'' || c == '`':
			i = skipString(code, i)
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case c == '>':
			return attrs, i
		case isIdentByte(c):
			start := i
			for i < len(code) && (isIdentByte(code[i]) || code[i] == '-' || code[i] == ':') {
				i++
			}
			attrs = append(attrs, code[start:i])
			i--
		}
	}
	return attrs, i
}

// hostPolicy applies the alias registry and the unknown-prop policy to JSX
// usages. Misses are warnings unless the policy is strict.
type hostPolicy struct {
	registry *hostcomponent.Registry
	platform string
	marker   string
	policy   config.UnknownPropPolicy
}

// native applies the default rules to a prop the alias table does not know.
func (p hostPolicy) native(prop string) string {
	if core.IsEventProp(prop) {
		return core.EventBinding(p.marker, prop)
	}
	return core.KebabCase(prop)
}

func (p hostPolicy) apply(moduleID string, usages []jsxUsage, w core.Warner) ([]core.HostUsage, error) {
	passthrough := make(map[string]map[string]bool)

	for _, u := range usages {
		comp, err := p.registry.Component(p.platform, u.component)
		if err != nil {
			if !errors.Is(err, hostcomponent.ErrUnsupportedComponent) {
				return nil, err
			}
			if p.policy == config.UnknownPropsStrict {
				return nil, fmt.Errorf("%w: %s is not supported on %s", core.ErrUnknownHostComponent, u.component, p.platform)
			}
			w.Warn(core.Warning(core.CodeUnknownHostComponent, moduleID, "%s is not supported on %s", u.component, p.platform))
			continue
		}

		if _, ok := passthrough[comp.Name]; !ok {
			passthrough[comp.Name] = make(map[string]bool)
		}

		for _, prop := range u.props {
			if reservedProps[prop] {
				continue
			}
			if _, ok := comp.Lookup(prop); ok {
				continue
			}

			switch p.policy {
			case config.UnknownPropsStrict:
				return nil, fmt.Errorf("%w: %s.%s on %s", core.ErrUnknownHostProp, comp.Name, prop, p.platform)
			case config.UnknownPropsPassthrough:
				native := p.native(prop)
				w.Warn(core.Warning(core.CodeUnknownHostProp, moduleID, "%s has no prop %s on %s, passing it through as %s", comp.Name, prop, p.platform, native))
				passthrough[comp.Name][native] = true
			default:
				w.Warn(core.Warning(core.CodeUnknownHostProp, moduleID, "%s has no prop %s on %s, dropping it", comp.Name, prop, p.platform))
			}
		}
	}

	names := make([]string, 0, len(passthrough))
	for name := range passthrough {
		names = append(names, name)
	}
	sort.Strings(names)

	host := make([]core.HostUsage, 0, len(names))
	for _, name := range names {
		h := core.HostUsage{Component: name}
		for prop := range passthrough[name] {
			h.Passthrough = append(h.Passthrough, prop)
		}
		sort.Strings(h.Passthrough)
		host = append(host, h)
	}
	return host, nil
}
