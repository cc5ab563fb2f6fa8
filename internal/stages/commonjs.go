package stages

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

var (
	esmSyntaxRe = regexp.MustCompile(`(?m)^\s*(?:import\s*[\w{*'"]|export\s)`)
	cjsSyntaxRe = regexp.MustCompile(`\bmodule\.exports\b|\bexports\.[\w$]+\s*=|\brequire\(\s*['"]`)
	identRe     = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

func isCommonJS(code string) bool {
	return !esmSyntaxRe.MatchString(code) && cjsSyntaxRe.MatchString(code)
}

// CommonJS rewrites CommonJS packages into ES modules: require calls become
// hoisted default imports, module.exports becomes the default export, and the
// configured named exports are re-exported from it.
func CommonJS(d Deps) (core.Stage, error) {
	if err := d.require(NameCommonJS, "project"); err != nil {
		return core.Stage{}, err
	}

	project := d.Project

	return core.Stage{
		Name:     NameCommonJS,
		Role:     core.RoleInterop,
		Include:  core.And(core.NodeModules(), core.Exts(".js", ".cjs")),
		Consumes: []string{".js", ".cjs"},
		Transform: func(ctx context.Context, m *core.Module, w core.Warner) error {
			source := string(m.Content)
			if !isCommonJS(source) {
				return nil
			}

			code, err := wrapCommonJS(source, project.NamedExports(m.ID))
			if err != nil {
				return fmt.Errorf("%s: %w", m.ID, err)
			}

			m.Content = []byte(code)
			if m.Map == nil {
				m.Map = identityMap(m.ID, source)
			}
			return nil
		},
	}, nil
}

func wrapCommonJS(source string, named []string) (string, error) {
	bindings := make(map[string]string)
	var order []string

	body := requireRe.ReplaceAllStringFunc(source, func(call string) string {
		spec := requireRe.FindStringSubmatch(call)[1]
		name, ok := bindings[spec]
		if !ok {
			name = fmt.Sprintf("__require%d", len(order))
			bindings[spec] = name
			order = append(order, spec)
		}
		return name
	})

	var sb strings.Builder
	for _, spec := range order {
		fmt.Fprintf(&sb, "import %s from %q;\n", bindings[spec], spec)
	}
	sb.WriteString("var module = { exports: {} };\n")
	sb.WriteString("var exports = module.exports;\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("var __default = module.exports;\n")
	sb.WriteString("export default __default;\n")

	for _, name := range named {
		if name == "default" {
			continue
		}
		if !identRe.MatchString(name) {
			return "", fmt.Errorf("named export %q is not an identifier", name)
		}
		fmt.Fprintf(&sb, "export var %s = __default.%s;\n", name, name)
	}

	return sb.String(), nil
}
