package stages

import (
	"context"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

// Script records which host components a module renders, then transpiles it
// to plain JavaScript.
func Script(d Deps) (core.Stage, error) {
	if err := d.require(NameScript, "project", "registry", "transformer"); err != nil {
		return core.Stage{}, err
	}

	platform, err := d.Registry.Platform(d.Project.Platform())
	if err != nil {
		return core.Stage{}, err
	}
	policy := hostPolicy{
		registry: d.Registry,
		platform: platform.Name,
		marker:   platform.BindingMarker,
		policy:   d.Project.UnknownProps(),
	}

	importRe := hostImportRe(d.Project.HostModule())
	transformer := d.Transformer

	return core.Stage{
		Name:     NameScript,
		Role:     core.RoleComponent,
		Include:  core.And(core.Exts(scriptExts...), core.Not(core.NodeModules())),
		Consumes: scriptExts,
		Transform: func(ctx context.Context, m *core.Module, w core.Warner) error {
			source := string(m.Content)

			masked := maskComments(source)
			if locals := hostImports(masked, importRe); len(locals) > 0 {
				host, err := policy.apply(m.ID, jsxUsages(masked, locals), w)
				if err != nil {
					return err
				}
				m.Host = host
			}

			res, err := transformer.Transform(ctx, core.TransformRequest{
				Path:   m.ID,
				Source: m.Content,
				Loader: core.LoaderForPath(m.ID),
			})
			if err != nil {
				return err
			}

			code := string(res.Code)
			if topLevelThis(code) {
				w.Warn(core.Warning(core.CodeThisIsUndefined, m.ID, "the 'this' keyword is equivalent to 'undefined' at the top level of an ES module"))
			}

			m.Content = res.Code
			m.Map = res.Map
			if len(m.Map) == 0 {
				m.Map = identityMap(m.ID, source)
			}
			m.Imports = keepImports(m.Imports, code)
			return nil
		},
	}, nil
}

// keepImports drops imports the transpiler elided, such as type-only ones.
func keepImports(imports []core.Import, code string) []core.Import {
	if len(imports) == 0 {
		return imports
	}
	present := make(map[string]bool)
	for _, spec := range scanImports(code) {
		present[spec] = true
	}
	kept := imports[:0]
	for _, imp := range imports {
		if present[imp.Specifier] {
			kept = append(kept, imp)
		}
	}
	return kept
}
