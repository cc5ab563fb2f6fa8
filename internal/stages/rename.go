package stages

import (
	"context"
	"fmt"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

// Rename applies the rename rules to every module and asset, then points
// each relative or package import at the final output path of its target.
// Imports of plain stylesheets are dropped; the runtime loads them by name.
func Rename(d Deps) (core.Stage, error) {
	if err := d.require(NameRename, "project"); err != nil {
		return core.Stage{}, err
	}

	rules := d.Project.RenameRules()
	if err := rules.Validate(); err != nil {
		return core.Stage{}, err
	}

	return core.Stage{
		Name:    NameRename,
		Role:    core.RoleRename,
		Include: core.All(),
		Transform: func(ctx context.Context, m *core.Module, w core.Warner) error {
			rules.Rename(m)
			return nil
		},
		Bundle: func(ctx context.Context, b *core.Bundle, w core.Warner) error {
			mods := b.Modules()

			byID := make(map[string]core.Module, len(mods))
			byPath := make(map[string]string, len(mods))
			packages := make(map[string]string)
			for _, m := range mods {
				byID[m.ID] = m
				if other, ok := byPath[m.Path]; ok && !m.Seed {
					return fmt.Errorf("%s and %s are both emitted as %s", other, m.ID, m.Path)
				}
				byPath[m.Path] = m.ID
				if !m.Seed {
					continue
				}
				for _, imp := range m.Imports {
					if imp.Resolved != "" && !isRelative(imp.Specifier) {
						packages[imp.Specifier] = imp.Resolved
					}
				}
			}

			for _, m := range mods {
				if m.Seed || (m.Kind != core.KindScript && m.Kind != core.KindStyleModule) || len(m.Imports) == 0 {
					continue
				}

				targets := make(map[string]string, len(m.Imports))
				dropped := make(map[string]bool)
				var kept []core.Import
				for _, imp := range m.Imports {
					resolved := imp.Resolved
					if resolved == "" {
						resolved = packages[imp.Specifier]
					}
					target, ok := byID[resolved]
					if !ok {
						kept = append(kept, imp)
						continue
					}
					if target.Kind == core.KindStyle {
						dropped[imp.Specifier] = true
						continue
					}
					spec := core.RelativeImport(m.Path, target.Path)
					targets[imp.Specifier] = spec
					kept = append(kept, core.Import{Specifier: spec, Resolved: resolved})
				}

				m.Content = []byte(rewriteImports(string(m.Content), func(spec string) (string, bool) {
					if dropped[spec] {
						return "", true
					}
					if next, ok := targets[spec]; ok {
						return next, false
					}
					return spec, false
				}))
				m.Imports = kept
				b.Put(m)
			}
			return nil
		},
	}, nil
}
