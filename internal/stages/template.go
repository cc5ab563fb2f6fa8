package stages

import (
	"context"
	"fmt"
	"sort"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
	"github.com/3-lines-studio/bifrost-mini/internal/templates"
)

const baseTemplate = "base"

// Template emits the platform markup: a base template holding one
// REMAX_TPL_<tag> per host component the bundle renders, one template per
// page importing it, and app.json listing the pages.
func Template(d Deps) (core.Stage, error) {
	if err := d.require(NameTemplate, "project", "catalog", "registry"); err != nil {
		return core.Stage{}, err
	}

	platform, err := d.Registry.Platform(d.Project.Platform())
	if err != nil {
		return core.Stage{}, err
	}
	pages := d.Catalog.Pages()

	return core.Stage{
		Name: NameTemplate,
		Role: core.RoleEmit,
		Bundle: func(ctx context.Context, b *core.Bundle, w core.Warner) error {
			basePath := baseTemplate + platform.TemplateExt

			used := make(map[string]map[string]bool)
			for _, m := range b.Modules() {
				for _, h := range m.Host {
					if _, ok := used[h.Component]; !ok {
						used[h.Component] = make(map[string]bool)
					}
					for _, prop := range h.Passthrough {
						used[h.Component][prop] = true
					}
				}
			}

			names := make([]string, 0, len(used))
			for name := range used {
				names = append(names, name)
			}
			sort.Strings(names)

			data := templates.BaseData{Directive: platform.DirectivePrefix}
			for _, name := range names {
				comp, err := platform.Component(name)
				if err != nil {
					continue
				}
				attrs := comp.Props()
				var extra []string
				for prop := range used[name] {
					if !comp.HasNative(prop) {
						extra = append(extra, prop)
					}
				}
				sort.Strings(extra)
				data.Components = append(data.Components, templates.HostTemplate{
					Tag:   comp.Tag,
					Attrs: append(attrs, extra...),
				})
			}

			base, err := templates.RenderBase(data)
			if err != nil {
				return err
			}
			b.Emit(core.Asset{Path: basePath, Content: base})

			manifest := core.AppManifest{}
			for _, page := range pages {
				m, ok := b.Get(page.Path)
				if !ok {
					return fmt.Errorf("%w: page %s has no script module", core.ErrMissingTemplateInput, page.Path)
				}

				content, err := templates.RenderPage(templates.PageData{Base: basePath})
				if err != nil {
					return err
				}
				b.Emit(core.Asset{Path: core.TemplatePathFor(m.Path, platform.TemplateExt), Content: content})
				manifest.Pages = append(manifest.Pages, core.RouteForPath(m.Path))
			}

			appJSON, err := manifest.Marshal()
			if err != nil {
				return err
			}
			b.Emit(core.Asset{Path: "app.json", Content: appJSON})
			return nil
		},
	}, nil
}
