package stages

import (
	"context"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

func Progress(d Deps) (core.Stage, error) {
	log := d.logger()

	return core.Stage{
		Name:    NameProgress,
		Role:    core.RoleReport,
		Include: core.All(),
		BuildStart: func(ctx context.Context) error {
			n := 0
			if d.Catalog != nil {
				n = d.Catalog.Len()
			}
			log.Debug("build started", "entries", n)
			return nil
		},
		Transform: func(ctx context.Context, m *core.Module, w core.Warner) error {
			log.Debug("module", "id", m.ID, "kind", m.Kind)
			return nil
		},
		Bundle: func(ctx context.Context, b *core.Bundle, w core.Warner) error {
			log.Debug("modules queued", "count", b.Len())
			return nil
		},
	}, nil
}
