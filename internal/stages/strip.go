package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

// Strip removes modules that only exist to build the graph: the entry seed
// and TypeScript declaration files.
func Strip(d Deps) (core.Stage, error) {
	log := d.logger()

	return core.Stage{
		Name: NameStrip,
		Role: core.RoleStrip,
		Bundle: func(ctx context.Context, b *core.Bundle, w core.Warner) error {
			stripped := make(map[string]bool)
			for _, m := range b.Modules() {
				if m.Seed || strings.HasSuffix(m.ID, ".d.ts") {
					stripped[m.ID] = true
					b.Remove(m.ID)
				}
			}

			for _, m := range b.Modules() {
				for _, imp := range m.Imports {
					if stripped[imp.Resolved] {
						return fmt.Errorf("%s imports %s, which is not emitted", m.ID, imp.Resolved)
					}
				}
			}

			log.Debug("stripped modules", "count", len(stripped))
			return nil
		},
	}, nil
}
