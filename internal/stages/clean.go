package stages

import (
	"context"
	"fmt"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

func Clean(d Deps) (core.Stage, error) {
	if err := d.require(NameClean, "project", "fs"); err != nil {
		return core.Stage{}, err
	}

	outDir := d.Project.OutDir()
	log := d.logger()

	return core.Stage{
		Name: NameClean,
		Role: core.RoleClean,
		BuildStart: func(ctx context.Context) error {
			log.Debug("cleaning output", "dir", outDir)
			if err := d.FS.RemoveAll(outDir); err != nil {
				return fmt.Errorf("%w %s: %v", core.ErrCleanFailed, outDir, err)
			}
			return nil
		},
	}, nil
}
