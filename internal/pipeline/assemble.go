// Package pipeline assembles the fixed stage sequence, checks its ordering
// constraints, drives it over the module graph and writes the result.
package pipeline

import (
	"fmt"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
	"github.com/3-lines-studio/bifrost-mini/internal/stages"
)

// Order is the production stage sequence. Dev builds drop clean.
var Order = []string{
	stages.NameClean,
	stages.NameProgress,
	stages.NameResolve,
	stages.NameCommonJS,
	stages.NameScript,
	stages.NamePage,
	stages.NameStyle,
	stages.NameRename,
	stages.NameStrip,
	stages.NameTemplate,
}

func Names(dev bool) []string {
	names := make([]string, 0, len(Order))
	for _, name := range Order {
		if dev && name == stages.NameClean {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Assemble builds the stage list from the static factory registry and
// validates it. The same inputs always yield the same sequence.
func Assemble(dev bool, deps stages.Deps) ([]core.Stage, error) {
	return AssembleWith(dev, deps, stages.Factories)
}

func AssembleWith(dev bool, deps stages.Deps, factories map[string]stages.Factory) ([]core.Stage, error) {
	if deps.Project == nil {
		return nil, fmt.Errorf("%w: project config is required", core.ErrInvalidConfig)
	}

	names := Names(dev)
	list := make([]core.Stage, 0, len(names))
	for _, name := range names {
		factory, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("no factory registered for stage %s", name)
		}
		s, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to build stage %s: %w", name, err)
		}
		if s.Name != name {
			return nil, fmt.Errorf("factory for %s built stage %s", name, s.Name)
		}
		list = append(list, s)
	}

	if err := Validate(list, dev, deps.Project.RenameRules()); err != nil {
		return nil, err
	}
	return list, nil
}
