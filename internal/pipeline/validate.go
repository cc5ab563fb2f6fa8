package pipeline

import (
	"fmt"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

func orderError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrStageOrder, fmt.Sprintf(format, args...))
}

// Validate checks the ordering constraints between stage roles.
func Validate(list []core.Stage, dev bool, rules core.RenameRules) error {
	if len(list) == 0 {
		return orderError("pipeline has no stages")
	}

	seen := make(map[string]bool, len(list))
	first := make(map[core.Role]int)
	last := make(map[core.Role]int)
	count := make(map[core.Role]int)
	for i, s := range list {
		if seen[s.Name] {
			return orderError("stage %s appears twice", s.Name)
		}
		seen[s.Name] = true

		if _, ok := first[s.Role]; !ok {
			first[s.Role] = i
		}
		last[s.Role] = i
		count[s.Role]++
	}

	if dev {
		if count[core.RoleClean] > 0 {
			return orderError("dev builds must not clean the output directory")
		}
	} else {
		if list[0].Role != core.RoleClean {
			return orderError("clean must be the first stage, got %s", list[0].Name)
		}
		if count[core.RoleClean] > 1 {
			return orderError("clean appears more than once")
		}
	}

	emit, hasEmit := last[core.RoleEmit]
	if !hasEmit {
		return orderError("pipeline has no emit stage")
	}
	if count[core.RoleEmit] > 1 {
		return orderError("more than one emit stage")
	}
	if emit != len(list)-1 {
		return orderError("%s must be the last stage", list[emit].Name)
	}

	if component, ok := first[core.RoleComponent]; ok {
		for i, s := range list {
			if (s.Role == core.RoleResolve || s.Role == core.RoleInterop) && i > component {
				return orderError("%s must run before %s", s.Name, list[component].Name)
			}
		}
	}

	rename, hasRename := first[core.RoleRename]
	for i, s := range list {
		ext, ok := changedExt(s, rules)
		if !ok {
			continue
		}
		if !hasRename {
			return orderError("%s consumes %s but no stage renames it", s.Name, ext)
		}
		if i > rename {
			return orderError("%s consumes %s after %s has renamed it", s.Name, ext, list[rename].Name)
		}
	}
	if hasRename && rename > emit {
		return orderError("%s must run before %s", list[rename].Name, list[emit].Name)
	}

	strip, hasStrip := first[core.RoleStrip]
	if hasStrip {
		for i, s := range list {
			if s.Role.IsContent() && i > strip {
				return orderError("%s must run before %s", s.Name, list[strip].Name)
			}
		}
		if strip > emit {
			return orderError("%s must run before %s", list[strip].Name, list[emit].Name)
		}
	}

	return nil
}

func changedExt(s core.Stage, rules core.RenameRules) (string, bool) {
	if s.Role == core.RoleRename {
		return "", false
	}
	for _, ext := range s.Consumes {
		if rules.ChangesExt(ext) {
			return ext, true
		}
	}
	return "", false
}
