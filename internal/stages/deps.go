// Package stages holds the constructors of every pipeline stage, keyed by
// name in Factories. Each constructor receives the read-only build inputs
// through Deps; no stage reads configuration from anywhere else.
package stages

import (
	"fmt"
	"log/slog"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/config"
	"github.com/3-lines-studio/bifrost-mini/internal/core"
	"github.com/3-lines-studio/bifrost-mini/internal/entries"
	"github.com/3-lines-studio/bifrost-mini/internal/hostcomponent"
)

const (
	NameClean    = "clean"
	NameProgress = "progress"
	NameResolve  = "resolve"
	NameCommonJS = "commonjs"
	NameScript   = "script"
	NamePage     = "page"
	NameStyle    = "style"
	NameRename   = "rename"
	NameStrip    = "strip"
	NameTemplate = "template"
)

var scriptExts = []string{".js", ".jsx", ".ts", ".tsx"}

var styleExts = []string{".css", ".less"}

type Deps struct {
	Project     *config.Project
	Catalog     *entries.Catalog
	Registry    *hostcomponent.Registry
	FS          fs.FileSystem
	Transformer core.Transformer
	Logger      *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) require(stage string, fields ...string) error {
	for _, field := range fields {
		missing := false
		switch field {
		case "project":
			missing = d.Project == nil
		case "catalog":
			missing = d.Catalog == nil
		case "registry":
			missing = d.Registry == nil
		case "fs":
			missing = d.FS == nil
		case "transformer":
			missing = d.Transformer == nil
		}
		if missing {
			return fmt.Errorf("stage %s: missing %s", stage, field)
		}
	}
	return nil
}

type Factory func(Deps) (core.Stage, error)

// Factories maps stage names to their constructors.
var Factories = map[string]Factory{
	NameClean:    Clean,
	NameProgress: Progress,
	NameResolve:  Resolve,
	NameCommonJS: CommonJS,
	NameScript:   Script,
	NamePage:     Page,
	NameStyle:    Style,
	NameRename:   Rename,
	NameStrip:    Strip,
	NameTemplate: Template,
}
