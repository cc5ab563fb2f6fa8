package usecase

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/templates"
)

type InitInput struct {
	ProjectDir string
	Template   string
	Platform   string
}

type InitOutput struct {
	Success bool
	Created []string
	Error   error
}

type InitService struct {
	fs        FileSystem
	templates TemplateSource
	cli       CLIOutput
}

func NewInitService(fs FileSystem, templates TemplateSource, cli CLIOutput) *InitService {
	return &InitService{
		fs:        fs,
		templates: templates,
		cli:       cli,
	}
}

func (s *InitService) InitProject(input InitInput) InitOutput {
	s.cli.PrintHeader("Mini Init")

	if s.fs.FileExists(input.ProjectDir) {
		entries, err := s.fs.ReadDir(input.ProjectDir)
		if err != nil {
			return InitOutput{Error: fmt.Errorf("failed to read directory: %w", err)}
		}
		if len(entries) > 0 {
			return InitOutput{Error: fmt.Errorf("directory '%s' already exists and is not empty", input.ProjectDir)}
		}
	}

	name := input.Template
	if name == "" {
		name = "minimal"
	}
	templateFS, err := s.templates.GetTemplate(name)
	if err != nil {
		if errors.Is(err, templates.ErrInvalidTemplate) {
			return InitOutput{Error: fmt.Errorf("invalid template '%s'", name)}
		}
		return InitOutput{Error: err}
	}

	platform := input.Platform
	if platform == "" {
		platform = "toutiao"
	}
	data := templates.TemplateData{
		Name:     templates.DeriveProjectName(input.ProjectDir),
		Platform: platform,
	}

	var created []string
	err = iofs.WalkDir(templateFS, ".", func(path string, d iofs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		content, err := iofs.ReadFile(templateFS, path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		targetPath, isTemplate := templates.ProcessFilename(path, data)
		content, err = templates.ProcessContent(content, isTemplate, data)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", path, err)
		}

		abs := filepath.Join(input.ProjectDir, filepath.FromSlash(targetPath))
		if err := fs.WriteFileAll(s.fs, abs, content); err != nil {
			return fmt.Errorf("failed to write file %s: %w", abs, err)
		}

		if isTemplate {
			s.cli.PrintFile(targetPath + " (generated)")
		} else {
			s.cli.PrintFile(targetPath)
		}
		created = append(created, targetPath)
		return nil
	})
	if err != nil {
		return InitOutput{Created: created, Error: err}
	}

	s.cli.PrintDone(fmt.Sprintf("Created %d files using '%s' template", len(created), name))
	s.cli.PrintStep("Next steps:")
	s.cli.PrintStep("  cd %s", input.ProjectDir)
	s.cli.PrintStep("  bun install")
	s.cli.PrintStep("  mini-build --dev --watch")

	return InitOutput{Success: true, Created: created}
}
