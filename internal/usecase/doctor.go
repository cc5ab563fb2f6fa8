package usecase

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/3-lines-studio/bifrost-mini/internal/config"
	"github.com/3-lines-studio/bifrost-mini/internal/entries"
	"github.com/3-lines-studio/bifrost-mini/internal/hostcomponent"
)

type DoctorCheck struct {
	Name   string
	OK     bool
	Detail string
}

// DoctorService inspects a project for the problems that would stop a build
// before any stage runs.
type DoctorService struct {
	fs       FileSystem
	registry *hostcomponent.Registry
	cli      CLIOutput
	lookPath func(string) (string, error)
}

func NewDoctorService(fs FileSystem, registry *hostcomponent.Registry, cli CLIOutput) *DoctorService {
	return &DoctorService{
		fs:       fs,
		registry: registry,
		cli:      cli,
		lookPath: exec.LookPath,
	}
}

// Check runs every check and prints the result. Later checks that depend on
// a failed one are skipped.
func (s *DoctorService) Check(projectDir string) []DoctorCheck {
	s.cli.PrintHeader("Mini Doctor")

	var checks []DoctorCheck
	add := func(name string, err error, detail string) bool {
		c := DoctorCheck{Name: name, OK: err == nil, Detail: detail}
		if err != nil {
			c.Detail = err.Error()
			s.cli.PrintError("%s: %s", name, c.Detail)
		} else {
			s.cli.PrintSuccess("%s: %s", name, detail)
		}
		checks = append(checks, c)
		return err == nil
	}

	bun, err := s.lookPath("bun")
	add("bun", err, bun)

	project, err := config.Resolve(projectDir, config.Overrides{})
	if !add("config", err, filepath.Join(projectDir, config.FileName)) {
		return checks
	}

	_, err = s.registry.Platform(project.Platform())
	add("platform", err, project.Platform())

	src, err := s.fs.Sub(project.Root())
	if err == nil {
		var catalog *entries.Catalog
		catalog, err = entries.Discover(src, entries.Options{SourceDir: project.SourceDir(), Pages: project.Pages()})
		if err == nil {
			add("entries", nil, pluralize(len(catalog.Pages()), "page"))
		}
	}
	if err != nil {
		add("entries", err, "")
	}

	pkg := filepath.Join(project.Root(), "node_modules", filepath.FromSlash(project.RuntimeModule()), "package.json")
	detail, err := s.checkRuntime(pkg, project.RuntimeModule())
	add("runtime", err, detail)

	return checks
}

func (s *DoctorService) checkRuntime(pkg, module string) (string, error) {
	data, err := s.fs.ReadFile(pkg)
	if err != nil {
		return "", fmt.Errorf("%s is not installed, run bun install", module)
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%s has an invalid package.json", module)
	}
	info := gjson.GetManyBytes(data, "name", "version")
	if info[0].String() != module {
		return "", fmt.Errorf("%s resolves to package %q", module, info[0].String())
	}
	if v := info[1].String(); v != "" {
		return module + "@" + v, nil
	}
	return module, nil
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
