package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/cli"
	"github.com/3-lines-studio/bifrost-mini/internal/config"
	"github.com/3-lines-studio/bifrost-mini/internal/diagnostics"
	"github.com/3-lines-studio/bifrost-mini/internal/entries"
	"github.com/3-lines-studio/bifrost-mini/internal/hostcomponent"
	"github.com/3-lines-studio/bifrost-mini/internal/pipeline"
	"github.com/3-lines-studio/bifrost-mini/internal/stages"
)

type BuildInput struct {
	ProjectDir string
	Dev        bool
	Strict     bool
	Platform   string
}

type BuildOutput struct {
	Success  bool
	Written  []string
	Warnings int
	Error    error
}

type BuildService struct {
	fs          FileSystem
	transformer Transformer
	registry    *hostcomponent.Registry
	out         *cli.Output
	logger      *slog.Logger
}

func NewBuildService(fs FileSystem, transformer Transformer, registry *hostcomponent.Registry, out *cli.Output, logger *slog.Logger) *BuildService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildService{
		fs:          fs,
		transformer: transformer,
		registry:    registry,
		out:         out,
		logger:      logger,
	}
}

// stepObserver records every pipeline stage as a report step.
type stepObserver struct {
	report *cli.BuildReport
	steps  map[string]*cli.BuildStep
}

func (o *stepObserver) StageStarted(name string) {
	o.steps[name] = o.report.StartStep(name)
}

func (o *stepObserver) StageFinished(name string, modules int, err error) {
	if step, ok := o.steps[name]; ok {
		o.report.EndStep(step, modules, err)
	}
}

// Build runs one full pass: resolve the config, discover entries, assemble
// and drive the pipeline, then write the bundle.
func (s *BuildService) Build(ctx context.Context, input BuildInput) BuildOutput {
	project, err := config.Resolve(input.ProjectDir, config.Overrides{Strict: input.Strict, Platform: input.Platform})
	if err != nil {
		return BuildOutput{Error: fmt.Errorf("failed to load config: %w", err)}
	}

	src, err := s.fs.Sub(project.Root())
	if err != nil {
		return BuildOutput{Error: fmt.Errorf("failed to open project: %w", err)}
	}
	catalog, err := entries.Discover(src, entries.Options{SourceDir: project.SourceDir(), Pages: project.Pages()})
	if err != nil {
		return BuildOutput{Error: fmt.Errorf("failed to discover entries: %w", err)}
	}

	report := cli.NewBuildReport(s.out, project.OutDir())
	report.SetPageCount(len(catalog.Pages()))

	deps := stages.Deps{
		Project:     project,
		Catalog:     catalog,
		Registry:    s.registry,
		FS:          s.fs,
		Transformer: s.transformer,
		Logger:      s.logger,
	}

	list, err := pipeline.Assemble(input.Dev, deps)
	if err != nil {
		return BuildOutput{Error: fmt.Errorf("failed to assemble pipeline: %w", err)}
	}

	runner := pipeline.NewRunner(
		pipeline.WithWorkers(project.Workers()),
		pipeline.WithFilter(diagnostics.Default()),
		pipeline.WithSink(report),
		pipeline.WithObserver(&stepObserver{report: report, steps: make(map[string]*cli.BuildStep)}),
		pipeline.WithLogger(s.logger),
	)

	bundle, err := runner.Run(ctx, list, catalog.Seed(project.RuntimeModule()))
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			report.AddError(stageErr.Module, stageErr.Err.Error(), []string{"stage " + stageErr.Stage})
		} else {
			report.AddError("", err.Error(), nil)
		}
		report.Render()
		return BuildOutput{Warnings: len(report.Warnings()), Error: err}
	}
	report.SetModuleCount(bundle.Len())

	step := report.StartStep("write")
	written, err := pipeline.Write(s.fs, project.OutDir(), bundle)
	report.EndStep(step, len(written), err)
	if err != nil {
		report.Render()
		return BuildOutput{Written: written, Warnings: len(report.Warnings()), Error: err}
	}

	report.Render()
	s.logger.Debug("build finished", "files", len(written), "dev", input.Dev)

	return BuildOutput{
		Success:  true,
		Written:  written,
		Warnings: len(report.Warnings()),
	}
}
