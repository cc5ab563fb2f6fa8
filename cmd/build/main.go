package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/cli"
	"github.com/3-lines-studio/bifrost-mini/internal/adapters/env"
	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/adapters/process"
	"github.com/3-lines-studio/bifrost-mini/internal/hostcomponent"
	"github.com/3-lines-studio/bifrost-mini/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	dev := flag.Bool("dev", false, "dev build: keep the output directory (also MINI_DEV=1)")
	watch := flag.Bool("watch", false, "rebuild on every change (implies --dev)")
	strict := flag.Bool("strict", false, "fail on unknown host component props")
	verbose := flag.Bool("verbose", false, "log every stage and module")
	platform := flag.String("platform", "", "target platform, overrides mini.config.yaml")
	flag.Usage = printUsage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	output := cli.NewOutput()
	output.PrintHeader("Mini Build")

	projectDir := "."
	if flag.NArg() > 0 {
		projectDir = flag.Arg(0)
	}
	absProjectDir, err := filepath.Abs(projectDir)
	if err != nil {
		output.PrintError("Failed to resolve project directory: %v", err)
		return 1
	}

	transpiler, err := process.NewTranspiler(absProjectDir)
	if err != nil {
		output.PrintError("Failed to start transpiler: %v", err)
		return 1
	}
	defer func() { _ = transpiler.Stop() }()

	service := usecase.NewBuildService(fs.NewOSFileSystem(), transpiler, hostcomponent.Default(), output, logger)
	input := usecase.BuildInput{
		ProjectDir: absProjectDir,
		Dev:        *dev || *watch || env.DetectDev(),
		Strict:     *strict,
		Platform:   *platform,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watch {
		output.PrintStep("Watching %s", absProjectDir)
		if err := service.Watch(ctx, usecase.WatchInput{BuildInput: input}); err != nil {
			output.PrintError("%v", err)
			return 1
		}
		return 0
	}

	result := service.Build(ctx, input)
	if result.Error != nil {
		output.PrintError("%v", result.Error)
		return 1
	}
	return 0
}

func printUsage() {
	w := flag.CommandLine.Output()
	fmt.Fprintln(w, "Usage: mini-build [options] [project-dir]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  mini-build")
	fmt.Fprintln(w, "  mini-build --dev --watch ./myapp")
	fmt.Fprintln(w, "  mini-build --strict --verbose ./myapp")
}
