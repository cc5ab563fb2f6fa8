package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters"
	"github.com/3-lines-studio/bifrost-mini/internal/adapters/cli"
	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/usecase"
)

func main() {
	template := "minimal"
	platform := ""
	var projectDir string

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if os.Args[1] == "--help" || os.Args[1] == "-h" {
		printUsage()
		os.Exit(0)
	}

	output := cli.NewOutput()

	argIdx := 1
	for argIdx < len(os.Args) {
		arg := os.Args[argIdx]

		if arg == "--template" || arg == "--platform" {
			if argIdx+1 >= len(os.Args) {
				output.PrintHeader("Mini Init")
				output.PrintError("%s requires a value", arg)
				os.Exit(1)
			}
			if arg == "--template" {
				template = os.Args[argIdx+1]
			} else {
				platform = os.Args[argIdx+1]
			}
			argIdx += 2
			continue
		}

		if projectDir == "" && !isFlag(arg) {
			projectDir = arg
		}
		argIdx++
	}

	if projectDir == "" {
		printUsage()
		os.Exit(1)
	}

	absProjectDir, err := filepath.Abs(projectDir)
	if err != nil {
		output.PrintHeader("Mini Init")
		output.PrintError("Failed to resolve project directory: %v", err)
		os.Exit(1)
	}

	source := adapters.NewTemplateSource()
	service := usecase.NewInitService(fs.NewOSFileSystem(), source, output)
	result := service.InitProject(usecase.InitInput{
		ProjectDir: absProjectDir,
		Template:   template,
		Platform:   platform,
	})
	if result.Error != nil {
		output.PrintError("%v", result.Error)
		os.Exit(1)
	}
}

func isFlag(arg string) bool {
	return len(arg) > 0 && arg[0] == '-'
}

func printUsage() {
	names := strings.Join(adapters.NewTemplateSource().Names(), ", ")
	fmt.Println("Mini Init")
	fmt.Println()
	fmt.Println("Usage: mini-init [options] <project-dir>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Printf("  --template <name>  Template to use (%s). Default: minimal\n", names)
	fmt.Println("  --platform <name>  Target platform written to mini.config.yaml. Default: toutiao")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  mini-init myapp")
	fmt.Println("  mini-init --template less myapp")
	fmt.Println()
	fmt.Println("To check an existing project, use: mini-doctor <dir>")
}
