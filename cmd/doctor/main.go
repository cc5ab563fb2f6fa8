package main

import (
	"os"
	"path/filepath"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/cli"
	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/hostcomponent"
	"github.com/3-lines-studio/bifrost-mini/internal/usecase"
)

func main() {
	projectDir := "."
	if len(os.Args) > 1 {
		projectDir = os.Args[1]
	}

	output := cli.NewOutput()

	absProjectDir, err := filepath.Abs(projectDir)
	if err != nil {
		output.PrintHeader("Mini Doctor")
		output.PrintError("Failed to resolve project directory: %v", err)
		os.Exit(1)
	}

	service := usecase.NewDoctorService(fs.NewOSFileSystem(), hostcomponent.Default(), output)
	for _, check := range service.Check(absProjectDir) {
		if !check.OK {
			os.Exit(1)
		}
	}
	output.PrintDone("No problems found")
}
