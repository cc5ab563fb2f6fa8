package cli

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

type BuildStep struct {
	Name      string
	Modules   int
	StartTime time.Time
	EndTime   time.Time
	Success   bool
	Error     string
}

type BuildProblem struct {
	Module  string
	Message string
	Details []string
}

// BuildReport collects stage steps and diagnostics during a build and prints
// them once it finishes. Report and AddError may be called from any goroutine.
type BuildReport struct {
	out         *Output
	mu          sync.Mutex
	steps       []*BuildStep
	warnings    []BuildProblem
	errors      []BuildProblem
	startTime   time.Time
	pageCount   int
	moduleCount int
	outputDir   string
	hasFailures bool
}

func NewBuildReport(out *Output, outputDir string) *BuildReport {
	return &BuildReport{
		out:       out,
		startTime: time.Now(),
		outputDir: outputDir,
	}
}

func (r *BuildReport) SetPageCount(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pageCount = count
}

func (r *BuildReport) SetModuleCount(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moduleCount = count
}

func (r *BuildReport) StartStep(name string) *BuildStep {
	r.mu.Lock()
	defer r.mu.Unlock()
	step := &BuildStep{
		Name:      name,
		StartTime: time.Now(),
	}
	r.steps = append(r.steps, step)
	return step
}

func (r *BuildReport) EndStep(step *BuildStep, modules int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	step.EndTime = time.Now()
	step.Modules = modules
	step.Success = err == nil
	if err != nil {
		step.Error = err.Error()
		r.hasFailures = true
	}
}

// Report records a diagnostic that passed the filter.
func (r *BuildReport) Report(d core.Diagnostic) {
	p := BuildProblem{Module: d.Module, Message: fmt.Sprintf("(%s) %s", d.Code, d.Message)}
	if d.Stage != "" {
		p.Details = []string{"stage " + d.Stage}
	}
	if d.Severity == core.SeverityError {
		r.AddError(p.Module, p.Message, p.Details)
		return
	}
	r.AddWarning(p.Module, p.Message, p.Details)
}

func (r *BuildReport) AddWarning(module string, message string, details []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, BuildProblem{
		Module:  module,
		Message: message,
		Details: details,
	})
}

func (r *BuildReport) AddError(module string, message string, details []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, BuildProblem{
		Module:  module,
		Message: message,
		Details: details,
	})
	r.hasFailures = true
}

func (r *BuildReport) Warnings() []BuildProblem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BuildProblem(nil), r.warnings...)
}

func (r *BuildReport) Errors() []BuildProblem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BuildProblem(nil), r.errors...)
}

func (r *BuildReport) Render() {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := time.Since(r.startTime)

	if len(r.errors) == 0 && len(r.warnings) == 0 {
		r.renderMinimal(duration)
	} else {
		r.renderVerbose(duration)
	}
}

func (r *BuildReport) renderMinimal(duration time.Duration) {
	w := r.out.Writer()
	fmt.Fprintf(w, "  "+r.out.Green("✓ ")+"%d pages, %d modules\n", r.pageCount, r.moduleCount)

	var failed []string
	for _, step := range r.steps {
		if !step.Success {
			failed = append(failed, "  "+r.out.Red("✗ ")+step.Name+": "+step.Error)
		}
	}

	if len(failed) == 0 && !r.hasFailures {
		fmt.Fprintf(w, "  "+r.out.Green("✓ ")+"Build complete in %s\n", formatDuration(duration))
	} else {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failed steps:")
		for _, line := range failed {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(r.out.ErrWriter(), "  %s\n", r.out.Red(fmt.Sprintf("Build failed after %s", formatDuration(duration))))
	}

	if r.outputDir != "" {
		fmt.Fprintf(w, "\n  %s\n", r.out.Gray("Output: "+r.outputDir))
	}
}

func (r *BuildReport) renderVerbose(duration time.Duration) {
	w := r.out.Writer()
	fmt.Fprintf(w, "  %d pages, %d modules\n", r.pageCount, r.moduleCount)

	fmt.Fprintln(w)
	for _, step := range r.steps {
		status := r.out.Green("✓")
		if !step.Success {
			status = r.out.Red("✗")
		}
		fmt.Fprintf(w, "  %s %s %s\n", status, step.Name, r.out.Gray(formatDuration(step.EndTime.Sub(step.StartTime))))
	}

	if len(r.errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(r.out.ErrWriter(), "  "+r.out.Red("✗ ")+"Errors (%d):\n", len(r.errors))
		r.renderProblems(r.out.ErrWriter(), r.out.Red("✗"), r.errors)
	}

	if len(r.warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  "+r.out.Yellow("⚠ ")+"Warnings (%d):\n", len(r.warnings))
		r.renderProblems(w, r.out.Yellow("⚠"), r.warnings)
	}

	fmt.Fprintln(w)
	if r.hasFailures {
		fmt.Fprintf(r.out.ErrWriter(), "  %s\n", r.out.Red(fmt.Sprintf("Build failed after %s", formatDuration(duration))))
	} else {
		fmt.Fprintf(w, "  "+r.out.Green("✓ ")+"Build complete in %s\n", formatDuration(duration))
	}

	if r.outputDir != "" {
		fmt.Fprintf(w, "\n  %s\n", r.out.Gray("Output: "+r.outputDir))
	}
}

func (r *BuildReport) renderProblems(w io.Writer, marker string, problems []BuildProblem) {
	byModule := make(map[string][]BuildProblem)
	var modules []string
	for _, p := range problems {
		if _, ok := byModule[p.Module]; !ok {
			modules = append(modules, p.Module)
		}
		byModule[p.Module] = append(byModule[p.Module], p)
	}
	sort.Strings(modules)

	for _, module := range modules {
		name := module
		if name == "" {
			name = "(build)"
		}
		fmt.Fprintf(w, "  %s %s\n", marker, name)

		var details []string
		for _, p := range byModule[module] {
			fmt.Fprintf(w, "    %s\n", p.Message)
			details = append(details, p.Details...)
		}
		for _, detail := range deduplicateStrings(details) {
			fmt.Fprintf(w, "      • %s\n", detail)
		}
	}
}

func (r *BuildReport) HasFailures() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasFailures
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.1fs", float64(d)/float64(time.Second))
}

func deduplicateStrings(items []string) []string {
	if len(items) <= 1 {
		return items
	}

	seen := make(map[string]int)
	var order []string
	for _, item := range items {
		if seen[item] == 0 {
			order = append(order, item)
		}
		seen[item]++
	}

	result := make([]string, 0, len(order))
	for _, item := range order {
		if count := seen[item]; count > 1 {
			result = append(result, fmt.Sprintf("%s (%d occurrences)", item, count))
		} else {
			result = append(result, item)
		}
	}

	return result
}
