// Package diagnostics decides which bundler warnings reach the user.
package diagnostics

import (
	"sort"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

type Sink interface {
	Report(d core.Diagnostic)
}

type SinkFunc func(d core.Diagnostic)

func (f SinkFunc) Report(d core.Diagnostic) { f(d) }

// Filter holds a fixed set of suppressed warning codes. It is safe for
// concurrent use since it is never mutated after New.
type Filter struct {
	codes map[string]struct{}
}

func New(codes ...string) *Filter {
	f := &Filter{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		if c != "" {
			f.codes[c] = struct{}{}
		}
	}
	return f
}

func Default() *Filter {
	return New(core.CodeThisIsUndefined)
}

func (f *Filter) Suppressed(code string) bool {
	_, ok := f.codes[code]
	return ok
}

func (f *Filter) Codes() []string {
	out := make([]string, 0, len(f.codes))
	for c := range f.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Handle forwards d to sink unless it is a suppressed warning. Errors are
// always forwarded.
func (f *Filter) Handle(d core.Diagnostic, sink Sink) bool {
	if d.Severity == core.SeverityWarning && f.Suppressed(d.Code) {
		return false
	}
	if sink != nil {
		sink.Report(d)
	}
	return true
}
