package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
	"github.com/3-lines-studio/bifrost-mini/internal/diagnostics"
)

// StageError reports which stage, and which module if any, failed.
type StageError struct {
	Stage  string
	Module string
	Err    error
}

func (e *StageError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Module, e.Err)
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Observer interface {
	StageStarted(name string)
	StageFinished(name string, modules int, err error)
}

type Runner struct {
	workers  int
	filter   *diagnostics.Filter
	sink     diagnostics.Sink
	observer Observer
	logger   *slog.Logger
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithFilter(f *diagnostics.Filter) Option {
	return func(r *Runner) { r.filter = f }
}

func WithSink(s diagnostics.Sink) Option {
	return func(r *Runner) { r.sink = s }
}

func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		workers: runtime.GOMAXPROCS(0),
		filter:  diagnostics.Default(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sink == nil {
		r.sink = diagnostics.SinkFunc(func(d core.Diagnostic) {
			r.logger.Warn(d.Message, "code", d.Code, "module", d.Module, "stage", d.Stage)
		})
	}
	return r
}

// warnBuffer collects the diagnostics of one module or one bundle hook.
type warnBuffer struct {
	mu    sync.Mutex
	stage string
	list  []core.Diagnostic
}

func (b *warnBuffer) Warn(d core.Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d.Stage == "" {
		d.Stage = b.stage
	}
	b.list = append(b.list, d)
}

func (r *Runner) flush(buffers ...*warnBuffer) {
	for _, b := range buffers {
		if b == nil {
			continue
		}
		for _, d := range b.list {
			r.filter.Handle(d, r.sink)
		}
	}
}

// Run drives the stages in order over a bundle seeded with the given
// modules. Each stage runs its build-start hook, then its transform over every
// included module, then its bundle hook. Transforms work on copies that are
// committed only once the whole stage has succeeded.
func (r *Runner) Run(ctx context.Context, list []core.Stage, seed ...core.Module) (*core.Bundle, error) {
	b := core.NewBundle(seed...)

	for _, s := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if r.observer != nil {
			r.observer.StageStarted(s.Name)
		}
		n, err := r.runStage(ctx, s, b)
		if r.observer != nil {
			r.observer.StageFinished(s.Name, n, err)
		}
		if err != nil {
			return nil, err
		}
		r.logger.Debug("stage finished", "stage", s.Name, "modules", n)
	}

	return b, nil
}

func (r *Runner) runStage(ctx context.Context, s core.Stage, b *core.Bundle) (int, error) {
	if s.BuildStart != nil {
		if err := s.BuildStart(ctx); err != nil {
			return 0, &StageError{Stage: s.Name, Err: err}
		}
	}

	n := 0
	if s.Transform != nil {
		mods := b.Modules()
		results := make([]*core.Module, len(mods))
		buffers := make([]*warnBuffer, len(mods))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for i := range mods {
			m := mods[i]
			if m.Seed || !s.Includes(m.Info()) {
				continue
			}
			n++
			buf := &warnBuffer{stage: s.Name}
			buffers[i] = buf
			g.Go(func() error {
				if err := s.Transform(gctx, &m, buf); err != nil {
					return &StageError{Stage: s.Name, Module: m.ID, Err: err}
				}
				results[i] = &m
				return nil
			})
		}

		err := g.Wait()
		r.flush(buffers...)
		if err != nil {
			return n, err
		}

		for _, m := range results {
			if m != nil {
				b.Put(*m)
			}
		}
	}

	if s.Bundle != nil {
		buf := &warnBuffer{stage: s.Name}
		err := s.Bundle(ctx, b, buf)
		r.flush(buf)
		if err != nil {
			return n, &StageError{Stage: s.Name, Err: err}
		}
	}

	return n, nil
}
