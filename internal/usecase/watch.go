package usecase

import (
	"context"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/3-lines-studio/bifrost-mini/internal/config"
)

const quietPeriod = 150 * time.Millisecond

type WatchInput struct {
	BuildInput
	// OnBuild is called after every pass, the initial one included.
	OnBuild func(BuildOutput)
}

// Watch builds once, then rebuilds whenever a file under the project changes.
// Bursts of events within the quiet period trigger a single rebuild. Output
// and node_modules directories are not watched. It returns when ctx is done.
func (s *BuildService) Watch(ctx context.Context, input WatchInput) error {
	input.Dev = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	root, err := filepath.Abs(input.ProjectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}
	input.ProjectDir = root

	project, err := config.Resolve(root, config.Overrides{})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	outDir, _, _ := strings.Cut(project.OutDirName(), "/")
	ignore := watchIgnore{root: root, dirs: map[string]bool{"node_modules": true, outDir: true}}

	if err := ignore.watchTree(watcher, root); err != nil {
		return err
	}

	build := func() {
		out := s.Build(ctx, input.BuildInput)
		if out.Error != nil {
			s.logger.Warn("build failed", "error", out.Error)
		}
		if input.OnBuild != nil {
			input.OnBuild(out)
		}
	}
	build()

	timer := time.NewTimer(quietPeriod)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignore.skipPath(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if err := ignore.watchTree(watcher, event.Name); err != nil {
					s.logger.Debug("failed to watch new path", "path", event.Name, "error", err)
				}
			}
			s.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(quietPeriod)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)

		case <-timer.C:
			build()
		}
	}
}

type watchIgnore struct {
	root string
	dirs map[string]bool
}

func (w watchIgnore) skipDir(name string) bool {
	return w.dirs[name] || strings.HasPrefix(name, ".")
}

// watchTree adds dir and every directory below it, skipping ignored ones.
// Paths that are not directories are ignored.
func (w watchIgnore) watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

func (w watchIgnore) skipPath(p string) bool {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == "." {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.skipDir(seg) {
			return true
		}
	}
	return false
}
