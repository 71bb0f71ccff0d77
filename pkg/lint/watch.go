package lint

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce batches bursts of events, such as an editor's write-then-rename.
const watchDebounce = 100 * time.Millisecond

// watchScope records what a watch covers: whole directory trees and single files.
type watchScope struct {
	dirs  map[string]bool
	files map[string]bool
}

func (s watchScope) covers(path string) bool {
	return s.files[path] || s.dirs[filepath.Dir(path)]
}

// Watch re-checks Python files under paths whenever they are written or
// created, passing each batch of results to report. It blocks until ctx is done.
func (l *Linter) Watch(ctx context.Context, paths []string, report func(*Result)) error {
	if len(paths) == 0 {
		return ErrNoPaths
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	scope := watchScope{dirs: make(map[string]bool), files: make(map[string]bool)}

	for _, root := range paths {
		err = l.addWatch(watcher, scope, filepath.Clean(root))
		if err != nil {
			return err
		}
	}

	pending := make(map[string]struct{})

	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			name := filepath.Clean(event.Name)

			if event.Op&fsnotify.Create != 0 && scope.dirs[filepath.Dir(name)] {
				if info, statErr := os.Stat(name); statErr == nil && info.IsDir() {
					l.watchNewDir(ctx, watcher, scope, name)

					continue
				}
			}

			if !scope.covers(name) || l.excluded(name) || !isPython(name) {
				continue
			}

			pending[name] = struct{}{}
			fire = time.After(watchDebounce)

		case <-fire:
			files := slices.Sorted(maps.Keys(pending))
			clear(pending)

			fire = nil

			l.logger.DebugContext(ctx, "change detected", slog.Int("files", len(files)))

			result, checkErr := l.CheckFiles(ctx, files)
			if checkErr != nil {
				if ctx.Err() != nil {
					return nil
				}

				return checkErr
			}

			report(result)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			l.logger.WarnContext(ctx, "watcher error", slog.Any("error", watchErr))
		}
	}
}

func (l *Linter) addWatch(watcher *fsnotify.Watcher, scope watchScope, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		scope.files[root] = true

		err = watcher.Add(filepath.Dir(root))
		if err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}

		return nil
	}

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if !entry.IsDir() {
			return nil
		}

		if path != root && (l.excluded(path) || isVendored(root, path)) {
			return filepath.SkipDir
		}

		scope.dirs[path] = true

		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	return nil
}

func (l *Linter) watchNewDir(ctx context.Context, watcher *fsnotify.Watcher, scope watchScope, dir string) {
	if l.excluded(dir) {
		return
	}

	err := l.addWatch(watcher, scope, dir)
	if err != nil {
		l.logger.WarnContext(ctx, "cannot watch new directory", slog.String("path", dir), slog.Any("error", err))
	}
}
