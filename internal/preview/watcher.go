package preview

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Watcher reports settled changes to the sources of a site: the docs and
// i18n trees, the sidebar file, the configuration and its .env file.
//
// The watched set is fixed at construction. Moving docs.path needs a restart.
type Watcher struct {
	fs       *fsnotify.Watcher
	trees    []string
	files    map[string]bool
	skip     []string
	quiet    time.Duration
	onChange func()
	logger   *slog.Logger
}

// NewWatcher watches the sources of cfg. onChange runs on the watcher's
// goroutine once no relevant event arrived for quiet.
func NewWatcher(cfg *config.SiteConfig, configPath string, quiet time.Duration, onChange func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if configPath == "" {
		configPath = filepath.Join(cfg.Root, config.DefaultFileName)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}

	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]bool),
		quiet:    quiet,
		onChange: onChange,
		logger:   logger,
	}
	for _, p := range []string{cfg.OutDir(), cfg.StateDir()} {
		w.skip = append(w.skip, absPath(p))
	}
	for _, p := range []string{cfg.DocsDir(), cfg.ResolvePath(cfg.Docs.I18nPath)} {
		w.trees = append(w.trees, absPath(p))
	}
	for _, p := range []string{configPath, cfg.SidebarFile(), filepath.Join(cfg.Root, ".env")} {
		w.files[absPath(p)] = true
	}

	for _, tree := range w.trees {
		if st, statErr := os.Stat(tree); statErr != nil || !st.IsDir() {
			logger.Debug("Not watching missing source tree", logfields.Path(tree))
			continue
		}
		w.addTree(tree)
	}
	for f := range w.files {
		dir := filepath.Dir(f)
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to watch directory").
				WithContext("path", dir).Build()
		}
	}
	return w, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// addTree watches root and every directory below it that is not skipped.
func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.skipped(path) || (path != root && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) skipped(path string) bool {
	for _, s := range w.skip {
		if within(path, s) {
			return true
		}
	}
	return false
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// relevant reports whether an event on name concerns a site source.
func (w *Watcher) relevant(name string) bool {
	name = absPath(name)
	if w.files[name] {
		return true
	}
	if ignoredName(name) || w.skipped(name) {
		return false
	}
	for _, tree := range w.trees {
		if within(name, tree) {
			return true
		}
	}
	return false
}

// ignoredName matches hidden files and editor scratch files.
func ignoredName(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db", base == "4913":
		return true
	}
	return false
}

// Run delivers debounced change notifications until ctx is done, then
// closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			stopTimer(timer)
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					w.addTree(ev.Name)
				}
			}
			w.logger.Debug("Source change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			stopTimer(timer)
			timer.Reset(w.quiet)
			fire = timer.C
		case <-fire:
			fire = nil
			w.onChange()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// Close releases the watcher when Run is never started.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
