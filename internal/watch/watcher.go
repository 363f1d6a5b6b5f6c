// SPDX-License-Identifier: MPL-2.0

// Package watch reports debounced filesystem changes below a directory.
//
// Events within the debounce window are coalesced so the callback fires once
// with every changed path. The flow-splitter watch command uses it to follow
// the flow file written by Node-RED.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period before OnChange fires. Node-RED writes
// the flow file through a temporary file and a rename, which arrive as
// separate events.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores are always excluded: VCS metadata, installed nodes, the
// backup and temporary files of the Node-RED file storage, and editor noise.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.backup",
	"**/*.$$$",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

var (
	// ErrInvalidWatchConfig is the sentinel wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrWatcherExhausted is returned when the OS cannot keep watching, for
	// example because the inotify watch limit is reached.
	ErrWatcherExhausted = errors.New("watcher out of OS resources")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns are doublestar globs relative to BaseDir selecting which
		// files trigger callbacks. An empty slice watches all non-ignored files.
		Patterns []string

		// Ignore are extra doublestar globs merged with the default ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before the callback
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// BaseDir is the watched root. Empty means the working directory.
		BaseDir string

		// OnChange receives the changed paths, relative to BaseDir and sorted.
		// A nil callback is a no-op.
		OnChange func(ctx context.Context, changes []Change) error

		// Logger receives watcher warnings and callback errors. nil discards.
		Logger *log.Logger
	}

	// InvalidWatchConfigError lists every invalid Config field.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// Change is one coalesced filesystem change.
	Change struct {
		// Path is relative to BaseDir, with forward slashes.
		Path string
		// Removed is set when the path no longer exists when the callback fires.
		Removed bool
	}

	// Watcher monitors BaseDir and fires a debounced callback when matching
	// files change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		logger   *log.Logger
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
	}
)

// Error implements error.
func (e *InvalidWatchConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid watch config (%d errors): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidWatchConfig followed by the field errors.
func (e *InvalidWatchConfigError) Unwrap() []error {
	return append([]error{ErrInvalidWatchConfig}, e.FieldErrors...)
}

// Validate reports every empty or malformed pattern and a blank BaseDir.
func (c Config) Validate() error {
	var errs []error
	errs = append(errs, patternErrors(c.Patterns, "watch")...)
	errs = append(errs, patternErrors(c.Ignore, "ignore")...)
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, errors.New("base directory must not be blank"))
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// New creates a Watcher and registers every non-ignored directory under
// BaseDir with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		logger:   logger,
		debounce: debounce,
		baseDir:  absBase,
	}

	if err := w.addDirectories(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close fsnotify after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// BaseDir returns the absolute watched root.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Run blocks until ctx is canceled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when fsnotify breaks down.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains pending and runs OnChange. A fire that finds a callback
	// still running reschedules itself so pending changes are not lost.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous callback still running, postponing")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		paths := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		changes := make([]Change, len(paths))
		for i, p := range paths {
			_, err := os.Stat(filepath.Join(w.baseDir, filepath.FromSlash(p)))
			changes[i] = Change{Path: p, Removed: errors.Is(err, os.ErrNotExist)}
		}

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changes); err != nil {
				w.logger.Error("watch callback failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify", "err", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}

			rel, err := filepath.Rel(w.baseDir, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			rel = filepath.ToSlash(rel)

			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if w.isIgnored(rel) || !w.matchesPatterns(rel) {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if _, fatal := exhaustionHint(err); fatal {
				return exhausted(fmt.Errorf("watch: %w", err))
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// addDirectories registers BaseDir and its non-ignored subdirectories.
// Patterns are applied when events arrive.
func (w *Watcher) addDirectories() error {
	walkErr := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "err", walkDirErr)
			return nil //nolint:nilerr // inaccessible paths are skipped
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(w.baseDir, path)
		if relErr != nil {
			return nil //nolint:nilerr // skip paths that cannot be made relative
		}
		if rel != "." && w.isIgnoredDir(rel) {
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			return exhausted(fmt.Errorf("watch: add directory %q: %w", path, addErr))
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}
	return nil
}

// exhausted wraps err with ErrWatcherExhausted and an operator hint when it
// stems from OS resource exhaustion; other errors are returned unchanged.
func exhausted(err error) error {
	hint, fatal := exhaustionHint(err)
	if !fatal {
		return err
	}
	return fmt.Errorf("%w: %w (%s)", ErrWatcherExhausted, err, hint)
}

// maybeAddDir watches directories created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil || w.isIgnoredDir(rel) {
		return
	}
	if addErr := w.fsw.Add(path); addErr != nil {
		w.logger.Warn("add new directory", "path", path, "err", addErr)
	}
}

func (w *Watcher) isIgnoredDir(rel string) bool {
	return w.isIgnored(rel) || w.isIgnored(rel+"/")
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matchesPatterns(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

func patternErrors(patterns []string, label string) []error {
	var errs []error
	for _, pat := range patterns {
		if strings.TrimSpace(pat) == "" {
			errs = append(errs, fmt.Errorf("empty %s pattern", label))
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern))
		}
	}
	return errs
}
