package colorscheme

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bnema/lacquer/internal/application/port"
	"github.com/bnema/lacquer/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Watcher turns desktop settings file changes into resolver refreshes, making
// the resolver a live signal rather than a point-in-time probe. On GNOME the
// dconf database is rewritten whenever the color scheme flips.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// DefaultSettingsPath returns the dconf user database path, the file that
// changes when the desktop color scheme does.
func DefaultSettingsPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "dconf", "user")
}

// NewWatcher watches path and calls resolver.Refresh on every write to it.
// Returns nil without error when the path does not exist; the engine then
// simply has no live signal, which is not a failure.
func NewWatcher(ctx context.Context, path string, resolver port.ColorSchemeResolver) (*Watcher, error) {
	log := logging.FromContext(ctx)

	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		log.Debug().Str("path", path).Msg("settings file absent, color scheme watcher disabled")
		return nil, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and dconf replace the file via rename,
	// which drops a watch placed on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{watcher: fsw, done: make(chan struct{})}
	target := filepath.Base(path)

	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pref := resolver.Refresh()
				log.Debug().
					Bool("prefers_dark", pref.PrefersDark).
					Str("source", pref.Source).
					Msg("platform color scheme re-resolved")
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("color scheme watcher error")
			}
		}
	}()

	log.Debug().Str("path", path).Msg("color scheme watcher started")
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}
