package internal

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	pkgconfig "github.com/arnfell/driftline/pkg/config"
)

// WatchConfig watches the config file and applies log-level changes at
// runtime until ctx is cancelled. Invalid edits are logged and ignored;
// the running configuration otherwise stays as it was at startup.
//
// The parent directory is watched rather than the file itself: editors
// and config-management tools typically replace the file via rename,
// which would silently detach a file-level watch.
func WatchConfig(ctx context.Context, path string, levelVar *slog.LevelVar, logger *slog.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("config watcher: started", slog.String("path", abs))

	// Debounce reloads: a single save can emit several events.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-reloadCh:
			reloadLogLevel(abs, levelVar, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reloadLogLevel re-parses the config file and applies the log level.
func reloadLogLevel(path string, levelVar *slog.LevelVar, logger *slog.Logger) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		logger.Warn("config watcher: reload failed", slog.String("error", err.Error()))
		return
	}
	if cfg.App.LogLevel == levelVar.Level() {
		return
	}
	levelVar.Set(cfg.App.LogLevel)
	logger.Info("config watcher: log level changed", slog.String("log_level", cfg.App.LogLevel.String()))
}
