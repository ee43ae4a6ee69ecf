package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/titanbrowser/capbridge/internal/logging"
)

// Watcher reloads the configuration when the config file changes on disk.
type Watcher struct {
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	callbacks []func(*Config)
	done      chan struct{}
	closed    bool
}

// NewWatcher starts watching the config file for external changes. The watch
// covers the config directory so editor rename-and-replace saves are caught.
func NewWatcher(ctx context.Context) (*Watcher, error) {
	log := logging.FromContext(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir, err := ConfigDir()
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsw,
		done:    make(chan struct{}),
	}

	go w.run(ctx)

	log.Debug().Str("dir", dir).Msg("config watcher started")
	return w, nil
}

// OnConfigChange registers a callback invoked with the freshly loaded config.
func (w *Watcher) OnConfigChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

func (w *Watcher) run(ctx context.Context) {
	log := logging.FromContext(ctx)

	path, err := ConfigFilePath()
	if err != nil {
		log.Warn().Err(err).Msg("config watcher: cannot resolve config path")
		return
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug().Str("op", event.Op.String()).Str("file", event.Name).Msg("config change detected")

			cfg, err := Load()
			if err != nil {
				log.Warn().Err(err).Msg("failed to reload config")
				continue
			}
			w.notify(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("config watcher error")
		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) notify(cfg *Config) {
	w.mu.Lock()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, callback := range callbacks {
		callback(cfg)
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)
	return w.watcher.Close()
}
