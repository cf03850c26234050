// Package configwatcher watches a seqbatch config file and calls a reload
// function when it changes, e.g. to re-plan buckets after the token budget
// is edited.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/seqbatch/pkg/log"
)

// ReloadFunc is called after the watched file changes. A returned error is
// logged and the reload is retried.
type ReloadFunc func(ctx context.Context) error

// Plugin implements config watching functionality.
// It monitors one file through its parent directory, so editors that
// replace the file by renaming are also seen.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	retryInterval time.Duration
	debounceDelay time.Duration
	maxRetries    int

	// Runtime state
	path     string
	reload   ReloadFunc
	logger   log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	reloads  int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// RetryInterval is the delay between retries of a failed reload.
	// Default: 1 second
	RetryInterval time.Duration

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// MaxRetries bounds retries of one failed reload.
	// Default: 3
	MaxRetries int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RetryInterval: time.Second,
		DebounceDelay: 100 * time.Millisecond,
		MaxRetries:    3,
	}
}

// New creates a watcher for path.
func New(cfg Config, path string, reload ReloadFunc, logger log.Logger) *Plugin {
	def := DefaultConfig()
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = def.DebounceDelay
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &Plugin{
		retryInterval: cfg.RetryInterval,
		debounceDelay: cfg.DebounceDelay,
		maxRetries:    cfg.MaxRetries,
		path:          path,
		reload:        reload,
		logger:        logger,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Start begins watching in the background.
func (p *Plugin) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and waits for a running reload to finish.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Lock()
	p.stopPendingLocked()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reloads returns the number of successful reloads.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

// watchLoop watches for config file changes.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.scheduleReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

// scheduleReload coalesces bursts of events into one reload.
func (p *Plugin) scheduleReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopPendingLocked()
	p.wg.Add(1)
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		defer p.wg.Done()
		p.reloadWithRetry(ctx)
	})
}

// stopPendingLocked cancels a reload that has not started yet. p.mu must be
// held.
func (p *Plugin) stopPendingLocked() {
	if p.debounce != nil && p.debounce.Stop() {
		p.wg.Done()
	}
	p.debounce = nil
}

// reloadWithRetry retries until success, MaxRetries or context cancellation.
func (p *Plugin) reloadWithRetry(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return
		}
		err := p.reload(ctx)
		if err == nil {
			p.mu.Lock()
			p.reloads++
			p.mu.Unlock()
			p.logger.Info("config reloaded", log.String("path", p.path), log.Int("attempts", attempt+1))
			return
		}
		p.logger.Error("config reload failed", log.Err(err), log.Int("attempt", attempt+1))
		if attempt >= p.maxRetries {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.retryInterval):
		}
	}
}
