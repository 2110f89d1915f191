package scenario

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const reloadDebounceDelay = 300 * time.Millisecond

var afterFunc = time.AfterFunc

// debouncer runs fn once after the last Trigger within delay. A callback
// from a timer that was replaced or stopped is ignored.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
	fn    func()
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = afterFunc(d.delay, func() {
		d.mu.Lock()
		current := gen == d.gen
		d.mu.Unlock()
		if current {
			d.fn()
		}
	})
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watcher reloads a Catalog whenever a scenario file in dir changes.
type Watcher struct {
	catalog  *Catalog
	watcher  *fsnotify.Watcher
	debounce *debouncer
	done     chan struct{}
	onReload func(error)
}

// Watch starts watching dir. onReload, when not nil, runs after every reload
// attempt. Call Close to stop.
func Watch(dir string, catalog *Catalog, onReload func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		err := errors.Join(err, fw.Close())
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{catalog: catalog, watcher: fw, done: make(chan struct{}), onReload: onReload}
	w.debounce = newDebouncer(reloadDebounceDelay, w.reload)
	go w.loop()
	return w, nil
}

func (w *Watcher) reload() {
	err := w.catalog.Reload()
	if err != nil {
		log.Error().Err(err).Msg("scenario reload failed")
	} else {
		log.Info().Int("scenarios", len(w.catalog.List())).Msg("scenarios reloaded")
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".yaml") {
				continue
			}
			log.Debug().Str("op", ev.Op.String()).Str("path", ev.Name).Msg("scenario file changed")
			w.debounce.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

func (w *Watcher) Close() error {
	w.debounce.Stop()
	err := w.watcher.Close()
	<-w.done
	return err
}
