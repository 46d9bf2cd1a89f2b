package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/castle-book/internal/engine/bend"
	"github.com/Faultbox/castle-book/internal/logger"
)

// Watcher reloads a config file when it changes and publishes the bend
// section. Only the newest parameters are kept; the frame loop drains
// Params between frames, so animation state is never touched from here.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	params  chan bend.Params

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Watch starts watching path. The parent directory is watched so that
// editors replacing the file by rename are still seen.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		params:  make(chan bend.Params, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Params delivers validated bend parameters after each successful reload.
func (w *Watcher) Params() <-chan bend.Params {
	return w.params
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	p, err := reloadBend(w.path)
	if err != nil {
		// Half-written files land here too; the next write event retries.
		logger.Error("config reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}
	logger.Info("bend parameters reloaded",
		zap.String("path", w.path),
		zap.Float64("easing", p.Easing),
		zap.Float64("step", p.Step),
		zap.String("curve", p.Curve.String()),
	)
	w.publish(p)
}

// publish replaces any value the frame loop has not picked up yet.
func (w *Watcher) publish(p bend.Params) {
	for {
		select {
		case w.params <- p:
			return
		default:
		}
		select {
		case <-w.params:
		default:
		}
	}
}

// reloadBend reads path with the same priority Load uses and returns the
// validated bend parameters.
func reloadBend(path string) (bend.Params, error) {
	cfg, err := Variant(*flagVariant)
	if err != nil {
		return bend.Params{}, err
	}
	if err := loadFromFile(cfg, path); err != nil {
		return bend.Params{}, err
	}
	applyFlags(cfg)

	p, err := cfg.BendParams()
	if err != nil {
		return bend.Params{}, err
	}
	if err := p.Validate(); err != nil {
		return bend.Params{}, err
	}
	return p, nil
}
