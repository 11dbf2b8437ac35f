package config

import (
	"time"

	"vidhub/internal/log"
	"vidhub/internal/watch"
)

// reloadSettle lets an editor finish a burst of writes before reloading
const reloadSettle = 100 * time.Millisecond

// Watch reloads the file at path whenever it changes and passes every
// valid result to onChange. A file that fails to load is logged and the
// previous configuration stays in effect. onChange runs on the watcher's
// goroutine. Call the returned function to stop watching.
func Watch(path string, onChange func(*Config)) (stop func(), err error) {
	w, err := watch.New()
	if err != nil {
		return nil, err
	}
	if err := w.AddFile(path); err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}

	logger := log.For("config")
	done := make(chan struct{})
	go func() {
		defer close(done)
		var settle <-chan time.Time
		for {
			select {
			case change, ok := <-w.Changes():
				if !ok {
					return
				}
				if change.Removed() {
					continue
				}
				settle = time.After(reloadSettle)
			case <-settle:
				settle = nil
				cfg, err := LoadConfigFile(path)
				if err != nil {
					logger.WithError(err).Warn("Ignoring invalid configuration change")
					continue
				}
				logger.With(log.F("path", path)).Info("Configuration reloaded")
				onChange(cfg)
			}
		}
	}()

	return func() {
		w.Stop()
		<-done
	}, nil
}
