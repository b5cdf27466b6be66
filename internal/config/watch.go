// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package config

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads the YAML file at cfg.ConfigPath whenever it changes,
// debounced by reloadDebounce, invoking onReload with the freshly
// merged Config. It blocks until ctx is cancelled.
func Watch(ctx context.Context, cfg Config, onReload func(Config), log zerolog.Logger) error {
	if cfg.ConfigPath == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.ConfigPath); err != nil {
		log.Warn().Err(err).Str("path", cfg.ConfigPath).Msg("config hot-reload watch unavailable")
		<-ctx.Done()
		return nil
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(reloadDebounce)
			}
			timerC = timer.C
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(werr).Msg("config watcher error")
		case <-timerC:
			reloaded, err := Load(cfg.ConfigPath)
			if err != nil {
				log.Error().Err(err).Msg("config reload failed, keeping previous configuration")
				continue
			}
			log.Info().Msg("configuration reloaded")
			onReload(reloaded)
		}
	}
}
