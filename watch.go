package blog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = 500 * time.Millisecond

// watch reloads the content whenever a file below ContentDir changes. Bursts
// of events are collapsed into one reload. It stops when ctx is done.
func (a *App) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addTree(w, a.Config.ContentDir); err != nil {
		w.Close()
		return err
	}
	a.Log.Info("watching content", zap.String("dir", a.Config.ContentDir))
	go a.watchLoop(ctx, w)
	return nil
}

func (a *App) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			a.Log.Debug("content changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(w, ev.Name); err != nil {
						a.Log.Warn("watch directory", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			if err := a.Reload(ctx); err != nil {
				ContentReloads.WithLabelValues("fail").Inc()
				a.Log.Error("reload content", zap.Error(err))
				continue
			}
			ContentReloads.WithLabelValues("success").Inc()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			a.Log.Warn("watcher", zap.Error(err))
		}
	}
}

// addTree watches root and every directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
