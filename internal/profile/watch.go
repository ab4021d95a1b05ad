package profile

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle time after the last write before the file is reloaded. editors
// often write a file in several steps
const watchSettle = 250 * time.Millisecond

// Watch reloads the profile at path whenever it changes on disk and hands
// the result to onChange. Profiles that fail to load are logged and
// skipped. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Profile)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("profile: watch: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("profile: watch: %w", err)
	}

	// the directory is watched rather than the file so that editors
	// replacing the file by rename do not end the watch
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("profile: watch: %w", err)
	}

	timer := time.NewTimer(watchSettle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(watchSettle)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("[WARN] profile watch: %v", err)

		case <-timer.C:
			p, err := Load(abs)
			if err != nil {
				log.Printf("[WARN] profile reload: %v", err)
				continue
			}
			log.Printf("[INFO] profile %q reloaded", p.Name)
			onChange(p)
		}
	}
}
