package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lmercadier/revoir/internal/domain"
)

// debounceWindow batches rapid successive writes to the same vault
// before forwarding them to the collaborator.
const debounceWindow = 500 * time.Millisecond

// Watch starts an fsnotify watcher on the vault root and processes
// markdown change events until ctx is cancelled. Changed files are
// re-imported and forwarded to the collaborator in debounced batches.
//
// New directories created at runtime are added to the watch list.
func Watch(ctx context.Context, importer *Importer, collab Collaborator, vaultRoot string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// pending accumulates imported notes until the debounce timer fires.
	pending := make(map[string]*domain.Note)
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounceWindow)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounceWindow)
		}
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		notes := make([]*domain.Note, 0, len(pending))
		for _, n := range pending {
			notes = append(notes, n)
		}
		pending = make(map[string]*domain.Note)
		if err := collab.Process(ctx, notes, time.Now().UTC()); err != nil {
			logger.Warn("watcher: collaborator failed", slog.String("error", err.Error()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				note, impErr := importer.ImportFile(ctx, ev.Name, time.Now().UTC())
				if impErr != nil {
					logger.Warn("watcher: import failed",
						slog.String("path", ev.Name),
						slog.String("error", impErr.Error()))
					continue
				}
				pending[note.ID] = note
				scheduleFlush()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if delErr := importer.Remove(ctx, ev.Name); delErr != nil {
					logger.Warn("watcher: remove failed",
						slog.String("path", ev.Name),
						slog.String("error", delErr.Error()))
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds dir and all subdirectories to the watcher.
// Hidden directories are skipped.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != dir {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
