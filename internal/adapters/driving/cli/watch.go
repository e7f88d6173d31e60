package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmerge/internal/logger"
)

// watchAction is what a filesystem event means for a watched source.
type watchAction int

const (
	watchIgnore watchAction = iota
	watchReingest
	watchRemove
)

// handleFsEvent maps an event to an action. Only files in sources are acted on.
func handleFsEvent(event fsnotify.Event, sources map[string]bool) (watchAction, string) {
	id := sourceID(event.Name)
	if !sources[id] {
		return watchIgnore, ""
	}
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return watchReingest, id
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return watchRemove, id
	default:
		return watchIgnore, ""
	}
}

// watchSources re-ingests sources as they change until ctx is done.
// Parent directories are watched so editors that replace files on save
// are still seen.
func watchSources(ctx context.Context, cmd *cobra.Command, ids []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	sources := make(map[string]bool, len(ids))
	dirs := make(map[string]bool)
	for _, id := range ids {
		sources[id] = true
		dir := filepath.Dir(id)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			applyWatchEvent(cmd, event, sources)
		}
	}
}

func applyWatchEvent(cmd *cobra.Command, event fsnotify.Event, sources map[string]bool) {
	action, id := handleFsEvent(event, sources)
	switch action {
	case watchReingest:
		data, err := os.ReadFile(id)
		if err != nil {
			// a rename-on-save can leave a short window with no file
			logger.Debug("watch: read %s: %v", id, err)
			return
		}
		if err := ingestFile(cmd, sourceFile{id: id, text: string(data)}); err != nil {
			logger.Warn("watch: %v", err)
		}
	case watchRemove:
		n, err := ingestService.RemoveSource(cmd.Context(), id)
		if err != nil {
			logger.Warn("watch: remove %s: %v", id, err)
			return
		}
		cmd.Printf("Removed %s: %d items\n", id, n)
	case watchIgnore:
	}
}
