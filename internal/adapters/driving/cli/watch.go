package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/PetersQuinn/executive-insights/internal/logger"
)

var (
	watchProject  string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest reports as they appear in a directory",
	Long: `Watches a directory and ingests every report file that is created or
rewritten in it. Hidden files, directories and unsupported extensions are
ignored. A file is ingested once its writes have settled for --debounce.

Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "project name (default: taken from the report)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is ingested")
	rootCmd.AddCommand(watchCmd)
}

// watchedExtensions lists the report formats the watcher ingests.
var watchedExtensions = map[string]bool{
	".docx":     true,
	".pptx":     true,
	".eml":      true,
	".vtt":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".json":     true,
}

// reportWatcher collects settled report paths from filesystem events.
type reportWatcher struct {
	debounce time.Duration
	pending  map[string]time.Time
	seen     map[string]fileStamp
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

func newReportWatcher(debounce time.Duration) *reportWatcher {
	return &reportWatcher{
		debounce: debounce,
		pending:  make(map[string]time.Time),
		seen:     make(map[string]fileStamp),
	}
}

// observe records an event. It reports whether the event concerns a report.
func (w *reportWatcher) observe(event fsnotify.Event, now time.Time) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	if !watchedExtensions[strings.ToLower(filepath.Ext(name))] {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return false
	}
	w.pending[event.Name] = now
	return true
}

// due returns the pending paths quiet for at least the debounce period
// whose size or modification time differs from the last ingest.
func (w *reportWatcher) due(now time.Time) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, path)

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}
		if prev, ok := w.seen[path]; ok && prev == stamp {
			continue
		}
		w.seen[path] = stamp
		ready = append(ready, path)
	}
	return ready
}

func runWatch(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errors.New("snapshot service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for reports. Press Ctrl+C to stop.\n", dir)

	ctx := cmd.Context()
	rw := newReportWatcher(watchDebounce)
	tick := watchDebounce / 2
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped watching.")
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if rw.observe(event, time.Now()) {
				logger.Debug("watch: %s %s", event.Op, event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case now := <-ticker.C:
			for _, path := range rw.due(now) {
				snap, err := ingestFile(ctx, path, watchProject, snapshotService.Ingest)
				if err != nil {
					cmd.PrintErrf("%s: %v\n", path, err)
					continue
				}
				cmd.Printf("%s: snapshot %s for %s (%s)\n", path, snap.ID, snap.ProjectID, snap.ReportDate)
			}
		}
	}
}
