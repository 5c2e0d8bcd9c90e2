// Package watch runs the filesystem watch daemon. It observes the
// project's content directories with fsnotify, debounces bursts of
// events, and triggers a reconciliation scan once the tree settles.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/voguefx/vogue/internal/manager"
	"github.com/voguefx/vogue/internal/store"
)

// Config controls daemon behavior.
type Config struct {
	// Debounce is how long a directory must stay quiet before a scan
	// runs.
	Debounce time.Duration

	Logger *log.Logger

	// OnReport is called after each scan that changed or flagged
	// something. Optional.
	OnReport func(*manager.ScanReport)
}

// Daemon watches one loaded project.
type Daemon struct {
	mgr     *manager.Manager
	cfg     Config
	watcher *fsnotify.Watcher

	changeMu    sync.Mutex
	changeQueue map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a daemon over an already-loaded project.
func New(mgr *manager.Manager, cfg Config) (*Daemon, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[watch] ", log.LstdFlags)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	return &Daemon{
		mgr:         mgr,
		cfg:         cfg,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
	}, nil
}

// Start adds the content directories to the watcher and launches the
// event and debounce loops. It returns once the loops are running.
func (d *Daemon) Start(ctx context.Context) error {
	root, err := d.mgr.ProjectPath()
	if err != nil {
		return err
	}

	for _, dir := range watchDirs(root) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("watch: create %s: %w", dir, err)
		}
		if err := d.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(2)
	go d.eventLoop()
	go d.debounceLoop()
	d.cfg.Logger.Printf("watching %s", root)
	return nil
}

// Stop shuts the loops down and closes the watcher.
func (d *Daemon) Stop() error {
	if d.cancel != nil {
		d.cancel()
	}
	err := d.watcher.Close()
	d.wg.Wait()
	return err
}

// watchDirs returns the directories whose contents drive reconciliation.
// Subdirectories of the scene root are added as they appear.
func watchDirs(root string) []string {
	dirs := []string{
		filepath.Join(root, store.AssetsDir),
		filepath.Join(root, store.ShotsDir),
		filepath.Join(root, store.ScenesDir),
		filepath.Join(root, store.ScenesDir, "Assets"),
		filepath.Join(root, store.ScenesDir, "Shots"),
	}
	for _, t := range store.DefaultAssetTypes {
		dirs = append(dirs,
			filepath.Join(root, store.AssetsDir, t),
			filepath.Join(root, store.ScenesDir, "Assets", t),
		)
	}
	return dirs
}

func (d *Daemon) eventLoop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !d.relevant(event) {
				continue
			}
			d.cfg.Logger.Printf("event: %s %s", event.Op, event.Name)
			d.queueChange(event.Name)

			// New directories under a watched root get watched too,
			// so freshly created sequences and asset folders emit
			// events for the files inside them.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := d.watcher.Add(event.Name); err != nil {
						d.cfg.Logger.Printf("warning: watch %s: %v", event.Name, err)
					}
				}
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.cfg.Logger.Printf("watcher error: %v", err)
		}
	}
}

// relevant filters out temp files and backups from the atomic write
// protocol so the daemon does not rescan on its own writes.
func (d *Daemon) relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".tmp-") || strings.HasPrefix(base, ".") {
		return false
	}
	if strings.HasSuffix(base, store.BackupSuffix) {
		return false
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return true
}

func (d *Daemon) queueChange(path string) {
	d.changeMu.Lock()
	defer d.changeMu.Unlock()
	d.changeQueue[path] = time.Now()
}

func (d *Daemon) debounceLoop() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.processPending()
		}
	}
}

// processPending runs a scan once every queued change is older than the
// debounce window. One scan covers any number of pending changes.
func (d *Daemon) processPending() {
	d.changeMu.Lock()
	if len(d.changeQueue) == 0 {
		d.changeMu.Unlock()
		return
	}
	now := time.Now()
	for _, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.cfg.Debounce {
			d.changeMu.Unlock()
			return
		}
	}
	n := len(d.changeQueue)
	d.changeQueue = make(map[string]time.Time)
	d.changeMu.Unlock()

	d.cfg.Logger.Printf("tree settled after %d changes, scanning", n)
	report, err := d.mgr.ScanFilesystem()
	if err != nil {
		d.cfg.Logger.Printf("scan failed: %v", err)
		return
	}
	if d.cfg.OnReport != nil && !report.Empty() {
		d.cfg.OnReport(report)
	}
}
