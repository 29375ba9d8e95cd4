package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher re-imports history files when they change on disk.
// Editors and copy tools emit several events per save, so imports are
// debounced per file.
type Watcher struct {
	importer *Importer
	dir      string
	debounce time.Duration
	onImport func(ImportRecord)

	fsw     *fsnotify.Watcher
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher watches dir for *.json changes. onImport may be nil.
func NewWatcher(importer *Importer, dir string, debounce time.Duration, onImport func(ImportRecord)) (*Watcher, error) {
	if importer == nil {
		return nil, fmt.Errorf("importer cannot be nil")
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		importer: importer,
		dir:      dir,
		debounce: debounce,
		onImport: onImport,
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Start begins processing file events in the background
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
	log.Printf("Watching history directory: %s", w.dir)
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(strings.ToLower(event.Name), ".json") {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warnf("History watcher error: %v", err)
		}
	}
}

// schedule (re)starts the debounce timer of a file
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		select {
		case <-w.stopCh:
			w.mu.Unlock()
			return
		default:
		}
		w.wg.Add(1)
		w.mu.Unlock()
		defer w.wg.Done()

		rec, err := w.importer.ImportFile(context.Background(), path)
		if err != nil {
			log.Warnf("Failed to re-import %s: %v", filepath.Base(path), err)
			return
		}
		if w.onImport != nil {
			w.onImport(*rec)
		}
	})
}

// Close stops the watcher, cancels pending imports and waits for a
// running import to finish
func (w *Watcher) Close() error {
	w.mu.Lock()
	close(w.stopCh)
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
