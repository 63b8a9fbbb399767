package location

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

const defaultSettle = 100 * time.Millisecond

// Snapshot is the persisted location state: the active view and the last
// location of every view.
type Snapshot struct {
	Current string
	Views   map[string]url.Values
}

// Get returns the stored location of view.
func (s Snapshot) Get(view string) url.Values {
	return cloneValues(s.Views[view])
}

type fileDoc struct {
	Current string            `toml:"current"`
	Views   map[string]string `toml:"views"`
}

// File persists locations to a TOML file so they survive restarts and can
// be changed by another process.
type File struct {
	path   string
	settle time.Duration
	logger *log.Logger

	mu          sync.Mutex
	lastWritten []byte
}

// NewFile binds to path. The file need not exist.
func NewFile(path string) *File {
	return &File{
		path:   path,
		settle: defaultSettle,
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the debug logger.
func (f *File) SetLogger(logger *log.Logger) {
	if logger != nil {
		f.logger = logger
	}
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the file. A missing file yields an empty snapshot.
func (f *File) Load() (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{Views: map[string]url.Values{}}, nil
		}
		return Snapshot{}, fmt.Errorf("read location file: %w", err)
	}
	return decode(data)
}

// Save records values as the location of view and makes view current.
func (f *File) Save(view string, values url.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.Load()
	if err != nil {
		f.logger.Printf("location file unreadable, rewriting: %v", err)
		snap = Snapshot{Views: map[string]url.Values{}}
	}
	snap.Current = view
	snap.Views[view] = cloneValues(values)

	data, err := encode(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create location dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write location file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace location file: %w", err)
	}
	f.lastWritten = data
	return nil
}

// Watch reports snapshots written by other processes until ctx is done.
// The parent directory is watched so atomic replacements are seen. Writes
// made through this File are not reported.
func (f *File) Watch(ctx context.Context) (<-chan Snapshot, error) {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create location dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan Snapshot, 1)
	go f.watch(ctx, w, out)
	return out, nil
}

func (f *File) watch(ctx context.Context, w *fsnotify.Watcher, out chan<- Snapshot) {
	defer close(out)
	defer func() { _ = w.Close() }()

	target := filepath.Base(f.path)
	timer := time.NewTimer(f.settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(f.settle)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.logger.Printf("location watcher: %v", err)

		case <-timer.C:
			snap, changed, err := f.reload()
			if err != nil {
				f.logger.Printf("reload location file: %v", err)
				continue
			}
			if !changed {
				continue
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}
}

// reload reads the file and reports whether it differs from the last write
// made through f.
func (f *File) reload() (Snapshot, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Snapshot{}, false, err
	}
	f.mu.Lock()
	own := bytes.Equal(data, f.lastWritten)
	f.lastWritten = data
	f.mu.Unlock()
	if own {
		return Snapshot{}, false, nil
	}
	snap, err := decode(data)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func decode(data []byte) (Snapshot, error) {
	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("parse location file: %w", err)
	}
	snap := Snapshot{Current: doc.Current, Views: make(map[string]url.Values, len(doc.Views))}
	for view, raw := range doc.Views {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return Snapshot{}, fmt.Errorf("parse location of %s: %w", view, err)
		}
		snap.Views[view] = values
	}
	return snap, nil
}

func encode(snap Snapshot) ([]byte, error) {
	doc := fileDoc{Current: snap.Current, Views: make(map[string]string, len(snap.Views))}
	for view, values := range snap.Views {
		doc.Views[view] = values.Encode()
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode location file: %w", err)
	}
	return data, nil
}
