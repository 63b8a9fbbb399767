package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/five82/glide/internal/config"
	"github.com/five82/glide/internal/location"
	"github.com/five82/glide/internal/prefs"
	"github.com/five82/glide/internal/remote"
	"github.com/five82/glide/internal/ui"
)

// Options configure the glide application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/glide/prefs.toml
	View       string // view to open; empty resumes the last one
	Location   string // overrides the configured location file
	Debug      bool   // log to glide-debug.log in the temp dir
}

// Run boots the glide TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(opts.Debug || os.Getenv("GLIDE_DEBUG") == "1")
	if err != nil {
		return err
	}
	defer closeLog()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := remote.NewClient(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	file := location.NewFile(cfg.LocationFile)
	file.SetLogger(logger)
	snap, err := file.Load()
	if err != nil {
		logger.Printf("ignoring location file: %v", err)
		snap = location.Snapshot{}
	}

	view, err := pickView(cfg, opts.View, snap.Current, userPrefs.LastView)
	if err != nil {
		return err
	}
	logger.Printf("starting view=%s api=%s location=%s", view, client.BaseURL(), file.Path())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	snapshots := make(chan location.Snapshot)
	g.Go(func() error {
		WatchLocations(gctx, file, snapshots, logger)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return ui.Run(ui.Options{
			Context:   gctx,
			Config:    cfg,
			Fetcher:   client,
			Histories: Histories(cfg, file, snap),
			Snapshots: snapshots,
			View:      view,
			ThemeName: userPrefs.Theme,
			PrefsPath: opts.PrefsPath,
			Logger:    logger,
		})
	})
	return g.Wait()
}

// Open records loc (for example "users?page=3&search=ann") as the current
// location. A running instance follows it through its file watcher. It
// returns the normalized location.
func Open(opts Options, loc string) (string, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return "", err
	}
	view, values, err := location.Parse(loc)
	if err != nil {
		return "", err
	}
	if _, ok := cfg.View(view); !ok {
		return "", fmt.Errorf("unknown view %q (have %v)", view, cfg.ViewNames())
	}
	if err := location.NewFile(cfg.LocationFile).Save(view, values); err != nil {
		return "", fmt.Errorf("save location: %w", err)
	}
	return location.Format(view, values), nil
}

// Histories builds one persisted history per view, seeded from snap.
func Histories(cfg config.Config, file *location.File, snap location.Snapshot) map[string]*location.Persisted {
	out := make(map[string]*location.Persisted, len(cfg.Views))
	for _, v := range cfg.Views {
		out[v.Name] = location.NewPersisted(location.NewHistory(v.Name, snap.Get(v.Name)), file)
	}
	return out
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.Location != "" {
		cfg.LocationFile = opts.Location
	}
	return cfg, nil
}

// pickView chooses the starting view: the requested one, then the one the
// location file names, then the last one used, then the first configured.
func pickView(cfg config.Config, requested, current, last string) (string, error) {
	if requested != "" {
		if _, ok := cfg.View(requested); !ok {
			return "", fmt.Errorf("unknown view %q (have %v)", requested, cfg.ViewNames())
		}
		return requested, nil
	}
	for _, name := range []string{current, last} {
		if _, ok := cfg.View(name); ok && name != "" {
			return name, nil
		}
	}
	return cfg.Views[0].Name, nil
}

// setupLogging routes the standard logger. The TUI owns the terminal, so
// logs go to a file in debug mode and nowhere otherwise.
func setupLogging(debug bool) (*log.Logger, func(), error) {
	if !debug {
		log.SetOutput(io.Discard)
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	path := filepath.Join(os.TempDir(), "glide-debug.log")
	f, err := tea.LogToFile(path, "glide")
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return log.Default(), func() { _ = f.Close() }, nil
}
