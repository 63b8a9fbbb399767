package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Config holds the API root, list tuning and the browsable views.
type Config struct {
	BaseURL         string
	PageSize        int
	FetchThreshold  int
	Overscan        int
	Debounce        time.Duration
	RowHeight       int
	MaxRestorePages int
	RequestTimeout  time.Duration
	LocationFile    string
	Views           []View
}

// View describes one remote collection.
type View struct {
	Name             string
	Title            string
	Path             string
	SearchPath       string
	ItemsKey         string
	IDField          string
	TitleField       string
	Fields           []string
	Pagination       string
	PageParam        string
	LimitParam       string
	SkipParam        string
	CursorParam      string
	SearchParam      string
	ServerSideFilter bool
}

const (
	defaultConfigPath      = "~/.config/glide/config.toml"
	defaultLocationFile    = "~/.config/glide/location.toml"
	defaultBaseURL         = "https://dummyjson.com"
	defaultPageSize        = 20
	defaultFetchThreshold  = 10
	defaultOverscan        = 3
	defaultDebounce        = 300 * time.Millisecond
	defaultRowHeight       = 1
	defaultMaxRestorePages = 50
	defaultRequestTimeout  = 10 * time.Second
)

var paginations = map[string]bool{"page": true, "offset": true, "cursor": true}

type rawView struct {
	Name             string   `toml:"name"`
	Title            string   `toml:"title"`
	Path             string   `toml:"path"`
	SearchPath       string   `toml:"search_path"`
	ItemsKey         string   `toml:"items_key"`
	IDField          string   `toml:"id_field"`
	TitleField       string   `toml:"title_field"`
	Fields           []string `toml:"fields"`
	Pagination       string   `toml:"pagination"`
	PageParam        string   `toml:"page_param"`
	LimitParam       string   `toml:"limit_param"`
	SkipParam        string   `toml:"skip_param"`
	CursorParam      string   `toml:"cursor_param"`
	SearchParam      string   `toml:"search_param"`
	ServerSideFilter bool     `toml:"server_side_filter"`
}

type rawConfig struct {
	BaseURL          string    `toml:"base_url"`
	PageSize         int       `toml:"page_size"`
	FetchThreshold   *int      `toml:"fetch_threshold"`
	Overscan         *int      `toml:"overscan"`
	DebounceMS       int       `toml:"debounce_ms"`
	RowHeight        int       `toml:"row_height"`
	MaxRestorePages  int       `toml:"max_restore_pages"`
	RequestTimeoutMS int       `toml:"request_timeout_ms"`
	LocationFile     string    `toml:"location_file"`
	Views            []rawView `toml:"views"`
}

// Default returns the built-in configuration: the dummyjson.com users,
// products, posts and reviews collections.
func Default() Config {
	return Config{
		BaseURL:         defaultBaseURL,
		PageSize:        defaultPageSize,
		FetchThreshold:  defaultFetchThreshold,
		Overscan:        defaultOverscan,
		Debounce:        defaultDebounce,
		RowHeight:       defaultRowHeight,
		MaxRestorePages: defaultMaxRestorePages,
		RequestTimeout:  defaultRequestTimeout,
		LocationFile:    mustExpand(defaultLocationFile),
		Views:           DefaultViews(),
	}
}

// DefaultViews returns the built-in views.
func DefaultViews() []View {
	return []View{
		{
			Name: "users", Title: "Users", Path: "users", SearchPath: "users/search",
			ItemsKey: "users", IDField: "id", TitleField: "firstName",
			Fields:     []string{"firstName", "lastName", "email", "company.name"},
			Pagination: "offset", SearchParam: "q", ServerSideFilter: true,
		},
		{
			Name: "products", Title: "Products", Path: "products", SearchPath: "products/search",
			ItemsKey: "products", IDField: "id", TitleField: "title",
			Fields:     []string{"title", "brand", "category", "price"},
			Pagination: "offset", SearchParam: "q", ServerSideFilter: true,
		},
		{
			Name: "posts", Title: "Posts", Path: "posts",
			ItemsKey: "posts", IDField: "id", TitleField: "title",
			Fields:     []string{"title", "tags", "reactions.likes"},
			Pagination: "offset",
		},
		{
			Name: "reviews", Title: "Reviews", Path: "comments",
			ItemsKey: "comments", IDField: "id", TitleField: "body",
			Fields:     []string{"body", "user.username"},
			Pagination: "offset",
		},
	}
}

// Load locates and parses the glide config, falling back to defaults when
// missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if raw.FetchThreshold != nil && *raw.FetchThreshold >= 0 {
		cfg.FetchThreshold = *raw.FetchThreshold
	}
	if raw.Overscan != nil && *raw.Overscan >= 0 {
		cfg.Overscan = *raw.Overscan
	}
	if raw.DebounceMS > 0 {
		cfg.Debounce = time.Duration(raw.DebounceMS) * time.Millisecond
	}
	if raw.RowHeight > 0 {
		cfg.RowHeight = raw.RowHeight
	}
	if raw.MaxRestorePages > 0 {
		cfg.MaxRestorePages = raw.MaxRestorePages
	}
	if raw.RequestTimeoutMS > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutMS) * time.Millisecond
	}
	if v := strings.TrimSpace(raw.LocationFile); v != "" {
		cfg.LocationFile = mustExpand(v)
	}

	if len(raw.Views) > 0 {
		cfg.Views = make([]View, 0, len(raw.Views))
		for _, rv := range raw.Views {
			cfg.Views = append(cfg.Views, normalizeView(rv))
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the view definitions.
func (c Config) Validate() error {
	if len(c.Views) == 0 {
		return fmt.Errorf("config: no views defined")
	}
	seen := make(map[string]bool, len(c.Views))
	for i, v := range c.Views {
		if v.Name == "" {
			return fmt.Errorf("config: view %d: name is required", i+1)
		}
		if strings.ContainsAny(v.Name, "?/ ") {
			return fmt.Errorf("config: view %q: name must not contain '?', '/' or spaces", v.Name)
		}
		if seen[v.Name] {
			return fmt.Errorf("config: view %q defined twice", v.Name)
		}
		seen[v.Name] = true
		if v.Path == "" {
			return fmt.Errorf("config: view %q: path is required", v.Name)
		}
		if !paginations[v.Pagination] {
			return fmt.Errorf("config: view %q: unknown pagination %q (want page, offset or cursor)", v.Name, v.Pagination)
		}
	}
	return nil
}

// View returns the view called name.
func (c Config) View(name string) (View, bool) {
	for _, v := range c.Views {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

// ViewNames lists the configured views in order.
func (c Config) ViewNames() []string {
	names := make([]string, 0, len(c.Views))
	for _, v := range c.Views {
		names = append(names, v.Name)
	}
	return names
}

func normalizeView(rv rawView) View {
	v := View{
		Name:             strings.TrimSpace(rv.Name),
		Title:            strings.TrimSpace(rv.Title),
		Path:             strings.TrimSpace(rv.Path),
		SearchPath:       strings.TrimSpace(rv.SearchPath),
		ItemsKey:         strings.TrimSpace(rv.ItemsKey),
		IDField:          strings.TrimSpace(rv.IDField),
		TitleField:       strings.TrimSpace(rv.TitleField),
		Pagination:       strings.ToLower(strings.TrimSpace(rv.Pagination)),
		PageParam:        strings.TrimSpace(rv.PageParam),
		LimitParam:       strings.TrimSpace(rv.LimitParam),
		SkipParam:        strings.TrimSpace(rv.SkipParam),
		CursorParam:      strings.TrimSpace(rv.CursorParam),
		SearchParam:      strings.TrimSpace(rv.SearchParam),
		ServerSideFilter: rv.ServerSideFilter,
	}
	for _, f := range rv.Fields {
		if f = strings.TrimSpace(f); f != "" {
			v.Fields = append(v.Fields, f)
		}
	}
	if v.Title == "" {
		v.Title = cases.Title(language.English).String(v.Name)
	}
	if v.IDField == "" {
		v.IDField = "id"
	}
	if v.Pagination == "" {
		v.Pagination = "page"
	}
	return v
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
