package app

import (
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/glide/internal/config"
	"github.com/five82/glide/internal/location"
)

func TestPickView(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name      string
		requested string
		current   string
		last      string
		want      string
	}{
		{"requested wins", "posts", "users", "reviews", "posts"},
		{"location file next", "", "reviews", "posts", "reviews"},
		{"last used next", "", "", "products", "products"},
		{"unknown current ignored", "", "gone", "posts", "posts"},
		{"first view fallback", "", "", "", "users"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickView(cfg, tt.requested, tt.current, tt.last)
			if err != nil {
				t.Fatalf("pickView returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("pickView = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickView_UnknownRequestedFails(t *testing.T) {
	_, err := pickView(config.Default(), "nope", "", "")
	if err == nil || !strings.Contains(err.Error(), `unknown view "nope"`) {
		t.Fatalf("pickView error = %v, want unknown view", err)
	}
}

func TestOpen_WritesLocationFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "location.toml")
	opts := Options{ConfigPath: filepath.Join(t.TempDir(), "missing.toml"), Location: path}

	got, err := Open(opts, " users?search=ann&page=3 ")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if got != "users?page=3&search=ann" {
		t.Fatalf("Open = %q, want normalized location", got)
	}

	snap, err := location.NewFile(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Current != "users" || snap.Get("users").Get("page") != "3" {
		t.Fatalf("snapshot = %+v, want users?page=3", snap)
	}
}

func TestOpen_RejectsUnknownView(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	opts := Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		Location:   filepath.Join(t.TempDir(), "location.toml"),
	}
	if _, err := Open(opts, "orders?page=2"); err == nil {
		t.Fatalf("Open returned nil error for an unknown view")
	}
	if _, err := Open(opts, "?page=2"); err == nil {
		t.Fatalf("Open returned nil error for a missing view")
	}
}

func TestHistories_SeededFromSnapshot(t *testing.T) {
	cfg := config.Default()
	snap := location.Snapshot{
		Current: "posts",
		Views:   map[string]url.Values{"posts": {"page": {"4"}, "search": {"love"}}},
	}

	hs := Histories(cfg, nil, snap)
	if len(hs) != len(cfg.Views) {
		t.Fatalf("Histories = %d, want one per view", len(hs))
	}
	if got := hs["posts"].String(); got != "posts?page=4&search=love" {
		t.Fatalf("posts history = %q", got)
	}
	if got := hs["users"].String(); got != "users" {
		t.Fatalf("users history = %q, want empty location", got)
	}
}
