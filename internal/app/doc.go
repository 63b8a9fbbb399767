// Package app is the composition root for glide.
//
// # Overview
//
// Run wires configuration, preferences, the API client, the location file
// and the UI together, then blocks until the user quits or the context is
// cancelled.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        views, tuning, API root
//	       ├─────> prefs.Load()         theme, last view
//	       ├─────> remote.NewClient()   HTTP client
//	       ├─────> location.NewFile()   persisted locations
//	       ├─────> Histories()          one history per view
//	       ├─────> WatchLocations()     errgroup goroutine
//	       └─────> ui.Run()             errgroup goroutine (blocks)
//
// # Location Watching
//
// WatchLocations forwards location files written by other processes (for
// example glide -open) to the UI. If the fsnotify watch cannot be set up or
// stops, it is re-established with exponential backoff capped at 30s.
//
// # Logging
//
// The TUI owns the terminal. With -debug or GLIDE_DEBUG=1 the standard
// logger writes to glide-debug.log in the temp directory through
// tea.LogToFile; otherwise logging is discarded.
//
// # Error Handling
//
// Fatal (returned from Run): invalid config, invalid API root, unknown
// -view, unopenable debug log. Recoverable (logged): unreadable location
// file, watcher failures, page fetch failures, which the UI reports itself.
package app
