// Package ui is the Bubble Tea host for glide's list views.
//
// # Architecture Overview
//
// Each configured view is a pane owning a listing.Controller and the
// location history the controller reads and writes. The Model never decides
// what to fetch: key presses, mouse wheel events, window resizes, timers and
// finished requests become controller events, and the effects the controller
// returns become commands:
//
//   - FetchEffect: a command calling remote.PageFetcher with a request
//     timeout; the result re-enters Update as a pageLoadedMsg
//   - DebounceEffect: a tea.Tick that re-enters as a debounceMsg carrying the
//     sequence number, so superseded timers are ignored by the controller
//   - LocationEffect: logged only; the controller has already written the
//     location through the pane's history
//
// Location changes made by another process (glide -open, a hand-edited
// location file) arrive on the Snapshots channel and are fed to the affected
// panes as listing.LocationChanged events.
//
// # Package Structure
//
//   - app.go: Model, Options, Init/Update/View, key handling and Run
//   - pane.go: per-view controller wiring and effect-to-command mapping
//   - list.go: list body drawn from listing.Frame
//   - header.go: view tabs, status bar and command bar
//   - help.go: help overlay built from the key map
//   - keys.go: key bindings (bubbles/key)
//   - theme.go, style_helpers.go: lipgloss themes and background helpers
//
// # Rendering
//
// The body draws exactly Frame.Items, positioned by Frame.Window and the
// scroll offset, so render cost depends on the terminal height and not on
// how many items are loaded. Rows have a fixed height (row_height lines)
// and are truncated by display width with go-runewidth.
//
// # Themes
//
// Nightfox, Kanagawa and Slate. T cycles them and stores the choice in the
// preferences file.
package ui
