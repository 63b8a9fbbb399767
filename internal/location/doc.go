// Package location stores the addressable location of each view.
//
// A location is a view name plus query parameters, shared as text such as
// "users?page=3&search=ann". History keeps the navigable entries of one
// view; File persists the current location of every view to
// ~/.config/glide/location.toml and watches it, so another process (for
// example `glide -open`) can navigate a running instance.
package location
