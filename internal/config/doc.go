// Package config loads the glide configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/glide/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - API root: https://dummyjson.com
//   - Page size: 20 items
//   - Fetch threshold: 10 items from the loaded tail
//   - Overscan: 3 rows above and below the viewport
//   - Search debounce: 300ms
//   - Row height: 1 line
//   - Restore limit: 50 pages
//   - Request timeout: 10s
//   - Location file: ~/.config/glide/location.toml
//   - Views: users, products, posts and reviews from dummyjson.com
//
// # TOML Format
//
//	base_url = "https://dummyjson.com"
//	page_size = 20
//	fetch_threshold = 10
//	debounce_ms = 300
//
//	[[views]]
//	name = "users"
//	path = "users"
//	search_path = "users/search"
//	items_key = "users"
//	title_field = "firstName"
//	fields = ["firstName", "lastName", "email"]
//	pagination = "offset"       # page, offset or cursor
//	server_side_filter = true
//
// Defining any [[views]] replaces the built-in ones. A view without a title
// is titled after its name; id_field defaults to "id" and pagination to
// "page".
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files, TOML
// syntax errors and invalid view definitions. Validation errors name the
// offending view. Missing config files are NOT an error.
package config
