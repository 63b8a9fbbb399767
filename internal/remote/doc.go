// Package remote provides an HTTP client for paginated JSON collections.
//
// # Overview
//
// A View describes one endpoint: its path, how it paginates, which query
// parameters it expects and where its items live in the response. The
// Client turns a PageRequest into a GET, decodes the body with goccy/go-json
// and normalizes it into a listing.Page.
//
//	client, err := remote.NewClient("https://dummyjson.com", 10*time.Second)
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//	page, err := client.FetchPage(ctx, view, remote.PageRequest{Cursor: "1", Size: 20})
//
// # Pagination Styles
//
//   - page:   ?page=N&limit=S
//   - offset: ?skip=(N-1)*S&limit=S (the cursor is still the page number)
//   - cursor: ?cursor=C&limit=S, the cursor omitted for the first page
//
// A search term adds ?q=term (or the view's search_param) and switches to
// the view's search path when one is configured.
//
// # Response Shapes
//
// Items are read from the view's items key, then "items", "data" or
// "results"; a bare JSON array is accepted too. Whether more pages follow
// is decided by the first field present among:
//
//   - hasMore / has_more (bool)
//   - nextCursor / next_cursor (string or null)
//   - total / totalCount / total_count (number)
//
// With none of them a full page means there may be more.
//
// Scalar fields become item fields, nested objects flatten one level into
// "parent.child" keys and numbers are rendered without exponents.
//
// # Request Handling
//
// All requests:
//   - Set Accept: application/json and User-Agent: glide/0.1
//   - Carry a fresh X-Request-Id
//   - Share one round trip when the same URL is already in flight
//
// Example error messages:
//   - "execute request: dial tcp: connection refused"
//   - "api /users returned status 500"
//   - "decode response: no items array (keys items, data, results)"
package remote
