package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/five82/glide/internal/listing"
)

// Pagination names how a view addresses its pages.
type Pagination string

const (
	// PaginationPage sends the page number: ?page=N&limit=S.
	PaginationPage Pagination = "page"
	// PaginationOffset sends an item offset: ?skip=(N-1)*S&limit=S. The
	// cursor is still the page number.
	PaginationOffset Pagination = "offset"
	// PaginationCursor sends the opaque token from the previous response.
	PaginationCursor Pagination = "cursor"
)

// View describes one remote collection endpoint.
type View struct {
	Path        string
	SearchPath  string
	ItemsKey    string
	IDField     string
	Pagination  Pagination
	PageParam   string
	LimitParam  string
	SkipParam   string
	CursorParam string
	SearchParam string
}

// PageRequest selects one page of a View.
type PageRequest struct {
	Cursor string
	Search string
	Size   int
}

// PageFetcher loads pages of a collection. It is implemented by *Client and
// can be faked in tests.
type PageFetcher interface {
	FetchPage(ctx context.Context, view View, req PageRequest) (listing.Page, error)
}

var _ PageFetcher = (*Client)(nil)

// Client talks to a paginated JSON API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	group     singleflight.Group
}

const (
	defaultBaseURL   = "https://dummyjson.com"
	defaultUserAgent = "glide/0.1"
	defaultTimeout   = 10 * time.Second
)

// NewClient builds a Client rooted at baseURL. A zero timeout uses the
// default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchPage loads one page and normalizes it. Identical requests issued
// concurrently share a single round trip.
func (c *Client) FetchPage(ctx context.Context, view View, req PageRequest) (listing.Page, error) {
	if c == nil {
		return listing.Page{}, fmt.Errorf("client is nil")
	}
	rel, err := buildURL(view, req)
	if err != nil {
		return listing.Page{}, err
	}
	reqURL := c.baseURL.ResolveReference(rel)

	// The shared request outlives any one caller; the HTTP client timeout
	// bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(reqURL.String(), func() (any, error) {
		return c.get(shared, reqURL, rel)
	})
	var body []byte
	select {
	case <-ctx.Done():
		return listing.Page{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return listing.Page{}, res.Err
		}
		body = res.Val.([]byte)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return listing.Page{}, fmt.Errorf("decode response: %w", err)
	}
	return normalize(payload, view, req)
}

func (c *Client) get(ctx context.Context, reqURL, rel *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// buildURL renders the relative request URL for req, keeping any query
// already present in the view path.
func buildURL(view View, req PageRequest) (*url.URL, error) {
	path := view.Path
	search := strings.TrimSpace(req.Search)
	if search != "" && view.SearchPath != "" {
		path = view.SearchPath
	}
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	values := rel.Query()

	if req.Size > 0 {
		values.Set(orDefault(view.LimitParam, "limit"), strconv.Itoa(req.Size))
	}

	switch view.Pagination {
	case PaginationCursor:
		if req.Cursor != "" {
			values.Set(orDefault(view.CursorParam, "cursor"), req.Cursor)
		}
	case PaginationOffset:
		n, err := pageNumber(req.Cursor)
		if err != nil {
			return nil, err
		}
		values.Set(orDefault(view.SkipParam, "skip"), strconv.Itoa((n-1)*max(req.Size, 0)))
	default:
		n, err := pageNumber(req.Cursor)
		if err != nil {
			return nil, err
		}
		values.Set(orDefault(view.PageParam, "page"), strconv.Itoa(n))
	}

	if search != "" {
		values.Set(orDefault(view.SearchParam, "q"), search)
	}
	rel.RawQuery = values.Encode()
	return rel, nil
}

func pageNumber(cursor string) (int, error) {
	if strings.TrimSpace(cursor) == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(cursor))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page cursor %q", cursor)
	}
	return n, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base_url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
