package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "https://dummyjson.com/" {
		t.Fatalf("default base = %q", u.String())
	}

	u, err = parseBaseURL("http://example.com:1234/api?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/api/" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL accepted a URL without host")
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name string
		view View
		req  PageRequest
		want string
	}{
		{
			name: "page style",
			view: View{Path: "users", Pagination: PaginationPage},
			req:  PageRequest{Cursor: "3", Size: 20},
			want: "users?limit=20&page=3",
		},
		{
			name: "offset style",
			view: View{Path: "users", Pagination: PaginationOffset},
			req:  PageRequest{Cursor: "3", Size: 20},
			want: "users?limit=20&skip=40",
		},
		{
			name: "cursor style first page",
			view: View{Path: "feed", Pagination: PaginationCursor},
			req:  PageRequest{Size: 5},
			want: "feed?limit=5",
		},
		{
			name: "cursor style later page",
			view: View{Path: "feed", Pagination: PaginationCursor, CursorParam: "after"},
			req:  PageRequest{Cursor: "abc", Size: 5},
			want: "feed?after=abc&limit=5",
		},
		{
			name: "search path and param",
			view: View{Path: "users", SearchPath: "users/search", Pagination: PaginationOffset, SearchParam: "q"},
			req:  PageRequest{Cursor: "1", Search: " ann ", Size: 10},
			want: "users/search?limit=10&q=ann&skip=0",
		},
		{
			name: "existing query kept",
			view: View{Path: "posts?select=title", Pagination: PaginationPage, PageParam: "p", LimitParam: "per_page"},
			req:  PageRequest{Cursor: "2", Size: 10},
			want: "posts?p=2&per_page=10&select=title",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildURL(tt.view, tt.req)
			if err != nil {
				t.Fatalf("buildURL returned error: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("buildURL = %q, want %q", got.String(), tt.want)
			}
		})
	}

	if _, err := buildURL(View{Path: "users"}, PageRequest{Cursor: "abc"}); err == nil {
		t.Fatalf("buildURL accepted a non-numeric page cursor")
	}
}

func TestClient_FetchPageOffsetWithTotal(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotUserAgent, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[
			{"id":31,"firstName":"Ann","address":{"city":"Oslo"}},
			{"id":32,"firstName":"Bo","address":{"city":"Rome"}}
		],"total":32,"skip":30,"limit":2}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	view := View{Path: "users", ItemsKey: "users", Pagination: PaginationOffset}
	page, err := c.FetchPage(ctx, view, PageRequest{Cursor: "16", Size: 2})
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if gotQuery.Get("skip") != "30" || gotQuery.Get("limit") != "2" {
		t.Fatalf("query = %v, want skip=30 limit=2", gotQuery)
	}
	if !strings.HasPrefix(gotUserAgent, "glide/") || gotRequestID == "" {
		t.Fatalf("headers user-agent=%q request-id=%q", gotUserAgent, gotRequestID)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "31" {
		t.Fatalf("items = %+v", page.Items)
	}
	if got := page.Items[1].Field("address.city"); got != "Rome" {
		t.Fatalf("address.city = %q, want Rome", got)
	}
	if page.HasMore {
		t.Fatalf("HasMore = true on the last page of the total")
	}
	if page.Cursor != "16" || page.Next != "" {
		t.Fatalf("cursor=%q next=%q", page.Cursor, page.Next)
	}
}

func TestClient_FetchPageStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchPage(context.Background(), View{Path: "users"}, PageRequest{Cursor: "1", Size: 10})
	if err == nil || !strings.Contains(err.Error(), "returned status 503") {
		t.Fatalf("FetchPage error = %v, want status 503", err)
	}
}

func TestClient_FetchPageMalformedJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchPage(context.Background(), View{Path: "users"}, PageRequest{Cursor: "1", Size: 10})
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchPage error = %v, want decode error", err)
	}
}

func TestClient_FetchPageHonorsContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.FetchPage(ctx, View{Path: "slow"}, PageRequest{Cursor: "1", Size: 10})
	if err == nil {
		t.Fatalf("FetchPage returned nil error after context deadline")
	}
}

func TestClient_SharedFetchSurvivesCancelledCaller(t *testing.T) {
	t.Parallel()

	hit := make(chan struct{}, 4)
	proceed := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- struct{}{}
		select {
		case <-proceed:
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":1},{"id":2}]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	view := View{Path: "users"}
	req := PageRequest{Cursor: "1", Size: 10}

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.FetchPage(first, view, req)
		firstErr <- err
	}()
	<-hit

	type result struct {
		items int
		err   error
	}
	second := make(chan result, 1)
	go func() {
		page, err := c.FetchPage(context.Background(), view, req)
		second <- result{items: len(page.Items), err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first FetchPage error = %v, want context.Canceled", err)
	}
	close(proceed)

	got := <-second
	if got.err != nil {
		t.Fatalf("second FetchPage returned error: %v", got.err)
	}
	if got.items != 2 {
		t.Fatalf("second FetchPage items = %d, want 2", got.items)
	}
}
