package remote

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/five82/glide/internal/listing"
)

var (
	itemKeys    = []string{"items", "data", "results"}
	hasMoreKeys = []string{"hasMore", "has_more"}
	nextKeys    = []string{"nextCursor", "next_cursor"}
	totalKeys   = []string{"total", "totalCount", "total_count"}
)

// normalize maps a decoded response onto listing.Page. Three shapes are
// recognized, checked in order: an explicit has-more flag, a next cursor,
// and a total count. With none of them a full page implies more pages.
func normalize(payload any, view View, req PageRequest) (listing.Page, error) {
	page := listing.Page{Cursor: req.Cursor}

	var raw []any
	var meta map[string]any
	switch v := payload.(type) {
	case []any:
		raw = v
	case map[string]any:
		meta = v
		keys := itemKeys
		if view.ItemsKey != "" {
			keys = append([]string{view.ItemsKey}, itemKeys...)
		}
		found := false
		for _, key := range keys {
			if arr, ok := v[key].([]any); ok {
				raw, found = arr, true
				break
			}
		}
		if !found {
			return listing.Page{}, fmt.Errorf("decode response: no items array (keys %s)", strings.Join(keys, ", "))
		}
	default:
		return listing.Page{}, fmt.Errorf("decode response: unexpected %T payload", payload)
	}

	idField := orDefault(view.IDField, "id")
	page.Items = make([]listing.Item, 0, len(raw))
	for i, elem := range raw {
		page.Items = append(page.Items, toItem(elem, idField, req.Cursor, i))
	}

	page.HasMore, page.Next = more(meta, view, req, len(page.Items))
	if view.Pagination == PaginationCursor {
		if page.Next == "" {
			page.HasMore = false
		}
	} else {
		page.Next = ""
	}
	return page, nil
}

func more(meta map[string]any, view View, req PageRequest, count int) (bool, string) {
	fullPage := req.Size > 0 && count >= req.Size

	next := ""
	nextSeen := false
	for _, key := range nextKeys {
		if v, ok := meta[key]; ok {
			nextSeen = true
			next = scalar(v)
			break
		}
	}

	for _, key := range hasMoreKeys {
		if v, ok := meta[key].(bool); ok {
			return v, next
		}
	}
	if nextSeen {
		return next != "", next
	}
	for _, key := range totalKeys {
		n, ok := meta[key].(json.Number)
		if !ok {
			continue
		}
		total, err := n.Int64()
		if err != nil || view.Pagination == PaginationCursor {
			break
		}
		page, err := pageNumber(req.Cursor)
		if err != nil {
			break
		}
		seen := (page-1)*max(req.Size, 0) + count
		return int64(seen) < total && count > 0, next
	}
	return fullPage, next
}

func toItem(elem any, idField, cursor string, index int) listing.Item {
	obj, ok := elem.(map[string]any)
	if !ok {
		s := scalar(elem)
		return listing.Item{ID: s, Fields: map[string]string{"value": s}}
	}
	fields := make(map[string]string, len(obj))
	for key, v := range obj {
		if child, ok := v.(map[string]any); ok {
			for ck, cv := range child {
				fields[key+"."+ck] = scalar(cv)
			}
			continue
		}
		fields[key] = scalar(v)
	}
	id := fields[idField]
	if id == "" {
		id = fmt.Sprintf("%s#%d", cursor, index)
	}
	return listing.Item{ID: id, Fields: fields}
}

// scalar renders a decoded JSON value as display text.
func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return strconv.FormatInt(n, 10)
		}
		if f, err := v.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return v.String()
	case []any:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			parts = append(parts, scalar(elem))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+scalar(v[k]))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v)
	}
}
