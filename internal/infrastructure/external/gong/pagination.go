package gong

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// pageIterator drains a cursor-paginated endpoint one page at a time. It is a
// pull-based cursor: no request is issued until Next is called, and at most
// one page is buffered. Pagination state lives only inside the iterator.
type pageIterator struct {
	ctx      context.Context
	client   *Client
	method   string
	endpoint string
	query    url.Values
	body     map[string]any
	itemsKey string

	cursor  string
	items   []json.RawMessage
	idx     int
	current json.RawMessage
	done    bool
	err     error
}

// paginate prepares a page iterator. The cursor is injected into the query
// for GET-style pagination and into the request body for POST-style
// pagination; the upstream API uses both. itemsKey defaults to "records".
func (c *Client) paginate(ctx context.Context, method, endpoint string, query url.Values, body map[string]any, itemsKey string) *pageIterator {
	if itemsKey == "" {
		itemsKey = "records"
	}
	return &pageIterator{
		ctx:      ctx,
		client:   c,
		method:   method,
		endpoint: endpoint,
		query:    query,
		body:     body,
		itemsKey: itemsKey,
	}
}

// Next advances to the next item, fetching pages on demand. It returns false
// once the endpoint stops returning a cursor or an error occurs.
func (it *pageIterator) Next() bool {
	for {
		if it.err != nil {
			return false
		}
		if it.idx < len(it.items) {
			it.current = it.items[it.idx]
			it.idx++
			return true
		}
		if it.done {
			return false
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return false
		}
	}
}

// Item returns the raw record Next positioned the iterator on.
func (it *pageIterator) Item() json.RawMessage {
	return it.current
}

// Err reports the first error encountered while paginating.
func (it *pageIterator) Err() error {
	return it.err
}

func (it *pageIterator) fetchPage() error {
	var page map[string]json.RawMessage

	switch it.method {
	case http.MethodGet:
		query := url.Values{}
		for k, vs := range it.query {
			query[k] = vs
		}
		if it.cursor != "" {
			query.Set("cursor", it.cursor)
		}
		if err := it.client.request(it.ctx, http.MethodGet, it.endpoint, query, nil, &page); err != nil {
			return err
		}
	default:
		body := make(map[string]any, len(it.body)+1)
		for k, v := range it.body {
			body[k] = v
		}
		if it.cursor != "" {
			body["cursor"] = it.cursor
		}
		if err := it.client.request(it.ctx, it.method, it.endpoint, nil, body, &page); err != nil {
			return err
		}
	}

	it.items = nil
	if raw, ok := page[it.itemsKey]; ok {
		if err := json.Unmarshal(raw, &it.items); err != nil {
			return err
		}
	}
	it.idx = 0

	it.cursor = nextCursor(page)
	if it.cursor == "" {
		it.done = true
	}
	return nil
}

// nextCursor extracts the pagination cursor, preferring the nested
// records.cursor field over a top-level cursor.
func nextCursor(page map[string]json.RawMessage) string {
	if raw, ok := page["records"]; ok {
		var records struct {
			Cursor string `json:"cursor"`
		}
		// records may be the items array itself; a decode failure just
		// means there is no nested cursor.
		if err := json.Unmarshal(raw, &records); err == nil && records.Cursor != "" {
			return records.Cursor
		}
	}
	if raw, ok := page["cursor"]; ok {
		var cursor string
		if err := json.Unmarshal(raw, &cursor); err == nil {
			return cursor
		}
	}
	return ""
}
