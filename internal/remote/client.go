// Package remote implements typed fetch-by-id and fetch-by-parent lookups
// against peer services over HTTP. Absence of a resource is a normal result
// (nil entity, nil error); network, status and decode failures surface as
// ErrTransient so read paths can downgrade them to missing fields instead of
// failing a whole response. No retries live here; retry policy belongs to
// callers.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrTransient marks a lookup failure that says nothing about whether the
// entity exists: the peer was unreachable, answered with a server error or
// returned a body that did not decode. Compare with errors.Is.
var ErrTransient = errors.New("transient lookup failure")

// defaultTimeout bounds every peer call. Lookups must never block a request
// indefinitely; expiry is reported as ErrTransient like any other outage.
const defaultTimeout = 5 * time.Second

// Client performs JSON GET requests against a single peer service.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a Client for the peer service rooted at base
// (e.g. "http://customer-service:8080"). A trailing slash is tolerated.
func NewClient(base string) *Client {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: defaultTimeout},
	}
}

// getJSON issues GET base+path and decodes the body into out. It returns
// (false, nil) when the peer answers 404, (true, nil) on success and
// (false, err) wrapping ErrTransient for everything else.
func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return false, fmt.Errorf("build request %s: %w", path, ErrTransient)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("get %s: %v: %w", path, err, ErrTransient)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, fmt.Errorf("get %s: status %d: %w", path, resp.StatusCode, ErrTransient)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %v: %w", path, err, ErrTransient)
	}
	return true, nil
}

// fetchOne decodes a single entity. Zero ids are treated as absent without a
// network call: peer services never issue id 0, so such a reference cannot
// resolve to anything.
func fetchOne[T any](ctx context.Context, c *Client, path string, id uint64) (*T, error) {
	if id == 0 {
		return nil, nil
	}
	var out T
	ok, err := c.getJSON(ctx, fmt.Sprintf("%s/%d", path, id), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// fetchList decodes a list of entities belonging to a parent. An absent
// parent yields an empty list.
func fetchList[T any](ctx context.Context, c *Client, path string, parentID uint64) ([]T, error) {
	if parentID == 0 {
		return nil, nil
	}
	var out []T
	ok, err := c.getJSON(ctx, fmt.Sprintf("%s/%d", path, parentID), &out)
	if err != nil || !ok {
		return nil, err
	}
	return out, nil
}
