// Package wikistore publishes rendered pages to a wiki page store over HTTP.
package wikistore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrNotFound is returned when a page does not exist.
var ErrNotFound = errors.New("page not found")

// Client communicates with the wikistore HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Page is the body of PUT /pages/{path}.
type Page struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Dialect     string `json:"dialect"`
	ContentHash string `json:"content_hash,omitempty"`
	Source      string `json:"source,omitempty"`
}

// StoredPage is a page as returned by the store.
type StoredPage struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Dialect   string `json:"dialect,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// RetryableError indicates a transient failure (429 or 5xx) that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// PutPage stores or replaces the page at path.
func (c *Client) PutPage(ctx context.Context, path string, page Page) error {
	body, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, c.pageURL(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("put page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put page "+path, resp)
	}
	return nil
}

// GetPage retrieves a page. It returns ErrNotFound when the page is absent.
func (c *Client) GetPage(ctx context.Context, path string) (*StoredPage, error) {
	resp, err := c.do(ctx, http.MethodGet, c.pageURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get page "+path, resp)
	}

	var page StoredPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if page.Path == "" {
		page.Path = path
	}
	return &page, nil
}

// DeletePage removes a page. Deleting a missing page returns ErrNotFound.
func (c *Client) DeletePage(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.pageURL(path), nil)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	}
	return statusError("delete page "+path, resp)
}

// ListPages lists pages under prefix. A limit of zero means the store default.
func (c *Client) ListPages(ctx context.Context, prefix string, limit int) ([]StoredPage, error) {
	q := url.Values{}
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := c.baseURL + "/pages"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list pages", resp)
	}

	var result struct {
		Pages []StoredPage `json:"pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	return result.Pages, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) pageURL(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.baseURL + "/pages/" + strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.httpClient.Do(req)
}

// statusError reads a bounded error body. Rate limits and server errors
// come back as *RetryableError.
func statusError(op string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%s: %w", op, &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)})
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(respBody))
}

// Slug turns a page title into a lowercase, hyphen-separated path segment.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
