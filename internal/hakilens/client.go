// Package hakilens is a client for the HakiLens legal-case research API
// (scraping, case listing and AI summaries).
package hakilens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

const (
	defaultTimeout = 60 * time.Second
	maxBodyBytes   = 16 << 20

	DefaultListLimit = 20
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a client for baseURL. Scrapes and AI calls are slow on the
// hosted service, so a zero timeout falls back to a generous default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("hakilens: %s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("hakilens: %s: status %d: %s", e.Op, e.Code, e.Body)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// ===== scraping =====

// ScrapeURL wraps POST /scrape/url.
func (c *Client) ScrapeURL(ctx context.Context, target string, deep bool) (json.RawMessage, error) {
	q := url.Values{"url": {target}, "deep": {strconv.FormatBool(deep)}}
	return c.raw(ctx, "scrape url", http.MethodPost, "/scrape/url", q, nil)
}

// ScrapeListing wraps POST /scrape/listing. maxPages <= 0 leaves the server default.
func (c *Client) ScrapeListing(ctx context.Context, target string, maxPages int, deep bool) (json.RawMessage, error) {
	q := url.Values{"url": {target}, "deep": {strconv.FormatBool(deep)}}
	if maxPages > 0 {
		q.Set("max_pages", strconv.Itoa(maxPages))
	}
	return c.raw(ctx, "scrape listing", http.MethodPost, "/scrape/listing", q, nil)
}

// ScrapeCase wraps POST /scrape/case.
func (c *Client) ScrapeCase(ctx context.Context, target string, deep bool) (json.RawMessage, error) {
	q := url.Values{"url": {target}, "deep": {strconv.FormatBool(deep)}}
	return c.raw(ctx, "scrape case", http.MethodPost, "/scrape/case", q, nil)
}

// SearchCases wraps POST /scrape/search.
func (c *Client) SearchCases(ctx context.Context, query string, deep bool) (json.RawMessage, error) {
	q := url.Values{"q": {query}, "deep": {strconv.FormatBool(deep)}}
	return c.raw(ctx, "search cases", http.MethodPost, "/scrape/search", q, nil)
}

// ===== cases =====

type ListOptions struct {
	Search string
	Limit  int
	Offset int
}

// ListCases wraps GET /cases. The answer may be {"items": [...]} or a bare array;
// anything else is an empty list.
func (c *Client) ListCases(ctx context.Context, opts ListOptions) ([]Case, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	q := url.Values{
		"limit":  {strconv.Itoa(opts.Limit)},
		"offset": {strconv.Itoa(opts.Offset)},
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	body, err := c.raw(ctx, "list cases", http.MethodGet, "/cases", q, nil)
	if err != nil {
		return nil, err
	}
	return decodeCaseList(body)
}

// GetCase wraps GET /cases/{id}.
func (c *Client) GetCase(ctx context.Context, caseID string) (*Case, error) {
	var out Case
	if err := c.doJSON(ctx, "get case", http.MethodGet, casePath(caseID, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CaseDocuments wraps GET /cases/{id}/documents.
func (c *Client) CaseDocuments(ctx context.Context, caseID string) ([]Attachment, error) {
	out := []Attachment{}
	if err := c.doJSON(ctx, "case documents", http.MethodGet, casePath(caseID, "/documents"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CaseImages wraps GET /cases/{id}/images.
func (c *Client) CaseImages(ctx context.Context, caseID string) ([]Attachment, error) {
	out := []Attachment{}
	if err := c.doJSON(ctx, "case images", http.MethodGet, casePath(caseID, "/images"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ===== AI =====

// SummarizeCase wraps POST /ai/summarize/{id}. It returns "" when the service has no summary.
func (c *Client) SummarizeCase(ctx context.Context, caseID string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	path := "/ai/summarize/" + url.PathEscape(strings.TrimSpace(caseID))
	if err := c.doJSON(ctx, "summarize case", http.MethodPost, path, nil, nil, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Ask wraps POST /ai/ask.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	var out struct {
		Answer string `json:"answer"`
	}
	in := askRequest{Question: question}
	if err := c.doJSON(ctx, "ask", http.MethodPost, "/ai/ask", nil, in, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// ChatWithCase wraps POST /ai/chat/{id}.
func (c *Client) ChatWithCase(ctx context.Context, caseID, message string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	path := "/ai/chat/" + url.PathEscape(strings.TrimSpace(caseID))
	if err := c.doJSON(ctx, "chat with case", http.MethodPost, path, nil, chatRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// ===== plumbing =====

func casePath(caseID, suffix string) string {
	return "/cases/" + url.PathEscape(strings.TrimSpace(caseID)) + suffix
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	body, err := c.raw(ctx, op, method, path, q, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "hakilens: decode %s response", op)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, op, method, path string, q url.Values, in any) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, errors.Newf("hakilens: %s: base url is empty", op)
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrapf(err, "hakilens: encode %s request", op)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "hakilens: %s", op)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("hakilens request failed", "op", op, "error", err)
		return nil, errors.Wrapf(err, "hakilens: %s", op)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "hakilens: read %s response", op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("hakilens request rejected", "op", op, "status", resp.StatusCode)
		return nil, &StatusError{Op: op, Code: resp.StatusCode, Body: truncate(string(body), 300)}
	}

	log.Info("hakilens request done", "op", op, "status", resp.StatusCode, "took", time.Since(start).String())
	return json.RawMessage(body), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
