// Package registry reads the off-chain ICP metadata registry.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/hakichain/haki-analytics/internal/constants"
	"github.com/hakichain/haki-analytics/internal/shared"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a registry client. A zero timeout falls back to 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

func (c *Client) RecordsURL() string {
	return c.baseURL + constants.RegistryRecordsPath
}

// FetchRecords wraps GET /documents/icp/records/.
// Transport failures and non-2xx answers are marked shared.ErrRegistryUnavailable,
// a body that is not JSON is marked shared.ErrParseFailure.
func (c *Client) FetchRecords(ctx context.Context) ([]Record, error) {
	fetchID := uuid.NewString()
	url := c.RecordsURL()

	if c.baseURL == "" {
		return nil, errors.Mark(errors.New("registry: base url is empty"), shared.ErrRegistryUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, shared.Mark(err, shared.ErrRegistryUnavailable, "registry: build request")
	}
	req.Header.Set("Accept", "application/json")

	log.Info("registry fetch started", "fetch_id", fetchID, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("registry fetch failed", "fetch_id", fetchID, "error", err)
		return nil, shared.Mark(err, shared.ErrRegistryUnavailable, "registry: GET "+url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, shared.Mark(err, shared.ErrRegistryUnavailable, "registry: read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("registry fetch failed", "fetch_id", fetchID, "status", resp.StatusCode)
		return nil, errors.Mark(
			fmt.Errorf("registry: status %d: %s", resp.StatusCode, truncate(string(body), 200)),
			shared.ErrRegistryUnavailable,
		)
	}

	records, kind, err := DecodeEnvelope(body)
	if err != nil {
		log.Error("registry fetch failed", "fetch_id", fetchID, "error", err)
		return nil, err
	}
	if kind == EnvelopeUnknown {
		log.Warn("registry answered with an unknown shape", "fetch_id", fetchID)
	}

	log.Info("registry fetch finished", "fetch_id", fetchID, "shape", kind.String(), "count", len(records))
	return records, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
