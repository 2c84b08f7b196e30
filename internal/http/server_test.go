package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakichain/haki-analytics/internal/analytics"
	"github.com/hakichain/haki-analytics/internal/hakilens"
	"github.com/hakichain/haki-analytics/internal/metrics"
	"github.com/hakichain/haki-analytics/internal/shared"
)

type fakeDashboard struct {
	mu         sync.Mutex
	address    string
	connectErr error
	queries    []string
	refreshed  []string
}

func (f *fakeDashboard) Connect(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return "", f.connectErr
	}
	f.address = "0xabc"
	return f.address, nil
}

func (f *fakeDashboard) RefreshAssets(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, "assets")
	return nil
}

func (f *fakeDashboard) RefreshRegistry(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, "registry")
	return errors.Mark(errors.New("status 500"), shared.ErrRegistryUnavailable)
}

func (f *fakeDashboard) View(query string) analytics.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return analytics.View{
		Query:     query,
		Wallet:    f.address,
		Connected: f.address != "",
		Records: analytics.Section[analytics.RecordRow]{
			Title: analytics.TitleRecords,
			Rows:  []analytics.RecordRow{},
			Error: shared.MsgRegistryFailed,
		},
	}
}

type fakeCases struct {
	asked string
}

func (f *fakeCases) ListCases(_ context.Context, opts hakilens.ListOptions) ([]hakilens.Case, error) {
	return []hakilens.Case{{CaseID: "1", Title: opts.Search}}, nil
}

func (f *fakeCases) GetCase(_ context.Context, id string) (*hakilens.Case, error) {
	if id == "missing" {
		return nil, &hakilens.StatusError{Op: "get case", Code: http.StatusNotFound}
	}
	if id == "broken" {
		return nil, &hakilens.StatusError{Op: "get case", Code: http.StatusInternalServerError}
	}
	return &hakilens.Case{CaseID: id, Title: "In re Estate"}, nil
}

func (f *fakeCases) SummarizeCase(_ context.Context, id string) (string, error) {
	return "summary of " + id, nil
}

func (f *fakeCases) Ask(_ context.Context, q string) (string, error) {
	f.asked = q
	return "Yes.", nil
}

func newTestServer(t *testing.T, dash *fakeDashboard, cases CaseService, m *metrics.Metrics) *Server {
	t.Helper()
	s, err := NewServer(dash, cases, Options{
		AllowedOrigins: []string{"http://localhost:5173", "not a url"},
		Metrics:        m,
		Version:        "test",
	})
	require.NoError(t, err)
	return s
}

func localRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "127.0.0.1:50123"
	req.Host = "127.0.0.1:6140"
	return req
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndStatus(t *testing.T) {
	s := newTestServer(t, &fakeDashboard{address: "0xabc"}, &fakeCases{}, nil)

	rec := do(s, localRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(s, localRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got statusResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, statusResp{OK: true, Version: "test", Wallet: "0xabc", Connected: true, Cases: true}, got)
}

func TestGuards(t *testing.T) {
	s := newTestServer(t, &fakeDashboard{}, nil, nil)

	remote := localRequest(http.MethodGet, "/healthz", nil)
	remote.RemoteAddr = "203.0.113.9:443"
	assert.Equal(t, http.StatusForbidden, do(s, remote).Code)

	badHost := localRequest(http.MethodGet, "/healthz", nil)
	badHost.Host = "evil.example"
	assert.Equal(t, http.StatusForbidden, do(s, badHost).Code)

	foreign := localRequest(http.MethodGet, "/healthz", nil)
	foreign.Header.Set("Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, do(s, foreign).Code)

	preflight := localRequest(http.MethodOptions, "/wallet/connect", nil)
	preflight.Header.Set("Origin", "http://LOCALHOST:5173")
	rec := do(s, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	assert.Equal(t, http.StatusMethodNotAllowed, do(s, localRequest(http.MethodPost, "/analytics", nil)).Code)
}

func TestWalletConnect(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{name: "ok", status: http.StatusOK},
		{name: "no provider", err: shared.ErrProviderUnavailable, status: http.StatusServiceUnavailable, msg: shared.MsgProviderUnavailable},
		{name: "rejected", err: errors.Wrap(shared.ErrUserRejected, "eth_requestAccounts"), status: http.StatusForbidden, msg: shared.MsgUserRejected},
		{name: "other", err: errors.New("boom"), status: http.StatusBadGateway, msg: shared.MsgConnectFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeDashboard{connectErr: tt.err}, nil, nil)
			rec := do(s, localRequest(http.MethodPost, "/wallet/connect", nil))
			require.Equal(t, tt.status, rec.Code)

			var got sessionResp
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.err == nil, got.OK)
			assert.Equal(t, tt.msg, got.Error)
			if tt.err == nil {
				assert.Equal(t, "0xabc", got.Address)
			}
		})
	}
}

func TestAnalyticsPassesQueryAndRefreshes(t *testing.T) {
	dash := &fakeDashboard{address: "0xabc"}
	s := newTestServer(t, dash, nil, nil)

	rec := do(s, localRequest(http.MethodGet, "/analytics?q=Deed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got analyticsResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Deed", got.View.Query)

	rec = do(s, localRequest(http.MethodPost, "/analytics/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, shared.MsgRegistryFailed, got.View.Records.Error)
	assert.Empty(t, got.View.Records.Rows)
	assert.Equal(t, []string{"registry", "assets"}, dash.refreshed)
}

func TestCaseRoutes(t *testing.T) {
	cases := &fakeCases{}
	s := newTestServer(t, &fakeDashboard{}, cases, nil)

	rec := do(s, localRequest(http.MethodGet, "/cases?search=land&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"land"`)

	assert.Equal(t, http.StatusBadRequest, do(s, localRequest(http.MethodGet, "/cases?limit=-1", nil)).Code)

	rec = do(s, localRequest(http.MethodGet, "/cases/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "In re Estate")

	assert.Equal(t, http.StatusNotFound, do(s, localRequest(http.MethodGet, "/cases/missing", nil)).Code)
	assert.Equal(t, http.StatusBadGateway, do(s, localRequest(http.MethodGet, "/cases/broken", nil)).Code)

	rec = do(s, localRequest(http.MethodPost, "/cases/42/summarize", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"caseId":"42","summary":"summary of 42"}`, rec.Body.String())

	rec = do(s, localRequest(http.MethodPost, "/ai/ask", strings.NewReader(`{"question":" Is it valid? "}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Is it valid?", cases.asked)

	assert.Equal(t, http.StatusBadRequest, do(s, localRequest(http.MethodPost, "/ai/ask", strings.NewReader(`{"question":""}`))).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, localRequest(http.MethodPost, "/ai/ask", strings.NewReader(`{"prompt":"x"}`))).Code)
}

func TestCaseRoutesWithoutService(t *testing.T) {
	s := newTestServer(t, &fakeDashboard{}, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(s, localRequest(http.MethodGet, "/cases", nil)).Code)
}

func TestMetricsEndpointAndMiddleware(t *testing.T) {
	m := metrics.New()
	s := newTestServer(t, &fakeDashboard{}, nil, m)

	do(s, localRequest(http.MethodGet, "/healthz", nil))
	do(s, localRequest(http.MethodGet, "/healthz", nil))

	rec := do(s, localRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "haki_api_requests_total")

	n, err := testutil.GatherAndCount(m.Registry(), "haki_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewServerRequiresDashboard(t *testing.T) {
	_, err := NewServer(nil, nil, Options{})
	assert.Error(t, err)
}
