// Package http serves the chain-analytics dashboard and case research endpoints to
// local browser UIs on the loopback interface.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/hakichain/haki-analytics/internal/analytics"
	"github.com/hakichain/haki-analytics/internal/hakilens"
	"github.com/hakichain/haki-analytics/internal/metrics"
	"github.com/hakichain/haki-analytics/internal/shared"
)

// Dashboard is the part of analytics.Dashboard the server drives.
type Dashboard interface {
	Connect(ctx context.Context) (string, error)
	RefreshAssets(ctx context.Context) error
	RefreshRegistry(ctx context.Context) error
	View(query string) analytics.View
}

// CaseService is the part of hakilens.Client the server proxies.
type CaseService interface {
	ListCases(ctx context.Context, opts hakilens.ListOptions) ([]hakilens.Case, error)
	GetCase(ctx context.Context, caseID string) (*hakilens.Case, error)
	SummarizeCase(ctx context.Context, caseID string) (string, error)
	Ask(ctx context.Context, question string) (string, error)
}

type Options struct {
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Version        string
}

type Server struct {
	dash    Dashboard
	cases   CaseService
	metrics *metrics.Metrics
	version string
	mux     *http.ServeMux

	uiAllowedOrigins map[string]struct{}

	// refreshMu keeps manual refreshes from piling up behind a slow chain.
	refreshMu sync.Mutex
}

// NewServer wires the routes. cases may be nil, in which case the case routes answer 503.
func NewServer(dash Dashboard, cases CaseService, opts Options) (*Server, error) {
	if dash == nil {
		return nil, errors.New("http: nil dashboard")
	}

	s := &Server{
		dash:    dash,
		cases:   cases,
		metrics: opts.Metrics,
		version: opts.Version,
		mux:     http.NewServeMux(),
	}

	s.uiAllowedOrigins = make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		o = normalizeOrigin(o)
		if o == "" {
			continue
		}
		s.uiAllowedOrigins[o] = struct{}{}
	}

	readCors := corsPolicy{
		allowedOrigins: s.uiAllowedOrigins,
		allowMethods:   "GET,OPTIONS",
		allowHeaders:   "", // echo requested
		maxAge:         corsMaxAgeSeconds,
	}
	writeCors := corsPolicy{
		allowedOrigins: s.uiAllowedOrigins,
		allowMethods:   "POST,OPTIONS",
		allowHeaders:   "Content-Type",
		maxAge:         corsMaxAgeSeconds,
	}

	s.handle("/healthz", s.withLocalGuards(readCors, requireMethod(http.MethodGet, s.handleHealth)))
	s.handle("/status", s.withLocalGuards(readCors, requireMethod(http.MethodGet, s.handleStatus)))

	// wallet session
	s.handle("/wallet/connect", s.withLocalGuards(writeCors, requireMethod(http.MethodPost, s.handleWalletConnect)))
	s.handle("/wallet/session", s.withLocalGuards(readCors, requireMethod(http.MethodGet, s.handleWalletSession)))

	// chain analytics
	s.handle("/analytics", s.withLocalGuards(readCors, requireMethod(http.MethodGet, s.handleAnalytics)))
	s.handle("/analytics/refresh", s.withLocalGuards(writeCors, requireMethod(http.MethodPost, s.handleAnalyticsRefresh)))

	// case research
	s.handle("/cases", s.withLocalGuards(readCors, requireMethod(http.MethodGet, s.handleListCases)))
	s.handle("/cases/{id}", s.withLocalGuards(readCors, requireMethod(http.MethodGet, s.handleGetCase)))
	s.handle("/cases/{id}/summarize", s.withLocalGuards(writeCors, requireMethod(http.MethodPost, s.handleSummarizeCase)))
	s.handle("/ai/ask", s.withLocalGuards(writeCors, requireMethod(http.MethodPost, s.handleAsk)))

	if s.metrics != nil {
		s.mux.Handle("/metrics", s.withLoopbackOnly(s.metrics.Handler().ServeHTTP))
	}

	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.metrics.Middleware(pattern, h))
}

// HANDLERS
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{JSONKeyStatus: "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	v := s.dash.View("")
	writeJSON(w, http.StatusOK, statusResp{
		OK:        true,
		Version:   s.version,
		Wallet:    v.Wallet,
		Connected: v.Connected,
		Loading:   v.Loading,
		Cases:     s.cases != nil,
	})
}

func (s *Server) handleWalletConnect(w http.ResponseWriter, r *http.Request) {
	addr, err := s.dash.Connect(r.Context())
	if err != nil {
		log.Warn("wallet connect failed", "error", err)
		writeJSON(w, walletErrorStatus(err), sessionResp{OK: false, Error: shared.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, sessionResp{OK: true, Address: addr, Connected: true})
}

func (s *Server) handleWalletSession(w http.ResponseWriter, r *http.Request) {
	v := s.dash.View("")
	writeJSON(w, http.StatusOK, sessionResp{
		OK:        true,
		Address:   v.Wallet,
		Connected: v.Connected,
		Error:     v.WalletError,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get(QueryParamFilter)
	writeJSON(w, http.StatusOK, analyticsResp{OK: true, View: s.dash.View(q)})
}

// handleAnalyticsRefresh reloads every collection and answers with the new view. Fetch
// failures land in the view's error fields, not in the status code.
func (s *Server) handleAnalyticsRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
	defer cancel()

	if err := s.dash.RefreshRegistry(ctx); err != nil {
		log.Warn("registry refresh failed", "error", err)
	}
	if err := s.dash.RefreshAssets(ctx); err != nil {
		log.Warn("asset refresh failed", "error", err)
	}

	q := r.URL.Query().Get(QueryParamFilter)
	writeJSON(w, http.StatusOK, analyticsResp{OK: true, View: s.dash.View(q)})
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	if !requireCases(w, s) {
		return
	}

	limit, err := intParam(r, QueryParamLimit, hakilens.DefaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(r, QueryParamOffset, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cases, err := s.cases.ListCases(r.Context(), hakilens.ListOptions{
		Search: strings.TrimSpace(r.URL.Query().Get(QueryParamSearch)),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, casesResp{OK: true, Cases: cases})
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	if !requireCases(w, s) {
		return
	}
	id, ok := requireCaseID(w, r)
	if !ok {
		return
	}

	c, err := s.cases.GetCase(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, caseResp{OK: true, Case: c})
}

func (s *Server) handleSummarizeCase(w http.ResponseWriter, r *http.Request) {
	if !requireCases(w, s) {
		return
	}
	id, ok := requireCaseID(w, r)
	if !ok {
		return
	}

	summary, err := s.cases.SummarizeCase(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResp{OK: true, CaseID: id, Summary: summary})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !requireCases(w, s) {
		return
	}

	var req askReq
	if !decodeJSONBody(w, r, &req) {
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, CasesErrorMissingQuestionText)
		return
	}

	answer, err := s.cases.Ask(r.Context(), req.Question)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, askResp{OK: true, Answer: answer})
}

func walletErrorStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrUserRejected):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

// writeUpstreamError passes client errors from the research service through and
// reports everything else as a bad gateway.
func writeUpstreamError(w http.ResponseWriter, err error) {
	code := hakilens.StatusCode(err)
	if code >= 400 && code < 500 {
		writeError(w, code, http.StatusText(code))
		return
	}
	log.Error("case research request failed", "error", err)
	writeError(w, http.StatusBadGateway, UpstreamFailedText)
}
