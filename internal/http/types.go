package http

import (
	"github.com/hakichain/haki-analytics/internal/analytics"
	"github.com/hakichain/haki-analytics/internal/hakilens"
)

type corsPolicy struct {
	allowedOrigins map[string]struct{}
	allowMethods   string

	allowHeaders string
	maxAge       int
}

type statusResp struct {
	OK        bool   `json:"ok"`
	Version   string `json:"version"`
	Wallet    string `json:"wallet"`
	Connected bool   `json:"connected"`
	Loading   bool   `json:"loading"`
	Cases     bool   `json:"cases"`
}

type sessionResp struct {
	OK        bool   `json:"ok"`
	Address   string `json:"address"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

type analyticsResp struct {
	OK   bool           `json:"ok"`
	View analytics.View `json:"view"`
}

type casesResp struct {
	OK    bool            `json:"ok"`
	Cases []hakilens.Case `json:"cases"`
}

type caseResp struct {
	OK   bool           `json:"ok"`
	Case *hakilens.Case `json:"case"`
}

type summaryResp struct {
	OK      bool   `json:"ok"`
	CaseID  string `json:"caseId"`
	Summary string `json:"summary"`
}

type askReq struct {
	Question string `json:"question"`
}

type askResp struct {
	OK     bool   `json:"ok"`
	Answer string `json:"answer"`
}

type errorResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
