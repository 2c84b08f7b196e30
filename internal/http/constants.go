package http

import "time"

// Generic HTTP / JSON strings
const (
	HTTPErrorMethodNotAllowedText = "method not allowed"
	HTTPErrorInvalidJSONText      = "invalid JSON"
	HTTPErrorBadRequestText       = "bad request"
	HTTPErrorForbiddenText        = "forbidden"
	HTTPErrorForbiddenOriginText  = "forbidden origin"
	HTTPErrorForbiddenHostText    = "forbidden host"
)

// Common JSON keys
const (
	JSONKeyOK     = "ok"
	JSONKeyError  = "error"
	JSONKeyStatus = "status"
)

// Query parameters
const (
	QueryParamFilter = "q"
	QueryParamSearch = "search"
	QueryParamLimit  = "limit"
	QueryParamOffset = "offset"
)

const (
	CasesErrorMissingIDText       = "missing case id"
	CasesErrorMissingQuestionText = "missing question"
	CasesServiceUnavailableText   = "case research service not configured"
	UpstreamFailedText            = "upstream request failed"
)

const (
	corsMaxAgeSeconds = 600
	refreshTimeout    = 2 * time.Minute
	maxRequestBody    = 1 << 20
)
