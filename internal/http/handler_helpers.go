package http

import (
	"net/http"
)

// Handler is a convenience type so we can wrap common behavior.
type Handler func(http.ResponseWriter, *http.Request)

func requireMethod(method string, next Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, HTTPErrorMethodNotAllowedText)
			return
		}
		next(w, r)
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := readJSONBody(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, HTTPErrorInvalidJSONText)
		return false
	}
	return true
}

func requireCases(w http.ResponseWriter, s *Server) bool {
	if s.cases == nil {
		writeError(w, http.StatusServiceUnavailable, CasesServiceUnavailableText)
		return false
	}
	return true
}

func requireCaseID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, CasesErrorMissingIDText)
		return "", false
	}
	return id, true
}
