package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wbpulse/wbpulse/pkg/store"
	"github.com/wbpulse/wbpulse/pkg/upstream"
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Message: message})
}

// writeStoreError maps store failures onto the response. Every failure
// leaves prior state intact, the caller may simply retry.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, "Data not loaded yet. Please wait...")
	case errors.Is(err, store.ErrBusy):
		writeError(w, http.StatusConflict, "A catalog generation is already in progress")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeUpstreamError surfaces the server-provided message when the
// upstream sent one, otherwise a generic transport failure.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var serverErr *upstream.ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		writeError(w, http.StatusBadGateway, serverErr.Message)
		return
	}
	writeError(w, http.StatusBadGateway, "Failed to load data")
}
