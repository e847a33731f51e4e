// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
)

// Error codes of the JSON error body.
const (
	codeNoDataset      = "no_dataset"
	codeNotFound       = "not_found"
	codeUnknownCountry = "unknown_country"
	codeInvalidRequest = "invalid_request"
	codeLoadFailed     = "load_failed"
	codeNoGeoJSON      = "no_geojson"
	codeInternal       = "internal_error"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorBody{Error: code, Detail: detail})
}

func writeNoDataset(w http.ResponseWriter) {
	writeError(w, http.StatusServiceUnavailable, codeNoDataset, "no dataset has been loaded yet")
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusBadRequest, codeInvalidRequest, detail)
}
