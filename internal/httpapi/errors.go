package httpapi

import (
	"encoding/json"
	"net/http"

	"inferd/pkg/types"
)

// writeJSONError writes a consistent JSON error payload. Used only for
// malformed requests; inference-time failures are embedded in regular
// response payloads.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
