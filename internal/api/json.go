package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/snapetech/multiview/internal/apperror"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// errorEnvelope is the non-2xx response body shape from §7.
type errorEnvelope struct {
	Error  apperror.Kind `json:"error"`
	Detail string        `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	ae := apperror.As(err)
	writeJSON(w, ae.Kind.Status(), errorEnvelope{Error: ae.Kind, Detail: ae.Detail})
}
