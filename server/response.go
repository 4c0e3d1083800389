package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// apiError is the JSON error body of the data API.
type apiError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Err(err).Msg("encoding response failed")
	}
}

func writeError(w http.ResponseWriter, err error, status int) {
	log.Err(err).Msg("request failed")
	writeJSON(w, apiError{Status: status, Message: err.Error()}, status)
}
