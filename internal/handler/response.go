package handler

import (
	"encoding/json"
	"net/http"
)

// envelope is the shape every endpoint answers with: data carries the payload
// on success, error carries the HTTP code on failure.
type envelope struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Data    any        `json:"data"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body := envelope{Status: "ok", Data: payload}
	if status >= 400 {
		body.Status = "error"
		body.Error = &errorBody{Code: status, Status: http.StatusText(status)}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Status:  "error",
		Message: message,
		Error:   &errorBody{Code: status, Status: http.StatusText(status)},
	})
}
