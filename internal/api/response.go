package api

import (
	"encoding/json"
	"net/http"
)

type successEnvelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type errorEnvelope struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func respondSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	if message == "" {
		message = "success"
	}
	respondWithJSON(w, code, successEnvelope{Status: "success", Message: message, Data: data})
}

func respondError(w http.ResponseWriter, code int, message string, details []string) {
	if details == nil {
		details = []string{}
	}
	respondWithJSON(w, code, errorEnvelope{Status: "error", Message: message, Errors: details})
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
