package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

// apiResponse is the envelope every JSON body is wrapped in.
type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

func failure(status int, message string, data any) apiResponse {
	return apiResponse{
		Status:  "error",
		Message: message,
		Data:    data,
		Error:   &apiError{Code: status, Status: http.StatusText(status)},
	}
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if status >= 400 {
		writeRawJSON(w, status, failure(status, "", payload))
		return
	}
	writeRawJSON(w, status, apiResponse{Status: "ok", Data: payload})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, failure(status, message, nil))
}

func writeErrorWithErr(w http.ResponseWriter, status int, message string, err error) {
	switch {
	case err == nil:
		writeError(w, status, message)
	case message == "":
		writeError(w, status, err.Error())
	default:
		writeError(w, status, message+": "+err.Error())
	}
}

// writeValidationError reports each failing field with the rule it broke.
func writeValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeErrorWithErr(w, http.StatusBadRequest, "invalid payload", err)
		return
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	writeRawJSON(w, http.StatusBadRequest, failure(http.StatusBadRequest, "validation failed", fields))
}
