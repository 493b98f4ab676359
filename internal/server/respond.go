package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formworks/ssa-form-filler/internal/pdf"
)

// apiError is the JSON body returned for failed requests.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Headers are already sent; an encode failure here is unrecoverable.
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	var body apiError
	body.Error.Code = code
	body.Error.Message = message
	WriteJSON(w, status, body)
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pdf.ErrTemplateNotFound):
		WriteError(w, http.StatusNotFound, "template_not_found", err.Error())
	case errors.Is(err, pdf.ErrInvalidTemplate):
		WriteError(w, http.StatusUnprocessableEntity, "invalid_template", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// ReadJSON reads and decodes a JSON request body into the given target.
func ReadJSON(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
