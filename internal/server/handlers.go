package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/formworks/ssa-form-filler/internal/pdf"
)

// handleRoot summarizes the service and its endpoints.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.ServiceInfo()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"service": info.ServiceName,
		"version": info.Version,
		"endpoints": map[string]string{
			"POST /fill-ssa-form":     "Fill the form and download the PDF",
			"POST /fill-ssa-form-gpt": "Fill the form and receive the PDF as base64 JSON",
			"GET /form-info":          "List the form fields of the default template",
			"GET /line-limits":        "Default per-field line limits",
			"GET /templates":          "Available form templates",
			"GET /health":             "Health check",
		},
	})
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.ServiceInfo()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": info.ServiceName,
		"version": info.Version,
	})
}

// handleFormInfo lists the fields of a template. The template query
// parameter selects a template; empty means the default.
func (s *Server) handleFormInfo(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.TemplateFields(pdf.TemplateFieldsRequest{
		TemplateName: r.URL.Query().Get("template"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleLineLimits reports the default line-limit table.
func (s *Server) handleLineLimits(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.service.LineLimits())
}

// handleTemplates lists the available templates.
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.ListTemplates(pdf.TemplateListRequest{})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleFillForm fills the form and streams back the PDF. Skipped fields
// and truncation are reported in response headers so the document itself
// stays a plain download.
func (s *Server) handleFillForm(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFillRequest(w, r)
	if !ok {
		return
	}

	result, err := s.service.FillForm(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := "filled-" + result.TemplateName
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PDF)))
	w.Header().Set("X-Filled-Count", strconv.Itoa(result.FilledCount))
	if len(result.UnknownFields) > 0 {
		w.Header().Set("X-Unknown-Fields", strings.Join(result.UnknownFields, ","))
	}
	if len(result.Overflow) > 0 {
		fields := make([]string, len(result.Overflow))
		for i, overflow := range result.Overflow {
			fields[i] = overflow.Field
		}
		w.Header().Set("X-Truncated-Fields", strings.Join(fields, ","))
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.PDF)
}

// fillFormJSONResponse is the base64 envelope for clients that cannot
// handle binary downloads, such as GPT actions.
type fillFormJSONResponse struct {
	Filename      string              `json:"filename"`
	MimeType      string              `json:"mime_type"`
	Data          string              `json:"data"`
	FilledCount   int                 `json:"filled_count"`
	UnknownFields []string            `json:"unknown_fields,omitempty"`
	Overflow      []pdf.FieldOverflow `json:"overflow,omitempty"`
}

// handleFillFormJSON fills the form and returns the PDF as a base64 data
// URL inside a JSON body.
func (s *Server) handleFillFormJSON(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFillRequest(w, r)
	if !ok {
		return
	}

	result, err := s.service.FillForm(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, fillFormJSONResponse{
		Filename:      "filled-" + result.TemplateName,
		MimeType:      "application/pdf",
		Data:          "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(result.PDF),
		FilledCount:   result.FilledCount,
		UnknownFields: result.UnknownFields,
		Overflow:      result.Overflow,
	})
}

// fillRequestBody is the wire form of a fill request. Field values arrive
// untyped so that numeric and boolean scalars can be coerced to text
// instead of failing the decode.
type fillRequestBody struct {
	TemplateName string                 `json:"template_name"`
	Fields       map[string]interface{} `json:"fields"`
	LineLimits   map[string]int         `json:"line_limits"`
}

// decodeFillRequest parses and sanity-checks a fill request body.
func decodeFillRequest(w http.ResponseWriter, r *http.Request) (pdf.FormFillRequest, bool) {
	var req pdf.FormFillRequest

	var body fillRequestBody
	if err := ReadJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return req, false
	}
	if len(body.Fields) == 0 {
		WriteError(w, http.StatusBadRequest, "invalid_request", "fields must not be empty")
		return req, false
	}

	fields := make(map[string]string, len(body.Fields))
	for name, value := range body.Fields {
		text, ok := pdf.FieldValueText(value)
		if !ok {
			WriteError(w, http.StatusBadRequest, "invalid_request",
				fmt.Sprintf("value for field %q must be a string, number, or boolean", name))
			return req, false
		}
		fields[name] = text
	}

	req = pdf.FormFillRequest{
		TemplateName: body.TemplateName,
		Fields:       fields,
		LineLimits:   body.LineLimits,
	}
	return req, true
}
