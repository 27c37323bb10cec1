package web

// errors.go provides unified error responses for the web layer.
//
// Every error is logged with its technical detail and the request id (at
// warn when it maps to a known message, error otherwise), then
// mapped through core.MapError to the message shown to the operator:
//   - API routes answer with the {"success":false,"message":...} envelope
//   - HTMX requests get an alert fragment swapped into the alert slot
//   - other requests get a plain text error

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/lotes/internal/core"
	"github.com/JonMunkholm/lotes/internal/logging"
	"github.com/JonMunkholm/lotes/internal/web/templates"
)

// Messages for failures raised by the web layer itself.
var (
	badRequestBody = core.UserMessage{
		Message: "Requisição inválida",
		Action:  "Envie um corpo JSON válido",
		Code:    "REQ004",
	}
	rateLimited = core.UserMessage{
		Message: "Muitas requisições",
		Action:  "Aguarde um minuto e tente novamente",
		Code:    "REQ005",
	}
	sessionGone = core.UserMessage{
		Message: "Este formulário expirou",
		Action:  "Abra um novo cadastro de lote",
		Code:    "FRM001",
	}
	creationPending = core.UserMessage{
		Message: "Aguarde o cadastro do novo produto terminar",
		Action:  "O lote pode ser enviado assim que o produto aparecer selecionado",
		Code:    "FRM002",
	}
	fieldUnknown = core.UserMessage{
		Message: "Campo desconhecido",
		Action:  "Recarregue a página",
		Code:    "FRM003",
	}
)

// fieldError is one invalid field in a validation response.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON envelope of a failed API request.
type ErrorResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Action  string          `json:"action,omitempty"`
	Code    string          `json:"code"`
	Fields  map[string]bool `json:"fields,omitempty"`
	Errors  []fieldError    `json:"errors,omitempty"`
}

// statusFor chooses the HTTP status of a backend error.
func statusFor(err error) int {
	var ve core.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptyLabel), errors.Is(err, core.ErrLabelTooLong):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnknownCategory):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyWrites):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch core.MapError(err).Code {
	case "DB001", "DB002":
		return http.StatusConflict
	case "DB004", "DB005":
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the user message it maps to.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	detail := err.Error()
	var ue *core.UserError
	if errors.As(err, &ue) && ue.Technical != nil {
		detail = ue.Technical.Error()
	}

	level := slog.LevelError
	if core.IsUserFacing(err) {
		level = slog.LevelWarn
	}

	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", detail,
		"code", userMsg.Code,
	)

	var ve core.ValidationErrors
	if errors.As(err, &ve) && wantsJSON(r) {
		respondValidationJSON(w, userMsg, ve)
		return
	}
	respondMessage(w, r, userMsg, statusCode)
}

// respondMessage writes msg in the format the client expects.
func respondMessage(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, msg, statusCode)
	case wantsJSON(r):
		writeJSON(w, statusCode, ErrorResponse{
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
	}
}

// respondValidationJSON writes a 422 naming every invalid field.
func respondValidationJSON(w http.ResponseWriter, msg core.UserMessage, ve core.ValidationErrors) {
	resp := ErrorResponse{
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Fields:  make(map[string]bool),
	}
	for _, f := range ve.Fields() {
		resp.Fields[f] = true
	}
	for _, e := range ve {
		resp.Errors = append(resp.Errors, fieldError{
			Field:   e.Field,
			Message: core.MapError(e).Message,
		})
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

// renderErrorPartial swaps an alert into the alert slot of the form body,
// leaving the fields in place.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("HX-Retarget", "#alerts")
	w.Header().Set("HX-Reswap", "innerHTML")
	render(w, r, statusCode, templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
