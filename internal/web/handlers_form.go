package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/lotes/internal/core"
	"github.com/JonMunkholm/lotes/internal/form"
	"github.com/JonMunkholm/lotes/internal/logging"
	"github.com/JonMunkholm/lotes/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// render writes an HTML component with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// session resolves the {sid} of the request. A missing session has expired
// or was discarded.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*form.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "sid"))
	if !ok {
		respondMessage(w, r, sessionGone, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// fieldView returns the configuration of a field with the creation failure
// translated for the operator.
func fieldView(sess *form.Session, cfg form.FieldConfig) form.FieldConfig {
	if err := sess.CreateError(cfg.Name); err != nil {
		cfg.CreateError = core.MapError(err).Message
	}
	return cfg
}

func (s *Server) formView(sess *form.Session, alert templ.Component) templates.FormView {
	fields := sess.Fields()
	for i := range fields {
		fields[i] = fieldView(sess, fields[i])
	}
	return templates.FormView{
		SessionID: sess.ID,
		Title:     sess.Layout().Title,
		Fields:    fields,
		Alert:     alert,
	}
}

func (s *Server) renderField(w http.ResponseWriter, r *http.Request, sess *form.Session, field form.Field, status int) {
	cfg, ok := sess.FieldConfig(field)
	if !ok {
		respondMessage(w, r, fieldUnknown, http.StatusNotFound)
		return
	}
	render(w, r, status, templates.Field(sess.ID, fieldView(sess, cfg)))
}

func (s *Server) renderBody(w http.ResponseWriter, r *http.Request, sess *form.Session, status int, alert templ.Component) {
	render(w, r, status, templates.FormBody(s.formView(sess, alert)))
}

// changedValue reads the new value of field. HTMX posts the whole enclosing
// form, so controls are named after their field; an explicit "value" (sent by
// suggestion buttons) wins.
func changedValue(r *http.Request, field form.Field) string {
	if err := r.ParseForm(); err == nil {
		if v, ok := r.Form["value"]; ok && len(v) > 0 {
			return v[0]
		}
	}
	return r.FormValue(string(field))
}

// typedLabel reads the label typed for a new option of field.
func typedLabel(r *http.Request, field form.Field) string {
	if v := r.FormValue(templates.LabelParam(field)); v != "" {
		return v
	}
	return r.FormValue("label")
}

// handleNewForm opens a form session and renders its page. Options load in
// the background; busy fields poll until they land.
func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Open()
	logging.FromContext(r.Context()).Info("form session opened", "session_id", sess.ID, "open", s.sessions.Len())
	render(w, r, http.StatusOK, templates.FormPage(s.formView(sess, nil)))
}

// handleField re-renders one field.
func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.renderField(w, r, sess, form.Field(chi.URLParam(r, "field")), http.StatusOK)
}

// handleFieldChange applies an input event through the field's OnChange. A
// value refused by the field leaves it as it was.
func (s *Server) handleFieldChange(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	field := form.Field(chi.URLParam(r, "field"))
	cfg, ok := sess.FieldConfig(field)
	if !ok {
		respondMessage(w, r, fieldUnknown, http.StatusNotFound)
		return
	}

	err := cfg.OnChange(changedValue(r, field))
	switch {
	case err == nil, errors.Is(err, form.ErrRejectedInput):
	case errors.Is(err, form.ErrClosed):
		respondMessage(w, r, sessionGone, http.StatusGone)
		return
	default:
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.renderField(w, r, sess, field, http.StatusOK)
}

// handleCreate hands the typed label to the field's OnCreate: an existing
// label is selected, otherwise the field renders as pending.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	field := form.Field(r.FormValue("field"))
	cfg, ok := sess.FieldConfig(field)
	if !ok || cfg.OnCreate == nil {
		respondMessage(w, r, fieldUnknown, http.StatusBadRequest)
		return
	}

	err := cfg.OnCreate(WithRequestMetadata(r.Context(), r), typedLabel(r, field))
	switch {
	case err == nil:
		s.renderField(w, r, sess, field, http.StatusOK)
	case errors.Is(err, form.ErrEmptyLabel):
		cfg.CreateError = core.MapError(core.ErrEmptyLabel).Message
		render(w, r, http.StatusUnprocessableEntity, templates.Field(sess.ID, cfg))
	case errors.Is(err, form.ErrCreationPending):
		s.renderField(w, r, sess, field, http.StatusConflict)
	case errors.Is(err, form.ErrClosed):
		respondMessage(w, r, sessionGone, http.StatusGone)
	default:
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

// handleSuggestions lists existing options close to the typed label.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	field := form.Field(r.FormValue("field"))
	opts := sess.Suggest(field, typedLabel(r, field), s.cfg.Form.SimilarHints)
	render(w, r, http.StatusOK, templates.Suggestions(sess.ID, field, opts))
}

// handleRetryOptions reloads the option catalogs after a failure.
func (s *Server) handleRetryOptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Load(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("options reload failed", "session_id", sess.ID, "error", err)
	}
	s.renderBody(w, r, sess, http.StatusOK, nil)
}

// handleSubmit validates and registers the batch. On success the form is
// cleared for the next batch.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	id, err := sess.Submit(WithRequestMetadata(r.Context(), r))
	if err == nil {
		s.renderBody(w, r, sess, http.StatusOK, templates.SuccessAlert(id))
		return
	}

	var msg core.UserMessage
	var status int
	switch {
	case errors.Is(err, form.ErrClosed):
		respondMessage(w, r, sessionGone, http.StatusGone)
		return
	case errors.Is(err, form.ErrCreationPending):
		msg, status = creationPending, http.StatusConflict
	case errors.Is(err, form.ErrIncomplete):
		msg, status = core.MapError(err), http.StatusUnprocessableEntity
	default:
		msg, status = core.MapError(err), statusFor(err)
		logging.FromContext(r.Context()).Error("batch submit failed", "session_id", sess.ID, "error", err, "code", msg.Code)
	}
	s.renderBody(w, r, sess, status, templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
}

// handleDiscard tears the session down.
func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Close(chi.URLParam(r, "sid")) {
		respondMessage(w, r, sessionGone, http.StatusNotFound)
		return
	}
	if isHTMX(r) {
		render(w, r, http.StatusOK, templates.Discarded())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
