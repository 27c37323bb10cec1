package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/lotes/internal/core"
	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 64 << 10

// handleOptions returns every bundled category read from one snapshot.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.service.LoadOptions(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"success": true}
	for _, c := range bundle {
		resp[c.Key] = c.Options
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCategoryOptions returns the options of a single category.
func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "categoria")

	opts, err := s.service.LoadCategory(r.Context(), key)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, key: opts})
}

type createProductRequest struct {
	Nome string `json:"nome"`
}

type createProductResponse struct {
	Success bool        `json:"success"`
	Created bool        `json:"created"`
	Produto core.Option `json:"produto"`
}

// handleCreateProduct registers a product typed in the form, or returns the
// existing one with the same canonical name.
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondBadBody(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	opt, created, err := s.service.CreateProduct(ctx, req.Nome)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, createProductResponse{Success: true, Created: created, Produto: opt})
}

// handleRegisterBatch validates and stores a submitted batch. Values may be
// sent as strings or as JSON numbers.
func (s *Server) handleRegisterBatch(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decodeJSON(w, r, &raw); err != nil {
		s.respondBadBody(w, r, err)
		return
	}

	in := make(core.BatchInput, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			in[k] = val
		case float64:
			in[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			in[k] = ""
		default:
			s.respondBadBody(w, r, errors.New("field "+k+" is not a scalar"))
			return
		}
	}

	ctx := WithRequestMetadata(r.Context(), r)
	id, err := s.service.RegisterBatch(ctx, in)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondBadBody(w http.ResponseWriter, r *http.Request, err error) {
	s.respondError(w, r, &core.UserError{Technical: err, User: badRequestBody}, http.StatusBadRequest)
}
