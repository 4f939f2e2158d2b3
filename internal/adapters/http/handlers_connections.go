package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func (h *Handler) listConnections(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "list_connections", domain.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	resp, err := h.service.ListConnections(r.Context(), actor, chi.URLParam(r, "ref"), application.PageQuery{
		Limit:  parseIntDefault(q.Get("limit"), 0),
		Offset: parseIntDefault(q.Get("offset"), 0),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_connections", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) requestConnection(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "request_connection", domain.ErrUnauthorized)
		return
	}
	var req application.ConnectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "request_connection", err)
		return
	}
	resp, err := h.service.RequestConnection(r.Context(), actor, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeMappedError(r.Context(), w, "request_connection", err)
		return
	}
	writeSuccess(w, http.StatusCreated, resp)
}

func (h *Handler) acceptConnection(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "accept_connection", domain.ErrUnauthorized)
		return
	}
	resp, err := h.service.AcceptConnection(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeMappedError(r.Context(), w, "accept_connection", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) rejectConnection(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "reject_connection", domain.ErrUnauthorized)
		return
	}
	resp, err := h.service.RejectConnection(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeMappedError(r.Context(), w, "reject_connection", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) removeConnection(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "remove_connection", domain.ErrUnauthorized)
		return
	}
	if err := h.service.RemoveConnection(r.Context(), actor, chi.URLParam(r, "targetUserId")); err != nil {
		writeMappedError(r.Context(), w, "remove_connection", err)
		return
	}
	writeMessage(w, http.StatusOK, "connection removed")
}
