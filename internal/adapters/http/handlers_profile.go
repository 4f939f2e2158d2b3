package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "get_profile", domain.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	resp, err := h.service.GetProfile(r.Context(), actor, application.GetProfileRequest{
		Ref:                  chi.URLParam(r, "ref"),
		Type:                 q.Get("type"),
		IncludeActivities:    parseBool(q.Get("includeActivities")),
		IncludeContributions: parseBool(q.Get("includeContributions")),
		IncludeConnections:   parseBool(q.Get("includeConnections")),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "get_profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "update_profile", domain.ErrUnauthorized)
		return
	}
	var req application.UpdateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_profile", err)
		return
	}
	resp, err := h.service.UpdateProfile(r.Context(), actor, chi.URLParam(r, "ref"), req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeMappedError(r.Context(), w, "update_profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "get_permissions", domain.ErrUnauthorized)
		return
	}
	resp, err := h.service.GetPermissions(r.Context(), actor, chi.URLParam(r, "ref"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_permissions", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) listActivity(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "list_activity", domain.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	resp, err := h.service.ListActivity(r.Context(), actor, chi.URLParam(r, "ref"), application.ActivityQuery{
		Limit:  parseIntDefault(q.Get("limit"), 0),
		Offset: parseIntDefault(q.Get("offset"), 0),
		Type:   q.Get("type"),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_activity", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) getContributions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "get_contributions", domain.ErrUnauthorized)
		return
	}
	year := parseIntDefault(r.URL.Query().Get("year"), 0)
	resp, err := h.service.GetContributions(r.Context(), actor, chi.URLParam(r, "ref"), year)
	if err != nil {
		writeMappedError(r.Context(), w, "get_contributions", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) searchProfiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "search_profiles", domain.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		query = q.Get("query")
	}
	resp, err := h.service.SearchProfiles(r.Context(), actor, application.SearchRequest{
		Query:  query,
		Role:   q.Get("role"),
		Limit:  parseIntDefault(q.Get("limit"), 0),
		Offset: parseIntDefault(q.Get("offset"), 0),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "search_profiles", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "get_settings", domain.ErrUnauthorized)
		return
	}
	resp, err := h.service.GetSettings(r.Context(), actor)
	if err != nil {
		writeMappedError(r.Context(), w, "get_settings", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "update_settings", domain.ErrUnauthorized)
		return
	}
	var req application.UpdateSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_settings", err)
		return
	}
	resp, err := h.service.UpdateSettings(r.Context(), actor, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeMappedError(r.Context(), w, "update_settings", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// getProfilePage always answers 200 with a page state, so anonymous and
// failed loads render their panels instead of an error envelope.
func (h *Handler) getProfilePage(w http.ResponseWriter, r *http.Request) {
	var actor *application.Actor
	if a, ok := actorFromContext(r.Context()); ok {
		actor = &a
	}
	q := r.URL.Query()
	lang := q.Get("lang")
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}
	page, err := h.service.ComposePage(r.Context(), actor, application.PageRequest{
		Ref:              chi.URLParam(r, "ref"),
		Tab:              q.Get("tab"),
		SidebarOpen:      parseBool(q.Get("sidebarOpen")),
		Lang:             lang,
		Child:            q.Get("child"),
		Subject:          q.Get("subject"),
		TimelineFilter:   q.Get("activityType"),
		TimelineExpanded: parseBool(q.Get("expanded")),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "get_profile_page", err)
		return
	}
	writeSuccess(w, http.StatusOK, page)
}
