package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "list_notifications", domain.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	resp, err := h.service.ListNotifications(r.Context(), actor, application.NotificationQuery{
		UnreadOnly: parseBool(q.Get("unreadOnly")),
		Limit:      parseIntDefault(q.Get("limit"), 0),
		Offset:     parseIntDefault(q.Get("offset"), 0),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_notifications", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "mark_notification_read", domain.ErrUnauthorized)
		return
	}
	resp, err := h.service.MarkNotificationRead(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeMappedError(r.Context(), w, "mark_notification_read", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "mark_all_notifications_read", domain.ErrUnauthorized)
		return
	}
	resp, err := h.service.MarkAllNotificationsRead(r.Context(), actor)
	if err != nil {
		writeMappedError(r.Context(), w, "mark_all_notifications_read", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) deleteNotification(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "delete_notification", domain.ErrUnauthorized)
		return
	}
	if err := h.service.DeleteNotification(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeMappedError(r.Context(), w, "delete_notification", err)
		return
	}
	writeMessage(w, http.StatusOK, "notification deleted")
}
