package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ready") })
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(handler.optionalAuthMiddleware).Get("/profile/{ref}/page", handler.getProfilePage)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)

			r.Get("/profile/search", handler.searchProfiles)
			r.Get("/profile/current/settings", handler.getSettings)
			r.Patch("/profile/current/settings", handler.updateSettings)
			r.Get("/profile/current/notifications", handler.listNotifications)

			r.Get("/profile/{ref}", handler.getProfile)
			r.Patch("/profile/{ref}/update", handler.updateProfile)
			r.Get("/profile/{ref}/permissions", handler.getPermissions)
			r.Get("/profile/{ref}/activity", handler.listActivity)
			r.Get("/profile/{ref}/contributions", handler.getContributions)
			r.Get("/profile/{ref}/connections", handler.listConnections)

			r.Post("/connections/request", handler.requestConnection)
			r.Post("/connections/request/{id}/accept", handler.acceptConnection)
			r.Post("/connections/request/{id}/reject", handler.rejectConnection)
			r.Delete("/connections/{targetUserId}", handler.removeConnection)

			r.Post("/notifications/read-all", handler.markAllNotificationsRead)
			r.Post("/notifications/{id}/read", handler.markNotificationRead)
			r.Delete("/notifications/{id}", handler.deleteNotification)
		})
	})
	return r
}
