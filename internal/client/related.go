package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

// UseProfileContributions loads the contribution calendar. A zero year asks
// the server for the rolling window ending today.
func (c *Client) UseProfileContributions(ctx context.Context, userID string, year int) *Resource[domain.ContributionData] {
	q := url.Values{}
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	key := withQuery("/api/profile/"+url.PathEscape(profileRef(userID))+"/contributions", q)
	return newResource[domain.ContributionData](ctx, c, key, 0)
}

type ConnectionsOptions struct {
	UserID          string
	Limit           int
	Offset          int
	RefreshInterval time.Duration
}

// ConnectionsHook lists connections and exposes the connection actions.
// Every action re-fetches the list.
type ConnectionsHook struct {
	*Resource[application.ConnectionPage]
}

func (c *Client) UseProfileConnections(ctx context.Context, opts ConnectionsOptions) *ConnectionsHook {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	key := withQuery("/api/profile/"+url.PathEscape(profileRef(opts.UserID))+"/connections", q)
	return &ConnectionsHook{Resource: newResource[application.ConnectionPage](ctx, c, key, opts.RefreshInterval)}
}

func (h *ConnectionsHook) Request(ctx context.Context, targetUserID, message string) (domain.Connection, error) {
	var conn domain.Connection
	err := h.client.send(ctx, http.MethodPost, "/api/connections/request",
		application.ConnectionRequest{TargetUserID: targetUserID, Message: message}, &conn,
		"Idempotency-Key", uuid.NewString())
	if err != nil {
		return domain.Connection{}, err
	}
	return conn, h.Refresh(ctx)
}

func (h *ConnectionsHook) Accept(ctx context.Context, connectionID string) error {
	return h.mutate(ctx, http.MethodPost, "/api/connections/request/"+url.PathEscape(connectionID)+"/accept")
}

func (h *ConnectionsHook) Reject(ctx context.Context, connectionID string) error {
	return h.mutate(ctx, http.MethodPost, "/api/connections/request/"+url.PathEscape(connectionID)+"/reject")
}

func (h *ConnectionsHook) Remove(ctx context.Context, targetUserID string) error {
	return h.mutate(ctx, http.MethodDelete, "/api/connections/"+url.PathEscape(targetUserID))
}

func (h *ConnectionsHook) mutate(ctx context.Context, method, path string) error {
	if err := h.client.send(ctx, method, path, nil, nil); err != nil {
		return err
	}
	return h.Refresh(ctx)
}

type SearchOptions struct {
	Query  string
	Role   string
	Limit  int
	Offset int
}

type SearchHook struct {
	*Resource[application.SearchResponse]

	mu   sync.Mutex
	opts SearchOptions
}

func (c *Client) UseProfileSearch(ctx context.Context, opts SearchOptions) *SearchHook {
	return &SearchHook{
		Resource: newResource[application.SearchResponse](ctx, c, searchURL(opts), 0),
		opts:     opts,
	}
}

// Search replaces the query text and fetches from the first page.
func (h *SearchHook) Search(ctx context.Context, query string) error {
	h.mu.Lock()
	h.opts.Query = query
	h.opts.Offset = 0
	opts := h.opts
	h.mu.Unlock()

	h.query.setKey(searchURL(opts))
	return h.Refresh(ctx)
}

func searchURL(opts SearchOptions) string {
	q := url.Values{}
	q.Set("q", opts.Query)
	if opts.Role != "" {
		q.Set("role", opts.Role)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	return withQuery("/api/profile/search", q)
}

type NotificationsOptions struct {
	UnreadOnly      bool
	Limit           int
	RefreshInterval time.Duration
}

type NotificationsHook struct {
	*Resource[application.NotificationPage]
}

func (c *Client) UseProfileNotifications(ctx context.Context, opts NotificationsOptions) *NotificationsHook {
	q := url.Values{}
	if opts.UnreadOnly {
		q.Set("unreadOnly", "true")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	key := withQuery("/api/profile/current/notifications", q)
	return &NotificationsHook{Resource: newResource[application.NotificationPage](ctx, c, key, opts.RefreshInterval)}
}

func (h *NotificationsHook) MarkRead(ctx context.Context, notificationID string) error {
	return h.mutate(ctx, http.MethodPost, "/api/notifications/"+url.PathEscape(notificationID)+"/read")
}

func (h *NotificationsHook) MarkAllRead(ctx context.Context) error {
	return h.mutate(ctx, http.MethodPost, "/api/notifications/read-all")
}

func (h *NotificationsHook) Delete(ctx context.Context, notificationID string) error {
	return h.mutate(ctx, http.MethodDelete, "/api/notifications/"+url.PathEscape(notificationID))
}

func (h *NotificationsHook) mutate(ctx context.Context, method, path string) error {
	if err := h.client.send(ctx, method, path, nil, nil); err != nil {
		return err
	}
	return h.Refresh(ctx)
}
