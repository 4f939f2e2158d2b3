package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type ProfileOptions struct {
	// UserID selects the profile; empty means the caller's own.
	UserID               string
	ProfileType          string
	IncludeActivities    bool
	IncludeContributions bool
	IncludeConnections   bool
	RefreshInterval      time.Duration
}

type ProfileState struct {
	Profile     *application.ProfileResponse
	IsLoading   bool
	IsError     bool
	Error       error
	Permissions *domain.Permissions
}

// ProfileHook tracks one profile and the caller's permissions on it.
type ProfileHook struct {
	client      *Client
	query       *Query[application.ProfileResponse]
	unsubscribe func()

	mu          sync.Mutex
	opts        ProfileOptions
	permGen     uint64
	permissions *domain.Permissions
}

func (c *Client) UseProfile(ctx context.Context, opts ProfileOptions) *ProfileHook {
	h := &ProfileHook{client: c, opts: opts}
	h.query = newQuery[application.ProfileResponse](c, profileURL(opts), opts.RefreshInterval)
	h.unsubscribe = c.subscribe(h.Refresh)
	_ = h.Refresh(ctx)
	return h
}

func (h *ProfileHook) State() ProfileState {
	snap := h.query.Snapshot()
	st := ProfileState{IsLoading: snap.IsLoading, IsError: snap.IsError, Error: snap.Error}
	if snap.HasData {
		p := snap.Data
		st.Profile = &p
	}
	h.mu.Lock()
	if h.permissions != nil {
		p := *h.permissions
		st.Permissions = &p
	}
	h.mu.Unlock()
	return st
}

// Refresh revalidates the profile and, when a new profile arrived, its
// permissions.
func (h *ProfileHook) Refresh(ctx context.Context) error {
	profile, applied, err := h.query.revalidate(ctx)
	if err != nil || !applied {
		return err
	}
	h.loadPermissions(ctx, profile.UserID)
	return nil
}

// SetUserID retargets the hook and refetches. Permission responses still in
// flight for the previous profile are discarded.
func (h *ProfileHook) SetUserID(ctx context.Context, userID string) error {
	h.mu.Lock()
	h.opts.UserID = userID
	opts := h.opts
	h.permGen++
	h.permissions = nil
	h.mu.Unlock()

	h.query.setKey(profileURL(opts))
	return h.Refresh(ctx)
}

// UpdateProfile sends the patch and then revalidates. Local state is not
// touched until the revalidation completes.
func (h *ProfileHook) UpdateProfile(ctx context.Context, patch application.UpdateProfileRequest) error {
	h.mu.Lock()
	ref := profileRef(h.opts.UserID)
	h.mu.Unlock()

	if err := h.client.send(ctx, http.MethodPatch, "/api/profile/"+url.PathEscape(ref)+"/update", patch, nil); err != nil {
		return err
	}
	return h.Refresh(ctx)
}

func (h *ProfileHook) Run(ctx context.Context) {
	if h.query.interval <= 0 {
		return
	}
	ticker := time.NewTicker(h.query.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = h.Refresh(ctx)
		}
	}
}

func (h *ProfileHook) Close() { h.unsubscribe() }

func (h *ProfileHook) loadPermissions(ctx context.Context, userID uuid.UUID) {
	h.mu.Lock()
	h.permGen++
	gen := h.permGen
	h.mu.Unlock()

	var perms domain.Permissions
	err := h.client.send(ctx, http.MethodGet, "/api/profile/"+userID.String()+"/permissions", nil, &perms)

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.permGen {
		return
	}
	current := h.query.Snapshot()
	if !current.HasData || current.Data.UserID != userID {
		return
	}
	if err != nil {
		return
	}
	h.permissions = &perms
}

func profileRef(userID string) string {
	if userID == "" {
		return "current"
	}
	return userID
}

func profileURL(opts ProfileOptions) string {
	q := url.Values{}
	if opts.ProfileType != "" {
		q.Set("type", opts.ProfileType)
	}
	if opts.IncludeActivities {
		q.Set("includeActivities", "true")
	}
	if opts.IncludeContributions {
		q.Set("includeContributions", "true")
	}
	if opts.IncludeConnections {
		q.Set("includeConnections", "true")
	}
	return withQuery("/api/profile/"+url.PathEscape(profileRef(opts.UserID)), q)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
