package client

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

const defaultActivityLimit = 20

type ActivityOptions struct {
	UserID          string
	Type            string
	Limit           int
	RefreshInterval time.Duration
}

type ActivityState struct {
	Activities []domain.ActivityItem
	HasMore    bool
	Offset     int
	IsLoading  bool
	IsError    bool
	Error      error
}

// ActivityHook accumulates activity pages for infinite scrolling.
type ActivityHook struct {
	client      *Client
	opts        ActivityOptions
	query       *Query[application.ActivityPage]
	unsubscribe func()

	// fetchMu serialises page loads so offsets apply in order.
	fetchMu sync.Mutex

	mu      sync.Mutex
	offset  int
	items   []domain.ActivityItem
	hasMore bool
}

func (c *Client) UseProfileActivity(ctx context.Context, opts ActivityOptions) *ActivityHook {
	if opts.Limit <= 0 {
		opts.Limit = defaultActivityLimit
	}
	h := &ActivityHook{client: c, opts: opts}
	h.query = newQuery[application.ActivityPage](c, activityURL(opts, 0), opts.RefreshInterval)
	h.unsubscribe = c.subscribe(h.Refresh)
	_ = h.Refresh(ctx)
	return h
}

func (h *ActivityHook) State() ActivityState {
	snap := h.query.Snapshot()
	h.mu.Lock()
	defer h.mu.Unlock()
	return ActivityState{
		Activities: append([]domain.ActivityItem(nil), h.items...),
		HasMore:    h.hasMore,
		Offset:     h.offset,
		IsLoading:  snap.IsLoading,
		IsError:    snap.IsError,
		Error:      snap.Error,
	}
}

// Refresh resets to the first page and replaces the accumulated items.
func (h *ActivityHook) Refresh(ctx context.Context) error {
	return h.fetch(ctx, func(int) int { return 0 })
}

// LoadMore fetches the page after the current one and appends it. It is a
// no-op once the server reported no further pages.
func (h *ActivityHook) LoadMore(ctx context.Context) error {
	h.mu.Lock()
	more := h.hasMore
	h.mu.Unlock()
	if !more {
		return nil
	}
	return h.fetch(ctx, func(offset int) int { return offset + h.opts.Limit })
}

func (h *ActivityHook) Run(ctx context.Context) {
	if h.opts.RefreshInterval <= 0 {
		return
	}
	ticker := time.NewTicker(h.opts.RefreshInterval)
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

func (h *ActivityHook) Close() { h.unsubscribe() }

func (h *ActivityHook) fetch(ctx context.Context, next func(int) int) error {
	h.fetchMu.Lock()
	defer h.fetchMu.Unlock()

	h.mu.Lock()
	offset := next(h.offset)
	h.mu.Unlock()

	h.query.setKey(activityURL(h.opts, offset))
	page, applied, err := h.query.revalidate(ctx)
	if err != nil || !applied {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.offset = offset
	if offset == 0 {
		h.items = append([]domain.ActivityItem(nil), page.Activities...)
	} else {
		h.items = append(h.items, page.Activities...)
	}
	h.hasMore = page.HasMore
	return nil
}

func activityURL(opts ActivityOptions, offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("offset", strconv.Itoa(offset))
	if opts.Type != "" && opts.Type != "all" {
		q.Set("type", opts.Type)
	}
	return withQuery("/api/profile/"+url.PathEscape(profileRef(opts.UserID))+"/activity", q)
}
