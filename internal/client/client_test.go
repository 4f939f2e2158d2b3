package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/client"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type fakeAPI struct {
	mux *http.ServeMux

	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
}

func newFakeAPI(t *testing.T) (*fakeAPI, *client.Client) {
	t.Helper()
	f := &fakeAPI{mux: http.NewServeMux(), bodies: map[string][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
		if len(body) > 0 {
			f.bodies[r.Method+" "+r.URL.Path] = body
		}
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, client.New(srv.URL, client.WithToken("token"))
}

func (f *fakeAPI) count(request string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == request {
			n++
		}
	}
	return n
}

func (f *fakeAPI) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeAPI) body(request string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[request]
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "message": "ok"})
}

func profileOf(userID uuid.UUID, name string) application.ProfileResponse {
	return application.ProfileResponse{Profile: domain.Profile{
		UserID:      userID,
		Username:    "user_" + userID.String()[:8],
		DisplayName: name,
		Type:        domain.ProfileTypeStudent,
	}}
}

func TestUseProfileBuildsURLAndLoadsPermissions(t *testing.T) {
	api, c := newFakeAPI(t)
	me := uuid.New()
	api.mux.HandleFunc("GET /api/profile/current", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, profileOf(me, "Ada"))
	})
	api.mux.HandleFunc("GET /api/profile/{ref}/permissions", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, domain.Permissions{IsOwner: true, CanView: true, CanEdit: true})
	})

	hook := c.UseProfile(context.Background(), client.ProfileOptions{ProfileType: "student", IncludeActivities: true})
	defer hook.Close()

	st := hook.State()
	require.NotNil(t, st.Profile)
	require.NotNil(t, st.Permissions)
	assert.False(t, st.IsLoading)
	assert.False(t, st.IsError)
	assert.Equal(t, "Ada", st.Profile.DisplayName)
	assert.True(t, st.Permissions.IsOwner)
	assert.Equal(t, []string{
		"GET /api/profile/current?includeActivities=true&type=student",
		"GET /api/profile/" + me.String() + "/permissions",
	}, api.log())
}

func TestUpdateProfilePatchesThenRevalidates(t *testing.T) {
	api, c := newFakeAPI(t)
	me := uuid.New()
	var mu sync.Mutex
	name := "Ada"
	api.mux.HandleFunc("GET /api/profile/current", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeData(w, profileOf(me, name))
	})
	api.mux.HandleFunc("PATCH /api/profile/current/update", func(w http.ResponseWriter, r *http.Request) {
		var req application.UpdateProfileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		name = *req.DisplayName
		mu.Unlock()
		writeData(w, profileOf(me, name))
	})
	api.mux.HandleFunc("GET /api/profile/{ref}/permissions", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, domain.Permissions{IsOwner: true})
	})

	ctx := context.Background()
	hook := c.UseProfile(ctx, client.ProfileOptions{})
	defer hook.Close()

	updated := "Ada Lovelace"
	require.NoError(t, hook.UpdateProfile(ctx, application.UpdateProfileRequest{DisplayName: &updated}))

	assert.Equal(t, "Ada Lovelace", hook.State().Profile.DisplayName)
	assert.JSONEq(t, `{"displayName":"Ada Lovelace"}`, string(api.body("PATCH /api/profile/current/update")))
	assert.Equal(t, 2, api.count("GET /api/profile/current"))
	assert.Equal(t, []string{
		"GET /api/profile/current",
		"GET /api/profile/" + me.String() + "/permissions",
		"PATCH /api/profile/current/update",
		"GET /api/profile/current",
		"GET /api/profile/" + me.String() + "/permissions",
	}, api.log())
}

func TestFailedFetchSurfacesErrorWithoutRetry(t *testing.T) {
	api, c := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/profile/{ref}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "code": "not_found", "message": "profile not found"})
	})

	hook := c.UseProfile(context.Background(), client.ProfileOptions{UserID: uuid.NewString()})
	defer hook.Close()

	st := hook.State()
	assert.True(t, st.IsError)
	assert.Nil(t, st.Profile)
	assert.Nil(t, st.Permissions)
	var apiErr *client.APIError
	require.ErrorAs(t, st.Error, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Len(t, api.log(), 1)
}

func TestZeroRefreshIntervalNeverPolls(t *testing.T) {
	api, c := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/profile/current", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, profileOf(uuid.New(), "Ada"))
	})
	api.mux.HandleFunc("GET /api/profile/{ref}/permissions", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, domain.Permissions{})
	})

	hook := c.UseProfile(context.Background(), client.ProfileOptions{RefreshInterval: 0})
	defer hook.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		hook.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Run did not return with polling disabled")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, api.count("GET /api/profile/current"))
}

func TestPositiveRefreshIntervalPolls(t *testing.T) {
	api, c := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/profile/current/notifications", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, application.NotificationPage{Notifications: []domain.Notification{}})
	})

	hook := c.UseProfileNotifications(context.Background(), client.NotificationsOptions{RefreshInterval: 10 * time.Millisecond})
	defer hook.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hook.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		return api.count("GET /api/profile/current/notifications") >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestFocusAndReconnectRevalidateOpenHooks(t *testing.T) {
	api, c := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/profile/current/contributions", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, domain.ContributionData{Total: 3})
	})
	api.mux.HandleFunc("GET /api/profile/current/connections", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, application.ConnectionPage{Connections: []application.ConnectionView{}})
	})

	ctx := context.Background()
	contributions := c.UseProfileContributions(ctx, "", 0)
	connections := c.UseProfileConnections(ctx, client.ConnectionsOptions{})
	assert.Equal(t, 3, contributions.State().Data.Total)

	require.NoError(t, c.Focus(ctx))
	assert.Equal(t, 2, api.count("GET /api/profile/current/contributions"))
	assert.Equal(t, 2, api.count("GET /api/profile/current/connections"))

	connections.Close()
	require.NoError(t, c.Reconnect(ctx))
	assert.Equal(t, 3, api.count("GET /api/profile/current/contributions"))
	assert.Equal(t, 2, api.count("GET /api/profile/current/connections"))
	contributions.Close()
}

func TestSharedKeyIsCachedAcrossHooks(t *testing.T) {
	api, c := newFakeAPI(t)
	var block atomic.Bool
	release := make(chan struct{})
	api.mux.HandleFunc("GET /api/profile/current/contributions", func(w http.ResponseWriter, _ *http.Request) {
		if block.Load() {
			<-release
		}
		writeData(w, domain.ContributionData{Total: 7})
	})

	ctx := context.Background()
	first := c.UseProfileContributions(ctx, "", 0)
	defer first.Close()

	block.Store(true)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = first.Refresh(ctx)
		}()
	}
	require.Eventually(t, func() bool {
		return api.count("GET /api/profile/current/contributions") == 2
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 2, api.count("GET /api/profile/current/contributions"))
	assert.Equal(t, 7, first.State().Data.Total)
}

func TestNewHookSeesCachedDataBeforeRevalidation(t *testing.T) {
	api, c := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("GET /api/profile/current/contributions", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "code": "internal_error", "message": "boom"})
			return
		}
		writeData(w, domain.ContributionData{Total: 4})
	})

	ctx := context.Background()
	first := c.UseProfileContributions(ctx, "", 0)
	defer first.Close()
	second := c.UseProfileContributions(ctx, "", 0)
	defer second.Close()

	st := second.State()
	assert.True(t, st.HasData)
	assert.Equal(t, 4, st.Data.Total)
	assert.True(t, st.IsError)
	assert.Equal(t, 2, api.count("GET /api/profile/current/contributions"))
}

func TestStalePermissionsResponseIsDiscarded(t *testing.T) {
	api, c := newFakeAPI(t)
	slowID, currentID := uuid.New(), uuid.New()
	reached := make(chan struct{}, 1)
	release := make(chan struct{})
	api.mux.HandleFunc("GET /api/profile/{ref}", func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("ref"))
		require.NoError(t, err)
		writeData(w, profileOf(id, "user"))
	})
	api.mux.HandleFunc("GET /api/profile/{ref}/permissions", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("ref") == slowID.String() {
			reached <- struct{}{}
			<-release
			writeData(w, domain.Permissions{CanView: true, CanEdit: true, CanViewFinancial: true})
			return
		}
		writeData(w, domain.Permissions{CanView: true, CanConnect: true})
	})

	ctx := context.Background()
	hook := c.UseProfile(ctx, client.ProfileOptions{UserID: currentID.String()})
	defer hook.Close()

	done := make(chan error, 1)
	go func() { done <- hook.SetUserID(ctx, slowID.String()) }()
	<-reached

	require.NoError(t, hook.SetUserID(ctx, currentID.String()))
	close(release)
	require.NoError(t, <-done)

	st := hook.State()
	require.NotNil(t, st.Profile)
	require.NotNil(t, st.Permissions)
	assert.Equal(t, currentID, st.Profile.UserID)
	assert.True(t, st.Permissions.CanConnect)
	assert.False(t, st.Permissions.CanEdit)
	assert.False(t, st.Permissions.CanViewFinancial)
}

func TestActivityLoadMoreAppendsPages(t *testing.T) {
	api, c := newFakeAPI(t)
	const total = 45
	items := make([]domain.ActivityItem, total)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range items {
		items[i] = domain.ActivityItem{
			ActivityID: uuid.New(),
			Type:       domain.ActivityGradeReceived,
			Title:      "item " + strconv.Itoa(i),
			OccurredAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	api.mux.HandleFunc("GET /api/profile/current/activity", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := min(offset+limit, total)
		writeData(w, application.ActivityPage{Activities: items[offset:end], HasMore: end < total})
	})

	ctx := context.Background()
	hook := c.UseProfileActivity(ctx, client.ActivityOptions{})
	defer hook.Close()

	st := hook.State()
	require.Len(t, st.Activities, 20)
	assert.Equal(t, 0, st.Offset)
	assert.True(t, st.HasMore)

	require.NoError(t, hook.LoadMore(ctx))
	st = hook.State()
	assert.Equal(t, 20, st.Offset)
	require.Len(t, st.Activities, 40)
	assert.Equal(t, items[:40], st.Activities)

	require.NoError(t, hook.LoadMore(ctx))
	st = hook.State()
	assert.Len(t, st.Activities, total)
	assert.False(t, st.HasMore)

	require.NoError(t, hook.LoadMore(ctx))
	assert.Len(t, api.log(), 3)

	require.NoError(t, hook.Refresh(ctx))
	st = hook.State()
	assert.Equal(t, 0, st.Offset)
	assert.Equal(t, items[:20], st.Activities)
	assert.Equal(t, 2, api.count("GET /api/profile/current/activity?limit=20&offset=0"))
}

func TestConnectionActionsRefetchList(t *testing.T) {
	api, c := newFakeAPI(t)
	connID, target := uuid.New(), uuid.New()
	api.mux.HandleFunc("GET /api/profile/current/connections", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, application.ConnectionPage{Connections: []application.ConnectionView{}, Total: 0})
	})
	api.mux.HandleFunc("POST /api/connections/request", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusCreated)
		writeData(w, domain.Connection{ConnectionID: connID, TargetID: target, State: domain.ConnectionStatePending})
	})
	api.mux.HandleFunc("POST /api/connections/request/{id}/accept", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, domain.Connection{ConnectionID: connID})
	})
	api.mux.HandleFunc("DELETE /api/connections/{id}", func(w http.ResponseWriter, _ *http.Request) { writeOK(w) })

	ctx := context.Background()
	hook := c.UseProfileConnections(ctx, client.ConnectionsOptions{})
	defer hook.Close()

	conn, err := hook.Request(ctx, target.String(), "hi")
	require.NoError(t, err)
	assert.Equal(t, connID, conn.ConnectionID)
	assert.JSONEq(t, `{"targetUserId":"`+target.String()+`","message":"hi"}`, string(api.body("POST /api/connections/request")))

	require.NoError(t, hook.Accept(ctx, connID.String()))
	require.NoError(t, hook.Remove(ctx, target.String()))

	assert.Equal(t, []string{
		"GET /api/profile/current/connections",
		"POST /api/connections/request",
		"GET /api/profile/current/connections",
		"POST /api/connections/request/" + connID.String() + "/accept",
		"GET /api/profile/current/connections",
		"DELETE /api/connections/" + target.String(),
		"GET /api/profile/current/connections",
	}, api.log())
}

func TestNotificationActionsRefetch(t *testing.T) {
	api, c := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/profile/current/notifications", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, application.NotificationPage{Notifications: []domain.Notification{}, Unread: 0})
	})
	api.mux.HandleFunc("POST /api/notifications/read-all", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, application.MarkAllReadResponse{Updated: 2})
	})

	ctx := context.Background()
	hook := c.UseProfileNotifications(ctx, client.NotificationsOptions{UnreadOnly: true, Limit: 5})
	defer hook.Close()
	require.NoError(t, hook.MarkAllRead(ctx))

	assert.Equal(t, 2, api.count("GET /api/profile/current/notifications?limit=5&unreadOnly=true"))
}

func TestSearchChangesKey(t *testing.T) {
	api, c := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/profile/search", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, application.SearchResponse{
			Profiles: []application.ProfileSummary{{DisplayName: r.URL.Query().Get("q")}},
			Total:    1,
		})
	})

	ctx := context.Background()
	hook := c.UseProfileSearch(ctx, client.SearchOptions{Query: "ada", Role: "student"})
	defer hook.Close()
	require.NoError(t, hook.Search(ctx, "grace"))

	st := hook.State()
	require.Len(t, st.Data.Profiles, 1)
	assert.Equal(t, "grace", st.Data.Profiles[0].DisplayName)
	assert.Equal(t, []string{
		"GET /api/profile/search?q=ada&role=student",
		"GET /api/profile/search?q=grace&role=student",
	}, api.log())
}
