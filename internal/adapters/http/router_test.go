package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	httpadapter "github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/memory"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

type staticVerifier map[string]ports.AuthClaims

func (v staticVerifier) Verify(_ context.Context, token string) (ports.AuthClaims, error) {
	claims, ok := v[token]
	if !ok {
		return ports.AuthClaims{}, errors.New("unknown token")
	}
	return claims, nil
}

type routerFixture struct {
	server  *httptest.Server
	service *application.Service
	tokens  staticVerifier
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	repos := memory.NewRepositories()
	tokens := staticVerifier{}
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	service := application.NewService(application.Dependencies{
		Logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Profiles:      repos.Profiles,
		Stats:         repos.Stats,
		Activities:    repos.Activities,
		Contributions: repos.Contributions,
		Connections:   repos.Connections,
		Notifications: repos.Notifications,
		Outbox:        repos.Outbox,
		EventDedup:    repos.EventDedup,
		Idempotency:   repos.Idempotency,
		Tokens:        tokens,
		Cache:         memory.NewCache(),
		Clock:         func() time.Time { return now },
	})
	server := httptest.NewServer(httpadapter.NewRouter(httpadapter.NewHandler(service)))
	t.Cleanup(server.Close)
	return &routerFixture{server: server, service: service, tokens: tokens}
}

// register creates a profile and returns a bearer token for it.
func (f *routerFixture) register(t *testing.T, role, username string) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	payload, _ := json.Marshal(map[string]any{
		"event_id": uuid.NewString(),
		"data": map[string]any{
			"user_id":      userID.String(),
			"email":        username + "@school.test",
			"role":         role,
			"username":     username,
			"display_name": "User " + username,
		},
	})
	if err := f.service.HandleEvent(context.Background(), application.EventUserRegistered, payload); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	token := "token-" + username
	f.tokens[token] = ports.AuthClaims{UserID: userID, Email: username + "@school.test", Role: role}
	return token, userID
}

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t)
	status, env := f.do(t, http.MethodGet, "/healthz", "", nil)
	if status != http.StatusOK || env.Message != "ok" {
		t.Fatalf("unexpected healthz response: %d %+v", status, env)
	}
}

func TestProtectedRouteRequiresBearerToken(t *testing.T) {
	f := newRouterFixture(t)
	status, env := f.do(t, http.MethodGet, "/api/profile/current", "", nil)
	if status != http.StatusUnauthorized || env.Code != "UNAUTHORIZED" {
		t.Fatalf("expected 401 UNAUTHORIZED, got %d %+v", status, env)
	}
	status, _ = f.do(t, http.MethodGet, "/api/profile/current", "not-a-token", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", status)
	}
}

func TestGetAndUpdateCurrentProfile(t *testing.T) {
	f := newRouterFixture(t)
	token, userID := f.register(t, "student", "ada")

	status, env := f.do(t, http.MethodPatch, "/api/profile/current/update", token, map[string]any{"bio": "Loves algebra"})
	if status != http.StatusOK {
		t.Fatalf("update failed: %d %+v", status, env)
	}

	status, env = f.do(t, http.MethodGet, "/api/profile/current", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get failed: %d %+v", status, env)
	}
	var profile struct {
		UserID uuid.UUID `json:"userId"`
		Bio    string    `json:"bio"`
		Type   string    `json:"type"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.UserID != userID || profile.Bio != "Loves algebra" || profile.Type != "student" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestUpdateOtherProfileIsForbidden(t *testing.T) {
	f := newRouterFixture(t)
	token, _ := f.register(t, "student", "ada")
	_, otherID := f.register(t, "student", "grace")

	status, env := f.do(t, http.MethodPatch, "/api/profile/"+otherID.String()+"/update", token, map[string]any{"bio": "hijacked"})
	if status != http.StatusForbidden || env.Code != "FORBIDDEN" {
		t.Fatalf("expected 403, got %d %+v", status, env)
	}
}

func TestMalformedBodyIsValidationError(t *testing.T) {
	f := newRouterFixture(t)
	token, _ := f.register(t, "student", "ada")

	req, _ := http.NewRequest(http.MethodPatch, f.server.URL+"/api/profile/current/update", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPageEndpointReportsUnauthenticatedState(t *testing.T) {
	f := newRouterFixture(t)
	status, env := f.do(t, http.MethodGet, "/api/profile/current/page", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var page struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.State != "unauthenticated" {
		t.Fatalf("expected unauthenticated state, got %q", page.State)
	}
}

func TestPageEndpointComposesOwnerPage(t *testing.T) {
	f := newRouterFixture(t)
	token, _ := f.register(t, "student", "turing")

	status, env := f.do(t, http.MethodGet, "/api/profile/current/page?tab=overview&lang=fr", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", status, env)
	}
	var page struct {
		State    string `json:"state"`
		Lang     string `json:"lang"`
		Composer string `json:"composer"`
		IsOwner  bool   `json:"isOwner"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.State != "ready" || page.Composer != "student" || !page.IsOwner || page.Lang != "fr" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestConnectionLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	aliceToken, aliceID := f.register(t, "student", "alice")
	bobToken, bobID := f.register(t, "student", "bob")

	status, env := f.do(t, http.MethodPost, "/api/connections/request", aliceToken, map[string]any{"targetUserId": bobID.String()})
	if status != http.StatusCreated {
		t.Fatalf("request connection: %d %+v", status, env)
	}
	var conn struct {
		ID    uuid.UUID `json:"id"`
		State string    `json:"state"`
	}
	if err := json.Unmarshal(env.Data, &conn); err != nil {
		t.Fatalf("decode connection: %v", err)
	}
	if conn.State != "pending" {
		t.Fatalf("expected pending connection, got %q", conn.State)
	}

	status, _ = f.do(t, http.MethodPost, "/api/connections/request/"+conn.ID.String()+"/accept", aliceToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("requester must not accept own request, got %d", status)
	}
	status, env = f.do(t, http.MethodPost, "/api/connections/request/"+conn.ID.String()+"/accept", bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("accept connection: %d %+v", status, env)
	}

	status, env = f.do(t, http.MethodGet, "/api/profile/"+aliceID.String()+"/connections", bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list connections: %d %+v", status, env)
	}
	var page struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode connections: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected one connection, got %d", page.Total)
	}

	status, _ = f.do(t, http.MethodDelete, "/api/connections/"+bobID.String(), aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("remove connection: %d", status)
	}
}

func TestNotificationsFlow(t *testing.T) {
	f := newRouterFixture(t)
	aliceToken, _ := f.register(t, "student", "alice")
	bobToken, bobID := f.register(t, "student", "bob")

	if status, env := f.do(t, http.MethodPost, "/api/connections/request", aliceToken, map[string]any{"targetUserId": bobID.String()}); status != http.StatusCreated {
		t.Fatalf("request connection: %d %+v", status, env)
	}

	status, env := f.do(t, http.MethodGet, "/api/profile/current/notifications?unreadOnly=true", bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list notifications: %d %+v", status, env)
	}
	var page struct {
		Notifications []struct {
			ID uuid.UUID `json:"id"`
		} `json:"notifications"`
		Unread int64 `json:"unread"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if page.Unread != 1 || len(page.Notifications) != 1 {
		t.Fatalf("expected one unread notification, got %+v", page)
	}
	id := page.Notifications[0].ID.String()

	if status, _ := f.do(t, http.MethodPost, "/api/notifications/"+id+"/read", aliceToken, nil); status != http.StatusNotFound {
		t.Fatalf("other users must not read the notification, got %d", status)
	}
	if status, _ := f.do(t, http.MethodPost, "/api/notifications/read-all", bobToken, nil); status != http.StatusOK {
		t.Fatalf("read all: %d", status)
	}
	if status, _ := f.do(t, http.MethodDelete, "/api/notifications/"+id, bobToken, nil); status != http.StatusOK {
		t.Fatalf("delete notification: %d", status)
	}
	if status, _ := f.do(t, http.MethodDelete, "/api/notifications/"+id, bobToken, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", status)
	}
}
