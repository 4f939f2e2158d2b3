package client

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	ThemeStorageKey = "profileTheme"
	defaultTheme    = string(domain.ThemeSystem)
)

// Store keeps small client preferences between runs.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// FileStore is a Store backed by a flat YAML map on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	raw, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileStore) read() (map[string]string, error) {
	values := map[string]string{}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// ThemeHook holds the caller's theme preference. Changes are stored locally
// first and then sent to the settings endpoint.
type ThemeHook struct {
	client *Client
	store  Store

	mu    sync.Mutex
	theme string
}

func (c *Client) UseProfileTheme(store Store) *ThemeHook {
	h := &ThemeHook{client: c, store: store, theme: defaultTheme}
	if saved, err := store.Get(ThemeStorageKey); err == nil {
		if theme, perr := domain.ParseTheme(saved); perr == nil {
			h.theme = string(theme)
		}
	}
	return h
}

func (h *ThemeHook) Theme() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.theme
}

// SetTheme rejects anything but light, dark or system before touching local
// state.
func (h *ThemeHook) SetTheme(ctx context.Context, theme string) error {
	parsed, err := domain.ParseTheme(theme)
	if err != nil {
		return err
	}
	theme = string(parsed)

	h.mu.Lock()
	h.theme = theme
	h.mu.Unlock()

	if err := h.store.Set(ThemeStorageKey, theme); err != nil {
		return err
	}
	return h.client.send(ctx, http.MethodPatch, "/api/profile/current/settings",
		application.UpdateSettingsRequest{Theme: &theme}, nil)
}
