package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

// ProfileRepo stores profiles together with their activity counters, so it
// serves both ports.ProfileRepository and ports.ProfileStatsRepository.
type ProfileRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Profile
}

func (r *ProfileRepo) Create(_ context.Context, profile domain.Profile) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rows[profile.UserID]; ok && existing.DeletedAt == nil {
		return domain.Profile{}, fmt.Errorf("%w: profile already exists", domain.ErrConflict)
	}
	if r.usernameTaken(profile.Username, profile.UserID) {
		return domain.Profile{}, fmt.Errorf("%w: username taken", domain.ErrConflict)
	}
	if profile.ProfileID == uuid.Nil {
		profile.ProfileID = uuid.New()
	}
	r.rows[profile.UserID] = cloneProfile(profile)
	return cloneProfile(profile), nil
}

func (r *ProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok || row.DeletedAt != nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return cloneProfile(row), nil
}

func (r *ProfileRepo) Update(_ context.Context, profile domain.Profile) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[profile.UserID]
	if !ok || row.DeletedAt != nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	if r.usernameTaken(profile.Username, profile.UserID) {
		return domain.Profile{}, fmt.Errorf("%w: username taken", domain.ErrConflict)
	}
	// counters are owned by the stats methods
	profile.Stats = row.Stats
	profile.LastActiveAt = row.LastActiveAt
	profile.ProfileID = row.ProfileID
	profile.CreatedAt = row.CreatedAt
	r.rows[profile.UserID] = cloneProfile(profile)
	return cloneProfile(profile), nil
}

func (r *ProfileRepo) SoftDeleteByUserID(_ context.Context, userID uuid.UUID, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		return domain.ErrNotFound
	}
	t := deletedAt.UTC()
	row.DeletedAt = &t
	r.rows[userID] = row
	return nil
}

func (r *ProfileRepo) Search(_ context.Context, query ports.ProfileSearchQuery) ([]domain.Profile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(query.Query))
	items := make([]domain.Profile, 0)
	for _, row := range r.rows {
		if row.DeletedAt != nil {
			continue
		}
		if query.Type != "" && row.Type != query.Type {
			continue
		}
		if query.ExcludePrivate && row.Settings.Visibility == domain.VisibilityPrivate {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(row.DisplayName), needle) &&
			!strings.Contains(strings.ToLower(row.Username), needle) {
			continue
		}
		items = append(items, row)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].DisplayName == items[j].DisplayName {
			return items[i].Username < items[j].Username
		}
		return items[i].DisplayName < items[j].DisplayName
	})
	start, end := paginate(len(items), query.Limit, query.Offset)
	out := make([]domain.Profile, 0, end-start)
	for _, row := range items[start:end] {
		out = append(out, cloneProfile(row))
	}
	return out, int64(len(items)), nil
}

func (r *ProfileRepo) IncrementViews(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		return domain.ErrNotFound
	}
	row.Stats.Views++
	r.rows[userID] = row
	return nil
}

func (r *ProfileRepo) Save(_ context.Context, userID uuid.UUID, stats domain.ActivityStats, lastActiveAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		return domain.ErrNotFound
	}
	row.Stats = stats
	if lastActiveAt != nil {
		t := lastActiveAt.UTC()
		row.LastActiveAt = &t
	}
	r.rows[userID] = row
	return nil
}

func (r *ProfileRepo) usernameTaken(username string, owner uuid.UUID) bool {
	if username == "" {
		return false
	}
	for id, row := range r.rows {
		if id != owner && row.DeletedAt == nil && strings.EqualFold(row.Username, username) {
			return true
		}
	}
	return false
}

// cloneProfile deep-copies through JSON so callers never share payload
// slices with the store.
func cloneProfile(p domain.Profile) domain.Profile {
	raw, err := json.Marshal(p)
	if err != nil {
		return p
	}
	var out domain.Profile
	if err := json.Unmarshal(raw, &out); err != nil {
		return p
	}
	out.DeletedAt = p.DeletedAt
	return out
}
