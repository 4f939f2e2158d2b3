package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type ActivityRepo struct {
	mu   sync.Mutex
	rows []domain.ActivityItem
}

func (r *ActivityRepo) Append(_ context.Context, item domain.ActivityItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ActivityID == item.ActivityID {
			return domain.ErrConflict
		}
	}
	r.rows = append(r.rows, item)
	return nil
}

func (r *ActivityRepo) List(_ context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]domain.ActivityItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.ActivityItem, 0)
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		if filter.Type != "" && row.Type != filter.Type {
			continue
		}
		items = append(items, row)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].OccurredAt.After(items[j].OccurredAt) })
	start, end := paginate(len(items), filter.Limit, filter.Offset)
	return append([]domain.ActivityItem(nil), items[start:end]...), nil
}

type ContributionRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]map[string]int
}

func (r *ContributionRepo) Increment(_ context.Context, userID uuid.UUID, day string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	days, ok := r.rows[userID]
	if !ok {
		days = map[string]int{}
		r.rows[userID] = days
	}
	days[day] += delta
	return nil
}

func (r *ContributionRepo) ListRange(_ context.Context, userID uuid.UUID, from, to string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for day, count := range r.rows[userID] {
		// day keys are ISO dates so string order is calendar order
		if day >= from && day <= to {
			out[day] = count
		}
	}
	return out, nil
}
