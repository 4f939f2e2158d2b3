package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type ConnectionRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Connection
}

func (r *ConnectionRepo) Create(_ context.Context, conn domain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[conn.ConnectionID]; exists {
		return domain.ErrConflict
	}
	r.rows[conn.ConnectionID] = conn
	return nil
}

func (r *ConnectionRepo) GetByID(_ context.Context, connectionID uuid.UUID) (domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[connectionID]
	if !ok {
		return domain.Connection{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *ConnectionRepo) GetBetween(_ context.Context, a, b uuid.UUID) (domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if (row.RequesterID == a && row.TargetID == b) || (row.RequesterID == b && row.TargetID == a) {
			return row, nil
		}
	}
	return domain.Connection{}, domain.ErrNotFound
}

func (r *ConnectionRepo) Update(_ context.Context, conn domain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[conn.ConnectionID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[conn.ConnectionID] = conn
	return nil
}

func (r *ConnectionRepo) Delete(_ context.Context, connectionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[connectionID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, connectionID)
	return nil
}

func (r *ConnectionRepo) ListByUserID(_ context.Context, userID uuid.UUID, acceptedOnly bool, limit, offset int) ([]domain.Connection, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.Connection, 0)
	for _, row := range r.rows {
		if row.RequesterID != userID && row.TargetID != userID {
			continue
		}
		if row.State == domain.ConnectionStateRejected {
			continue
		}
		if acceptedOnly && row.State != domain.ConnectionStateAccepted {
			continue
		}
		items = append(items, row)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	start, end := paginate(len(items), limit, offset)
	return append([]domain.Connection(nil), items[start:end]...), int64(len(items)), nil
}

func (r *ConnectionRepo) CountAccepted(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.State == domain.ConnectionStateAccepted && (row.RequesterID == userID || row.TargetID == userID) {
			n++
		}
	}
	return n, nil
}
