// Package memory holds process-local implementations of the storage ports.
// They back the service when STORAGE_DRIVER=memory and are used by tests.
package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

type Repositories struct {
	Profiles      *ProfileRepo
	Stats         *ProfileRepo
	Activities    *ActivityRepo
	Contributions *ContributionRepo
	Connections   *ConnectionRepo
	Notifications *NotificationRepo
	Outbox        *OutboxRepo
	EventDedup    *EventDedupRepo
	Idempotency   *IdempotencyRepo
}

func NewRepositories() *Repositories {
	profiles := &ProfileRepo{rows: map[uuid.UUID]domain.Profile{}}
	return &Repositories{
		Profiles:      profiles,
		Stats:         profiles,
		Activities:    &ActivityRepo{},
		Contributions: &ContributionRepo{rows: map[uuid.UUID]map[string]int{}},
		Connections:   &ConnectionRepo{rows: map[uuid.UUID]domain.Connection{}},
		Notifications: &NotificationRepo{rows: map[uuid.UUID]domain.Notification{}},
		Outbox:        &OutboxRepo{},
		EventDedup:    &EventDedupRepo{rows: map[string]time.Time{}},
		Idempotency:   &IdempotencyRepo{rows: map[string]ports.IdempotencyRecord{}},
	}
}

func paginate(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return total, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
