package postgres

import (
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Profiles      ports.ProfileRepository
	Stats         ports.ProfileStatsRepository
	Activities    ports.ActivityRepository
	Contributions ports.ContributionRepository
	Connections   ports.ConnectionRepository
	Notifications ports.NotificationRepository
	Outbox        ports.OutboxRepository
	EventDedup    ports.EventDedupRepository
	Idempotency   ports.IdempotencyRepository
}

// NewRepositories wires every port to db. enc seals contact phones.
func NewRepositories(db *gorm.DB, enc ports.Encryption) Repositories {
	return Repositories{
		Profiles:      &profileRepository{db: db, enc: enc},
		Stats:         &profileStatsRepository{db: db},
		Activities:    &activityRepository{db: db},
		Contributions: &contributionRepository{db: db},
		Connections:   &connectionRepository{db: db},
		Notifications: &notificationRepository{db: db},
		Outbox:        &outboxRepository{db: db},
		EventDedup:    &eventDedupRepository{db: db, nowFn: time.Now},
		Idempotency:   &idempotencyRepository{db: db},
	}
}
