package application

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   domain.Role
}

func (a Actor) viewer() domain.Viewer {
	return domain.Viewer{UserID: a.UserID, Role: a.Role}
}

type Service struct {
	cfg           Config
	logger        *slog.Logger
	profiles      ports.ProfileRepository
	stats         ports.ProfileStatsRepository
	activities    ports.ActivityRepository
	contributions ports.ContributionRepository
	connections   ports.ConnectionRepository
	notifications ports.NotificationRepository
	outbox        ports.OutboxRepository
	eventDedup    ports.EventDedupRepository
	idempotency   ports.IdempotencyRepository
	tokens        ports.TokenVerifier
	cache         ports.Cache
	nowFn         func() time.Time
}

type Dependencies struct {
	Config        Config
	Logger        *slog.Logger
	Profiles      ports.ProfileRepository
	Stats         ports.ProfileStatsRepository
	Activities    ports.ActivityRepository
	Contributions ports.ContributionRepository
	Connections   ports.ConnectionRepository
	Notifications ports.NotificationRepository
	Outbox        ports.OutboxRepository
	EventDedup    ports.EventDedupRepository
	Idempotency   ports.IdempotencyRepository
	Tokens        ports.TokenVerifier
	Cache         ports.Cache
	Clock         func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "M120-School-Profile-Service"
	}
	if cfg.ProfileCacheTTL <= 0 {
		cfg.ProfileCacheTTL = 5 * time.Minute
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}
	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = 7 * 24 * time.Hour
	}
	if cfg.SearchRateLimit <= 0 {
		cfg.SearchRateLimit = 60
	}
	if cfg.SearchRateWindow <= 0 {
		cfg.SearchRateWindow = time.Minute
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		cfg:           cfg,
		logger:        logger,
		profiles:      deps.Profiles,
		stats:         deps.Stats,
		activities:    deps.Activities,
		contributions: deps.Contributions,
		connections:   deps.Connections,
		notifications: deps.Notifications,
		outbox:        deps.Outbox,
		eventDedup:    deps.EventDedup,
		idempotency:   deps.Idempotency,
		tokens:        deps.Tokens,
		cache:         deps.Cache,
		nowFn:         nowFn,
	}
}

// Location is the zone calendar days are computed in.
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}
