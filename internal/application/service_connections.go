package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func (s *Service) ListConnections(ctx context.Context, actor Actor, ref string, query PageQuery) (ConnectionPage, error) {
	userID, err := resolveRef(actor, ref)
	if err != nil {
		return ConnectionPage{}, err
	}
	_, perms, _, err := s.authorizeView(ctx, actor, userID)
	if err != nil {
		return ConnectionPage{}, err
	}
	return s.connectionPage(ctx, userID, !perms.IsOwner && !actor.Role.IsElevated(), query)
}

// connectionPage lists the connections of owner. Pending requests are only
// listed when acceptedOnly is false.
func (s *Service) connectionPage(ctx context.Context, owner uuid.UUID, acceptedOnly bool, query PageQuery) (ConnectionPage, error) {
	limit, offset := s.pageBounds(query.Limit, query.Offset)
	rows, total, err := s.connections.ListByUserID(ctx, owner, acceptedOnly, limit, offset)
	if err != nil {
		return ConnectionPage{}, err
	}
	out := ConnectionPage{Connections: make([]ConnectionView, 0, len(rows)), Total: total}
	for _, conn := range rows {
		other := conn.Other(owner)
		view := ConnectionView{
			ConnectionID: conn.ConnectionID,
			UserID:       other,
			Status:       conn.StatusFor(owner),
			Message:      conn.Message,
			CreatedAt:    conn.CreatedAt,
		}
		profile, err := s.loadProfile(ctx, other)
		switch {
		case err == nil:
			view.Username = profile.Username
			view.DisplayName = profile.DisplayName
			view.AvatarURL = profile.AvatarURL
			view.Type = profile.Type
		case !errors.Is(err, domain.ErrNotFound):
			return ConnectionPage{}, err
		}
		out.Connections = append(out.Connections, view)
	}
	return out, nil
}

func (s *Service) RequestConnection(ctx context.Context, actor Actor, req ConnectionRequest, idempotencyKey string) (domain.Connection, error) {
	if err := validateRequest(req); err != nil {
		return domain.Connection{}, err
	}
	targetID, err := uuid.Parse(req.TargetUserID)
	if err != nil {
		return domain.Connection{}, fmt.Errorf("%w: invalid targetUserId", domain.ErrInvalidInput)
	}
	if targetID == actor.UserID {
		return domain.Connection{}, fmt.Errorf("%w: cannot connect to yourself", domain.ErrInvalidInput)
	}
	var replay domain.Connection
	if ok, err := s.replayIdempotent(ctx, actor, idempotencyKey, req, &replay); err != nil {
		return domain.Connection{}, err
	} else if ok {
		return replay, nil
	}

	// A rejected request may be sent again; it replaces the old row.
	existing, err := s.connections.GetBetween(ctx, actor.UserID, targetID)
	var rejected *domain.Connection
	switch {
	case err == nil && existing.State != domain.ConnectionStateRejected:
		return domain.Connection{}, fmt.Errorf("%w: connection is already %s", domain.ErrConflict, existing.State)
	case err == nil:
		rejected = &existing
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Connection{}, err
	}

	_, perms, _, err := s.authorizeView(ctx, actor, targetID)
	if err != nil {
		return domain.Connection{}, err
	}
	if !perms.CanConnect {
		return domain.Connection{}, fmt.Errorf("%w: profile does not accept connection requests", domain.ErrForbidden)
	}
	if err := s.reserveIdempotency(ctx, actor, idempotencyKey, req); err != nil {
		return domain.Connection{}, err
	}
	if rejected != nil {
		if err := s.connections.Delete(ctx, rejected.ConnectionID); err != nil {
			return domain.Connection{}, err
		}
	}

	conn := domain.Connection{
		ConnectionID: uuid.New(),
		RequesterID:  actor.UserID,
		TargetID:     targetID,
		State:        domain.ConnectionStatePending,
		Message:      strings.TrimSpace(req.Message),
		CreatedAt:    s.nowFn(),
	}
	if err := s.connections.Create(ctx, conn); err != nil {
		return domain.Connection{}, err
	}
	s.notify(ctx, domain.Notification{
		UserID:   targetID,
		Type:     domain.NotificationConnectionRequested,
		Title:    "New connection request",
		Body:     s.displayNameOf(ctx, actor.UserID) + " wants to connect",
		Link:     "/profile/" + actor.UserID.String(),
		Metadata: map[string]string{"connection_id": conn.ConnectionID.String()},
	})
	s.enqueueConnectionUpdated(ctx, conn)
	s.completeIdempotency(ctx, actor, idempotencyKey, 201, conn)
	return conn, nil
}

func (s *Service) RemoveConnection(ctx context.Context, actor Actor, targetUserID string) error {
	targetID, err := uuid.Parse(strings.TrimSpace(targetUserID))
	if err != nil {
		return fmt.Errorf("%w: invalid target user id", domain.ErrInvalidInput)
	}
	conn, err := s.connections.GetBetween(ctx, actor.UserID, targetID)
	if err != nil {
		return err
	}
	if err := s.connections.Delete(ctx, conn.ConnectionID); err != nil {
		return err
	}
	if conn.State == domain.ConnectionStateAccepted {
		s.refreshConnectionCount(ctx, actor.UserID)
		s.refreshConnectionCount(ctx, targetID)
	}
	conn.State = connectionStateRemoved
	s.enqueueConnectionUpdated(ctx, conn)
	return nil
}

const connectionStateRemoved domain.ConnectionState = "removed"

func (s *Service) AcceptConnection(ctx context.Context, actor Actor, connectionID string) (domain.Connection, error) {
	conn, err := s.respondableConnection(ctx, actor, connectionID)
	if err != nil {
		return domain.Connection{}, err
	}
	if err := conn.Accept(s.nowFn()); err != nil {
		return domain.Connection{}, err
	}
	if err := s.connections.Update(ctx, conn); err != nil {
		return domain.Connection{}, err
	}
	s.refreshConnectionCount(ctx, conn.RequesterID)
	s.refreshConnectionCount(ctx, conn.TargetID)
	s.notify(ctx, domain.Notification{
		UserID: conn.RequesterID,
		Type:   domain.NotificationConnectionAccepted,
		Title:  "Connection accepted",
		Body:   s.displayNameOf(ctx, conn.TargetID) + " accepted your request",
		Link:   "/profile/" + conn.TargetID.String(),
	})
	for _, participant := range []uuid.UUID{conn.RequesterID, conn.TargetID} {
		s.logIgnored(ctx, "record_connection_made", s.recordActivity(ctx, domain.ActivityItem{
			UserID:   participant,
			Type:     domain.ActivityConnectionMade,
			Title:    "Connected with " + s.displayNameOf(ctx, conn.Other(participant)),
			Link:     "/profile/" + conn.Other(participant).String(),
			Metadata: map[string]string{"connection_id": conn.ConnectionID.String()},
		}))
	}
	s.enqueueConnectionUpdated(ctx, conn)
	return conn, nil
}

func (s *Service) RejectConnection(ctx context.Context, actor Actor, connectionID string) (domain.Connection, error) {
	conn, err := s.respondableConnection(ctx, actor, connectionID)
	if err != nil {
		return domain.Connection{}, err
	}
	if err := conn.Reject(s.nowFn()); err != nil {
		return domain.Connection{}, err
	}
	if err := s.connections.Update(ctx, conn); err != nil {
		return domain.Connection{}, err
	}
	s.enqueueConnectionUpdated(ctx, conn)
	return conn, nil
}

// respondableConnection loads a request the actor received.
func (s *Service) respondableConnection(ctx context.Context, actor Actor, connectionID string) (domain.Connection, error) {
	id, err := uuid.Parse(strings.TrimSpace(connectionID))
	if err != nil {
		return domain.Connection{}, fmt.Errorf("%w: invalid connection id", domain.ErrInvalidInput)
	}
	conn, err := s.connections.GetByID(ctx, id)
	if err != nil {
		return domain.Connection{}, err
	}
	if conn.TargetID != actor.UserID {
		return domain.Connection{}, fmt.Errorf("%w: only the recipient can respond", domain.ErrForbidden)
	}
	return conn, nil
}

func (s *Service) displayNameOf(ctx context.Context, userID uuid.UUID) string {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil || profile.DisplayName == "" {
		return "Someone"
	}
	return profile.DisplayName
}
