package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConnectionState is the stored state of a connection request.
type ConnectionState string

const (
	ConnectionStatePending  ConnectionState = "pending"
	ConnectionStateAccepted ConnectionState = "accepted"
	ConnectionStateRejected ConnectionState = "rejected"
)

// ConnectionStatus is the state of a connection as seen by one participant.
type ConnectionStatus string

const (
	ConnectionStatusNone      ConnectionStatus = "none"
	ConnectionStatusPending   ConnectionStatus = "pending"
	ConnectionStatusRequested ConnectionStatus = "requested"
	ConnectionStatusConnected ConnectionStatus = "connected"
)

type Connection struct {
	ConnectionID uuid.UUID       `json:"id"`
	RequesterID  uuid.UUID       `json:"requesterId"`
	TargetID     uuid.UUID       `json:"targetId"`
	State        ConnectionState `json:"state"`
	Message      string          `json:"message,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	RespondedAt  *time.Time      `json:"respondedAt,omitempty"`
}

// StatusFor reports the connection from viewer's side: pending when the
// viewer sent a request that is still open, requested when the other side
// did.
func (c Connection) StatusFor(viewer uuid.UUID) ConnectionStatus {
	if viewer != c.RequesterID && viewer != c.TargetID {
		return ConnectionStatusNone
	}
	switch c.State {
	case ConnectionStateAccepted:
		return ConnectionStatusConnected
	case ConnectionStatePending:
		if viewer == c.RequesterID {
			return ConnectionStatusPending
		}
		return ConnectionStatusRequested
	default:
		return ConnectionStatusNone
	}
}

// Other returns the participant that is not userID.
func (c Connection) Other(userID uuid.UUID) uuid.UUID {
	if c.RequesterID == userID {
		return c.TargetID
	}
	return c.RequesterID
}

func (c *Connection) Accept(at time.Time) error {
	if c.State != ConnectionStatePending {
		return fmt.Errorf("%w: connection request is %s", ErrConflict, c.State)
	}
	t := at.UTC()
	c.State = ConnectionStateAccepted
	c.RespondedAt = &t
	return nil
}

func (c *Connection) Reject(at time.Time) error {
	if c.State != ConnectionStatePending {
		return fmt.Errorf("%w: connection request is %s", ErrConflict, c.State)
	}
	t := at.UTC()
	c.State = ConnectionStateRejected
	c.RespondedAt = &t
	return nil
}
