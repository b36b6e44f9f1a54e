package domain

import (
	"context"
	"time"
)

// Registration links one user to one event, optionally carrying team metadata.
// swagger:model Registration
type Registration struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	TeamName    *string   `json:"team_name,omitempty"`
	TeamMembers []string  `json:"team_members,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRegistration creates a Registration for an individual entry. ID is set by the repository on create.
func NewRegistration(eventID, userID string, createdAt time.Time) *Registration {
	return &Registration{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// RegistrationRequest is the optional team payload supplied when registering.
type RegistrationRequest struct {
	TeamName    *string
	TeamMembers []string
}

// RegistrationRepository defines storage operations for event registrations.
type RegistrationRepository interface {
	// Create inserts reg unless the user is already registered for the event, in which
	// case it returns ErrAlreadyRegistered. The row is written only if the stored event
	// still carries the team rules reg was validated against; if they changed it returns
	// ErrConflict, and ErrNotFound if the event is gone.
	Create(ctx context.Context, validated *Event, reg *Registration) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	ListByEventIDs(ctx context.Context, eventIDs []string) (map[string][]*Registration, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	// ListEventsByUserID returns the user's events in registration order.
	ListEventsByUserID(ctx context.Context, userID string) ([]*Event, error)
}

// RegistrationService defines the registration workflow.
type RegistrationService interface {
	Register(ctx context.Context, eventID string, p Principal, req RegistrationRequest) (*Registration, error)
	ListRegisteredEvents(ctx context.Context, p Principal) ([]*Event, error)
	ListEventRegistrations(ctx context.Context, eventID string) ([]*Registration, error)
}
