package domain

import (
	"context"
	"time"
)

// Event is a sports competition users can register for.
// swagger:model Event
type Event struct {
	ID                  string          `json:"id"`
	SportName           string          `json:"sport_name"`
	EventName           string          `json:"event_name"`
	Date                time.Time       `json:"date"`
	EntryFee            *float64        `json:"entry_fee,omitempty"`
	Prize               *string         `json:"prize,omitempty"`
	AgeGroup            *string         `json:"age_group,omitempty"`
	AdditionalNote      *string         `json:"additional_note,omitempty"`
	IsTeamBased         bool            `json:"is_team_based"`
	ParticipantsPerTeam *int            `json:"participants_per_team,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Registrations       []*Registration `json:"registrations,omitempty"`
}

// NewEvent returns a new Event with the given required fields. ID is set by the repository on create.
func NewEvent(sportName, eventName string, date, createdAt, updatedAt time.Time) *Event {
	return &Event{
		SportName: sportName,
		EventName: eventName,
		Date:      date,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// RequiresTeamSize reports whether the event enforces an exact member count.
func (e *Event) RequiresTeamSize() bool {
	return e.IsTeamBased && e.ParticipantsPerTeam != nil && *e.ParticipantsPerTeam > 0
}

// EventUpdate holds a partial event update. Nil fields are left unchanged.
type EventUpdate struct {
	SportName           *string
	EventName           *string
	Date                *time.Time
	EntryFee            *float64
	Prize               *string
	AgeGroup            *string
	AdditionalNote      *string
	IsTeamBased         *bool
	ParticipantsPerTeam *int
}

// ChangesTeamRules reports whether applying u to e would alter team mode or team size.
func (u EventUpdate) ChangesTeamRules(e *Event) bool {
	if u.IsTeamBased != nil && *u.IsTeamBased != e.IsTeamBased {
		return true
	}
	if u.ParticipantsPerTeam != nil {
		if e.ParticipantsPerTeam == nil || *e.ParticipantsPerTeam != *u.ParticipantsPerTeam {
			return true
		}
	}
	return false
}

// Empty reports whether the update carries no fields.
func (u EventUpdate) Empty() bool {
	return u.SportName == nil && u.EventName == nil && u.Date == nil && u.EntryFee == nil &&
		u.Prize == nil && u.AgeGroup == nil && u.AdditionalNote == nil &&
		u.IsTeamBased == nil && u.ParticipantsPerTeam == nil
}

// EventFilter narrows event listings. Zero values mean "no constraint".
type EventFilter struct {
	Sport     string
	Query     string
	TeamBased *bool
	From      *time.Time
	To        *time.Time
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, page PaginationParams) ([]*Event, int, error)
	ListAll(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, id string, u EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines event lifecycle and browsing operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	UpdateEvent(ctx context.Context, id string, u EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, page PaginationParams) ([]*Event, int, error)
	ListEventsWithRegistrations(ctx context.Context) ([]*Event, error)
}
