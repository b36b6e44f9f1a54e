package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportsregistration/internal/domain"
	"sportsregistration/internal/sanitize"
)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	contextTimeout   time.Duration
}

// NewEventService creates an EventService. Each call is bounded by timeout.
func NewEventService(eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		contextTimeout:   timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.SportName = sanitize.Text(event.SportName)
	event.EventName = sanitize.Text(event.EventName)
	event.Prize = sanitize.TextPtr(event.Prize)
	event.AgeGroup = sanitize.TextPtr(event.AgeGroup)
	event.AdditionalNote = sanitize.TextPtr(event.AdditionalNote)
	if err := validateEvent(event); err != nil {
		return err
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Registrations = nil
	return s.eventRepo.Create(ctx, event)
}

func validateEvent(e *domain.Event) error {
	if e.SportName == "" {
		return fmt.Errorf("%w: sport_name is required", domain.ErrInvalidInput)
	}
	if e.EventName == "" {
		return fmt.Errorf("%w: event_name is required", domain.ErrInvalidInput)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if e.EntryFee != nil && *e.EntryFee < 0 {
		return fmt.Errorf("%w: entry_fee must not be negative", domain.ErrInvalidInput)
	}
	if e.ParticipantsPerTeam != nil && *e.ParticipantsPerTeam <= 0 {
		return fmt.Errorf("%w: participants_per_team must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// UpdateEvent applies u to the event. Team mode and team size are frozen once
// the event has registrations, so existing teams keep satisfying the rules.
func (s *eventService) UpdateEvent(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if u.SportName != nil {
		u.SportName = sanitize.TextPtr(u.SportName)
	}
	if u.EventName != nil {
		u.EventName = sanitize.TextPtr(u.EventName)
	}
	u.Prize = sanitize.TextPtr(u.Prize)
	u.AgeGroup = sanitize.TextPtr(u.AgeGroup)
	u.AdditionalNote = sanitize.TextPtr(u.AdditionalNote)

	merged := applyUpdate(*existing, u)
	if err := validateEvent(&merged); err != nil {
		return nil, err
	}

	if u.ChangesTeamRules(existing) {
		n, err := s.registrationRepo.CountByEventID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("count registrations: %w", err)
		}
		if n > 0 {
			return nil, domain.ErrRegistrationsExist
		}
	}

	updated, err := s.eventRepo.Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func applyUpdate(e domain.Event, u domain.EventUpdate) domain.Event {
	if u.SportName != nil {
		e.SportName = *u.SportName
	}
	if u.EventName != nil {
		e.EventName = *u.EventName
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.EntryFee != nil {
		e.EntryFee = u.EntryFee
	}
	if u.Prize != nil {
		e.Prize = u.Prize
	}
	if u.AgeGroup != nil {
		e.AgeGroup = u.AgeGroup
	}
	if u.AdditionalNote != nil {
		e.AdditionalNote = u.AdditionalNote
	}
	if u.IsTeamBased != nil {
		e.IsTeamBased = *u.IsTeamBased
	}
	if u.ParticipantsPerTeam != nil {
		e.ParticipantsPerTeam = u.ParticipantsPerTeam
	}
	return e
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, fmt.Errorf("%w: from must not be after to", domain.ErrInvalidInput)
	}
	events, total, err := s.eventRepo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

// ListEventsWithRegistrations returns every event with its registrations embedded.
func (s *eventService) ListEventsWithRegistrations(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	byEvent, err := s.registrationRepo.ListByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	for _, e := range events {
		e.Registrations = byEvent[e.ID]
	}
	return events, nil
}
