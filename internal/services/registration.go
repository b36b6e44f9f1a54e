package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"sportsregistration/internal/domain"
	"sportsregistration/internal/metrics"
	"sportsregistration/internal/sanitize"
)

// RegistrationObserver receives the outcome of every registration attempt.
type RegistrationObserver interface {
	ObserveRegistration(outcome string)
}

type registrationService struct {
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	registrationRepo domain.RegistrationRepository
	observer         RegistrationObserver
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewRegistrationService creates a RegistrationService with the given repositories.
// A nil observer disables outcome reporting. Each call is bounded by timeout.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	registrationRepo domain.RegistrationRepository,
	observer RegistrationObserver,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		observer:         observer,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID string, p domain.Principal, req domain.RegistrationRequest) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.register(ctx, eventID, p, req)
	s.observe(err)
	return reg, err
}

func (s *registrationService) register(ctx context.Context, eventID string, p domain.Principal, req domain.RegistrationRequest) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if _, err := s.userRepo.GetByID(ctx, p.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", p.UserID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, p.UserID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	reg := domain.NewRegistration(eventID, p.UserID, s.now())
	if event.IsTeamBased {
		teamName, members, err := validateTeam(event, req)
		if err != nil {
			return nil, err
		}
		reg.TeamName = &teamName
		reg.TeamMembers = members
	}

	if err := s.registrationRepo.Create(ctx, event, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	return reg, nil
}

// Team submission limits, applied only to team-based events.
const (
	maxTeamMembers = 50
	maxTeamNameLen = 100
)

// validateTeam checks a team submission against the event's rules and
// returns the normalized team name and members.
func validateTeam(event *domain.Event, req domain.RegistrationRequest) (string, []string, error) {
	var teamName string
	if req.TeamName != nil {
		teamName = sanitize.Text(*req.TeamName)
	}
	if teamName == "" {
		return "", nil, fmt.Errorf("%w: team name is required", domain.ErrInvalidTeamComposition)
	}
	if utf8.RuneCountInString(teamName) > maxTeamNameLen {
		return "", nil, fmt.Errorf("%w: team name exceeds %d characters", domain.ErrInvalidTeamComposition, maxTeamNameLen)
	}
	if len(req.TeamMembers) == 0 {
		return "", nil, fmt.Errorf("%w: team members are required", domain.ErrInvalidTeamComposition)
	}
	if len(req.TeamMembers) > maxTeamMembers {
		return "", nil, fmt.Errorf("%w: at most %d team members allowed, got %d",
			domain.ErrInvalidTeamComposition, maxTeamMembers, len(req.TeamMembers))
	}
	members := make([]string, len(req.TeamMembers))
	for i, m := range req.TeamMembers {
		members[i] = sanitize.Text(m)
		if members[i] == "" {
			return "", nil, fmt.Errorf("%w: team member %d has no name", domain.ErrInvalidTeamComposition, i+1)
		}
		if utf8.RuneCountInString(members[i]) > maxTeamNameLen {
			return "", nil, fmt.Errorf("%w: team member %d exceeds %d characters",
				domain.ErrInvalidTeamComposition, i+1, maxTeamNameLen)
		}
	}
	if event.RequiresTeamSize() && len(members) != *event.ParticipantsPerTeam {
		return "", nil, fmt.Errorf("%w: team must have exactly %d members, got %d",
			domain.ErrInvalidTeamComposition, *event.ParticipantsPerTeam, len(members))
	}
	return teamName, members, nil
}

func (s *registrationService) observe(err error) {
	if s.observer == nil {
		return
	}
	var outcome string
	switch {
	case err == nil:
		outcome = metrics.OutcomeRegistered
	case errors.Is(err, domain.ErrAlreadyRegistered):
		outcome = metrics.OutcomeAlreadyRegistered
	case errors.Is(err, domain.ErrInvalidTeamComposition):
		outcome = metrics.OutcomeInvalidTeam
	case errors.Is(err, domain.ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrConflict):
		outcome = metrics.OutcomeConflict
	default:
		outcome = metrics.OutcomeError
	}
	s.observer.ObserveRegistration(outcome)
}

func (s *registrationService) ListRegisteredEvents(ctx context.Context, p domain.Principal) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, p.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", p.UserID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	events, err := s.registrationRepo.ListEventsByUserID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *registrationService) ListEventRegistrations(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}
