package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services, repositories and the HTTP layer.
var (
	ErrNotFound               = errors.New("not found")
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrConflict               = errors.New("conflict")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrAlreadyRegistered      = errors.New("user is already registered for this event")
	ErrInvalidTeamComposition = errors.New("team name and members are required for team-based events, and the team size must match the event requirements")

	// ErrDuplicateEmail and ErrRegistrationsExist satisfy errors.Is(err, ErrConflict).
	ErrDuplicateEmail     = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrRegistrationsExist = fmt.Errorf("%w: event already has registrations", ErrConflict)
)
