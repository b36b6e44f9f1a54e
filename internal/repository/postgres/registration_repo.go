package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sportsregistration/internal/domain"
)

const registrationColumns = `id, event_id, user_id, team_name, team_members, created_at`

type registrationRepository struct {
	DB *sql.DB
}

// NewRegistrationRepository returns a domain.RegistrationRepository implemented with Postgres.
func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Create is a single conditional write: the row is inserted only when the event
// still has the validated team rules and no registration exists for the user.
func (r *registrationRepository) Create(ctx context.Context, validated *domain.Event, reg *domain.Registration) error {
	query := `
		INSERT INTO event_registrations (event_id, user_id, team_name, team_members, created_at)
		SELECT e.id, $2, $3, $4, $5
		FROM events e
		WHERE e.id = $1
		  AND e.is_team_based = $6
		  AND e.participants_per_team IS NOT DISTINCT FROM $7
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id
	`
	members := reg.TeamMembers
	if members == nil {
		members = []string{}
	}
	err := r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, nullableString(reg.TeamName), pq.Array(members), reg.CreatedAt,
		validated.IsTeamBased, nullableInt(validated.ParticipantsPerTeam),
	).Scan(&reg.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqUniqueViolation:
				return domain.ErrAlreadyRegistered
			case pqForeignKeyViolation:
				return fmt.Errorf("user %s: %w", reg.UserID, domain.ErrNotFound)
			}
		}
		return translateError(err)
	}
	return r.explainSkippedInsert(ctx, reg)
}

// explainSkippedInsert determines why the conditional insert wrote nothing.
func (r *registrationRepository) explainSkippedInsert(ctx context.Context, reg *domain.Registration) error {
	_, err := r.GetByEventAndUser(ctx, reg.EventID, reg.UserID)
	if err == nil {
		return domain.ErrAlreadyRegistered
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, reg.EventID).Scan(&exists); err != nil {
		return translateError(err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: event team rules changed during registration", domain.ErrConflict)
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = $1 AND user_id = $2`
	return scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = $1 ORDER BY seq ASC`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return regs, nil
}

func (r *registrationRepository) ListByEventIDs(ctx context.Context, eventIDs []string) (map[string][]*domain.Registration, error) {
	byEvent := make(map[string][]*domain.Registration, len(eventIDs))
	if len(eventIDs) == 0 {
		return byEvent, nil
	}
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = ANY($1) ORDER BY seq ASC`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		byEvent[reg.EventID] = append(byEvent[reg.EventID], reg)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return byEvent, nil
}

func (r *registrationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, eventID).Scan(&n)
	if err != nil {
		return 0, translateError(err)
	}
	return n, nil
}

func (r *registrationRepository) ListEventsByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumnsAs("e") + `
		FROM event_registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.seq ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var teamName sql.NullString
	var members pq.StringArray
	if err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &teamName, &members, &reg.CreatedAt); err != nil {
		return nil, translateError(err)
	}
	if teamName.Valid {
		reg.TeamName = &teamName.String
	}
	if len(members) > 0 {
		reg.TeamMembers = []string(members)
	}
	return reg, nil
}
