package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sportsregistration/internal/domain"
)

const eventColumns = `id, sport_name, event_name, date, entry_fee, prize, age_group, additional_note, is_team_based, participants_per_team, created_at, updated_at`

// eventColumnsAs prefixes every event column with the given table alias.
func eventColumnsAs(alias string) string {
	cols := strings.Split(eventColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (sport_name, event_name, date, entry_fee, prize, age_group, additional_note, is_team_based, participants_per_team, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.SportName, e.EventName, e.Date, nullableFloat(e.EntryFee), nullableString(e.Prize),
		nullableString(e.AgeGroup), nullableString(e.AdditionalNote), e.IsTeamBased,
		nullableInt(e.ParticipantsPerTeam), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return translateError(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	where, args := buildEventFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM events` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translateError(err)
	}

	n := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY date ASC, created_at ASC LIMIT $%d OFFSET $%d`,
		eventColumns, where, n, n+1)
	args = append(args, page.Limit(), page.Offset())
	events, err := r.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, created_at ASC`
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) Update(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if u.SportName != nil {
		set("sport_name", *u.SportName)
	}
	if u.EventName != nil {
		set("event_name", *u.EventName)
	}
	if u.Date != nil {
		set("date", *u.Date)
	}
	if u.EntryFee != nil {
		set("entry_fee", *u.EntryFee)
	}
	if u.Prize != nil {
		set("prize", *u.Prize)
	}
	if u.AgeGroup != nil {
		set("age_group", *u.AgeGroup)
	}
	if u.AdditionalNote != nil {
		set("additional_note", *u.AdditionalNote)
	}
	if u.IsTeamBased != nil {
		set("is_team_based", *u.IsTeamBased)
	}
	if u.ParticipantsPerTeam != nil {
		set("participants_per_team", *u.ParticipantsPerTeam)
	}
	if n == 1 {
		// nothing to change; return the current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	return scanEvent(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return checkAffectedRows(result)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return events, nil
}

func buildEventFilter(f domain.EventFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(format string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}
	if f.Sport != "" {
		add("LOWER(sport_name) = LOWER($%d)", f.Sport)
	}
	if f.Query != "" {
		add("(event_name ILIKE $%[1]d OR sport_name ILIKE $%[1]d)", "%"+escapeLike(f.Query)+"%")
	}
	if f.TeamBased != nil {
		add("is_team_based = $%d", *f.TeamBased)
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date <= $%d", *f.To)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var entryFee sql.NullFloat64
	var prize, ageGroup, note sql.NullString
	var perTeam sql.NullInt64
	err := row.Scan(
		&e.ID, &e.SportName, &e.EventName, &e.Date, &entryFee, &prize, &ageGroup, &note,
		&e.IsTeamBased, &perTeam, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	if entryFee.Valid {
		e.EntryFee = &entryFee.Float64
	}
	if prize.Valid {
		e.Prize = &prize.String
	}
	if ageGroup.Valid {
		e.AgeGroup = &ageGroup.String
	}
	if note.Valid {
		e.AdditionalNote = &note.String
	}
	if perTeam.Valid {
		v := int(perTeam.Int64)
		e.ParticipantsPerTeam = &v
	}
	return e, nil
}
