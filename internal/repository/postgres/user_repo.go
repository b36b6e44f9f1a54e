package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"sportsregistration/internal/domain"
)

const userColumns = `id, first_name, last_name, age, email, phone_number, password_hash, salt, role, created_at, updated_at`

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a domain.UserRepository implemented with Postgres.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (first_name, last_name, age, email, phone_number, password_hash, salt, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.FirstName, u.LastName, nullableInt(u.Age), u.Email, nullableString(u.PhoneNumber),
		u.PasswordHash, u.Salt, string(u.Role), u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return translateError(err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var age sql.NullInt64
	var phone sql.NullString
	var role string
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &age, &u.Email, &phone,
		&u.PasswordHash, &u.Salt, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	if age.Valid {
		v := int(age.Int64)
		u.Age = &v
	}
	if phone.Valid {
		u.PhoneNumber = &phone.String
	}
	u.Role = domain.Role(role)
	return u, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
