package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsregistration/internal/domain"
)

type signupCounter struct{ roles []string }

func (c *signupCounter) ObserveSignup(role string) { c.roles = append(c.roles, role) }

func validSignUp() domain.SignUpInput {
	age := 29
	return domain.SignUpInput{
		FirstName: " Ana ",
		LastName:  "Lopez",
		Age:       &age,
		Email:     "Ana@Example.com ",
		Password:  "s3cretpass",
	}
}

func TestAuthService_SignUp(t *testing.T) {
	users := newFakeUserRepo()
	mail := &fakeEmailService{}
	counter := &signupCounter{}
	svc := NewAuthService(users, &fakePasswordHasher{}, &fakeTokenIssuer{}, mail, counter, discardLogger(), testTimeout)

	u, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Ana", u.FirstName)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, "salt", u.Salt)
	assert.Equal(t, "hash-salt-s3cretpass", u.PasswordHash)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ana@example.com", mail.sent[0].Email)
	assert.Equal(t, []string{"user"}, counter.roles)

	_, err = svc.SignUp(context.Background(), validSignUp())
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestAuthService_SignUp_validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *domain.SignUpInput)
	}{
		{name: "bad email", mutate: func(in *domain.SignUpInput) { in.Email = "not-an-email" }},
		{name: "short password", mutate: func(in *domain.SignUpInput) { in.Password = "short" }},
		{name: "missing last name", mutate: func(in *domain.SignUpInput) { in.LastName = " " }},
		{name: "negative age", mutate: func(in *domain.SignUpInput) { age := -3; in.Age = &age }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepo()
			svc := NewAuthService(users, &fakePasswordHasher{}, &fakeTokenIssuer{}, nil, nil, discardLogger(), testTimeout)
			in := validSignUp()
			tt.mutate(&in)
			_, err := svc.SignUp(context.Background(), in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, users.byID)
		})
	}
}

func TestAuthService_SignUp_email_failure_is_not_fatal(t *testing.T) {
	mail := &fakeEmailService{err: errors.New("smtp down")}
	svc := NewAuthService(newFakeUserRepo(), &fakePasswordHasher{}, &fakeTokenIssuer{}, mail, nil, discardLogger(), testTimeout)

	u, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	assert.NotNil(t, u)
}

func TestAuthService_Login(t *testing.T) {
	users := newFakeUserRepo()
	issuer := &fakeTokenIssuer{}
	svc := NewAuthService(users, &fakePasswordHasher{}, issuer, nil, nil, discardLogger(), testTimeout)
	_, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	adminIn := validSignUp()
	adminIn.Email = "boss@example.com"
	admin, err := svc.CreateAdmin(context.Background(), adminIn)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	tests := []struct {
		name     string
		role     domain.Role
		email    string
		password string
		wantErr  error
	}{
		{name: "user", role: domain.RoleUser, email: "ANA@example.com", password: "s3cretpass"},
		{name: "admin", role: domain.RoleAdmin, email: "boss@example.com", password: "s3cretpass"},
		{name: "wrong password", role: domain.RoleUser, email: "ana@example.com", password: "nope-nope", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown email", role: domain.RoleUser, email: "who@example.com", password: "s3cretpass", wantErr: domain.ErrInvalidCredentials},
		{name: "user on admin login", role: domain.RoleAdmin, email: "ana@example.com", password: "s3cretpass", wantErr: domain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, u, err := svc.Login(context.Background(), tt.role, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "token-"+u.ID, token)
			assert.Equal(t, tt.role, u.Role)
		})
	}
}

func TestAuthService_Login_store_failure(t *testing.T) {
	users := newFakeUserRepo()
	users.getErr = domain.ErrStoreUnavailable
	svc := NewAuthService(users, &fakePasswordHasher{}, &fakeTokenIssuer{}, nil, nil, discardLogger(), testTimeout)

	_, _, err := svc.Login(context.Background(), domain.RoleUser, "ana@example.com", "s3cretpass")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_calls_are_bounded_by_timeout(t *testing.T) {
	users := &deadlineUserRepo{fakeUserRepo: newFakeUserRepo()}
	svc := NewAuthService(users, &fakePasswordHasher{}, &fakeTokenIssuer{}, nil, nil, discardLogger(), time.Minute)
	in := validSignUp()

	start := time.Now()
	_, err := svc.SignUp(context.Background(), in)
	require.NoError(t, err)
	_, _, err = svc.Login(context.Background(), domain.RoleUser, in.Email, in.Password)
	require.NoError(t, err)

	require.Len(t, users.deadlines, 2)
	for _, d := range users.deadlines {
		require.False(t, d.IsZero(), "store call ran without a deadline")
		assert.WithinDuration(t, start.Add(time.Minute), d, 5*time.Second)
	}
}
