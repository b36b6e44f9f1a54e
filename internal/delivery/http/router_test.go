package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsregistration/internal/delivery/http/controllers"
	"sportsregistration/internal/delivery/http/middleware"
	"sportsregistration/internal/domain"
)

const routerEventID = "7b1f2c2e-4a55-4c1e-9d8a-3f1c2b9e0a11"

// stubVerifier maps fixed tokens to principals.
type stubVerifier map[string]domain.Principal

func (v stubVerifier) Verify(token string) (domain.Principal, error) {
	p, ok := v[token]
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

type stubEventService struct{}

func (stubEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	event.ID = routerEventID
	return nil
}

func (stubEventService) UpdateEvent(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	return &domain.Event{ID: id}, nil
}

func (stubEventService) DeleteEvent(ctx context.Context, id string) error {
	return nil
}

func (stubEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return &domain.Event{ID: id}, nil
}

func (stubEventService) ListEvents(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	return []*domain.Event{}, 0, nil
}

func (stubEventService) ListEventsWithRegistrations(ctx context.Context) ([]*domain.Event, error) {
	return []*domain.Event{}, nil
}

type stubRegistrationService struct{}

func (stubRegistrationService) Register(ctx context.Context, eventID string, p domain.Principal, req domain.RegistrationRequest) (*domain.Registration, error) {
	return &domain.Registration{EventID: eventID, UserID: p.UserID}, nil
}

func (stubRegistrationService) ListRegisteredEvents(ctx context.Context, p domain.Principal) ([]*domain.Event, error) {
	return []*domain.Event{}, nil
}

func (stubRegistrationService) ListEventRegistrations(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return []*domain.Registration{}, nil
}

type stubAuthService struct{}

func (stubAuthService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	return &domain.User{Email: in.Email, Role: domain.RoleUser}, nil
}

func (stubAuthService) Login(ctx context.Context, role domain.Role, email, password string) (string, *domain.User, error) {
	return "token", &domain.User{Email: email, Role: role}, nil
}

func (stubAuthService) CreateAdmin(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	return &domain.User{Email: in.Email, Role: domain.RoleAdmin}, nil
}

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := stubVerifier{
		"user-token":  {UserID: "u1", Role: domain.RoleUser},
		"admin-token": {UserID: "a1", Role: domain.RoleAdmin},
	}
	return NewRouter(RouterDeps{
		Logger:                 logger,
		Verifier:               verifier,
		AuthController:         controllers.NewAuthController(logger, stubAuthService{}),
		EventController:        controllers.NewEventController(logger, stubEventService{}),
		RegistrationController: controllers.NewRegistrationController(logger, stubRegistrationService{}),
		LoginLimiter:           limiter,
		AllowedOrigins:         []string{"http://localhost:3000"},
	})
}

func TestRouter_access_control(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"healthz is public", http.MethodGet, "/healthz", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"browse requires auth", http.MethodGet, "/events", "", http.StatusUnauthorized},
		{"user browses events", http.MethodGet, "/events", "user-token", http.StatusOK},
		{"admin browses events", http.MethodGet, "/events", "admin-token", http.StatusOK},
		{"user gets event", http.MethodGet, "/events/" + routerEventID, "user-token", http.StatusOK},
		{"user registers", http.MethodPost, "/events/" + routerEventID + "/register", "user-token", http.StatusOK},
		{"admin registers", http.MethodPost, "/events/" + routerEventID + "/register", "admin-token", http.StatusOK},
		{"unknown token", http.MethodPost, "/events/" + routerEventID + "/register", "forged", http.StatusUnauthorized},
		{"user lists own events", http.MethodGet, "/user/registered-events", "user-token", http.StatusOK},
		{"registered events requires auth", http.MethodGet, "/user/registered-events", "", http.StatusUnauthorized},
		{"admin lists all events", http.MethodGet, "/admin/events", "admin-token", http.StatusOK},
		{"user cannot list admin events", http.MethodGet, "/admin/events", "user-token", http.StatusForbidden},
		{"admin deletes event", http.MethodDelete, "/admin/events/" + routerEventID, "admin-token", http.StatusOK},
		{"user cannot delete event", http.MethodDelete, "/admin/events/" + routerEventID, "user-token", http.StatusForbidden},
		{"admin lists registrations", http.MethodGet, "/admin/events/" + routerEventID + "/registrations", "admin-token", http.StatusOK},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_login_rate_limited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1)
	t.Cleanup(limiter.Stop)
	router := newTestRouter(t, limiter)

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login/user", strings.NewReader(`{"email":"a@b.co","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, login())
	assert.Equal(t, http.StatusTooManyRequests, login())
}

func TestRouter_signup_not_rate_limited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1)
	t.Cleanup(limiter.Stop)
	router := newTestRouter(t, limiter)

	body := `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"longenough"}`
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.8:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}
