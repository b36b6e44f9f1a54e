package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"sportsregistration/internal/delivery/http/helpers"
	"sportsregistration/internal/delivery/http/middleware"
	"sportsregistration/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testEventID = "7b1f2c2e-4a55-4c1e-9d8a-3f1c2b9e0a11"

var (
	testUser  = domain.Principal{UserID: "0d6c8d8e-1111-4222-8333-944455556666", Role: domain.RoleUser}
	testAdmin = domain.Principal{UserID: "0d6c8d8e-aaaa-4bbb-8ccc-9ddddeeeefff", Role: domain.RoleAdmin}
)

// serve routes req through a chi router so URL parameters resolve as in production.
func serve(t *testing.T, method, pattern string, handler http.HandlerFunc, req *http.Request, p *domain.Principal) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)
	if p != nil {
		req = req.WithContext(middleware.SetPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	if dest != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return raw.Error
}

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	registerErr     error
	registerResult  *domain.Registration
	listErr         error
	listResult      []*domain.Event
	listRegsErr     error
	listRegsResult  []*domain.Registration
	lastEventID     string
	lastPrincipal   domain.Principal
	lastRequest     domain.RegistrationRequest
	lastListEventID string
}

func (f *fakeRegistrationService) Register(ctx context.Context, eventID string, p domain.Principal, req domain.RegistrationRequest) (*domain.Registration, error) {
	f.lastEventID = eventID
	f.lastPrincipal = p
	f.lastRequest = req
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerResult, nil
}

func (f *fakeRegistrationService) ListRegisteredEvents(ctx context.Context, p domain.Principal) ([]*domain.Event, error) {
	f.lastPrincipal = p
	return f.listResult, f.listErr
}

func (f *fakeRegistrationService) ListEventRegistrations(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	f.lastListEventID = eventID
	return f.listRegsResult, f.listRegsErr
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createErr     error
	updateErr     error
	updateResult  *domain.Event
	deleteErr     error
	getErr        error
	getResult     *domain.Event
	listErr       error
	listResult    []*domain.Event
	listTotal     int
	listAllResult []*domain.Event
	listAllErr    error
	lastCreate    *domain.Event
	lastUpdateID  string
	lastUpdate    domain.EventUpdate
	lastDeleteID  string
	lastFilter    domain.EventFilter
	lastPage      domain.PaginationParams
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	f.lastCreate = event
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = testEventID
	return nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	f.lastUpdateID = id
	f.lastUpdate = u
	return f.updateResult, f.updateErr
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id string) error {
	f.lastDeleteID = id
	return f.deleteErr
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return f.getResult, f.getErr
}

func (f *fakeEventService) ListEvents(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastFilter = filter
	f.lastPage = page
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeEventService) ListEventsWithRegistrations(ctx context.Context) ([]*domain.Event, error) {
	return f.listAllResult, f.listAllErr
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpErr  error
	loginErr   error
	lastSignUp domain.SignUpInput
	lastRole   domain.Role
	lastEmail  string
}

func (f *fakeAuthService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	f.lastSignUp = in
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.User{ID: testUser.UserID, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Role: domain.RoleUser, PasswordHash: "secret-hash"}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, role domain.Role, email, password string) (string, *domain.User, error) {
	f.lastRole = role
	f.lastEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "signed-token", &domain.User{ID: testUser.UserID, Email: email, Role: role}, nil
}

func (f *fakeAuthService) CreateAdmin(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	return &domain.User{ID: testAdmin.UserID, Email: in.Email, Role: domain.RoleAdmin}, nil
}
