package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"sportsregistration/internal/domain"
)

const testTimeout = 5 * time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// deadlineUserRepo records whether lookups ran under a context deadline.
type deadlineUserRepo struct {
	*fakeUserRepo
	mu        sync.Mutex
	deadlines []time.Time
}

func (r *deadlineUserRepo) record(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, _ := ctx.Deadline()
	r.deadlines = append(r.deadlines, d)
}

func (r *deadlineUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.record(ctx)
	return r.fakeUserRepo.Create(ctx, u)
}

func (r *deadlineUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.record(ctx)
	return r.fakeUserRepo.GetByID(ctx, id)
}

func (r *deadlineUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.record(ctx)
	return r.fakeUserRepo.GetByEmail(ctx, email)
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, every call returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	all, err := f.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	var matched []*domain.Event
	for _, e := range all {
		if filter.Sport != "" && !strings.EqualFold(e.SportName, filter.Sport) {
			continue
		}
		if filter.TeamBased != nil && e.IsTeamBased != *filter.TeamBased {
			continue
		}
		matched = append(matched, e)
	}
	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.Limit(), total)
	return matched[start:end], total, nil
}

func (f *fakeEventRepo) ListAll(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	updated := applyUpdate(*e, u)
	f.byID[id] = &updated
	cp := updated
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	nextID    int
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		nextID:  1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
		f.nextID++
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// fakeRegistrationRepo is an in-memory RegistrationRepository whose Create
// behaves like the conditional insert: at most one row per (event, user), and
// nothing is written when the event's team rules no longer match.
type fakeRegistrationRepo struct {
	mu        sync.Mutex
	events    *fakeEventRepo
	rows      []*domain.Registration
	nextID    int
	createErr error
	listErr   error
}

func newFakeRegistrationRepo(events *fakeEventRepo) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{events: events, nextID: 1}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, validated *domain.Event, reg *domain.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.EventID == reg.EventID && r.UserID == reg.UserID {
			return domain.ErrAlreadyRegistered
		}
	}
	current, err := f.events.GetByID(ctx, reg.EventID)
	if err != nil {
		return err
	}
	if current.IsTeamBased != validated.IsTeamBased || !sameSize(current.ParticipantsPerTeam, validated.ParticipantsPerTeam) {
		return fmt.Errorf("%w: event team rules changed during registration", domain.ErrConflict)
	}
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	cp := *reg
	f.rows = append(f.rows, &cp)
	return nil
}

func sameSize(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.EventID == eventID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Registration
	for _, r := range f.rows {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListByEventIDs(ctx context.Context, eventIDs []string) (map[string][]*domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make(map[string][]*domain.Registration)
	for _, id := range eventIDs {
		regs, _ := f.ListByEventID(ctx, id)
		if len(regs) > 0 {
			out[id] = regs
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	regs, err := f.ListByEventID(ctx, eventID)
	return len(regs), err
}

// ListEventsByUserID joins through the rows in insertion order, skipping deleted events.
func (f *fakeRegistrationRepo) ListEventsByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	rows := append([]*domain.Registration(nil), f.rows...)
	f.mu.Unlock()

	var out []*domain.Event
	for _, r := range rows {
		if r.UserID != userID {
			continue
		}
		e, err := f.events.GetByID(ctx, r.EventID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	saltErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}

func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err    error
	issued []domain.Principal
}

func (f *fakeTokenIssuer) Issue(p domain.Principal) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = append(f.issued, p)
	return "token-" + p.UserID, nil
}

// fakeEmailService records welcome messages.
type fakeEmailService struct {
	err  error
	sent []*domain.WelcomeMessageEmailData
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

// outcomeRecorder collects observed registration outcomes.
type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) ObserveRegistration(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}
