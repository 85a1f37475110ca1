package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"partyhaus/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	createErr error
	updateErr error
	nextID    int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.byID[u.ID] = u
	return nil
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
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Event
	createErr error
	deleted   []string
	nextID    int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) put(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByHostID(ctx context.Context, hostID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.byID {
		if e.HostID == hostID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Name != nil {
		e.Name = *upd.Name
	}
	if upd.StartTime != nil {
		e.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		e.EndTime = *upd.EndTime
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.PlaylistURL != nil {
		e.PlaylistURL = upd.PlaylistURL
	}
	if upd.IsPublic != nil {
		e.IsPublic = *upd.IsPublic
	}
	return e, nil
}

func (f *fakeEventRepo) SetInviteImageURL(ctx context.Context, eventID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.InviteImageURL = &url
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeGuestRepo implements domain.GuestRepository for tests.
type fakeGuestRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Guest
	createErr error
	nextID    int
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{byID: make(map[string]*domain.Guest)}
}

func (f *fakeGuestRepo) put(g *domain.Guest) *domain.Guest {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[g.ID] = g
	return g
}

func (f *fakeGuestRepo) Create(ctx context.Context, g *domain.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	g.ID = fmt.Sprintf("guest-%d", f.nextID)
	f.byID[g.ID] = g
	return nil
}

func (f *fakeGuestRepo) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.byID[id]; ok {
		return g, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGuestRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.byID {
		if g.EventID == eventID && g.Email == email {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGuestRepo) GetByCheckInToken(ctx context.Context, token string) (*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.byID {
		if g.CheckInToken == token {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGuestRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Guest
	for _, g := range f.byID {
		if g.EventID == eventID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGuestRepo) Update(ctx context.Context, guestID string, upd domain.GuestUpdate) (*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.byID[guestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Name != nil {
		g.Name = *upd.Name
	}
	if upd.Email != nil {
		g.Email = *upd.Email
	}
	return g, nil
}

func (f *fakeGuestRepo) SetCheckedIn(ctx context.Context, guestID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.byID[guestID]
	if !ok {
		return domain.ErrNotFound
	}
	g.IsCheckedIn = true
	g.CheckedInAt = &at
	return nil
}

// fakeEmailLogRepo implements domain.EmailLogRepository for tests.
type fakeEmailLogRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.EmailLog
	nextID int
}

func newFakeEmailLogRepo() *fakeEmailLogRepo {
	return &fakeEmailLogRepo{byID: make(map[string]*domain.EmailLog)}
}

func (f *fakeEmailLogRepo) Create(ctx context.Context, l *domain.EmailLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = fmt.Sprintf("log-%d", f.nextID)
	f.byID[l.ID] = l
	return nil
}

func (f *fakeEmailLogRepo) GetByID(ctx context.Context, id string) (*domain.EmailLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.byID[id]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEmailLogRepo) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.EmailLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.byID {
		if l.ProviderMessageID != nil && *l.ProviderMessageID == providerMessageID {
			return l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEmailLogRepo) UpdateStatus(ctx context.Context, id string, upd domain.EmailStatusUpdate) (*domain.EmailLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	l.Status = upd.Status
	l.UpdatedAt = upd.At
	if upd.ProviderMessageID != nil {
		l.ProviderMessageID = upd.ProviderMessageID
	}
	if upd.ErrorText != nil {
		l.ErrorText = upd.ErrorText
	}
	switch upd.Status {
	case domain.EmailStatusSent:
		at := upd.At
		l.SentAt = &at
	case domain.EmailStatusDelivered:
		at := upd.At
		l.DeliveredAt = &at
	case domain.EmailStatusOpened:
		at := upd.At
		l.OpenedAt = &at
	case domain.EmailStatusClicked:
		at := upd.At
		l.ClickedAt = &at
	}
	return l, nil
}

func (f *fakeEmailLogRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.EmailLog, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*domain.EmailLog
	for _, l := range f.byID {
		if l.EventID == eventID {
			all = append(all, l)
		}
	}
	total := len(all)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeEmailLogRepo) LatestByGuestID(ctx context.Context, guestID string) (*domain.EmailLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.EmailLog
	for _, l := range f.byID {
		if l.GuestID != guestID {
			continue
		}
		if latest == nil || l.CreatedAt.After(latest.CreatedAt) {
			latest = l
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (f *fakeEmailLogRepo) CountByStatus(ctx context.Context, eventID string) (map[domain.EmailStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.EmailStatus]int)
	for _, l := range f.byID {
		if l.EventID == eventID {
			counts[l.Status]++
		}
	}
	return counts, nil
}

// fakeMailer implements domain.Mailer for tests.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []string // recipient addresses in send order
	err    error
	nextID int
}

func (f *fakeMailer) Send(to, subject, html, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.nextID++
	f.sent = append(f.sent, to)
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

// fakeRenderer implements domain.EmailTemplateRenderer for tests.
type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject-" + templateName, "<p>" + templateName + "</p>", templateName, nil
}

// fakeObjectStore implements domain.ObjectStore for tests.
type fakeObjectStore struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	uploadErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploads: make(map[string][]byte)}
}

func (f *fakeObjectStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads[key] = body
	return "https://cdn.test/" + key, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploads, key)
	return nil
}

// fakeEmailDispatch records SendGuestEmail calls on a channel so tests can
// wait for the background invitation send.
type fakeEmailDispatch struct {
	calls chan string // guest ids
	err   error
}

func newFakeEmailDispatch() *fakeEmailDispatch {
	return &fakeEmailDispatch{calls: make(chan string, 8)}
}

func (f *fakeEmailDispatch) SendGuestEmail(ctx context.Context, eventID, guestID string, msgType domain.EmailMessageType) (*domain.EmailLog, error) {
	f.calls <- guestID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EmailLog{ID: "log-1", EventID: eventID, GuestID: guestID, MessageType: msgType, Status: domain.EmailStatusSent}, nil
}

func (f *fakeEmailDispatch) Resend(ctx context.Context, logID string) (*domain.EmailLog, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEmailDispatch) HandleDeliveryCallback(ctx context.Context, providerMessageID string, event domain.DeliveryEventType, at time.Time) error {
	return nil
}

func (f *fakeEmailDispatch) ListEventEmailLogs(ctx context.Context, eventID, hostID string, params domain.PaginationParams) ([]*domain.EmailLog, int, error) {
	return nil, 0, nil
}

func (f *fakeEmailDispatch) EventEmailAnalytics(ctx context.Context, eventID, hostID string) (*domain.EmailAnalytics, error) {
	return nil, nil
}
