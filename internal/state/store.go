package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"partyhaus/internal/domain"
)

// PageAuth is the page shown to unauthenticated sessions.
const PageAuth = "auth"

// EventLoader loads the event list for a host. Implemented by the event
// repository or service.
type EventLoader interface {
	ListByHostID(ctx context.Context, hostID string) ([]*domain.Event, error)
}

// GuestLoader loads the guest list for an event.
type GuestLoader interface {
	ListByEventID(ctx context.Context, eventID string) ([]*domain.Guest, error)
}

// GuestPatch carries optional fields for an in-place guest merge.
// Nil fields are left unchanged.
type GuestPatch struct {
	Name        *string
	Email       *string
	EmailStatus *string
	IsCheckedIn *bool
	CheckedInAt *time.Time
}

// Store is the single source of truth for session, event list, current event,
// and the current event's guest list. All mutation goes through its methods
// behind one mutex, so there is exactly one logical writer.
//
// Two async races are guarded explicitly:
//   - a background event fetch started for one identity must never apply after
//     the session changed (generation token captured at schedule time);
//   - at most one guest fetch per event id may be outstanding, and a fetch
//     result is applied only while its event is still the current selection.
type Store struct {
	mu sync.Mutex

	events EventLoader
	guests GuestLoader
	logger *slog.Logger

	user          *domain.User
	authenticated bool
	currentPage   string
	eventList     []*domain.Event
	currentEvent  *domain.Event
	guestList     []*domain.Guest

	loadedGuests map[string]bool // event ids whose guests were fetched and applied
	fetching     map[string]bool // event ids with an outstanding guest fetch

	sessionGen uint64 // bumped on every session change
	selectGen  uint64 // bumped on every current-event change

	bg sync.WaitGroup
}

// NewStore returns a Store in the unauthenticated default state.
func NewStore(events EventLoader, guests GuestLoader, logger *slog.Logger) *Store {
	return &Store{
		events:       events,
		guests:       guests,
		logger:       logger,
		currentPage:  PageAuth,
		eventList:    []*domain.Event{},
		guestList:    []*domain.Guest{},
		loadedGuests: make(map[string]bool),
		fetching:     make(map[string]bool),
	}
}

// Wait blocks until all background work (event fetches, sign-out calls) has
// finished. Used by tests and graceful shutdown.
func (s *Store) Wait() {
	s.bg.Wait()
}

// SetSession sets the authenticated identity and schedules a background fetch
// of that user's events. The fetched list is applied only if the session still
// belongs to the same identity when the fetch resolves. A nil user clears all
// state synchronously with no network call.
//
// Any session change, including a repeat sign-in for the same user, clears the
// event list, current selection, guest list, and loaded-set before the fetch
// is scheduled: state loaded under the previous session must never stay
// visible under the new one.
func (s *Store) SetSession(ctx context.Context, user *domain.User) {
	s.mu.Lock()
	s.sessionGen++
	if user == nil {
		s.resetLocked()
		s.mu.Unlock()
		return
	}
	s.user = user
	s.authenticated = true
	s.eventList = []*domain.Event{}
	s.currentEvent = nil
	s.guestList = []*domain.Guest{}
	s.loadedGuests = make(map[string]bool)
	s.selectGen++
	gen := s.sessionGen
	uid := user.ID
	s.mu.Unlock()

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		list, err := s.events.ListByHostID(ctx, uid)
		if err != nil {
			// Background fetch failures degrade to an empty list.
			s.logger.Warn("event fetch failed", "user_id", uid, "err", err)
			list = []*domain.Event{}
		}
		if list == nil {
			list = []*domain.Event{}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		// Apply only if this is still the session the fetch was issued for.
		if s.sessionGen != gen || s.user == nil || s.user.ID != uid {
			return
		}
		s.eventList = list
		if len(list) > 0 {
			s.currentEvent = list[0]
			s.selectGen++
		}
	}()
}

// SetCurrentPage updates the current page. Equal pages are a no-op.
func (s *Store) SetCurrentPage(page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page == s.currentPage {
		return
	}
	s.currentPage = page
}

// SetEvents unconditionally replaces the event list.
func (s *Store) SetEvents(list []*domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list == nil {
		list = []*domain.Event{}
	}
	s.eventList = list
}

// SetCurrentEvent selects an event and loads its guests.
//
// A nil event clears the selection and guest list synchronously; any in-flight
// fetch terminates harmlessly. Re-selecting the already-loaded current event is
// a no-op, as is selecting an event whose guest fetch is already outstanding.
// Otherwise the selection is applied immediately, the fetch is marked
// in-flight, and the result is merged only if the event is still selected when
// it resolves. The in-flight marker is cleared on both success and failure, so
// a failed event is never left permanently un-fetchable.
func (s *Store) SetCurrentEvent(ctx context.Context, event *domain.Event) {
	s.mu.Lock()
	if event == nil {
		s.currentEvent = nil
		s.guestList = []*domain.Guest{}
		s.selectGen++
		s.mu.Unlock()
		return
	}
	if s.currentEvent != nil && s.currentEvent.ID == event.ID && s.loadedGuests[event.ID] {
		s.mu.Unlock()
		return
	}
	if s.fetching[event.ID] {
		s.mu.Unlock()
		return
	}
	s.currentEvent = event
	s.fetching[event.ID] = true
	s.selectGen++
	gen := s.selectGen
	s.mu.Unlock()

	list, err := s.guests.ListByEventID(ctx, event.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fetching, event.ID)

	// The selection may have moved on while the fetch was running.
	stillSelected := gen == s.selectGen && s.currentEvent != nil && s.currentEvent.ID == event.ID
	if !stillSelected {
		return
	}
	if err != nil {
		s.logger.Warn("guest fetch failed", "event_id", event.ID, "err", err)
		s.guestList = []*domain.Guest{}
		return
	}
	if list == nil {
		list = []*domain.Guest{}
	}
	s.guestList = list
	s.loadedGuests[event.ID] = true
}

// SetGuests unconditionally replaces the guest list.
func (s *Store) SetGuests(list []*domain.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list == nil {
		list = []*domain.Guest{}
	}
	s.guestList = list
}

// AddGuest appends a guest to the current guest list.
func (s *Store) AddGuest(g *domain.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guestList = append(s.guestList, g)
}

// UpdateGuest merges patch into the guest with the given id. All other
// records are left untouched, pointer-identical.
func (s *Store) UpdateGuest(id string, patch GuestPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.guestList {
		if g.ID != id {
			continue
		}
		updated := *g
		if patch.Name != nil {
			updated.Name = *patch.Name
		}
		if patch.Email != nil {
			updated.Email = *patch.Email
		}
		if patch.EmailStatus != nil {
			updated.EmailStatus = *patch.EmailStatus
		}
		if patch.IsCheckedIn != nil {
			updated.IsCheckedIn = *patch.IsCheckedIn
		}
		if patch.CheckedInAt != nil {
			updated.CheckedInAt = patch.CheckedInAt
		}
		s.guestList[i] = &updated
		return
	}
}

// Logout resets all state to the unauthenticated default synchronously, then
// fires the sign-out call without waiting for it. A sign-out failure is logged
// and absorbed; it never undoes the reset.
func (s *Store) Logout(ctx context.Context, signOut func(context.Context) error) {
	s.mu.Lock()
	s.sessionGen++
	s.resetLocked()
	s.mu.Unlock()

	if signOut == nil {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if err := signOut(ctx); err != nil {
			s.logger.Warn("sign-out failed", "err", err)
		}
	}()
}

// HandleAuthEvent reacts to a session change notification from the auth service.
func (s *Store) HandleAuthEvent(ctx context.Context, evt domain.AuthEvent) {
	switch evt.Type {
	case domain.AuthEventSignedIn, domain.AuthEventTokenRefreshed:
		s.SetSession(ctx, evt.User)
	case domain.AuthEventSignedOut:
		s.SetSession(ctx, nil)
	}
}

// Run consumes auth events until the channel closes or ctx is done.
func (s *Store) Run(ctx context.Context, events <-chan domain.AuthEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.HandleAuthEvent(ctx, evt)
		}
	}
}

// resetLocked restores the unauthenticated default. Caller holds s.mu.
func (s *Store) resetLocked() {
	s.user = nil
	s.authenticated = false
	s.currentPage = PageAuth
	s.eventList = []*domain.Event{}
	s.currentEvent = nil
	s.guestList = []*domain.Guest{}
	s.loadedGuests = make(map[string]bool)
	s.selectGen++
}

// Snapshot is a consistent read-only copy of the store state.
type Snapshot struct {
	User          *domain.User
	Authenticated bool
	CurrentPage   string
	Events        []*domain.Event
	CurrentEvent  *domain.Event
	Guests        []*domain.Guest
}

// Snapshot returns a copy of the current state. Slices are copied so callers
// can iterate without holding the store lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]*domain.Event, len(s.eventList))
	copy(events, s.eventList)
	guests := make([]*domain.Guest, len(s.guestList))
	copy(guests, s.guestList)
	return Snapshot{
		User:          s.user,
		Authenticated: s.authenticated,
		CurrentPage:   s.currentPage,
		Events:        events,
		CurrentEvent:  s.currentEvent,
		Guests:        guests,
	}
}
