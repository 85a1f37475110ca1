package state

import (
	"encoding/json"
	"log/slog"

	"partyhaus/internal/domain"
)

// PersistentState is the subset of store state that survives a restart:
// session, auth flag, current page, event list, and the current selection.
// Guest lists and fetch bookkeeping are transient and always reset.
type PersistentState struct {
	User           *domain.User    `json:"user"`
	Authenticated  bool            `json:"is_authenticated"`
	CurrentPage    string          `json:"current_page"`
	Events         []*domain.Event `json:"events"`
	CurrentEventID string          `json:"current_event_id,omitempty"`
}

// Persist extracts the persistent subset of the current state.
func (s *Store) Persist() PersistentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]*domain.Event, len(s.eventList))
	copy(events, s.eventList)
	p := PersistentState{
		User:          s.user,
		Authenticated: s.authenticated,
		CurrentPage:   s.currentPage,
		Events:        events,
	}
	if s.currentEvent != nil {
		p.CurrentEventID = s.currentEvent.ID
	}
	return p
}

// Marshal encodes the persistent state for storage under a fixed key.
func (p PersistentState) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPersistentState decodes a previously persisted state blob.
func UnmarshalPersistentState(data []byte) (PersistentState, error) {
	var p PersistentState
	err := json.Unmarshal(data, &p)
	return p, err
}

// NewStoreFromPersistent rebuilds a Store from a persisted snapshot. The
// current event is resolved by id against the persisted event list; transient
// state (guests, loaded set, in-flight markers) starts empty, so the first
// selection after a restart always re-fetches guests.
func NewStoreFromPersistent(p PersistentState, events EventLoader, guests GuestLoader, logger *slog.Logger) *Store {
	s := NewStore(events, guests, logger)
	if !p.Authenticated || p.User == nil {
		return s
	}
	s.user = p.User
	s.authenticated = true
	if p.CurrentPage != "" {
		s.currentPage = p.CurrentPage
	}
	if p.Events != nil {
		s.eventList = p.Events
	}
	if p.CurrentEventID != "" {
		for _, ev := range s.eventList {
			if ev.ID == p.CurrentEventID {
				s.currentEvent = ev
				break
			}
		}
	}
	return s
}
