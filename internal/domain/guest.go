package domain

import (
	"context"
	"time"
)

// Guest represents a person invited to a specific event.
// A guest always belongs to exactly one event.
// swagger:model Guest
type Guest struct {
	ID           string     `json:"id"`
	EventID      string     `json:"event_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	IsCheckedIn  bool       `json:"is_checked_in"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckInToken string     `json:"check_in_token"`
	// EmailStatus is derived from the latest email log row at read time; it is
	// never stored on the guest record.
	EmailStatus string    `json:"email_status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewGuest returns a new Guest for the given event. ID is typically set by the repository on create.
func NewGuest(eventID, name, email, checkInToken string, createdAt, updatedAt time.Time) *Guest {
	return &Guest{
		EventID:      eventID,
		Name:         name,
		Email:        email,
		CheckInToken: checkInToken,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// GuestUpdate carries optional fields for a partial guest update.
// Nil fields are left unchanged.
type GuestUpdate struct {
	Name  *string
	Email *string
}

// GuestRepository defines storage operations for guests.
type GuestRepository interface {
	Create(ctx context.Context, guest *Guest) error
	GetByID(ctx context.Context, id string) (*Guest, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Guest, error)
	GetByCheckInToken(ctx context.Context, token string) (*Guest, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Guest, error)
	Update(ctx context.Context, guestID string, upd GuestUpdate) (*Guest, error)
	SetCheckedIn(ctx context.Context, guestID string, at time.Time) error
}

// GuestService defines guest-list and check-in operations.
type GuestService interface {
	// AddGuest rejects a duplicate email on the same event before any insert,
	// then creates the guest and fires the invitation email as a best-effort
	// side effect: guest creation succeeds even if the email fails.
	AddGuest(ctx context.Context, eventID, hostID, name, email string) (*Guest, error)
	ListGuests(ctx context.Context, eventID, hostID string) ([]*Guest, error)
	UpdateGuest(ctx context.Context, eventID, guestID, hostID string, upd GuestUpdate) (*Guest, error)
	// CheckInGuest marks the guest present. A second check-in returns
	// ErrAlreadyCheckedIn and leaves the record unchanged.
	CheckInGuest(ctx context.Context, eventID, guestID, hostID string) (*Guest, error)
	// CheckInByToken resolves a scanned QR token to its guest and checks them in.
	CheckInByToken(ctx context.Context, token string) (*Guest, error)
}
