package domain

import (
	"context"
	"time"
)

// Event represents a host-created party or gathering.
// swagger:model Event
type Event struct {
	ID             string    `json:"id"`
	HostID         string    `json:"host_id"`
	Name           string    `json:"name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Location       string    `json:"location"`
	PlaylistURL    *string   `json:"playlist_url,omitempty"`
	InviteImageURL *string   `json:"invite_image_url,omitempty"`
	IsPublic       bool      `json:"is_public"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(hostID, name, location string, start, end time.Time, createdAt, updatedAt time.Time) *Event {
	return &Event{
		HostID:    hostID,
		Name:      name,
		Location:  location,
		StartTime: start,
		EndTime:   end,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// EventUpdate carries optional fields for a partial event update.
// Nil fields are left unchanged.
type EventUpdate struct {
	Name        *string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    *string
	PlaylistURL *string
	IsPublic    *bool
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByHostID(ctx context.Context, hostID string) ([]*Event, error)
	Update(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	SetInviteImageURL(ctx context.Context, eventID, url string) error
	Delete(ctx context.Context, id string) error
}

// EventService defines host-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEventsByHost(ctx context.Context, hostID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, hostID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, hostID string) error
	// AttachInviteImage uploads the image to object storage under the host's
	// namespace and stores the resulting public URL on the event.
	AttachInviteImage(ctx context.Context, eventID, hostID, filename, contentType string, body []byte) (url string, err error)
}
