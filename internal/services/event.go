package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"partyhaus/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	objectStore    domain.ObjectStore
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repository and object store.
func NewEventService(eventRepo domain.EventRepository, objectStore domain.ObjectStore, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		objectStore:    objectStore,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.HostID == "" {
		return fmt.Errorf("event host is required")
	}
	if strings.TrimSpace(event.Name) == "" {
		return domain.ErrInvalidInput
	}
	if !event.EndTime.IsZero() && !event.EndTime.After(event.StartTime) {
		return domain.ErrInvalidInput
	}

	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEventsByHost(ctx context.Context, hostID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByHostID(ctx, hostID)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, hostID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.HostID != hostID {
		return nil, domain.ErrForbidden
	}

	newStart := event.StartTime
	if upd.StartTime != nil {
		newStart = *upd.StartTime
	}
	newEnd := event.EndTime
	if upd.EndTime != nil {
		newEnd = *upd.EndTime
	}
	if !newEnd.IsZero() && !newEnd.After(newStart) {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, hostID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.HostID != hostID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) AttachInviteImage(ctx context.Context, eventID, hostID, filename, contentType string, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get event: %w", err)
	}
	if event.HostID != hostID {
		return "", domain.ErrForbidden
	}
	if len(body) == 0 {
		return "", domain.ErrInvalidInput
	}

	// Keys are namespaced per host so uploads cannot collide across accounts.
	key := path.Join(hostID, eventID, path.Base(filename))
	url, err := s.objectStore.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("upload invite image: %w", err)
	}
	if err := s.eventRepo.SetInviteImageURL(ctx, eventID, url); err != nil {
		return "", fmt.Errorf("store invite image url: %w", err)
	}
	return url, nil
}
