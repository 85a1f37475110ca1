package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"partyhaus/internal/domain"
)

type guestService struct {
	eventRepo    domain.EventRepository
	guestRepo    domain.GuestRepository
	logRepo      domain.EmailLogRepository
	emailService domain.EmailDispatchService
	logger       *slog.Logger
}

// NewGuestService creates a GuestService. The email service may be nil, in
// which case no invitation side effect is fired; a nil log repository skips
// the email-status annotation on listings.
func NewGuestService(eventRepo domain.EventRepository, guestRepo domain.GuestRepository, logRepo domain.EmailLogRepository, emailService domain.EmailDispatchService, logger *slog.Logger) domain.GuestService {
	return &guestService{
		eventRepo:    eventRepo,
		guestRepo:    guestRepo,
		logRepo:      logRepo,
		emailService: emailService,
		logger:       logger,
	}
}

func (s *guestService) AddGuest(ctx context.Context, eventID, hostID, name, email string) (*domain.Guest, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidInput
	}

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

	// Duplicate guard runs before any insert: a second guest with an email
	// already present on the same event is rejected outright.
	if _, err := s.guestRepo.GetByEventAndEmail(ctx, eventID, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate email: %w", err)
	}

	now := time.Now()
	guest := domain.NewGuest(eventID, strings.TrimSpace(name), email, uuid.NewString(), now, now)
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}

	// The invitation email is a best-effort side effect. Guest creation has
	// already succeeded; a send failure is logged by the email service and
	// recorded in the email log, never surfaced here.
	if s.emailService != nil {
		go func() {
			if _, err := s.emailService.SendGuestEmail(context.WithoutCancel(ctx), eventID, guest.ID, domain.EmailTypeInvitation); err != nil {
				s.logger.Warn("invitation email failed", "guest_id", guest.ID, "err", err)
			}
		}()
	}
	return guest, nil
}

func (s *guestService) ListGuests(ctx context.Context, eventID, hostID string) ([]*domain.Guest, error) {
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
	guests, err := s.guestRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	s.annotateEmailStatus(ctx, guests)
	return guests, nil
}

// annotateEmailStatus fills Guest.EmailStatus from each guest's latest email
// log row. The status is display data; a lookup failure leaves it empty and
// never fails the listing.
func (s *guestService) annotateEmailStatus(ctx context.Context, guests []*domain.Guest) {
	if s.logRepo == nil {
		return
	}
	for _, g := range guests {
		latest, err := s.logRepo.LatestByGuestID(ctx, g.ID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("latest email log lookup failed", "guest_id", g.ID, "err", err)
			}
			continue
		}
		g.EmailStatus = string(latest.Status)
	}
}

func (s *guestService) UpdateGuest(ctx context.Context, eventID, guestID, hostID string, upd domain.GuestUpdate) (*domain.Guest, error) {
	guest, err := s.ownedGuest(ctx, eventID, guestID, hostID)
	if err != nil {
		return nil, err
	}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if !emailRegexp.MatchString(email) {
			return nil, domain.ErrInvalidInput
		}
		if email != guest.Email {
			if _, err := s.guestRepo.GetByEventAndEmail(ctx, eventID, email); err == nil {
				return nil, domain.ErrDuplicateEmail
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("check duplicate email: %w", err)
			}
		}
		upd.Email = &email
	}
	updated, err := s.guestRepo.Update(ctx, guestID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update guest: %w", err)
	}
	return updated, nil
}

func (s *guestService) CheckInGuest(ctx context.Context, eventID, guestID, hostID string) (*domain.Guest, error) {
	guest, err := s.ownedGuest(ctx, eventID, guestID, hostID)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, guest)
}

func (s *guestService) CheckInByToken(ctx context.Context, token string) (*domain.Guest, error) {
	guest, err := s.guestRepo.GetByCheckInToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve check-in token: %w", err)
	}
	return s.checkIn(ctx, guest)
}

// checkIn marks the guest present exactly once. A repeat scan returns
// ErrAlreadyCheckedIn with the untouched record so callers can report it.
func (s *guestService) checkIn(ctx context.Context, guest *domain.Guest) (*domain.Guest, error) {
	if guest.IsCheckedIn {
		return guest, domain.ErrAlreadyCheckedIn
	}
	now := time.Now()
	if err := s.guestRepo.SetCheckedIn(ctx, guest.ID, now); err != nil {
		return nil, fmt.Errorf("set checked in: %w", err)
	}
	guest.IsCheckedIn = true
	guest.CheckedInAt = &now
	guest.UpdatedAt = now
	return guest, nil
}

func (s *guestService) ownedGuest(ctx context.Context, eventID, guestID, hostID string) (*domain.Guest, error) {
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
	guest, err := s.guestRepo.GetByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	if guest.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return guest, nil
}
