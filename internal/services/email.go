package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"partyhaus/internal/domain"
)

type emailDispatchService struct {
	eventRepo    domain.EventRepository
	guestRepo    domain.GuestRepository
	userRepo     domain.UserRepository
	emailLogRepo domain.EmailLogRepository
	mailer       domain.Mailer
	renderer     domain.EmailTemplateRenderer
	logger       *slog.Logger
}

// NewEmailDispatchService returns an EmailDispatchService wiring the mailer
// and template renderer to the email log.
func NewEmailDispatchService(
	eventRepo domain.EventRepository,
	guestRepo domain.GuestRepository,
	userRepo domain.UserRepository,
	emailLogRepo domain.EmailLogRepository,
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	logger *slog.Logger,
) domain.EmailDispatchService {
	return &emailDispatchService{
		eventRepo:    eventRepo,
		guestRepo:    guestRepo,
		userRepo:     userRepo,
		emailLogRepo: emailLogRepo,
		mailer:       mailer,
		renderer:     renderer,
		logger:       logger,
	}
}

// SendGuestEmail renders the template for msgType and sends it. Every attempt
// produces exactly one log row: "sent" with the provider message id, or
// "failed" with the error text.
func (s *emailDispatchService) SendGuestEmail(ctx context.Context, eventID, guestID string, msgType domain.EmailMessageType) (*domain.EmailLog, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	guest, err := s.guestRepo.GetByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	if guest.EventID != event.ID {
		return nil, domain.ErrNotFound
	}
	return s.send(ctx, event, guest, msgType)
}

// Resend re-reads the original log row, rebuilds the same template from the
// stored event and guest fields, and repeats the send as a new log row.
func (s *emailDispatchService) Resend(ctx context.Context, logID string) (*domain.EmailLog, error) {
	original, err := s.emailLogRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get email log: %w", err)
	}
	return s.SendGuestEmail(ctx, original.EventID, original.GuestID, original.MessageType)
}

func (s *emailDispatchService) send(ctx context.Context, event *domain.Event, guest *domain.Guest, msgType domain.EmailMessageType) (*domain.EmailLog, error) {
	hostName := ""
	if host, err := s.userRepo.GetByID(ctx, event.HostID); err == nil {
		hostName = host.Name
	}

	data := &domain.GuestEmailData{
		GuestName:    guest.Name,
		GuestEmail:   guest.Email,
		EventName:    event.Name,
		EventDate:    event.StartTime.Format("Monday, 2 January 2006 15:04"),
		Location:     event.Location,
		HostName:     hostName,
		CheckInToken: guest.CheckInToken,
	}
	subject, htmlBody, textBody, renderErr := s.renderer.Render(string(msgType), data)
	if renderErr != nil {
		return nil, fmt.Errorf("render %s template: %w", msgType, renderErr)
	}

	now := time.Now()
	logRow := domain.NewEmailLog(event.ID, guest.ID, msgType, now)
	if err := s.emailLogRepo.Create(ctx, logRow); err != nil {
		return nil, fmt.Errorf("create email log: %w", err)
	}

	messageID, sendErr := s.mailer.Send(guest.Email, subject, htmlBody, textBody)
	if sendErr != nil {
		errText := sendErr.Error()
		failed, err := s.emailLogRepo.UpdateStatus(ctx, logRow.ID, domain.EmailStatusUpdate{
			Status:    domain.EmailStatusFailed,
			ErrorText: &errText,
			At:        time.Now(),
		})
		if err != nil {
			return nil, fmt.Errorf("record send failure: %w", err)
		}
		return failed, fmt.Errorf("send %s email: %w", msgType, sendErr)
	}

	sent, err := s.emailLogRepo.UpdateStatus(ctx, logRow.ID, domain.EmailStatusUpdate{
		Status:            domain.EmailStatusSent,
		ProviderMessageID: &messageID,
		At:                time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("record send success: %w", err)
	}
	s.logger.Info("email sent", "type", msgType, "to", guest.Email, "message_id", messageID)
	return sent, nil
}

// HandleDeliveryCallback applies a provider delivery notification. Unknown
// message ids and out-of-order notifications are logged and absorbed so a
// misbehaving provider can never fail the webhook.
func (s *emailDispatchService) HandleDeliveryCallback(ctx context.Context, providerMessageID string, event domain.DeliveryEventType, at time.Time) error {
	logRow, err := s.emailLogRepo.GetByProviderMessageID(ctx, providerMessageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("delivery callback for unknown message id ignored", "message_id", providerMessageID)
			return nil
		}
		return fmt.Errorf("get email log by message id: %w", err)
	}

	var next domain.EmailStatus
	switch event {
	case domain.DeliveryEventDelivered:
		next = domain.EmailStatusDelivered
	case domain.DeliveryEventOpened:
		next = domain.EmailStatusOpened
	case domain.DeliveryEventClicked:
		next = domain.EmailStatusClicked
	case domain.DeliveryEventBounced:
		next = domain.EmailStatusBounced
	default:
		return domain.ErrInvalidInput
	}

	if !logRow.Status.CanTransition(next) {
		s.logger.Warn("out-of-order delivery callback ignored", "event", event, "log_id", logRow.ID, "status", logRow.Status)
		return nil
	}
	if _, err := s.emailLogRepo.UpdateStatus(ctx, logRow.ID, domain.EmailStatusUpdate{Status: next, At: at}); err != nil {
		return fmt.Errorf("apply delivery callback: %w", err)
	}
	return nil
}

func (s *emailDispatchService) ListEventEmailLogs(ctx context.Context, eventID, hostID string, params domain.PaginationParams) ([]*domain.EmailLog, int, error) {
	if err := s.requireHost(ctx, eventID, hostID); err != nil {
		return nil, 0, err
	}
	logs, total, err := s.emailLogRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list email logs: %w", err)
	}
	if logs == nil {
		logs = []*domain.EmailLog{}
	}
	return logs, total, nil
}

// EventEmailAnalytics derives counts and rates at query time; nothing is stored.
func (s *emailDispatchService) EventEmailAnalytics(ctx context.Context, eventID, hostID string) (*domain.EmailAnalytics, error) {
	if err := s.requireHost(ctx, eventID, hostID); err != nil {
		return nil, err
	}
	counts, err := s.emailLogRepo.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count email logs: %w", err)
	}

	a := &domain.EmailAnalytics{
		Sent:      counts[domain.EmailStatusSent],
		Delivered: counts[domain.EmailStatusDelivered],
		Opened:    counts[domain.EmailStatusOpened],
		Clicked:   counts[domain.EmailStatusClicked],
		Bounced:   counts[domain.EmailStatusBounced],
		Failed:    counts[domain.EmailStatusFailed],
	}
	for _, n := range counts {
		a.Total += n
	}
	// Later lifecycle states imply the earlier ones.
	reachedDelivery := a.Delivered + a.Opened + a.Clicked
	attempted := a.Sent + reachedDelivery + a.Bounced
	if attempted > 0 {
		a.DeliveryRate = float64(reachedDelivery) / float64(attempted)
	}
	if reachedDelivery > 0 {
		a.OpenRate = float64(a.Opened+a.Clicked) / float64(reachedDelivery)
	}
	return a, nil
}

func (s *emailDispatchService) requireHost(ctx context.Context, eventID, hostID string) error {
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
	return nil
}
