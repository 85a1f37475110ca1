package domain

import (
	"context"
	"time"
)

// EmailMessageType identifies what kind of message an email log row records.
type EmailMessageType string

const (
	EmailTypeInvitation   EmailMessageType = "invitation"
	EmailTypeConfirmation EmailMessageType = "confirmation"
	EmailTypeReminder     EmailMessageType = "reminder"
	EmailTypeTest         EmailMessageType = "test"
)

// EmailStatus is the delivery lifecycle state of one outbound email attempt.
type EmailStatus string

const (
	EmailStatusPending   EmailStatus = "pending"
	EmailStatusSent      EmailStatus = "sent"
	EmailStatusDelivered EmailStatus = "delivered"
	EmailStatusOpened    EmailStatus = "opened"
	EmailStatusClicked   EmailStatus = "clicked"
	EmailStatusBounced   EmailStatus = "bounced"
	EmailStatusFailed    EmailStatus = "failed"
)

// emailTransitions lists the legal forward transitions per status.
var emailTransitions = map[EmailStatus][]EmailStatus{
	EmailStatusPending:   {EmailStatusSent, EmailStatusBounced, EmailStatusFailed},
	EmailStatusSent:      {EmailStatusDelivered, EmailStatusBounced},
	EmailStatusDelivered: {EmailStatusOpened},
	EmailStatusOpened:    {EmailStatusClicked},
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
func (s EmailStatus) CanTransition(next EmailStatus) bool {
	for _, t := range emailTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// EmailLog records one outbound email attempt and its delivery lifecycle.
// swagger:model EmailLog
type EmailLog struct {
	ID                string           `json:"id"`
	EventID           string           `json:"event_id"`
	GuestID           string           `json:"guest_id"`
	MessageType       EmailMessageType `json:"message_type"`
	Status            EmailStatus      `json:"status"`
	ProviderMessageID *string          `json:"provider_message_id,omitempty"`
	ErrorText         *string          `json:"error_text,omitempty"`
	SentAt            *time.Time       `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time       `json:"delivered_at,omitempty"`
	OpenedAt          *time.Time       `json:"opened_at,omitempty"`
	ClickedAt         *time.Time       `json:"clicked_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// NewEmailLog returns a pending EmailLog for one send attempt.
func NewEmailLog(eventID, guestID string, msgType EmailMessageType, createdAt time.Time) *EmailLog {
	return &EmailLog{
		EventID:     eventID,
		GuestID:     guestID,
		MessageType: msgType,
		Status:      EmailStatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// EmailStatusUpdate carries the fields written on a status transition.
type EmailStatusUpdate struct {
	Status            EmailStatus
	ProviderMessageID *string
	ErrorText         *string
	At                time.Time
}

// EmailLogRepository defines storage operations for email logs.
type EmailLogRepository interface {
	Create(ctx context.Context, log *EmailLog) error
	GetByID(ctx context.Context, id string) (*EmailLog, error)
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*EmailLog, error)
	UpdateStatus(ctx context.Context, id string, upd EmailStatusUpdate) (*EmailLog, error)
	// ListByEventID returns one page of logs, newest first, plus the total count.
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*EmailLog, int, error)
	LatestByGuestID(ctx context.Context, guestID string) (*EmailLog, error)
	CountByStatus(ctx context.Context, eventID string) (map[EmailStatus]int, error)
}

// EmailAnalytics is the derived per-event aggregation over email logs.
// Counts and rates are computed at query time, never stored.
type EmailAnalytics struct {
	Total        int     `json:"total"`
	Sent         int     `json:"sent"`
	Delivered    int     `json:"delivered"`
	Opened       int     `json:"opened"`
	Clicked      int     `json:"clicked"`
	Bounced      int     `json:"bounced"`
	Failed       int     `json:"failed"`
	DeliveryRate float64 `json:"delivery_rate"`
	OpenRate     float64 `json:"open_rate"`
}

// DeliveryEventType is the kind of callback the email provider reports.
type DeliveryEventType string

const (
	DeliveryEventDelivered DeliveryEventType = "delivered"
	DeliveryEventOpened    DeliveryEventType = "opened"
	DeliveryEventClicked   DeliveryEventType = "clicked"
	DeliveryEventBounced   DeliveryEventType = "bounced"
)

// EmailDispatchService defines email sending, tracking, and analytics.
type EmailDispatchService interface {
	// SendGuestEmail renders the template for msgType, sends it, and writes a
	// log row: status "sent" with the provider message id on success, "failed"
	// with the error text on failure.
	SendGuestEmail(ctx context.Context, eventID, guestID string, msgType EmailMessageType) (*EmailLog, error)
	// Resend re-reads the original log row, rebuilds the same template from the
	// stored event and guest fields, and repeats the send as a new log row.
	Resend(ctx context.Context, logID string) (*EmailLog, error)
	// HandleDeliveryCallback applies a provider delivery notification to the
	// matching log row. Unknown message ids and illegal transitions are absorbed.
	HandleDeliveryCallback(ctx context.Context, providerMessageID string, event DeliveryEventType, at time.Time) error
	// ListEventEmailLogs returns one page of the event's logs, newest first,
	// plus the total count. Only the host can list.
	ListEventEmailLogs(ctx context.Context, eventID, hostID string, params PaginationParams) ([]*EmailLog, int, error)
	EventEmailAnalytics(ctx context.Context, eventID, hostID string) (*EmailAnalytics, error)
}
