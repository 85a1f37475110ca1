package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"partyhaus/internal/delivery/http/helpers"
	"partyhaus/internal/delivery/http/middleware"
	"partyhaus/internal/domain"
)

// SendEmailRequest is the request body for POST /events/{eventID}/guests/{guestID}/emails.
type SendEmailRequest struct {
	Type string `json:"type"`
}

// Validate implements Validator. Type must be a known message type.
func (s SendEmailRequest) Validate() []string {
	switch domain.EmailMessageType(s.Type) {
	case domain.EmailTypeInvitation, domain.EmailTypeConfirmation, domain.EmailTypeReminder, domain.EmailTypeTest:
		return nil
	}
	return []string{"type must be one of: invitation, confirmation, reminder, test"}
}

// DeliveryWebhookRequest is the request body for POST /webhooks/email, posted
// by the email provider.
type DeliveryWebhookRequest struct {
	MessageID string     `json:"message_id"`
	Event     string     `json:"event"`
	Timestamp *time.Time `json:"timestamp"`
}

// Validate implements Validator.
func (d DeliveryWebhookRequest) Validate() []string {
	var errs []string
	if d.MessageID == "" {
		errs = append(errs, "message_id is required")
	}
	if d.Event == "" {
		errs = append(errs, "event is required")
	}
	return errs
}

// EmailLogSuccessResponse is the success response envelope for single-log endpoints.
type EmailLogSuccessResponse struct {
	Data  *domain.EmailLog  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEmailLogsResponse is the data payload for GET /events/{eventID}/email-logs (200).
type ListEmailLogsResponse struct {
	Items      []*domain.EmailLog     `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEmailLogsSuccessResponse is the success response envelope for GET /events/{eventID}/email-logs (200).
type ListEmailLogsSuccessResponse struct {
	Data  ListEmailLogsResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// EmailAnalyticsSuccessResponse is the success response envelope for GET /events/{eventID}/email-analytics (200).
type EmailAnalyticsSuccessResponse struct {
	Data  *domain.EmailAnalytics `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type EmailController struct {
	Logger  *slog.Logger
	Service domain.EmailDispatchService
}

func NewEmailController(logger *slog.Logger, svc domain.EmailDispatchService) *EmailController {
	return &EmailController{
		Logger:  logger,
		Service: svc,
	}
}

// SendGuestEmail godoc
// @Summary Send an email to a guest
// @Description Renders the template for the given type, sends it, and returns the log row. A send failure still returns the log row with status "failed".
// @Tags emails
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param guestID path string true "Guest ID (UUID)"
// @Param body body SendEmailRequest true "Message type"
// @Success 201 {object} controllers.EmailLogSuccessResponse "data contains the email log row"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests/{guestID}/emails [post]
func (c *EmailController) SendGuestEmail(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	guestID := r.PathValue("guestID")
	if eventID == "" || guestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or guestID")
		return
	}
	var req SendEmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	logRow, err := c.Service.SendGuestEmail(r.Context(), eventID, guestID, domain.EmailMessageType(req.Type))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event or guest not found")
			return
		}
		// The attempt is recorded even when the provider rejects it.
		if logRow != nil {
			helpers.WriteJSONSuccess(w, http.StatusCreated, logRow)
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, logRow)
}

// ResendEmail godoc
// @Summary Resend a previously sent email
// @Description Repeats the send recorded by the given log row as a fresh attempt with its own log row.
// @Tags emails
// @Produce json
// @Security BearerAuth
// @Param logID path string true "Email log ID (UUID)"
// @Success 201 {object} controllers.EmailLogSuccessResponse "data contains the new email log row"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /email-logs/{logID}/resend [post]
func (c *EmailController) ResendEmail(w http.ResponseWriter, r *http.Request) {
	logID := r.PathValue("logID")
	if logID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing logID")
		return
	}
	logRow, err := c.Service.Resend(r.Context(), logID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "email log not found")
			return
		}
		if logRow != nil {
			helpers.WriteJSONSuccess(w, http.StatusCreated, logRow)
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, logRow)
}

// ListEmailLogs godoc
// @Summary List an event's email logs
// @Tags emails
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEmailLogsSuccessResponse "data contains items and pagination, newest first"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/email-logs [get]
func (c *EmailController) ListEmailLogs(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	logs, total, err := c.Service.ListEventEmailLogs(r.Context(), eventID, hostID, params)
	if err != nil {
		c.writeEmailError(w, r, err)
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEmailLogsResponse{Items: logs, Pagination: meta})
}

// EmailAnalytics godoc
// @Summary Get per-event email analytics
// @Description Returns counts per lifecycle status plus delivery and open rates, derived at query time.
// @Tags emails
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EmailAnalyticsSuccessResponse "data contains the analytics summary"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/email-analytics [get]
func (c *EmailController) EmailAnalytics(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	analytics, err := c.Service.EventEmailAnalytics(r.Context(), eventID, hostID)
	if err != nil {
		c.writeEmailError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, analytics)
}

// WebhookResponse is the data payload for POST /webhooks/email (200).
type WebhookResponse struct {
	Status string `json:"status"`
}

// DeliveryWebhook godoc
// @Summary Receive an email delivery notification
// @Description Applies a provider delivery callback (delivered, opened, clicked, bounced) to the matching log row. Unknown message ids are absorbed with 200.
// @Tags emails
// @Accept json
// @Produce json
// @Param body body DeliveryWebhookRequest true "Delivery notification"
// @Success 200 {object} helpers.APIResponse "data contains status message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /webhooks/email [post]
func (c *EmailController) DeliveryWebhook(w http.ResponseWriter, r *http.Request) {
	var req DeliveryWebhookRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	at := time.Now()
	if req.Timestamp != nil {
		at = *req.Timestamp
	}
	err := c.Service.HandleDeliveryCallback(r.Context(), req.MessageID, domain.DeliveryEventType(req.Event), at)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown delivery event")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, WebhookResponse{Status: "processed"})
}

func (c *EmailController) writeEmailError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
