package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"partyhaus/internal/delivery/http/helpers"
	"partyhaus/internal/delivery/http/middleware"
	"partyhaus/internal/domain"
)

// maxInviteImageBytes caps invite image uploads at 5 MiB.
const maxInviteImageBytes = 5 << 20

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name        string    `json:"name"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	PlaylistURL *string   `json:"playlist_url"`
	IsPublic    bool      `json:"is_public"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if !c.EndTime.IsZero() && !c.EndTime.After(c.StartTime) {
		errs = append(errs, "end_time must be after start_time")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Location    *string    `json:"location"`
	PlaylistURL *string    `json:"playlist_url"`
	IsPublic    *bool      `json:"is_public"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Name != nil && *u.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	return errs
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListMyEventsSuccessResponse is the success response envelope for GET /events/me (200).
type ListMyEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event owned by the authenticated user. id and timestamps are server-generated.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	now := time.Now()
	event := domain.NewEvent(userID, req.Name, req.Location, req.StartTime, req.EndTime, now, now)
	event.PlaylistURL = req.PlaylistURL
	event.IsPublic = req.IsPublic
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event data")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Service.GetEventByID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListMyEvents godoc
// @Summary List events hosted by the authenticated user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyEventsSuccessResponse "data contains the user's events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/me [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListEventsByHost(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Updates event fields. Only the host can update. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, hostID, domain.EventUpdate{
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		PlaylistURL: req.PlaylistURL,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event data")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and its guest list. Only the host can delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.DeleteEvent(r.Context(), eventID, hostID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// InviteImageResponse is the data payload for POST /events/{eventID}/invite-image (200).
type InviteImageResponse struct {
	URL string `json:"url"`
}

// UploadInviteImage godoc
// @Summary Attach an invite image to an event
// @Description Accepts the raw image as the request body; the filename comes from the X-Filename header. Only the host can upload.
// @Tags events
// @Accept octet-stream
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the public image url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invite-image [post]
func (c *EventController) UploadInviteImage(w http.ResponseWriter, r *http.Request) {
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
	filename := r.Header.Get("X-Filename")
	if filename == "" {
		filename = "invite"
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxInviteImageBytes+1))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read request body")
		return
	}
	if len(body) > maxInviteImageBytes {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "image too large")
		return
	}
	url, err := c.Service.AttachInviteImage(r.Context(), eventID, hostID, filename, contentType, body)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "empty image body")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InviteImageResponse{URL: url})
}
