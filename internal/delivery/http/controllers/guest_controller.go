package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"partyhaus/internal/delivery/http/helpers"
	"partyhaus/internal/delivery/http/middleware"
	"partyhaus/internal/domain"
)

// AddGuestRequest is the request body for POST /events/{eventID}/guests.
type AddGuestRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements Validator.
func (a AddGuestRequest) Validate() []string {
	var errs []string
	if a.Name == "" {
		errs = append(errs, "name is required")
	}
	if a.Email == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// UpdateGuestRequest is the request body for PATCH /events/{eventID}/guests/{guestID}. All fields optional.
type UpdateGuestRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Validate implements Validator.
func (u UpdateGuestRequest) Validate() []string {
	var errs []string
	if u.Name != nil && *u.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.Email != nil && *u.Email == "" {
		errs = append(errs, "email must not be empty")
	}
	return errs
}

// CheckInRequest is the request body for POST /checkin (QR token scan).
type CheckInRequest struct {
	Token string `json:"token"`
}

// Validate implements Validator.
func (c CheckInRequest) Validate() []string {
	if c.Token == "" {
		return []string{"token is required"}
	}
	return nil
}

// GuestSuccessResponse is the success response envelope for single-guest endpoints.
type GuestSuccessResponse struct {
	Data  *domain.Guest     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListGuestsSuccessResponse is the success response envelope for GET /events/{eventID}/guests (200).
type ListGuestsSuccessResponse struct {
	Data  []*domain.Guest   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type GuestController struct {
	Logger  *slog.Logger
	Service domain.GuestService
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService) *GuestController {
	return &GuestController{
		Logger:  logger,
		Service: svc,
	}
}

// AddGuest godoc
// @Summary Add a guest to an event
// @Description Adds a guest to the guest list and fires the invitation email in the background. Only the host can add guests.
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AddGuestRequest true "Guest details"
// @Success 201 {object} controllers.GuestSuccessResponse "data contains the created guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already on guest list)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests [post]
func (c *GuestController) AddGuest(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req AddGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	guest, err := c.Service.AddGuest(r.Context(), eventID, hostID, req.Name, req.Email)
	if err != nil {
		c.writeGuestError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, guest)
}

// ListGuests godoc
// @Summary List an event's guests
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListGuestsSuccessResponse "data contains the guest list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests [get]
func (c *GuestController) ListGuests(w http.ResponseWriter, r *http.Request) {
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
	guests, err := c.Service.ListGuests(r.Context(), eventID, hostID)
	if err != nil {
		c.writeGuestError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guests)
}

// UpdateGuest godoc
// @Summary Update a guest's details
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param guestID path string true "Guest ID (UUID)"
// @Param body body UpdateGuestRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.GuestSuccessResponse "data contains the updated guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already on guest list)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests/{guestID} [patch]
func (c *GuestController) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	guestID := r.PathValue("guestID")
	if eventID == "" || guestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or guestID")
		return
	}
	var req UpdateGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	guest, err := c.Service.UpdateGuest(r.Context(), eventID, guestID, hostID, domain.GuestUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		c.writeGuestError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guest)
}

// CheckInGuest godoc
// @Summary Check in a guest manually
// @Description Marks the guest as present. A second check-in returns 409 with the unchanged record.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param guestID path string true "Guest ID (UUID)"
// @Success 200 {object} controllers.GuestSuccessResponse "data contains the checked-in guest"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already checked in)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests/{guestID}/checkin [post]
func (c *GuestController) CheckInGuest(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	guestID := r.PathValue("guestID")
	if eventID == "" || guestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or guestID")
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	guest, err := c.Service.CheckInGuest(r.Context(), eventID, guestID, hostID)
	if err != nil {
		c.writeGuestError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guest)
}

// CheckInByToken godoc
// @Summary Check in a guest by QR token
// @Description Resolves the scanned token to a guest and marks them present. No authentication required; the token itself is the credential.
// @Tags guests
// @Accept json
// @Produce json
// @Param body body CheckInRequest true "Scanned check-in token"
// @Success 200 {object} controllers.GuestSuccessResponse "data contains the checked-in guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown token)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already checked in)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin [post]
func (c *GuestController) CheckInByToken(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	guest, err := c.Service.CheckInByToken(r.Context(), req.Token)
	if err != nil {
		c.writeGuestError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guest)
}

// writeGuestError maps guest service errors to API responses.
func (c *GuestController) writeGuestError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already on guest list")
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "guest already checked in")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid guest data")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
