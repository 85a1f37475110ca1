package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"partyhaus/internal/delivery/http/helpers"
	"partyhaus/internal/delivery/http/middleware"
	"partyhaus/internal/domain"
)

// RecommendGamesRequest is the request body for POST /events/{eventID}/games/recommendations.
type RecommendGamesRequest struct {
	GuestCount   int      `json:"guest_count"`
	DurationMins int      `json:"duration_mins"`
	EnergyLevel  int      `json:"energy_level"`
	Indoor       bool     `json:"indoor"`
	Vibes        []string `json:"vibes"`
}

// Validate implements Validator. Energy level is a 1..5 scale; zero means unspecified.
func (r RecommendGamesRequest) Validate() []string {
	var errs []string
	if r.GuestCount < 0 {
		errs = append(errs, "guest_count must not be negative")
	}
	if r.EnergyLevel < 0 || r.EnergyLevel > 5 {
		errs = append(errs, "energy_level must be between 0 and 5")
	}
	return errs
}

// StartGameRequest is the request body for POST /events/{eventID}/games.
type StartGameRequest struct {
	TemplateID   string   `json:"template_id"`
	Participants []string `json:"participants"`
}

// Validate implements Validator.
func (s StartGameRequest) Validate() []string {
	var errs []string
	if s.TemplateID == "" {
		errs = append(errs, "template_id is required")
	}
	if len(s.Participants) == 0 {
		errs = append(errs, "participants are required")
	}
	return errs
}

// RecordScoreRequest is the request body for POST /games/{sessionID}/scores.
type RecordScoreRequest struct {
	Participant string `json:"participant"`
	Points      int    `json:"points"`
}

// Validate implements Validator.
func (r RecordScoreRequest) Validate() []string {
	if r.Participant == "" {
		return []string{"participant is required"}
	}
	return nil
}

// GameSessionSuccessResponse is the success response envelope for game session endpoints.
type GameSessionSuccessResponse struct {
	Data  *domain.GameSession `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListTemplatesSuccessResponse is the success response envelope for GET /games/templates (200).
type ListTemplatesSuccessResponse struct {
	Data  []*domain.GameTemplate `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// RecommendationsSuccessResponse is the success response envelope for POST /events/{eventID}/games/recommendations (200).
type RecommendationsSuccessResponse struct {
	Data  []*domain.GameRecommendation `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

type GameController struct {
	Logger  *slog.Logger
	Service domain.GameService
}

func NewGameController(logger *slog.Logger, svc domain.GameService) *GameController {
	return &GameController{
		Logger:  logger,
		Service: svc,
	}
}

// ListTemplates godoc
// @Summary List the game template catalog
// @Tags games
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListTemplatesSuccessResponse "data contains the template catalog"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /games/templates [get]
func (c *GameController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Service.ListTemplates())
}

// RecommendGames godoc
// @Summary Recommend games for an event profile
// @Description Scores every catalog template against the posted profile and returns matches above the threshold, best first.
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RecommendGamesRequest true "Event profile"
// @Success 200 {object} controllers.RecommendationsSuccessResponse "data contains scored recommendations"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/{eventID}/games/recommendations [post]
func (c *GameController) RecommendGames(w http.ResponseWriter, r *http.Request) {
	var req RecommendGamesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	recs := c.Service.RecommendGames(domain.EventProfile{
		GuestCount:   req.GuestCount,
		DurationMins: req.DurationMins,
		EnergyLevel:  req.EnergyLevel,
		Indoor:       req.Indoor,
		Vibes:        req.Vibes,
	})
	helpers.WriteJSONSuccess(w, http.StatusOK, recs)
}

// StartSession godoc
// @Summary Start a game session
// @Description Starts an in-memory game session for the event with the given participants.
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body StartGameRequest true "Template and participants"
// @Success 201 {object} controllers.GameSessionSuccessResponse "data contains the started session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown template)"
// @Router /events/{eventID}/games [post]
func (c *GameController) StartSession(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req StartGameRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	session, err := c.Service.StartSession(r.Context(), eventID, hostID, req.TemplateID, req.Participants)
	if err != nil {
		c.writeGameError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, session)
}

// GetSession godoc
// @Summary Get a game session
// @Tags games
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.GameSessionSuccessResponse "data contains the session"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /games/{sessionID} [get]
func (c *GameController) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	session, err := c.Service.GetSession(r.Context(), sessionID)
	if err != nil {
		c.writeGameError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// PauseSession godoc
// @Summary Pause a running game session
// @Tags games
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.GameSessionSuccessResponse "data contains the paused session"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not in progress)"
// @Router /games/{sessionID}/pause [post]
func (c *GameController) PauseSession(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.PauseSession)
}

// ResumeSession godoc
// @Summary Resume a paused game session
// @Tags games
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.GameSessionSuccessResponse "data contains the resumed session"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not paused)"
// @Router /games/{sessionID}/resume [post]
func (c *GameController) ResumeSession(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.ResumeSession)
}

// CompleteSession godoc
// @Summary Complete a game session
// @Tags games
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} controllers.GameSessionSuccessResponse "data contains the completed session"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already completed)"
// @Router /games/{sessionID}/complete [post]
func (c *GameController) CompleteSession(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.CompleteSession)
}

// RecordScore godoc
// @Summary Record points for a participant
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Param body body RecordScoreRequest true "Participant and points"
// @Success 200 {object} controllers.GameSessionSuccessResponse "data contains the updated session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown participant)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not in progress)"
// @Router /games/{sessionID}/scores [post]
func (c *GameController) RecordScore(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	var req RecordScoreRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	session, err := c.Service.RecordScore(r.Context(), sessionID, hostID, req.Participant, req.Points)
	if err != nil {
		c.writeGameError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// transition runs one of the pause/resume/complete service calls and writes
// the resulting session or error.
func (c *GameController) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID, hostID string) (*domain.GameSession, error)) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	session, err := op(r.Context(), sessionID, hostID)
	if err != nil {
		c.writeGameError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

func (c *GameController) writeGameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidTransition):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "invalid session state")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid game data")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
