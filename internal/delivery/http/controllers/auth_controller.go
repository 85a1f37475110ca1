package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"partyhaus/internal/delivery/http/helpers"
	"partyhaus/internal/delivery/http/middleware"
	"partyhaus/internal/domain"
)

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate implements Validator. Returns error messages for required fields.
func (s SignUpRequest) Validate() []string {
	var errs []string
	if s.Email == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	if s.Name == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if l.Email == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// AuthResponse is the data payload for successful signup and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthSuccessResponse is the success response envelope for signup and login.
type AuthSuccessResponse struct {
	Data  AuthResponse      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MeSuccessResponse is the success response envelope for GET /auth/me (200).
type MeSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewAuthController(logger *slog.Logger, svc domain.UserService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// SignUp godoc
// @Summary Register a new host account
// @Description Creates an account and returns a bearer token plus the user profile.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Account details"
// @Success 201 {object} controllers.AuthSuccessResponse "data contains token and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already registered")
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login godoc
// @Summary Sign in with email and password
// @Description Verifies credentials and returns a bearer token plus the user profile.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} controllers.AuthSuccessResponse "data contains token and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (invalid credentials)"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid credentials")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// LogoutResponse is the data payload for POST /auth/logout (200).
type LogoutResponse struct {
	Status string `json:"status"`
}

// Logout godoc
// @Summary Sign out
// @Description Publishes a sign-out notification. Tokens are stateless; clients discard them.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains status message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.Service.SignOut(r.Context())
	helpers.WriteJSONSuccess(w, http.StatusOK, LogoutResponse{Status: "signed out"})
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MeSuccessResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
