package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"partyhaus/internal/delivery/http/controllers"
	"partyhaus/internal/delivery/http/middleware"
	"partyhaus/internal/domain"
)

// RouterConfig carries everything NewRouter needs to wire the routes.
type RouterConfig struct {
	Logger   *slog.Logger
	Verifier domain.TokenVerifier

	Auth   *controllers.AuthController
	Events *controllers.EventController
	Guests *controllers.GuestController
	Emails *controllers.EmailController
	Games  *controllers.GameController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", cfg.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)
	mux.HandleFunc("POST /auth/logout", auth(cfg.Auth.Logout))
	mux.HandleFunc("GET /auth/me", auth(cfg.Auth.Me))

	// Events
	mux.HandleFunc("GET /events/me", auth(cfg.Events.ListMyEvents))
	mux.HandleFunc("POST /events", auth(cfg.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(cfg.Events.GetEventByID))
	mux.HandleFunc("PATCH /events/{eventID}", auth(cfg.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(cfg.Events.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/invite-image", auth(cfg.Events.UploadInviteImage))

	// Guests
	mux.HandleFunc("GET /events/{eventID}/guests", auth(cfg.Guests.ListGuests))
	mux.HandleFunc("POST /events/{eventID}/guests", auth(cfg.Guests.AddGuest))
	mux.HandleFunc("PATCH /events/{eventID}/guests/{guestID}", auth(cfg.Guests.UpdateGuest))
	mux.HandleFunc("POST /events/{eventID}/guests/{guestID}/checkin", auth(cfg.Guests.CheckInGuest))
	// Public: the scanned token is the credential.
	mux.HandleFunc("POST /checkin", cfg.Guests.CheckInByToken)

	// Emails
	mux.HandleFunc("POST /events/{eventID}/guests/{guestID}/emails", auth(cfg.Emails.SendGuestEmail))
	mux.HandleFunc("POST /email-logs/{logID}/resend", auth(cfg.Emails.ResendEmail))
	mux.HandleFunc("GET /events/{eventID}/email-logs", auth(cfg.Emails.ListEmailLogs))
	mux.HandleFunc("GET /events/{eventID}/email-analytics", auth(cfg.Emails.EmailAnalytics))
	// Public: called by the email provider.
	mux.HandleFunc("POST /webhooks/email", cfg.Emails.DeliveryWebhook)

	// Games
	mux.HandleFunc("GET /games/templates", auth(cfg.Games.ListTemplates))
	mux.HandleFunc("POST /events/{eventID}/games/recommendations", auth(cfg.Games.RecommendGames))
	mux.HandleFunc("POST /events/{eventID}/games", auth(cfg.Games.StartSession))
	mux.HandleFunc("GET /games/{sessionID}", auth(cfg.Games.GetSession))
	mux.HandleFunc("POST /games/{sessionID}/pause", auth(cfg.Games.PauseSession))
	mux.HandleFunc("POST /games/{sessionID}/resume", auth(cfg.Games.ResumeSession))
	mux.HandleFunc("POST /games/{sessionID}/complete", auth(cfg.Games.CompleteSession))
	mux.HandleFunc("POST /games/{sessionID}/scores", auth(cfg.Games.RecordScore))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
