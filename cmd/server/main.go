package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"partyhaus/config"
	_ "partyhaus/docs"
	"partyhaus/internal/adapters/auth"
	"partyhaus/internal/adapters/email"
	"partyhaus/internal/adapters/storage"
	delivery "partyhaus/internal/delivery/http"
	"partyhaus/internal/delivery/http/controllers"
	"partyhaus/internal/delivery/http/middleware"
	"partyhaus/internal/repository/postgres"
	"partyhaus/internal/services"
	"partyhaus/internal/state"
)

// @title PartyHaus API
// @version 1.0
// @description Event planning backend: events, guest lists, tracked invitation emails, QR check-in, and party games.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}

	// Adapters
	jwtProvider := auth.NewJWTProvider(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(12)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		EndpointURL: cfg.EmailEndpointURL,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		log.Fatalf("mailer init failed: %v", err)
	}
	renderer := email.NewTemplateRenderer()
	objectStore, err := storage.NewObjectStore(storage.StoreConfig{
		Provider: cfg.StorageProvider,
		S3: storage.S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKeyID:   cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		},
	})
	if err != nil {
		log.Fatalf("object store init failed: %v", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	emailLogRepo := postgres.NewEmailLogRepository(db)

	// Services
	userService := services.NewUserService(userRepo, hasher, jwtProvider, cfg.JWTExpiry)
	eventService := services.NewEventService(eventRepo, objectStore, 5*time.Second)
	emailService := services.NewEmailDispatchService(eventRepo, guestRepo, userRepo, emailLogRepo, mailer, renderer, logger)
	guestService := services.NewGuestService(eventRepo, guestRepo, emailLogRepo, emailService, logger)
	gameService := services.NewGameService()

	// Client session state, kept consistent with auth notifications.
	store := state.NewStore(eventRepo, guestRepo, logger)
	go store.Run(ctx, userService.Subscribe())

	// HTTP layer
	router := delivery.NewRouter(delivery.RouterConfig{
		Logger:   logger,
		Verifier: jwtProvider,
		Auth:     controllers.NewAuthController(logger, userService),
		Events:   controllers.NewEventController(logger, eventService),
		Guests:   controllers.NewGuestController(logger, guestService),
		Emails:   controllers.NewEmailController(logger, emailService),
		Games:    controllers.NewGameController(logger, gameService),
	})
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, router))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	store.Wait()
}
