package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-moments-backend/internal/config"
	"daily-moments-backend/internal/handlers"
	"daily-moments-backend/internal/middleware"
	"daily-moments-backend/internal/models"
	"daily-moments-backend/internal/repository"
	"daily-moments-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	momentRepo := repository.NewMomentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	// Window configuration is fetched once per session
	windows := make([]models.TimeWindow, 0, len(cfg.Windows))
	for _, w := range cfg.Windows {
		windows = append(windows, models.TimeWindow{
			Label:     w.Label,
			StartHour: w.StartHour,
			EndHour:   w.EndHour,
		})
	}

	clock := services.Clock(time.Now)
	hub := services.NewHub()

	// Initialize services
	blobStore, err := services.NewS3Storage(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}
	profileService := services.NewProfileService(profileRepo, cfg.JWT.Secret, clock)
	friendshipService := services.NewFriendshipService(friendshipRepo, profileRepo, clock)
	invitationService := services.NewInvitationService(
		invitationRepo,
		friendshipRepo,
		profileRepo,
		time.Duration(cfg.Invites.TTLHours)*time.Hour,
		clock,
	)
	windowService := services.NewWindowService(windows, clock)
	momentService := services.NewMomentService(momentRepo, reactionRepo, friendshipRepo, blobStore, windows, clock)

	notifier, err := services.NewAPNSNotifier(cfg.APNS, profileRepo, hub, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create notifier")
	}
	scheduler := services.NewScheduler(notifier, func() bool { return cfg.Notifications.Enabled })

	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(profileService, blobStore)
	invitationHandler := handlers.NewInvitationHandler(invitationService, hub)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService, hub)
	momentHandler := handlers.NewMomentHandler(momentService, friendshipService, blobStore, hub)
	windowHandler := handlers.NewWindowHandler(windowService, momentService)
	wsHandler := handlers.NewWebSocketHandler(hub, profileService, windowService, momentService)

	// Install window reminders and start the delivery loop
	notifierCtx, stopNotifier := context.WithCancel(context.Background())
	defer stopNotifier()
	go notifier.Run(notifierCtx)

	scheduled, err := scheduler.Schedule(context.Background(), windows)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule window reminders")
	}
	log.Info().Int("windows", scheduled).Msg("Window reminders scheduled")

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/profiles", profileHandler.CreateProfile)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(profileService))

			r.Get("/me", profileHandler.GetMe)
			r.Patch("/me", profileHandler.UpdateMe)
			r.Put("/me/push-token", profileHandler.SetPushToken)
			r.Post("/me/avatar/upload", profileHandler.UploadAvatar)

			r.Get("/windows", windowHandler.GetWindows)

			r.Post("/invitations", invitationHandler.GetOrCreate)
			r.Post("/invitations/accept", invitationHandler.Accept)

			r.Get("/friends", friendshipHandler.ListFriends)
			r.Get("/friends/requests", friendshipHandler.ListPending)
			r.Post("/friends/requests", friendshipHandler.SendRequest)
			r.Post("/friends/requests/{user_id}/accept", friendshipHandler.AcceptRequest)
			r.Delete("/friends/{friend_id}", friendshipHandler.RemoveFriend)

			r.Post("/moments", momentHandler.Create)
			r.Post("/moments/upload", momentHandler.Upload)
			r.Post("/moments/reactions/upload", momentHandler.UploadVoice)
			r.Get("/moments/feed", momentHandler.Feed)
			r.Delete("/moments/{moment_id}", momentHandler.Delete)
			r.Post("/moments/{moment_id}/reactions", momentHandler.AddReaction)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	stopNotifier()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
