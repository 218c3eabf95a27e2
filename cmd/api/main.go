package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/hkarim/account-service/docs"
	"github.com/hkarim/account-service/internal/auth"
	"github.com/hkarim/account-service/internal/config"
	"github.com/hkarim/account-service/internal/database"
	"github.com/hkarim/account-service/internal/mailer"
	"github.com/hkarim/account-service/internal/migrations"
	"github.com/hkarim/account-service/internal/user"
	"github.com/hkarim/account-service/pkg/logger"
	mw "github.com/hkarim/account-service/pkg/middleware"
)

// @title           Account Service API
// @version         1.0
// @description     User accounts: registration, sessions, CRUD and avatars.
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	log := logger.New("account-service")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("connected to database")

	// Collaborators
	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.TokenSignKey, cfg.TokenIssuer, cfg.TokenTTL)
	mail := mailer.NewLogMailer(cfg.MailFrom, log)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, hasher, tokens, mail, log)
	authMiddleware := mw.Authenticate(tokens, userService)
	userHandler := user.NewHandler(userService, authMiddleware, cfg.MaxUploadBytes)

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(mw.RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())
	})

	log.Info().Str("addr", cfg.Addr).Msg("server starting")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
