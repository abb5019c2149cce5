// Package app wires configuration, storage, services and the HTTP
// router into a runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Sirneij/cryptoflow/internal/config"
	"github.com/Sirneij/cryptoflow/internal/database"
	"github.com/Sirneij/cryptoflow/internal/http/handler"
	appmiddleware "github.com/Sirneij/cryptoflow/internal/http/middleware"
	"github.com/Sirneij/cryptoflow/internal/observability"
	"github.com/Sirneij/cryptoflow/internal/repository"
	"github.com/Sirneij/cryptoflow/internal/security"
	"github.com/Sirneij/cryptoflow/internal/service"
	"github.com/Sirneij/cryptoflow/internal/session"
)

// Credential endpoints are throttled per client IP so passwords and
// activation codes cannot be guessed at line rate.
const (
	credentialRateLimit  = 10
	credentialRateWindow = time.Minute
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Server *http.Server

	db    *gorm.DB
	redis *redis.Client
}

// New loads configuration, connects to Postgres and Redis, runs
// migrations, seeds the superuser and assembles the HTTP server.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	hasher := security.NewPasswordHasher(security.DefaultArgon2Params(), cfg.MaxConcurrentHashes)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.SeedSuperuser(seedCtx, repository.NewUserRepository(db), hasher, cfg.Superuser); err != nil {
		return nil, err
	}

	router := Build(cfg, logger, db, rdb, hasher)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &App{Config: cfg, Logger: logger, Server: server, db: db, redis: rdb}, nil
}

// Close releases the database and Redis connections after the server
// has shut down.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// Build assembles the full request-handling stack on top of existing
// database and Redis handles. Tests use it to run the real router
// against sqlite and miniredis.
func Build(cfg *config.Config, logger *slog.Logger, db *gorm.DB, rdb redis.UniversalClient, hasher *security.PasswordHasher) http.Handler {
	users := repository.NewUserRepository(db)
	questions := repository.NewQuestionRepository(db)
	answers := repository.NewAnswerRepository(db)
	tags := repository.NewTagRepository(db)

	sessions := session.NewStore(rdb)
	codes := session.NewActivationStore(rdb)
	cookies := security.NewCookieManager(cfg.CookieSecure)
	notifier := service.NewDevActivationNotifier(logger)

	auth := service.NewAuthService(users, hasher, sessions, codes, notifier, logger, cfg.SessionTTL, cfg.ActivationTTL)
	content := service.NewContentService(questions, answers, tags, service.NewMarkdownRenderer(), logger)

	userHandler := handler.NewUserHandler(auth, cookies, logger)
	qaHandler := handler.NewQAHandler(content, logger)
	authenticate := appmiddleware.Authenticate(auth, logger)
	throttle := appmiddleware.NewThrottle(rdb, credentialRateLimit, credentialRateWindow, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", healthHandler(db, rdb))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.With(throttle.Limit("register")).Post("/register", userHandler.Register)
			r.With(throttle.Limit("activate")).Post("/activate", userHandler.Activate)
			r.With(throttle.Limit("login")).Post("/login", userHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/logout", userHandler.Logout)
				r.Get("/current", userHandler.Current)
			})
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", qaHandler.ListQuestions)
			r.Get("/{slug}", qaHandler.GetQuestion)
			r.Get("/{question_id}/answers", qaHandler.ListAnswers)
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", qaHandler.AskQuestion)
				r.Put("/{question_id}", qaHandler.UpdateQuestion)
				r.Delete("/{question_id}", qaHandler.DeleteQuestion)
				r.Post("/{question_id}/answers", qaHandler.AnswerQuestion)
			})
		})

		r.Route("/answers", func(r chi.Router) {
			r.Use(authenticate)
			r.Put("/{answer_id}", qaHandler.UpdateAnswer)
			r.Delete("/{answer_id}", qaHandler.DeleteAnswer)
		})

		r.Get("/tags", qaHandler.ListTags)
	})

	return r
}

func healthHandler(db *gorm.DB, rdb redis.UniversalClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := `{"status":"ok"}`
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status = http.StatusServiceUnavailable
			body = `{"status":"database unavailable"}`
		} else if err := rdb.Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			body = `{"status":"session store unavailable"}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
