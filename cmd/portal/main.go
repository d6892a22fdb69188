package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/pathwise/pathwise/internal/api/http"
	authmw "github.com/pathwise/pathwise/internal/auth/middleware"
	"github.com/pathwise/pathwise/internal/config"
	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/db"
	"github.com/pathwise/pathwise/internal/enrich"
	"github.com/pathwise/pathwise/internal/eventlog"
	"github.com/pathwise/pathwise/internal/llm"
	"github.com/pathwise/pathwise/internal/progress"
	"github.com/pathwise/pathwise/internal/quiz"
	"github.com/pathwise/pathwise/internal/rbac"
	"github.com/pathwise/pathwise/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// --- DB (users, durable session_kv, event log) ---
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Error("db open failed", "error", err)
		os.Exit(1)
	}

	// --- Session backend ---
	readyChecks := []func(context.Context) error{dbh.PingContext}
	var sessions progress.Sessions
	switch cfg.SessionBackend {
	case config.SessionRedis:
		redisSessions, err := progress.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("redis dial failed", "error", err)
			os.Exit(1)
		}
		defer redisSessions.Close()
		readyChecks = append(readyChecks, redisSessions.HealthCheck)
		sessions = redisSessions
	case config.SessionSQL:
		sessions = progress.NewSQLSessions(dbh)
	default:
		sessions = progress.NewMemorySessions()
	}

	// --- Content store ---
	store := content.NewStore(cfg.ContentRoot, content.WithStoreLogger(logger))

	// --- Enrichment (optional) ---
	enricher := enrich.New(nil, enrich.WithLogger(logger))
	if cfg.OpenAIAPIKey != "" {
		llmCfg := llm.DefaultConfig()
		llmCfg.APIKey = cfg.OpenAIAPIKey
		llmCfg.Model = cfg.OpenAIModel
		llmCfg.BaseURL = cfg.OpenAIBaseURL
		llmCfg.Timeout = cfg.LLMTimeout
		provider, err := llm.NewOpenAIProvider(llmCfg)
		if err != nil {
			logger.Error("llm provider init failed", "error", err)
			os.Exit(1)
		}
		enricher = enrich.New(llm.WithRetry(provider, llmCfg.Retry),
			enrich.WithCacheSize(cfg.EnrichCacheSize),
			enrich.WithLogger(logger))
	}

	deps := api.Deps{
		Sessions: sessions,
		Content:  store,
		Analyzer: quiz.NewAnalyzer(),
		Enricher: enricher,
		Events:   eventlog.NewRepo(dbh),
		Log:      logger,
	}
	authSvc := authmw.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/session", authmw.SessionHandler(authSvc, dbh))
	r.Post("/auth/login", authmw.LoginHandler(authSvc, dbh, authmw.AdminCredentials{
		Username: cfg.AdminUser,
		PassHash: cfg.AdminPassHash,
	}))

	as, err := storage.NewFSStore(cfg.AssetBasePath)
	if err != nil {
		logger.Error("asset store init failed", "error", err)
		os.Exit(1)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, as)
		})

		pr.Route("/api", func(ar chi.Router) {
			ar.With(rbac.Require("subject:view")).
				Get("/subjects", api.ListSubjectsHandler(deps))
			ar.With(rbac.Require("subject:view")).
				Get("/subjects/{subject}/tags", api.SubjectTagsHandler(deps))
			ar.With(rbac.Require("subject:view")).
				Get("/subjects/{subject}/subtopics", api.SubjectSubtopicsHandler(deps))

			ar.With(rbac.Require("progress:update")).
				Post("/update-progress", api.UpdateProgressHandler(deps))
			ar.With(rbac.Require("progress:view")).
				Get("/check-progress/{subject}/{subtopic}", api.CheckProgressHandler(deps))
			ar.With(rbac.Require("progress:update")).
				Post("/clear-progress", api.ClearProgressHandler(deps))

			ar.With(rbac.Require("quiz:take")).
				Get("/quiz/{subject}/{subtopic}", api.GetQuizHandler(deps))
			ar.With(rbac.Require("quiz:analyze")).
				Post("/analyze-quiz", api.AnalyzeQuizHandler(deps))
			ar.With(rbac.Require("remedial:generate")).
				Post("/generate-remedial-quiz", api.GenerateRemedialHandler(deps))
			ar.With(rbac.Require("progress:view")).
				Get("/recommendations/{subject}/{subtopic}", api.RecommendationsHandler(deps))

			ar.With(rbac.Require("progress:view")).
				Get("/subtopic-prerequisites/{subject}/{subtopic}", api.SubtopicPrerequisitesHandler(deps))
			ar.With(rbac.Require("progress:view")).
				Get("/quiz-prerequisites/{subject}/{subtopic}", api.QuizPrerequisitesHandler(deps))

			ar.With(rbac.Require("lesson:search")).
				Post("/find-lessons-by-tags", api.FindLessonsByTagsHandler(deps))

			ar.With(rbac.Require("admin:override")).
				Get("/admin/override-status", api.OverrideStatusHandler(deps))
			ar.With(rbac.Require("admin:override")).
				Post("/admin/toggle-override", api.ToggleOverrideHandler(deps))
			ar.With(rbac.Require("content:manage")).
				Post("/admin/reload-content", api.ReloadContentHandler(deps))
			ar.With(rbac.Require("admin:audit")).
				Get("/admin/progress-events/{session}", api.ProgressEventsHandler(deps))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", api.ReadyzHandler(readyChecks...))

	logger.Info("listening", "addr", cfg.HTTPAddr,
		"sessions", string(cfg.SessionBackend), "db", cfg.DBDriver,
		"enrichment", enricher.Available())
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
