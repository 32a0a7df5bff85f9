// @title         docqa API
// @version       1.0
// @description   Authenticated question answering over uploaded documents.
// @BasePath      /
// @schemes       http
// @host          localhost:8000
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Authorization header in the form "Bearer <JWT>".
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/artem13815/docqa/docs"

	// internal imports
	"github.com/artem13815/docqa/api/http"
	"github.com/artem13815/docqa/api/http/handlers"
	"github.com/artem13815/docqa/api/http/middleware"
	"github.com/artem13815/docqa/api/http/presenter"
	"github.com/artem13815/docqa/pkg/auth"
	"github.com/artem13815/docqa/pkg/config"
	"github.com/artem13815/docqa/pkg/docqa"
	"github.com/artem13815/docqa/pkg/document"
	"github.com/artem13815/docqa/pkg/health"
	healthpg "github.com/artem13815/docqa/pkg/health/checkers"
	"github.com/artem13815/docqa/pkg/llm"
	"github.com/artem13815/docqa/pkg/llm/gemini"
	"github.com/artem13815/docqa/pkg/llm/openrouter"
	"github.com/artem13815/docqa/pkg/logger"
	"github.com/artem13815/docqa/pkg/metrics"
	pgrepo "github.com/artem13815/docqa/pkg/repository/postgres"
	"github.com/artem13815/docqa/pkg/security/jwt"
	"github.com/artem13815/docqa/pkg/security/password"
	"github.com/artem13815/docqa/pkg/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration from env/.env
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", logger.Err(err))
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and bring the schema up to date
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.NewProm(reg)

	// Wire dependencies
	tokens, err := jwt.NewService(cfg.SecretKey, cfg.AccessTokenTTL())
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	userRepo := pgrepo.NewUserRepository(pool, prom)
	authSvc := auth.NewAuthService(userRepo, password.NewBcryptHasher(cfg.BcryptCost), tokens, tokens)

	model, err := newChatModel(cfg.LLM)
	if err != nil {
		return err
	}
	qa := docqa.NewService(document.NewRegistry(), model, cfg.UploadDir, docqa.WithRecorder(prom))

	// Health service: compose checkers
	readiness := health.NewService(healthpg.NewPostgresChecker(pool))

	app := fiber.New(fiber.Config{
		AppName:   "docqa",
		BodyLimit: int(cfg.MaxUploadBytes) + 1<<20, // room for multipart framing and the question
		ErrorHandler: errorHandler,
	})
	useMiddleware(app, log, prom)

	http.Register(app, http.Routes{
		Auth:        handlers.NewAuthHandler(authSvc, log),
		Chat:        handlers.NewChatHandler(qa, log, cfg.MaxUploadBytes),
		Health:      handlers.NewHealthHandler(readiness, log),
		RequireAuth: jwt.NewAuthMiddleware(authSvc, log),
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", slog.String("port", cfg.Port), slog.String("llm_provider", cfg.LLM.Provider), slog.String("model", llm.Name(model)))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// useMiddleware installs the global chain. recover sits innermost so a
// panicking handler still gets a request log line and metrics.
func useMiddleware(app *fiber.App, log *slog.Logger, prom *metrics.Prom) {
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	app.Use(prom.Middleware())
	app.Use(recover.New())
}

func newChatModel(cfg config.LLM) (llm.ChatModel, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.Timeout), nil
	case config.ProviderOpenRouter:
		return openrouter.New(
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterBaseURL,
			cfg.OpenRouterModel,
			cfg.OpenRouterAppTitle,
			cfg.OpenRouterReferer,
			cfg.Timeout,
		), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// errorHandler renders errors that escape handlers (unknown routes, body
// limit, recovered panics) in the API's error shape. Only fiber's own
// messages reach the client.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return presenter.Error(c, fe.Code, fe.Message)
	}
	slog.Default().ErrorContext(c.UserContext(), "unhandled error", logger.Err(err), slog.String("request_id", presenter.RequestID(c)))
	return presenter.Error(c, fiber.StatusInternalServerError, fiber.ErrInternalServerError.Message)
}
