package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"slotbook/cmd/internal/app"
	"slotbook/cmd/internal/config"
	"slotbook/cmd/internal/domain/database"
	"slotbook/cmd/internal/logger"
	"slotbook/cmd/internal/routes"
	"slotbook/cmd/internal/utils/apierror"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	zlog, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	e := newServer(cfg, zlog)
	routes.Register(e,
		routes.NewAppointmentDefault(application.Appointments),
		routes.NewSuggestionDefault(application.Suggestions),
		routes.NewHealthRoute(database.NewPinger(application.DB)),
		suggestionRateLimiter(&cfg.Suggestion),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("Server is shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Error("Server stopped with error", zap.Error(err))
		return
	}
	zlog.Info("Server stopped gracefully")
}

func newServer(cfg *config.Config, zlog *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	if cfg.IsProduction() {
		e.Logger.SetLevel(log.WARN)
	} else {
		e.Logger.SetLevel(log.INFO)
	}

	httpLog := zlog.Named("http")
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				httpLog.Warn("Request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			httpLog.Info("Request", fields...)
			return nil
		},
	}))
	e.Use(middleware.CORS())
	return e
}

// suggestionRateLimiter throttles model calls per client IP.
func suggestionRateLimiter(cfg *config.SuggestionConfig) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RatePerMinute / 60),
		Burst:     cfg.RateBurst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, apierror.NewSimple(http.StatusForbidden, "Could not identify client"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(apierror.RateLimitedError.Code(), apierror.RateLimitedError)
		},
	})
}
