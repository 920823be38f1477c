package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers

	"go-portfolio-site/config"
	_ "go-portfolio-site/docs" // Important for Swagger
	"go-portfolio-site/internal/delivery/http/middleware"
	v1 "go-portfolio-site/internal/delivery/http/v1"
	"go-portfolio-site/internal/usecase"
	"go-portfolio-site/pkg/clock"
	"go-portfolio-site/pkg/email"
	"go-portfolio-site/pkg/logger"
	"go-portfolio-site/pkg/redis"
	"go-portfolio-site/pkg/security"
	"go-portfolio-site/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var shutdownTimeout time.Duration

var rootCmd = &cobra.Command{
	Use:          "portfolio",
	Short:        "Portfolio website with a contact form relayed over SMTP",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

var relayCheckCmd = &cobra.Command{
	Use:   "relay-check",
	Short: "Connect to the SMTP relay, authenticate and quit without sending",
	RunE:  runRelayCheck,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	rootCmd.AddCommand(serveCmd, relayCheckCmd)
}

// @title           Portfolio Site API
// @version         1.0
// @description     Contact form and health endpoints of the portfolio site.
// @host            localhost:3000
// @BasePath        /
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	secLogger := security.InitSecurityLogger("portfolio-site", environment(cfg))
	defer secLogger.Sync()
	logger.Log.Info("Starting portfolio site", "port", cfg.Port, "mode", cfg.GinMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Rate Limit Store (optional)
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting in memory", "error", err)
		} else {
			defer redisClient.Close()
		}
	}
	limiter := middleware.NewRateLimiter(redisClient, nil)

	// 4. Setup Relay
	relay := email.NewSMTPRelay(cfg)
	if !relay.IsConfigured() {
		logger.Log.Warn("SMTP relay not fully configured - contact form will be unavailable")
	}

	// 5. Setup UseCases
	validator, err := validation.NewContactValidator()
	if err != nil {
		return fmt.Errorf("failed to build validator: %w", err)
	}
	dispatcher := usecase.NewNotificationDispatcher(relay, usecase.NewDispatcherConfig(cfg), clock.New())
	contactUC := usecase.NewContactUsecase(validator, dispatcher)
	healthUC := usecase.NewHealthUsecase(relay, limiter.Backend())

	// 6. Setup Router
	setGinMode(cfg.GinMode)
	router, err := v1.NewRouter(v1.RouterDeps{
		ContactUC:   contactUC,
		HealthUC:    healthUC,
		RateLimiter: limiter,
		Clock:       clock.New(),
		Config:      cfg,
	})
	if err != nil {
		return err
	}

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return limiter.Memory().RunCleanup(gctx, 5*time.Minute)
	})
	g.Go(func() error {
		verifyRelay(gctx, relay, cfg.RelayTimeout)
		return nil
	})

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Log.Error("Server stopped with error", "error", err)
		return err
	}

	logger.Log.Info("Server exiting")
	return nil
}

func runRelayCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RelayTimeout)
	defer cancel()

	relay := email.NewSMTPRelay(cfg)
	if err := relay.Verify(ctx); err != nil {
		return err
	}

	cmd.Printf("SMTP relay %s:%s is ready to send as %s\n", cfg.SMTPHost, cfg.SMTPPort, relay.Sender())
	return nil
}

// verifyRelay logs whether the relay accepts connections. Failure is not fatal.
func verifyRelay(ctx context.Context, relay *email.SMTPRelay, timeout time.Duration) {
	if !relay.IsConfigured() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := relay.Verify(ctx); err != nil {
		logger.Log.Warn("SMTP relay verification failed", "error", err)
		return
	}
	logger.Log.Info("SMTP relay ready to send messages")
}

func setGinMode(mode string) {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	default:
		logger.Log.Warn("Unknown GIN_MODE, using release", "mode", mode)
		gin.SetMode(gin.ReleaseMode)
	}
}

func environment(cfg *config.Config) string {
	if cfg.IsProduction() {
		return "production"
	}
	return "development"
}
