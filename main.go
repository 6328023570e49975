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

	"cabinet-backend/config"
	"cabinet-backend/controllers"
	"cabinet-backend/models"
	"cabinet-backend/persistence"
	"cabinet-backend/routes"
	"cabinet-backend/services"
	"cabinet-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cabinet",
		Short: "Clinic management backend",
	}
	rootCmd.AddCommand(serveCmd(), resetDemoCmd(), reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func resetDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-demo",
		Short: "Replace all data with the demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *services.Store) error {
				if err := store.ResetToDemo(ctx); err != nil {
					return err
				}
				fmt.Println("demo data restored")
				return nil
			})
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Remove appointments and records left without a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *services.Store) error {
				removed, err := store.Reconcile(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%d orphaned records removed\n", removed)
				return nil
			})
		},
	}
}

// app holds what a command needs and how to release it.
type app struct {
	cfg     *config.Config
	store   *services.Store
	hub     *services.NotificationHub
	closers []func() error
}

func (a *app) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

func withStore(ctx context.Context, fn func(context.Context, *services.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a.store)
}

func newApp(ctx context.Context, reg prometheus.Registerer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	utils.InitLogger("cabinet-backend", cfg.Env)
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	a := &app{cfg: cfg}
	backend, err := openBackend(cfg, a)
	if err != nil {
		return nil, err
	}
	policy := persistence.DefaultRetryPolicy()
	policy.MaxRetries = cfg.PersistMaxRetry
	backend = persistence.WithMetrics(persistence.WithRetry(backend, policy), persistence.NewMetrics(reg))

	var sessions persistence.SessionStore = persistence.NewBackendSessionStore(backend)
	if cfg.RedisURL != "" {
		redisSessions, err := persistence.NewRedisSessionStore(ctx, cfg.RedisURL, "")
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		a.closers = append(a.closers, redisSessions.Close)
		sessions = redisSessions
	}

	a.hub = services.NewNotificationHub(cfg.NotificationTTL)
	a.store = services.NewStore(backend, sessions, a.hub,
		services.WithLogger(log.Logger),
		services.WithReminderSender(reminderSender(cfg)),
	)
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("load store: %w", err)
	}
	return a, nil
}

func openBackend(cfg *config.Config, a *app) (persistence.Backend, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := config.ConnectDB(cfg.DatabaseURL, cfg.IsDev())
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		return persistence.NewGormBackend(db)
	case config.DriverSQLite:
		b, err := persistence.NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b.Close)
		return b, nil
	default:
		log.Warn().Msg("memory storage: data is lost on exit")
		return persistence.NewMemoryBackend(), nil
	}
}

// reminderSender sends SMS and WhatsApp through Twilio when credentials are
// set; other channels, or every channel without credentials, are logged.
func reminderSender(cfg *config.Config) services.ReminderSender {
	fallback := services.NewLogSender(log.Logger)
	if !cfg.TwilioEnabled() {
		return fallback
	}
	twilio := services.NewTwilioSender(services.TwilioConfig{
		AccountSID:     cfg.TwilioAccountSID,
		AuthToken:      cfg.TwilioAuthToken,
		PhoneNumber:    cfg.TwilioPhoneNumber,
		WhatsAppNumber: cfg.TwilioWhatsAppNumber,
	})
	return services.ChannelRouter{
		Senders: map[models.ReminderType]services.ReminderSender{
			models.ReminderSMS:      twilio,
			models.ReminderWhatsApp: twilio,
		},
		Default: fallback,
	}
}

func runServer() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, reg)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	reminders := services.NewReminderService(a.store, cfg.ReminderCron, log.Logger)
	if err := reminders.StartScheduler(); err != nil {
		return fmt.Errorf("start reminders: %w", err)
	}
	defer reminders.Stop()

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "development-secret"
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}
	h := controllers.NewHandler(a.store, controllers.Options{
		JWTSecret: secret,
		JWTExpiry: cfg.JWTExpiry(),
		Reminders: reminders,
		Logger:    log.Logger,
	})
	r := routes.SetupRouter(h, routes.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		JWTSecret:   secret,
		Gatherer:    reg,
		Logger:      log.Logger,
	})
	if cfg.IsDev() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		log.Debug().Str("method", route.Method).Str("path", route.Path).Msg("route")
	}
}
