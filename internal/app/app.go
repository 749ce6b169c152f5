// Package app assembles the agent from its configuration and runs it
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	gormlogger "gorm.io/gorm/logger"

	"github.com/celestiaorg/echo-agent/internal/agent"
	"github.com/celestiaorg/echo-agent/internal/api/middleware"
	"github.com/celestiaorg/echo-agent/internal/config"
	"github.com/celestiaorg/echo-agent/internal/db"
	"github.com/celestiaorg/echo-agent/internal/db/repos"
	"github.com/celestiaorg/echo-agent/internal/events"
	"github.com/celestiaorg/echo-agent/internal/logger"
	"github.com/celestiaorg/echo-agent/internal/metrics"
	"github.com/celestiaorg/echo-agent/internal/payment"
	"github.com/celestiaorg/echo-agent/internal/services"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/handlers"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/routes"
)

const (
	shutdownTimeout        = 10 * time.Second
	limiterCleanupInterval = 10 * time.Minute
)

// App holds the wired components of a running agent
type App struct {
	Fiber *fiber.App

	cfg        *config.Config
	jobService *services.Job
	bus        *events.Bus
	limiter    *middleware.RateLimiter
	closeStore func() error

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds the agent described by cfg. Invalid payment settings do not prevent
// startup: the paid endpoint reports them while direct jobs keep working.
func New(cfg *config.Config, version string) (*App, error) {
	mode, err := agent.ParseMode(cfg.AgentMode)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := newStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	gateway, paymentErr := newGateway(cfg.Payment)
	if paymentErr != nil {
		logger.Warnf("Payment service not configured, paid jobs are disabled: %v", paymentErr)
	}

	amounts := []payment.Amount{{Amount: cfg.Payment.Amount, Unit: cfg.Payment.Unit}}
	bus := events.NewBus()
	jobService := services.NewJobService(store, gateway, bus, services.JobOptions{
		Mode:             mode,
		PaymentTimeout:   cfg.Payment.Timeout,
		Amounts:          amounts,
		PaymentConfigErr: paymentErr,
	})
	jobService.Subscribe(bus)

	info := handlers.AgentInfo{
		Version:         version,
		Mode:            string(mode),
		AgentIdentifier: cfg.Payment.AgentIdentifier,
		SellerVKey:      cfg.Payment.SellerVKey,
		Network:         cfg.Payment.Network,
		Amounts:         amounts,
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	app := fiber.New(fiber.Config{
		AppName:               "echo-agent " + version,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(middleware.Logger())
	app.Use(middleware.Metrics("/metrics"))

	routes.RegisterRoutes(app,
		handlers.NewJobHandler(jobService, info),
		handlers.NewAgentHandler(jobService, info, routes.PublicEndpoints()),
		routes.Options{
			EnableDebug:    cfg.EnableDebugEndpoints,
			RateLimit:      limiter.Handler(),
			MetricsHandler: adaptor.HTTPHandler(metrics.Handler()),
		},
	)

	return &App{
		Fiber:      app,
		cfg:        cfg,
		jobService: jobService,
		bus:        bus,
		limiter:    limiter,
		closeStore: closeStore,
	}, nil
}

// Start launches the event bus and the background workers. They stop when ctx
// is cancelled or Stop is called.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.bus.Start(ctx)
	a.wg.Add(1)
	go services.LaunchPaymentWorker(ctx, &a.wg, a.jobService, a.cfg.ExpirySweepInterval)
	a.limiter.StartCleanup(limiterCleanupInterval, ctx.Done())
}

// Stop stops the background workers, waits for in-flight event handlers and
// releases the job store
func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.bus.Wait()
	return a.Close()
}

// Run serves the API until ctx is cancelled or the listener fails, then shuts
// down the server and the background workers.
func (a *App) Run(ctx context.Context) error {
	a.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.InfoWithFields("Starting echo agent", map[string]interface{}{
			"port":  a.cfg.Port,
			"mode":  a.cfg.AgentMode,
			"store": a.cfg.Database.Driver,
		})
		errCh <- a.Fiber.Listen(":" + a.cfg.Port)
	}()

	var listenErr error
	select {
	case listenErr = <-errCh:
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		if err := a.Fiber.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Errorf("Server shutdown error: %v", err)
		}
	}

	return errors.Join(listenErr, a.Stop())
}

// Close releases the job store
func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

// newStore opens the job store selected by the configuration
func newStore(cfg config.DatabaseConfig) (repos.JobStore, func() error, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory, "":
		return repos.NewMemoryJobRepository(), nil, nil
	case config.StoreDriverSQLite:
		gdb, err := db.NewSQLite(cfg.SQLitePath, gormlogger.Warn)
		if err != nil {
			return nil, nil, err
		}
		return repos.NewJobRepository(gdb), func() error { return db.Close(gdb) }, nil
	case config.StoreDriverPostgres:
		gdb, err := db.New(db.Options{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.Name,
			SSLMode:  cfg.SSLMode,
		})
		if err != nil {
			return nil, nil, err
		}
		return repos.NewJobRepository(gdb), func() error { return db.Close(gdb) }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// newGateway returns the payment client, or the reason the paid path is unavailable
func newGateway(cfg config.PaymentConfig) (payment.Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := payment.NewClient(payment.Options{
		BaseURL:         cfg.ServiceURL,
		APIKey:          cfg.APIKey,
		AgentIdentifier: cfg.AgentIdentifier,
		Network:         cfg.Network,
		Timeout:         cfg.GatewayTimeout,
		Retries:         cfg.GatewayRetries,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// errorHandler answers errors that escaped the handlers, such as unknown routes
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	slug := handlers.ServerErrorSlug
	msg := handlers.ErrMsgInternal

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
		switch {
		case code == fiber.StatusNotFound:
			slug = handlers.NotFoundSlug
		case code < fiber.StatusInternalServerError:
			slug = handlers.InvalidInputSlug
		}
	} else {
		logger.Errorf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(handlers.Response{Slug: slug, Error: msg})
}
