package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/sanskruthi/fest-service/internal/api/http"
	"github.com/sanskruthi/fest-service/internal/api/http/handlers"
	"github.com/sanskruthi/fest-service/internal/auth"
	"github.com/sanskruthi/fest-service/internal/bootstrap"
	"github.com/sanskruthi/fest-service/internal/catalog"
	"github.com/sanskruthi/fest-service/internal/checkin"
	"github.com/sanskruthi/fest-service/internal/config"
	"github.com/sanskruthi/fest-service/internal/events"
	"github.com/sanskruthi/fest-service/internal/observability"
	"github.com/sanskruthi/fest-service/internal/qr"
	"github.com/sanskruthi/fest-service/internal/service"
	"github.com/sanskruthi/fest-service/internal/storage"
	"github.com/sanskruthi/fest-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	images, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init image storage", zap.Error(err))
	}

	eventCatalog, err := catalog.Load(cfg.Event.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load event catalog", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.Start(dispatcher, worker.Deps{
		Notifications: notifications,
		AttendanceLog: stores.AttendanceLog,
		Logger:        logger,
	})

	authService, err := service.NewAuthService(cfg.Auth, auth.NewGoogleVerifier(cfg.Auth.GoogleClientID), logger)
	if err != nil {
		logger.Fatal("failed to init auth", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	registrationService := service.NewRegistrationService(service.RegistrationDependencies{
		Registrations: stores.Registrations,
		Images:        images,
		Dispatcher:    dispatcher,
		MaxPhotoBytes: cfg.Storage.MaxUploadBytes,
		Logger:        logger,
	})
	bookingService := service.NewBookingService(stores.Bookings, eventCatalog, dispatcher, logger)

	mutator := checkin.NewMutator(stores.Attendance, stores.Locker, cfg.Scanner.LockTTL())
	consoles := checkin.NewManager(checkin.ManagerDeps{
		Resolver:   checkin.NewResolver(stores.Registrations, stores.Attendance),
		Mutator:    mutator,
		NewDecoder: func() checkin.Decoder { return qr.NewDecoder() },
		Events:     dispatcher,
		Logger:     logger,
	}, checkin.Options{
		ScanInterval:   cfg.Scanner.ScanInterval(),
		RecoveryDelay:  cfg.Scanner.RecoveryDelay(),
		SuccessHold:    cfg.Scanner.SuccessHold(),
		ResolveTimeout: cfg.Scanner.ResolveTimeout(),
	}, cfg.Scanner.FrameBuffer)
	defer consoles.CloseAll()

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
		BodyLimit:    cfg.App.BodyLimitBytes,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, stores.Checks...),
		Event:          handlers.NewEventHandler(eventCatalog),
		Auth:           handlers.NewAuthHandler(authService),
		Registrations:  handlers.NewRegistrationsHandler(registrationService),
		Bookings:       handlers.NewBookingsHandler(bookingService),
		Consoles:       handlers.NewConsolesHandler(consoles, mutator),
		AttendanceLog:  handlers.NewAttendanceLogHandler(stores.AttendanceLog),
		AuthMiddleware: authMiddleware,
	}
	if local, ok := images.(*storage.LocalHost); ok {
		routes.UploadsDir = local.Dir()
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	consoles.CloseAll()
	_ = app.Shutdown()
	notifications.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
