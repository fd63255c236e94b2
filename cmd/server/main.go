package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/catzoCode/catzoteam-project/internal/config"
	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/handler"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/catzoCode/catzoteam-project/internal/server"
	"github.com/catzoCode/catzoteam-project/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// repositories
	staffRepo := repository.StaffRepository{DB: pg}
	customerRepo := repository.CustomerRepository{DB: pg}
	catalogRepo := repository.CatalogRepository{DB: pg}
	pointsRepo := repository.PointsRepository{DB: pg}
	bookingRepo := repository.BookingRepository{DB: pg}
	pendingRepo := repository.PendingBookingRepository{DB: pg}
	comboRepo := repository.ComboRepository{DB: pg}
	taskRepo := repository.TaskRepository{DB: pg}
	pointRequestRepo := repository.PointRequestRepository{DB: pg}
	warningRepo := repository.WarningRepository{DB: pg}
	notificationRepo := repository.NotificationRepository{DB: pg}
	scheduleRepo := repository.ScheduleRepository{DB: pg}
	activityRepo := repository.ActivityLogRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}

	if err := catalogRepo.SeedDefaults(ctx); err != nil {
		logger.Error("failed to seed catalog", "err", err)
		os.Exit(1)
	}

	// services
	authSvc := service.AuthService{Config: cfg, Staff: staffRepo, Logger: logger}
	bookingSvc := service.BookingService{
		Bookings: bookingRepo,
		Catalog:  catalogRepo,
		Combos:   comboRepo,
		Cats:     customerRepo,
		Notify:   notificationRepo,
		Activity: activityRepo,
		Logger:   logger,
	}
	pendingSvc := service.PendingBookingService{
		Pending:  pendingRepo,
		Catalog:  catalogRepo,
		Cats:     customerRepo,
		Notify:   notificationRepo,
		Activity: activityRepo,
		Logger:   logger,
	}
	expirySvc := service.ExpiryService{
		Pending: pendingRepo,
		Notify:  notificationRepo,
		Logger:  logger,
		Tick:    cfg.ExpirySweepTick,
	}
	taskSvc := service.TaskService{
		Tasks:    taskRepo,
		Notify:   notificationRepo,
		Activity: activityRepo,
		Logger:   logger,
	}
	pointsSvc := service.PointsService{Points: pointsRepo, Logger: logger}
	pointRequestSvc := service.PointRequestService{
		Requests: pointRequestRepo,
		Notify:   notificationRepo,
		Activity: activityRepo,
		Logger:   logger,
	}
	warningSvc := service.WarningService{
		Warnings: warningRepo,
		Notify:   notificationRepo,
		Logger:   logger,
	}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	staffHandler := handler.StaffHandler{Repo: staffRepo, Auth: &authSvc}
	customerHandler := handler.CustomerHandler{Repo: customerRepo}
	catalogHandler := handler.CatalogHandler{Repo: catalogRepo}
	bookingHandler := handler.BookingHandler{Service: bookingSvc, Tasks: taskSvc, Branch: cfg.DefaultBranch}
	pendingHandler := handler.PendingBookingHandler{Service: pendingSvc, Expiry: expirySvc, Branch: cfg.DefaultBranch}
	comboHandler := handler.ComboHandler{Repo: comboRepo}
	taskHandler := handler.TaskHandler{Service: taskSvc}
	pointsHandler := handler.PointsHandler{Service: pointsSvc}
	pointRequestHandler := handler.PointRequestHandler{Service: pointRequestSvc}
	warningHandler := handler.WarningHandler{Service: warningSvc}
	notificationHandler := handler.NotificationHandler{Repo: notificationRepo}
	scheduleHandler := handler.ScheduleHandler{Repo: scheduleRepo}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo, Activity: activityRepo}

	go expirySvc.Start(ctx)

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, staffHandler, customerHandler, catalogHandler,
		bookingHandler, pendingHandler, comboHandler, taskHandler, pointsHandler,
		pointRequestHandler, warningHandler, notificationHandler, scheduleHandler,
		dashboardHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
