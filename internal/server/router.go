package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/config"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	staff handler.StaffHandler,
	customers handler.CustomerHandler,
	catalog handler.CatalogHandler,
	bookings handler.BookingHandler,
	pending handler.PendingBookingHandler,
	combos handler.ComboHandler,
	tasks handler.TaskHandler,
	points handler.PointsHandler,
	pointRequests handler.PointRequestHandler,
	warnings handler.WarningHandler,
	notifications handler.NotificationHandler,
	schedules handler.ScheduleHandler,
	dashboard handler.DashboardHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// staff-level (staff/manager/admin)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleStaff))
			auth.RegisterProtectedRoutes(sr)
			customers.RegisterRoutes(sr)
			catalog.RegisterRoutes(sr)
			bookings.RegisterRoutes(sr)
			pending.RegisterRoutes(sr)
			combos.RegisterRoutes(sr)
			tasks.RegisterRoutes(sr)
			points.RegisterRoutes(sr)
			pointRequests.RegisterRoutes(sr)
			warnings.RegisterRoutes(sr)
			notifications.RegisterRoutes(sr)
			schedules.RegisterRoutes(sr)
		})
		// manager-level (manager/admin)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			staff.RegisterRoutes(mr)
			catalog.RegisterAdminRoutes(mr)
			bookings.RegisterManagerRoutes(mr)
			pending.RegisterManagerRoutes(mr)
			tasks.RegisterManagerRoutes(mr)
			points.RegisterManagerRoutes(mr)
			pointRequests.RegisterManagerRoutes(mr)
			warnings.RegisterManagerRoutes(mr)
			schedules.RegisterManagerRoutes(mr)
			dashboard.RegisterRoutes(mr)
		})
	})

	return r
}
