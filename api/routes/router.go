package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/mineralmarket-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/mineralmarket-backend/api/controllers/orders"
	"github.com/angelmondragon/mineralmarket-backend/api/middleware"
	"github.com/angelmondragon/mineralmarket-backend/internal/listings"
	"github.com/angelmondragon/mineralmarket-backend/internal/notifications"
	"github.com/angelmondragon/mineralmarket-backend/internal/settlement"
	"github.com/angelmondragon/mineralmarket-backend/pkg/config"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
	"github.com/angelmondragon/mineralmarket-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/mineralmarket-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer depends on.
type RedisStore interface {
	pkgredis.IdempotencyStore
	pkgredis.RateLimiter
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisStore RedisStore,
	httpMetrics *metrics.HTTPMetrics,
	settlementService settlement.Service,
	listingsService listings.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}

	ordersPolicy := middleware.RateLimitPolicy{
		Name:   "orders",
		Limit:  cfg.RateLimit.OrdersPerWindow,
		Window: cfg.RateLimit.OrdersWindow,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisStore,
		}))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.UserRateLimit(ordersPolicy, redisStore, logg)).Post("/", ordercontrollers.Create(settlementService, logg))
			r.Get("/", ordercontrollers.List(settlementService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(settlementService, logg))
			r.Post("/{orderId}/ship", ordercontrollers.Ship(settlementService, logg))
			r.Post("/{orderId}/deliver", ordercontrollers.Deliver(settlementService, logg))
			r.Post("/{orderId}/confirm", ordercontrollers.Confirm(settlementService, logg))
			r.Post("/{orderId}/dispute", ordercontrollers.Dispute(settlementService, logg))
		})

		r.Get("/listings/{listingId}", controllers.GetListing(listingsService, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, string(enums.ActorRoleAdmin)))
		r.Use(middleware.Idempotency(redisStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", ordercontrollers.Detail(settlementService, logg))
			r.Post("/{orderId}/refund", ordercontrollers.AdminRefund(settlementService, logg))
			r.Post("/{orderId}/resolve", ordercontrollers.AdminResolve(settlementService, logg))
			r.Post("/{orderId}/deliver", ordercontrollers.AdminDeliver(settlementService, logg))
		})
	})

	return r
}
