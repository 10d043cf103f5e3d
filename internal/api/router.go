package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parking-reservation-backend/internal/auth"
	"parking-reservation-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, rateLimit rate.Limit, burst int, cacheTTL time.Duration) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rateLimit, burst)

	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// Availability listing is the hot path, so responses are cached.
		api.GET("/lots", caching, h.GetLots)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(h.tokens.Authenticate())
		{
			authed.GET("/reservations", h.GetReservations)
			authed.POST("/reservations", h.CreateReservation)
			authed.POST("/reservations/:id/start", h.StartReservation)
			authed.POST("/reservations/:id/end", h.EndReservation)
			authed.POST("/reservations/:id/cancel", h.CancelReservation)
			authed.GET("/reservations/:id/cost", h.GetLiveCost)
			authed.GET("/summary", h.GetUserSummary)
		}

		admin := api.Group("/admin")
		admin.Use(h.tokens.Authenticate(), auth.RequireAdmin())
		{
			admin.POST("/lots", h.CreateLot)
			admin.PUT("/lots/:id", h.UpdateLot)
			admin.DELETE("/lots/:id", h.DeactivateLot)
			admin.GET("/summary", h.GetAdminSummary)
		}
	}

	return r
}
