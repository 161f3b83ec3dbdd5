package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hostel-order-backend/internal/mw"
)

// RouterConfig tunes the middleware on the router.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	requireAuth := mw.RequireAuth(handler.tokens, handler.revoker)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Authentication and phone verification.
		api.POST("/auth/signup", handler.Signup)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/otp/send", handler.SendOTP)
		api.POST("/auth/otp/verify", handler.VerifyOTP)
		api.POST("/auth/logout", requireAuth, handler.Logout)
		api.GET("/auth/session", requireAuth, handler.Session)

		// Profile and creator lookups. User documents change rarely, so
		// lookups are served through the response cache.
		api.GET("/profile", requireAuth, handler.Profile)
		api.GET("/users/:user_id", requireAuth, caching, handler.GetUser)

		// Hostel order board.
		api.GET("/hostels/:hostel_id/orders", requireAuth, handler.ListOrders)
		api.POST("/hostels/:hostel_id/orders", requireAuth, handler.CreateOrder)
		api.GET("/hostels/:hostel_id/orders/ws", requireAuth, handler.BoardWS)

		// Order detail: participants, items, summary.
		api.GET("/orders/:order_id", requireAuth, handler.GetOrder)
		api.GET("/orders/:order_id/ws", requireAuth, handler.OrderWS)
		api.POST("/orders/:order_id/participants", requireAuth, handler.AddParticipant)
		api.POST("/orders/:order_id/participants/:participant_id/items", requireAuth, handler.AddItem)

		// Group chat.
		api.GET("/orders/:order_id/messages", requireAuth, handler.ListMessages)
		api.POST("/orders/:order_id/messages", requireAuth, handler.SendMessage)
		api.GET("/orders/:order_id/messages/ws", requireAuth, handler.ChatWS)

		// Web push subscriptions.
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
