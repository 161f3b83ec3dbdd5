package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"hostel-order-backend/internal/auth"
	"hostel-order-backend/internal/live"
	"hostel-order-backend/internal/store"
)

// Notifier dispatches a push notification job for a newly created order.
type Notifier interface {
	Dispatch(orderID string)
}

// Deps holds the shared dependencies for API handlers.
type Deps struct {
	Store       store.Store
	Hub         *live.Hub
	Tokens      *auth.JWTManager
	Passwords   *auth.PasswordAuthenticator
	OTP         *auth.OTPStore
	Revoker     *auth.Revoker
	Webpush     *webpush.Options
	Notifier    Notifier
	CountryCode string
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	hub         *live.Hub
	tokens      *auth.JWTManager
	passwords   *auth.PasswordAuthenticator
	otp         *auth.OTPStore
	revoker     *auth.Revoker
	webpush     *webpush.Options
	notifier    Notifier
	countryCode string

	// senderNames caches chat sender display names per user ID so repeated
	// message loads don't refetch the same profiles.
	senderNames *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:       d.Store,
		hub:         d.Hub,
		tokens:      d.Tokens,
		passwords:   d.Passwords,
		otp:         d.OTP,
		revoker:     d.Revoker,
		webpush:     d.Webpush,
		notifier:    d.Notifier,
		countryCode: d.CountryCode,
		senderNames: cache.New(10*time.Minute, 30*time.Minute),
	}
}
