// Package api exposes the reservation service over HTTP.
package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"conferent-backend/internal/auth"
	"conferent-backend/internal/booking"
	"conferent-backend/internal/invite"
	"conferent-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	bookings   *booking.Service
	invites    *invite.Manager
	auth       *auth.Service
	webpush    *webpush.Options
	loc        *time.Location
	bcryptCost int
}

// Deps are the services a Handler serves.
type Deps struct {
	Store      store.Store
	Bookings   *booking.Service
	Invites    *invite.Manager
	Auth       *auth.Service
	WebPush    *webpush.Options
	Location   *time.Location
	BcryptCost int
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		store:      d.Store,
		bookings:   d.Bookings,
		invites:    d.Invites,
		auth:       d.Auth,
		webpush:    d.WebPush,
		loc:        loc,
		bcryptCost: d.BcryptCost,
	}
}
