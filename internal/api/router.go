package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"conferent-backend/internal/mw"
)

// RouterOptions tune the middleware stack.
type RouterOptions struct {
	RateLimit      rate.Limit
	RateBurst      int
	CacheTTL       time.Duration
	AllowedOrigins []string
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", mw.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", mw.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}

	r := gin.Default()
	r.Use(mw.RequestID())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/healthz", h.Health)

	// Room listings are cached; any successful write drops the whole cache.
	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(opts.RateLimit, opts.RateBurst))
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
		api.POST("/auth/validate", h.ValidateToken)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	secured := api.Group("")
	secured.Use(mw.RequireAuth(h.auth), mw.FlushOnWrite(cacheStore))
	{
		secured.GET("/auth/me", h.Me)

		users := secured.Group("/users")
		users.GET("", h.ListUsers)
		users.GET("/search", h.SearchUsers)
		users.GET("/role/:role", h.ListUsersByRole)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)

		rooms := secured.Group("/rooms")
		rooms.GET("", caching, h.ListRooms)
		rooms.GET("/search", caching, h.SearchRooms)
		rooms.GET("/available", h.AvailableRooms)
		rooms.GET("/:id", caching, h.GetRoom)
		rooms.POST("", h.CreateRoom)
		rooms.PUT("/:id", h.UpdateRoom)
		rooms.DELETE("/:id", h.DeleteRoom)

		rents := secured.Group("/rents")
		rents.GET("", h.ListRents)
		rents.GET("/conflicts", h.CheckConflict)
		rents.GET("/creator/:creatorId", h.ListRentsByCreator)
		rents.GET("/date-range", h.ListRentsByDateRange)
		rents.GET("/upcoming", h.ListUpcomingRents)
		rents.GET("/search", h.SearchRents)
		rents.GET("/room/:roomId", h.ListRentsByRoom)
		rents.GET("/:id", h.GetRent)
		rents.POST("", h.CreateRent)
		rents.PUT("/:id", h.UpdateRent)
		rents.DELETE("/:id", h.DeleteRent)

		roomRents := secured.Group("/room-rents")
		roomRents.GET("/rent/:rentId", h.ListRoomRentsByRent)
		roomRents.GET("/room/:roomId", h.ListRoomRentsByRoom)
		roomRents.GET("/:id", h.GetRoomRent)

		invites := secured.Group("/user-invites")
		invites.GET("", h.ListInvites)
		invites.GET("/user/:userId", h.ListInvitesByUser)
		invites.GET("/user/:userId/pending-count", h.CountPendingInvites)
		invites.GET("/rent/:rentId", h.ListInvitesForRent)
		invites.GET("/rent/:rentId/accepted-count", h.CountAcceptedInvites)
		invites.GET("/:id", h.GetInvite)
		invites.POST("", h.CreateInvite)
		invites.PATCH("/:id/status", h.UpdateInviteStatus)
		invites.DELETE("/:id", h.DeleteInvite)

		secured.GET("/subscriptions", h.GetSubscription)
		secured.PUT("/subscriptions", h.PutSubscription)
		secured.DELETE("/subscriptions", h.DeleteSubscription)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}
