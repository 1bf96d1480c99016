package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"immo/internal/infra/config"
	"immo/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	User           UserHTTP
	Property       PropertyHTTP
	Ad             AdHTTP
	Booking        BookingHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.User != nil {
		api.GET("/users/me", h.User.Profile)
		api.PUT("/users/me", h.User.UpdateProfile)
		api.GET("/users/me/favorites", h.User.ListFavorites)
		api.POST("/users/me/favorites/:propertyId", h.User.AddFavorite)
		api.DELETE("/users/me/favorites/:propertyId", h.User.RemoveFavorite)
		api.GET("/users/:id", h.User.PublicProfile)
		api.GET("/users", h.User.ListAll)
	}
	if h.Property != nil {
		api.GET("/properties", h.Property.Search)
		api.POST("/properties", h.Property.Create)
		api.GET("/properties/:id", h.Property.Get)
		api.PUT("/properties/:id", h.Property.Update)
		api.DELETE("/properties/:id", h.Property.Delete)
		api.POST("/properties/:id/images", h.Property.UploadImage)
		api.PUT("/properties/:id/images", h.Property.AddImages)
		api.DELETE("/properties/:id/images", h.Property.RemoveImage)
	}
	if h.Ad != nil {
		api.GET("/ads", h.Ad.Search)
		api.POST("/ads", h.Ad.Create)
		api.GET("/ads/property/:propertyId", h.Ad.ListByProperty)
		api.GET("/ads/:id", h.Ad.Get)
		api.PUT("/ads/:id", h.Ad.Update)
		api.PATCH("/ads/:id/status", h.Ad.UpdateStatus)
		api.DELETE("/ads/:id", h.Ad.Delete)
	}
	if h.Booking != nil {
		api.GET("/bookings", h.Booking.List)
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/property/:propertyId", h.Booking.ListByProperty)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PATCH("/bookings/:id/status", h.Booking.UpdateStatus)
		api.DELETE("/bookings/:id", h.Booking.Delete)
		api.POST("/bookings/:id/feedback", h.Booking.ClientFeedback)
		api.POST("/bookings/:id/owner-feedback", h.Booking.OwnerFeedback)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
