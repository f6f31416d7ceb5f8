package routes

import (
	"strings"
	"time"

	"slotbook/handlers"
	"slotbook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers host authentication endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/signup", hb.SignupHandler)
		api.POST("/login", hb.LoginHandler)
		api.POST("/logout", middleware.SessionMiddleware(hb.Sessions, true), hb.LogoutHandler)
		api.GET("/me", middleware.SessionMiddleware(hb.Sessions, false), hb.MeHandler)
	}
}

// RegisterGuestRoutes registers live guest list validation.
func RegisterGuestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/guests/validate", hb.ValidateGuestsHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// CORSConfig builds the CORS policy from a comma separated origin list.
// An empty list or "*" allows every origin without credentials.
func CORSConfig(allowedOrigins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			cfg.AllowOrigins = nil
			cfg.AllowAllOrigins = true
			return cfg
		}
		if o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowCredentials = true
	return cfg
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins string) {
	r.Use(cors.New(CORSConfig(allowedOrigins)))

	RegisterHealthRoute(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterGuestRoutes(r, hb)
}
