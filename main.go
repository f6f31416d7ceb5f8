package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotbook/config"
	"slotbook/handlers"
	"slotbook/middleware"
	"slotbook/routes"
	"slotbook/services/appointments"
	"slotbook/services/backend"
	"slotbook/services/cache"
	"slotbook/services/calendar"
	"slotbook/services/session"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	utils.InitCache()
	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// Services.
	api := backend.NewClient(backend.OptionsFromConfig())
	queryCache := cache.NewQueryCache(utils.GetCacheClient())
	locker := cache.NewLocker(utils.GetCacheClient(), config.AppConfig.MutationLockTTL)
	sessions := session.NewManager(
		api,
		session.NewStore(utils.GetSessionClient(), config.AppConfig.SessionTTL),
		queryCache,
		config.AppConfig.AuthStaleTime,
		config.AppConfig.SessionTTL,
	)
	calendarService := calendar.NewCalendarService(api, queryCache, config.AppConfig.QueryStaleTime, config.AppConfig.CalendarPageSize)
	appointmentService := &appointments.DefaultAppointmentService{
		Backend:  api,
		Cache:    queryCache,
		Locker:   locker,
		PageSize: config.AppConfig.CalendarPageSize,
		ListTTL:  config.AppConfig.QueryStaleTime,
	}

	monitor, err := utils.StartHealthMonitor(
		config.AppConfig.HealthCheckEvery,
		[]*redis.Client{utils.GetCacheClient(), utils.GetSessionClient()},
		api.Ping,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to schedule health checks: %v", err)
	}

	// Register routes with the assembled handler bundle.
	handlerBundle := handlers.NewHandlerBundle(sessions, calendarService, appointmentService, config.AppConfig.SessionTTL)
	routes.RegisterRoutes(router, handlerBundle, config.AppConfig.AllowedOrigins)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	<-monitor.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
