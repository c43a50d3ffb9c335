package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/handlers"
	"github.com/monocle-dev/taskcalendar/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	BasePath string
	// AllowAllOrigins opens CORS to any origin; AllowedOrigins is ignored.
	AllowAllOrigins bool
	AllowedOrigins  []string
	// Registry receives the HTTP metrics; nil gets a fresh one.
	Registry *prometheus.Registry
}

func NewRouter(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.New()

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := middleware.NewMetrics(registry)

	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(h.Log),
		gin.Recovery(),
		metrics.Handler(),
		cors.New(corsConfig(opts.AllowAllOrigins, opts.AllowedOrigins)),
	)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	requireAuth := middleware.AuthMiddleware(h.Service, h.Log)

	api := r.Group(opts.BasePath)
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.GET("/me", requireAuth, h.Me)
		api.GET("/ws", middleware.BearerFromQuery("token"), requireAuth, h.WebSocket)

		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.GET("", h.ListTasks)
			tasks.POST("", h.CreateTask)
			tasks.PUT("/:task_id", h.UpdateTask)
			tasks.DELETE("/:task_id", h.DeleteTask)
		}

		categories := api.Group("/categories", requireAuth)
		{
			categories.GET("", h.ListCategories)
			categories.POST("", h.CreateCategory)
		}
	}

	return r
}

func corsConfig(allowAll bool, allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	if allowAll || len(allowedOrigins) == 0 {
		// Credentials cannot be combined with a wildcard origin; bearer
		// tokens travel in a header so they are not needed.
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = allowedOrigins
	cfg.AllowCredentials = true

	return cfg
}
