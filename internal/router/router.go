package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-ops/internal/middleware"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	CORS             CORSConfig
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	public  []Handler
	secured []Handler
}

// NewRouter wires the middleware chain. public handlers (health, metrics)
// skip authentication; secured handlers require a session.
func NewRouter(
	auth *middleware.AuthMiddleware,
	public []Handler,
	secured []Handler,
	config RouterConfig,
	m *metrics.Metrics,
	log *logger.Logger,
) *Router {
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: config.MaxBodyBytes}),
	)

	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    []string{middleware.HeaderXRequestID},
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		// cors.New panics on an empty origin list
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	engine.Use(cors.New(corsConfig))

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return &Router{
		engine:  engine,
		auth:    auth,
		public:  public,
		secured: secured,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api")

	for _, h := range r.public {
		h.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.secured {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
