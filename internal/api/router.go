package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foodshare/foodshare/internal/auth"
	"github.com/foodshare/foodshare/internal/cache"
	"github.com/foodshare/foodshare/internal/db"
	"github.com/foodshare/foodshare/internal/donation"
	"github.com/foodshare/foodshare/internal/feed"
	"github.com/foodshare/foodshare/pkg/config"
	"github.com/foodshare/foodshare/pkg/logging"
	"github.com/foodshare/foodshare/pkg/telemetry"
)

// Services are the collaborators the router dispatches to
type Services struct {
	Posts   *donation.PostService
	Listing *donation.ListingService
	Claims  *donation.ClaimService
	Auth    *auth.Service
	Feed    *feed.Hub
}

// Router sets up API routes
type Router struct {
	handler  *JSONRPCHandler
	services Services
	db       *db.DB
	cache    *cache.Cache
	cfg      *config.Config
	limiter  *IPRateLimiter
	logger   *zap.Logger
}

// NewRouter creates a new API router. redisCache may be nil.
func NewRouter(cfg *config.Config, database *db.DB, redisCache *cache.Cache, services Services) *Router {
	router := &Router{
		handler:  NewJSONRPCHandler(),
		services: services,
		db:       database,
		cache:    redisCache,
		cfg:      cfg,
		limiter:  NewIPRateLimiter(cfg.RateLimit.ClaimsPerSecond, cfg.RateLimit.ClaimBurst),
		logger:   logging.WithComponent("api-router"),
	}

	router.registerMethods()

	return router
}

// SetupRoutes sets up middleware and all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())
	engine.Use(cors.New(r.corsConfig()))

	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	engine.POST("/rpc", Authenticate(r.services.Auth), r.handler.Handle)

	if r.services.Feed != nil {
		engine.GET("/feed", feed.Handler(r.services.Feed, r.cfg.Server.AllowedOrigins))
	}
	if telemetry.MetricsOnAPIPort(&r.cfg.Telemetry, r.cfg.Server.Port) {
		engine.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
	}
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(r.cfg.Server.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.cfg.Server.AllowedOrigins
	}
	return cfg
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	posts := NewPostsAPI(r.services.Posts, r.services.Listing)
	claims := NewClaimsAPI(r.services.Claims)
	accounts := NewAccountsAPI(r.services.Auth)

	r.handler.RegisterMethod("posts.create", posts.Create)
	r.handler.RegisterMethod("posts.list", posts.List)

	r.handler.RegisterMethod("claims.submit", RateLimited(r.limiter, claims.Submit))
	r.handler.RegisterMethod("claims.list_mine", claims.ListMine)

	r.handler.RegisterMethod("accounts.register", accounts.Register)
	r.handler.RegisterMethod("accounts.login", accounts.Login)
}

// healthHandler reports database and cache reachability
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "OK", http.StatusOK
	checks := gin.H{}

	if r.db != nil {
		if err := r.db.Health(ctx); err != nil {
			r.logger.Warn("Database health check failed", zap.Error(err))
			checks["database"] = "unavailable"
			status, code = "DEGRADED", http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}
	if r.cache != nil {
		if err := r.cache.Health(ctx); err != nil {
			r.logger.Warn("Cache health check failed", zap.Error(err))
			checks["cache"] = "unavailable"
		} else {
			checks["cache"] = "ok"
		}
	}
	if r.services.Feed != nil {
		checks["feed_subscribers"] = r.services.Feed.Subscribers()
	}

	c.JSON(code, gin.H{
		"status":  status,
		"service": "foodshare-api",
		"checks":  checks,
	})
}
