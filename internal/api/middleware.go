package api

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/foodshare/foodshare/internal/auth"
	"github.com/foodshare/foodshare/internal/donation"
	"github.com/foodshare/foodshare/pkg/logging"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	viewerKey       = "viewer"
)

// RequestLogger assigns a request id and logs each request when it completes
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()

		logging.WithRequestID(id).Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// Authenticate resolves an optional bearer token into the request's viewer.
// Requests without a valid token proceed as anonymous.
func Authenticate(accounts *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.Next()
			return
		}

		id, err := accounts.ResolveToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			logger := logging.WithRequestID(c.GetString(requestIDKey))
			if errors.Is(err, auth.ErrInvalidToken) {
				logger.Debug("Ignoring invalid bearer token", zap.Error(err))
			} else {
				logger.Error("Resolving bearer token failed", zap.Error(err))
			}
			c.Next()
			return
		}
		c.Set(viewerKey, id.Viewer())
		c.Next()
	}
}

// viewerFrom returns the authenticated viewer, or the anonymous viewer
func viewerFrom(c *gin.Context) donation.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(donation.Viewer); ok {
			return viewer
		}
	}
	return donation.Viewer{}
}

// IPRateLimiter hands out a token bucket per client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	idle     time.Duration
	swept    time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows rps events per second with the given burst per IP
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
	}
}

// Allow reports whether ip may perform one more event now
func (l *IPRateLimiter) Allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep forgets visitors idle for longer than l.idle. Caller holds l.mu.
func (l *IPRateLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < time.Minute {
		return
	}
	l.swept = now
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.visitors, ip)
		}
	}
}

// RateLimited wraps a method so each client IP is held to the limiter
func RateLimited(limiter *IPRateLimiter, next MethodHandler) MethodHandler {
	return func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		if !limiter.Allow(c.ClientIP()) {
			return nil, NewError(ErrRateLimited, "too many requests, please wait")
		}
		return next(c, params)
	}
}
