package service

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"restlab/dao/model"
	"restlab/logutils"
	"restlab/response"
	"restlab/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var timeNow = time.Now

const principalKey = "principal"

const (
	msgMissingToken         = "Missing token. Please login or register."
	msgMissingLandlordToken = "Missing landlord token. Please login or register as landlord."
	msgInvalidToken         = "Invalid token. Please login or register."
	msgExpiredToken         = "Expired token. Please login to get new token."
	msgRevokedToken         = "Token has been revoked. Please login again."
	msgContentType          = "Content type must be application/json"
)

// Guard says which principal kinds may pass and what to answer otherwise.
type Guard struct {
	Kinds   []model.PrincipalKind
	Missing string // no bearer token
	Wrong   string // valid token of another kind
}

var (
	landlordOnly = Guard{
		Kinds:   []model.PrincipalKind{model.KindLandlord},
		Missing: msgMissingLandlordToken,
		Wrong:   "Only landlord functionality",
	}
	tenantOnly = Guard{
		Kinds:   []model.PrincipalKind{model.KindTenant},
		Missing: msgMissingToken,
		Wrong:   "Only tenant functionality",
	}
	landlordOrTenant = Guard{
		Kinds:   []model.PrincipalKind{model.KindLandlord, model.KindTenant},
		Missing: msgMissingToken,
		Wrong:   "Only landlord or tenant functionality",
	}
	userOnly = Guard{
		Kinds:   []model.PrincipalKind{model.KindUser},
		Missing: msgMissingToken,
		Wrong:   "Only user functionality",
	}
	viewerOnly = Guard{
		Kinds:   []model.PrincipalKind{model.KindViewer},
		Missing: msgMissingToken,
		Wrong:   "Only viewer functionality",
	}
)

func (g Guard) allows(kind model.PrincipalKind) bool {
	for _, k := range g.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func bearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate checks the bearer token against g and stores the principal.
func (h *Handler) Authenticate(g Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.UnauthorizedError(c, g.Missing)
			return
		}

		info, err := h.tokens.CheckToken(token)
		if err != nil {
			if errors.Is(err, util.ErrExpiredToken) {
				response.UnauthorizedError(c, msgExpiredToken)
			} else {
				response.UnauthorizedError(c, msgInvalidToken)
			}
			return
		}

		if err := util.CheckRevoked(c.Request.Context(), h.revoker, info); err != nil {
			if errors.Is(err, util.ErrRevokedToken) {
				response.UnauthorizedError(c, msgRevokedToken)
			} else {
				response.Internal(c, err)
			}
			return
		}

		if !g.allows(info.Kind) {
			response.UnauthorizedError(c, g.Wrong)
			return
		}
		c.Set(principalKey, info)
		c.Next()
	}
}

func principal(c *gin.Context) util.TokenInfo {
	info, _ := c.Get(principalKey)
	p, _ := info.(util.TokenInfo)
	return p
}

// RequireJSON answers 415 unless the body is declared as JSON.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() != gin.MIMEJSON {
			response.Error(c, http.StatusUnsupportedMediaType, msgContentType)
			return
		}
		c.Next()
	}
}

// RequestID tags every request with an id, reusing the client's when sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(logutils.RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logutils.RequestIDKey, id)
		c.Header(logutils.RequestIDKey, id)
		c.Next()
	}
}

// Recovery turns panics into the 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logutils.WithRequest(c).Errorf("panic: %v", recovered)
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	})
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows n attempts per window and client. n <= 0 disables it.
func NewRateLimiter(n int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{limiters: make(map[string]*limiterEntry), burst: n}
	if n > 0 && window > 0 {
		rl.rate = rate.Every(window / time.Duration(n))
	} else {
		rl.rate = rate.Inf
	}
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	if rl.rate == rate.Inf {
		return true
	}
	rl.mu.Lock()
	now := time.Now()
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = now
	// drop buckets nobody touched for an hour
	if len(rl.limiters) > 1024 {
		for key, e := range rl.limiters {
			if now.Sub(e.lastAccess) > time.Hour {
				delete(rl.limiters, key)
			}
		}
	}
	limiter := entry.limiter
	rl.mu.Unlock()
	return limiter.Allow()
}

// LoginLimit guards credential endpoints against brute forcing.
func (h *Handler) LoginLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.Allow(c.ClientIP()) {
			response.Error(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			return
		}
		c.Next()
	}
}
