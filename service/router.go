package service

import (
	"net/http"
	"time"

	"restlab/logutils"
	"restlab/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

// NewRouter builds the engine with every API mounted under the versioned
// prefix.
func NewRouter(h *Handler) *gin.Engine {
	response.SetupValidator()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(RequestID(), logutils.GinLogger(), Recovery())
	r.Use(cors.New(corsConfig(h.cfg.HTTP.AllowOrigins)))
	if h.cfg.Metrics.Enabled {
		r.Use(Metrics())
		r.GET(h.cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	r.MaxMultipartMemory = h.cfg.Upload.MaxSize

	r.NoRoute(func(c *gin.Context) {
		response.NotFoundError(c, "Resource not found")
	})
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.GET("/health", h.health)
	for _, m := range readMethods {
		r.Handle(m, FilesPrefix+"/*path", h.WebDav)
	}

	api := r.Group(h.cfg.APIPrefix())
	h.RegisterLandlords(api)
	h.RegisterTenants(api)
	h.RegisterFlats(api)
	h.RegisterAgreements(api)
	h.RegisterSettlements(api)
	h.RegisterPictures(api)
	h.RegisterAuth(api)
	h.RegisterAuthors(api)
	h.RegisterBooks(api)
	h.RegisterViewers(api)
	h.RegisterMovies(api)
	h.RegisterRatings(api)
	h.RegisterFibonacci(api)
	h.RegisterCustomers(api)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logutils.RequestIDKey},
		ExposeHeaders: []string{logutils.RequestIDKey},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || lo.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (h *Handler) health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logutils.WithRequest(c).WithError(err).Warn("health check failed")
		response.Error(c, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "ok",
		"version": h.cfg.App.Version,
	})
}
