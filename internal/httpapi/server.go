// Package httpapi exposes the catalog and lead capture over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/lead"
)

// CityCookie remembers the visitor's selected city.
const CityCookie = "glowheal_city"

// Options tunes the router.
type Options struct {
	CORSOrigins    []string
	LeadRatePerMin int
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is
	// honoured. Empty means the client IP is always the peer address.
	TrustedProxies []string
}

// Server holds the handler dependencies.
type Server struct {
	catalog *catalog.Service
	leads   lead.Store
	logger  *zap.Logger
}

// NewRouter wires middleware and routes onto a new gin engine.
func NewRouter(svc *catalog.Service, leads lead.Store, logger *zap.Logger, o Options) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{catalog: svc, leads: leads, logger: logger}

	r := gin.New()
	if err := r.SetTrustedProxies(o.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", o.TrustedProxies), zap.Error(err))
		r.SetTrustedProxies(nil)
	}
	r.Use(RequestLogger(logger))
	r.Use(ErrorHandler(logger))

	origins := o.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowOrigins = nil
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/catalog", s.getSelectedCatalog)
		api.GET("/catalog/:city", s.getCatalog)
		api.GET("/catalog/:city/items/:code", s.getItem)
		api.GET("/catalog/:city/specialties/:slug", s.getSpecialty)
		api.GET("/catalog/:city/packages/:code", s.getPackage)
		api.GET("/catalog/:city/addons", s.getAddons)
		api.POST("/quote", s.createQuote)

		submit := api.Group("")
		submit.Use(RateLimit(o.LeadRatePerMin, logger))
		submit.POST("/leads/submit", s.submitLead)
		submit.POST("/bookings", s.createBooking)
	}

	r.NoRoute(func(c *gin.Context) {
		JSONError(c, http.StatusNotFound, "Not found", c.Request.URL.Path)
	})
	return r
}
