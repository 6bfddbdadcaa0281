package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"admissions/internal/config"
	"admissions/internal/domain/lead"
	"admissions/internal/metrics"
	"admissions/internal/middleware"
	jwtsvc "admissions/internal/pkg/jwt"
)

// Deps are the shared resources the HTTP surface is built from
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Tokens   *jwtsvc.Service
}

// NewRouter wires the lead module behind JWT auth, plus /healthz and /metrics
func NewRouter(d Deps) *gin.Engine {
	repo := lead.NewRepository(d.DB)
	leadService := lead.NewService(repo, repo, repo, lead.ServiceConfig{
		DefaultPageSize: d.Config.Leads.DefaultPageSize,
		MaxPageSize:     d.Config.Leads.MaxPageSize,
		SuggestionLimit: d.Config.Leads.SuggestionLimit,
		BulkConcurrency: d.Config.Leads.BulkConcurrency,
	}, metrics.NewLead(d.Registry), d.Logger)
	leadHandler := lead.NewHandler(leadService)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(d.Config.CORSOrigins), middleware.ErrorLogger(d.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(d.Tokens))
	lead.RegisterRoutes(v1, leadHandler)

	return r
}
