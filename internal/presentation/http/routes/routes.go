package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/notas-backoffice/internal/config"
	domainRepo "github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/observability"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/handler"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/middleware"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/validation"
	"github.com/sangkips/notas-backoffice/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	Customer   *handler.CustomerHandler
	Company    *handler.CompanyHandler
	PosCompany *handler.PosCompanyHandler
	Terminal   *handler.TerminalHandler
	Rate       *handler.RateHandler
	Invoice    *handler.InvoiceHandler
	PosSale    *handler.PosSaleHandler
	Report     *handler.ReportHandler
	PosReport  *handler.PosReportHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Metrics         *observability.Metrics
	Log             *logrus.Logger
	// Ping checks the database for /health; nil skips the check
	Ping func(ctx context.Context) error
}

// Setup creates the Gin router and registers all routes. ctx bounds the
// rate limiter's background sweep.
func Setup(ctx context.Context, h *Handlers, deps *Deps) *gin.Engine {
	validation.Register()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.SecureHeaders(deps.Cfg.App.Env != "production"))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	router.Use(deps.Metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": deps.Cfg.App.Name})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": deps.Cfg.App.Name})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	rateLimiter := middleware.NewPrincipalRateLimiter(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: deps.Cfg.RateLimit.RequestsPerSecond,
		BurstSize:         deps.Cfg.RateLimit.Burst,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(rateLimiter.Middleware())
		registerAuthRoutes(public, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())
		protected.GET("/auth/me", h.Auth.Me)

		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		registerAdminRoutes(admin, h, deps)
	}

	return router
}

func registerAuthRoutes(rg *gin.RouterGroup, h *Handlers) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		auth.GET("/google", h.Auth.GoogleRedirect)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerAdminRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		Log:  deps.Log,
	})

	customers := rg.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}

	companies := rg.Group("/companies")
	{
		companies.GET("", h.Company.List)
		companies.POST("", h.Company.Create)
		companies.GET("/:id", h.Company.Get)
		companies.PUT("/:id", h.Company.Update)
		companies.DELETE("/:id", h.Company.Delete)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", h.Invoice.Delete)
	}

	reports := rg.Group("/reports")
	{
		reports.GET("/summary", h.Report.Summary)
		reports.GET("/customers/:id", h.Report.Customer)
		reports.GET("/companies/:id", h.Report.Company)
	}

	pos := rg.Group("/pos")
	{
		pos.GET("/companies", h.PosCompany.List)
		pos.POST("/companies", h.PosCompany.Create)
		pos.GET("/companies/:id", h.PosCompany.Get)
		pos.PUT("/companies/:id", h.PosCompany.Update)
		pos.DELETE("/companies/:id", h.PosCompany.Delete)

		pos.GET("/terminals", h.Terminal.List)
		pos.POST("/terminals", h.Terminal.Create)
		pos.GET("/terminals/:id", h.Terminal.Get)
		pos.PUT("/terminals/:id", h.Terminal.Update)
		pos.DELETE("/terminals/:id", h.Terminal.Delete)

		pos.GET("/rates/:customer_id", h.Rate.Get)
		pos.PUT("/rates/:customer_id", h.Rate.Upsert)

		pos.GET("/sales", h.PosSale.List)
		pos.POST("/sales", idempotent, h.PosSale.Create)
		pos.GET("/sales/:id", h.PosSale.Get)
		pos.DELETE("/sales/:id", h.PosSale.Delete)

		pos.GET("/reports/summary", h.PosReport.Summary)
		pos.GET("/reports/payouts", h.PosReport.Payouts)
		pos.GET("/reports/payouts/export", h.PosReport.Export)
		pos.POST("/reports/payouts/mark-paid", idempotent, h.PosSale.MarkPaid)
		pos.GET("/reports/inactive", h.PosReport.Inactive)
	}
}
