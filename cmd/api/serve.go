package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sangkips/notas-backoffice/internal/application/service"
	"github.com/sangkips/notas-backoffice/internal/config"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/cache"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/database"
	repo "github.com/sangkips/notas-backoffice/internal/infrastructure/repository"
	"github.com/sangkips/notas-backoffice/internal/observability"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/handler"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/routes"
	"github.com/sangkips/notas-backoffice/pkg/email"
	"github.com/sangkips/notas-backoffice/pkg/oauth"
	"github.com/sangkips/notas-backoffice/pkg/utils"
)

const (
	shutdownTimeout = 15 * time.Second
	sweepPeriod     = time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		// reports still work without Redis, only slower
		log.WithError(err).Warn("report cache disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	reportCache := cache.NewReportCache(redisClient, cfg.Redis.ReportTTL, log)

	metrics := observability.NewMetrics()
	loc := cfg.App.Location()
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	customerRepo := repo.NewCustomerRepository(db)
	companyRepo := repo.NewCompanyRepository(db)
	invoiceRepo := repo.NewInvoiceRepository(db)
	posCompanyRepo := repo.NewPosCompanyRepository(db)
	terminalRepo := repo.NewPosTerminalRepository(db)
	rateRepo := repo.NewCustomerRateRepository(db)
	saleRepo := repo.NewPosSaleRepository(db)
	invoiceReportRepo := repo.NewInvoiceReportRepository(db)
	posReportRepo := repo.NewPosReportRepository(db)
	userRepo := repo.NewSystemUserRepository(db)
	resetRepo := repo.NewPasswordResetTokenRepository(db)
	idempotencyRepo := repo.NewIdempotencyRepository(db)
	tx := repo.NewTransactor(db)

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		FrontendURL:  cfg.Email.FrontendURL,
	})

	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		HostedDomain:       cfg.OAuth.GoogleHostedDomain,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})
	var (
		googleAuth     service.GoogleAuthenticator
		googleRedirect handler.GoogleRedirector
	)
	if googleOAuthService.IsConfigured() {
		googleAuth = googleOAuthService
		googleRedirect = googleOAuthService
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, resetRepo, tx, jwtManager, emailService, googleAuth, log)
	customerService := service.NewCustomerService(customerRepo, reportCache)
	companyService := service.NewCompanyService(companyRepo, reportCache)
	posCompanyService := service.NewPosCompanyService(posCompanyRepo, reportCache)
	terminalService := service.NewTerminalService(terminalRepo, posCompanyRepo, customerRepo, reportCache)
	rateService := service.NewRateService(rateRepo, customerRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, customerRepo, companyRepo, tx, reportCache)
	saleService := service.NewPosSaleService(saleRepo, terminalRepo, rateRepo, tx, reportCache, metrics, log)
	reportService := service.NewReportService(invoiceReportRepo, invoiceRepo, customerRepo, companyRepo, reportCache, loc)
	posReportService := service.NewPosReportService(posReportRepo, saleRepo, reportCache, loc)
	exportService := service.NewExportService(posReportService)

	handlers := &routes.Handlers{
		Auth:       handler.NewAuthHandler(authService, googleRedirect, cfg.App.Env == "production"),
		Customer:   handler.NewCustomerHandler(customerService),
		Company:    handler.NewCompanyHandler(companyService),
		PosCompany: handler.NewPosCompanyHandler(posCompanyService),
		Terminal:   handler.NewTerminalHandler(terminalService),
		Rate:       handler.NewRateHandler(rateService),
		Invoice:    handler.NewInvoiceHandler(invoiceService, loc),
		PosSale:    handler.NewPosSaleHandler(saleService, loc),
		Report:     handler.NewReportHandler(reportService),
		PosReport:  handler.NewPosReportHandler(posReportService, exportService),
	}

	router := routes.Setup(ctx, handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         metrics,
		Log:             log,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	})

	return run(ctx, cfg, log, router, db, idempotencyRepo, resetRepo)
}

// expiredPurger is a store with time-bounded rows
type expiredPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) error
}

// run serves until ctx is cancelled, then drains in-flight requests
func run(ctx context.Context, cfg *config.Config, log *logrus.Logger, router http.Handler, db *gorm.DB, purgers ...expiredPurger) error {
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.WithFields(logrus.Fields{
			"port": port,
			"env":  cfg.App.Env,
		}).Infof("Starting %s server", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		sweepExpired(ctx, log, purgers)
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		return nil
	})
	return eg.Wait()
}

// sweepExpired drops expired idempotency keys and reset tokens until ctx is
// cancelled
func sweepExpired(ctx context.Context, log *logrus.Logger, purgers []expiredPurger) {
	ticker := time.NewTicker(sweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, p := range purgers {
				if err := p.DeleteExpired(ctx, now); err != nil {
					log.WithError(err).Warn("failed to purge expired rows")
				}
			}
		}
	}
}
