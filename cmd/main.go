package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	httpctx "github.com/dtroode/folio-server/internal/api/http/context"
	"github.com/dtroode/folio-server/internal/api/http/router"
	"github.com/dtroode/folio-server/internal/audit"
	"github.com/dtroode/folio-server/internal/config"
	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/mailer"
	"github.com/dtroode/folio-server/internal/model"
	"github.com/dtroode/folio-server/internal/password"
	"github.com/dtroode/folio-server/internal/ratelimit"
	"github.com/dtroode/folio-server/internal/repository/sqldb"
	"github.com/dtroode/folio-server/internal/server"
	"github.com/dtroode/folio-server/internal/service"
	"github.com/dtroode/folio-server/internal/session"
	storage "github.com/dtroode/folio-server/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.IsProduction())

	db, err := sqldb.NewConnection(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	clock := model.SystemClock
	hasher := password.NewBcrypt(cfg.Admin.BcryptCost)

	auditLog := audit.NewLogger(sqldb.NewAuditRepository(db), clock, logger, auditSinks(ctx, cfg, logger)...)

	creds := service.NewCredentials(sqldb.NewCredentialRepository(db), hasher, clock, logger)
	if err := creds.Initialize(ctx, cfg.Admin.DefaultPassword); err != nil {
		logger.Fatal("failed to initialize admin credential", "error", err)
	}

	codes := service.NewCodes(sqldb.NewCodeRepository(db), model.CodeTTL, clock, logger)
	mail := mailer.NewSendGrid(mailer.Options{
		APIKey:   cfg.SendGrid.APIKey,
		From:     cfg.SendGrid.FromEmail,
		FromName: cfg.SendGrid.FromName,
		BaseURL:  cfg.SendGrid.BaseURL,
	}, logger)
	if cfg.SendGrid.APIKey == "" {
		logger.Warn("SENDGRID_API_KEY is not set, verification emails will fail")
	}

	mfaService := service.NewMFA(creds, codes, mail, hasher, auditLog, logger)
	authService := service.NewAuth(creds, mfaService,
		session.NewRegistry(model.SessionTTL, clock),
		session.NewRegistry(model.ChallengeTTL, clock),
		auditLog, logger)

	loginLimiter, adminLimiter := newLimiters(cfg, clock, logger)

	r := router.New(router.Services{
		Auth:    authService,
		MFA:     mfaService,
		Audit:   auditLog,
		Auditor: auditLog,
		DB:      db,
	}, router.Options{
		Environment:       cfg.Environment,
		CookieSecure:      cfg.SecureCookies(),
		SessionTTL:        model.SessionTTL,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		TrustProxyHeaders: cfg.HTTP.TrustProxyHeaders,
		LoginLimiter:      loginLimiter,
		AdminLimiter:      adminLimiter,
		Clock:             clock,
	}, httpctx.NewManager(), logger)

	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "tls", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// auditSinks returns the extra audit destinations besides the database table.
func auditSinks(ctx context.Context, cfg *config.Config, logger *logger.Logger) []model.AuditSink {
	sinks := []model.AuditSink{audit.NewLogSink(logger)}
	if !cfg.Audit.ArchiveEnabled {
		return sinks
	}

	archive, err := storage.Connect(ctx, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to initialize audit archive", "error", err)
	}

	return append(sinks, audit.NewArchiveSink(archive, cfg.Audit.ArchivePrefix))
}

// newLimiters shares counters through Redis when RATE_REDIS_ADDR is set and
// keeps them in process memory otherwise.
func newLimiters(cfg *config.Config, clock model.Clock, logger *logger.Logger) (ratelimit.Limiter, ratelimit.Limiter) {
	loginPolicy := ratelimit.Policy{Name: router.PolicyLogin, Max: cfg.Rate.LoginMax, Window: cfg.Rate.Window}
	adminPolicy := ratelimit.Policy{Name: router.PolicyAdmin, Max: cfg.Rate.AdminMax, Window: cfg.Rate.Window}

	if cfg.Rate.RedisAddr == "" {
		return ratelimit.NewMemory(loginPolicy, clock), ratelimit.NewMemory(adminPolicy, clock)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Rate.RedisAddr,
		Password: cfg.Rate.RedisPassword,
		DB:       cfg.Rate.RedisDB,
	})
	logger.Info("rate limits shared through redis", "address", cfg.Rate.RedisAddr)

	return ratelimit.NewRedis(client, cfg.Rate.RedisPrefix, loginPolicy, clock),
		ratelimit.NewRedis(client, cfg.Rate.RedisPrefix, adminPolicy, clock)
}
