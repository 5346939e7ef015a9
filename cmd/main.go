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

	httpserver "github.com/llmezi/auth-service/internal/api/http/server"

	httpctx "github.com/llmezi/auth-service/internal/api/http/context"
	"github.com/llmezi/auth-service/internal/api/http/router"
	"github.com/llmezi/auth-service/internal/audit"
	"github.com/llmezi/auth-service/internal/config"
	"github.com/llmezi/auth-service/internal/fingerprint"
	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
	"github.com/llmezi/auth-service/internal/ratelimit"
	"github.com/llmezi/auth-service/internal/repository/postgres"
	"github.com/llmezi/auth-service/internal/server"
	"github.com/llmezi/auth-service/internal/service"
	"github.com/llmezi/auth-service/internal/token"
	"github.com/llmezi/auth-service/internal/vault"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	vaultKey, err := cfg.VaultKey()
	if err != nil {
		logger.Fatal("failed to load vault key", "error", err)
	}
	vaultIV, err := cfg.VaultIV()
	if err != nil {
		logger.Fatal("failed to load vault iv", "error", err)
	}
	cipher, err := vault.NewCipher(vaultKey, vaultIV)
	if err != nil {
		logger.Fatal("failed to initialize vault cipher", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	authCodeRepo := postgres.NewAuthCodeRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db)

	auditLog := audit.New(logger)
	hasher := fingerprint.NewHasher(cfg.JWT.AccessSecret)
	limiter := ratelimit.New(cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	tokenManager := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.Audience, auditLog)

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, hasher, auditLog, logger, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authCodeService := service.NewAuthCodeService(userRepo, authCodeRepo, hasher, limiter, auditLog, logger, cfg.AuthCode.TTL, cfg.AuthCode.Length)
	mailer := service.NewLogMailer(logger)
	authService := service.NewAuth(userRepo, tokenService, authCodeService, limiter, mailer, auditLog, logger)
	userService := service.NewUser(userRepo, tokenService, auditLog, logger)
	credentialService := service.NewCredential(cipher, credentialRepo, logger)
	smtpStatus := service.NewSMTPStatusCache(service.NewSMTPChecker(credentialService), 5*time.Minute)

	ctxMgr := httpctx.NewManager()

	r := router.New(authService, userService, tokenService, credentialService, smtpStatus, userRepo, ctxMgr, logger)
	srv := httpserver.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
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
