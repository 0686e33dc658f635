package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/blog"
	"github.com/crucial707/blog-api/internal/config"
	"github.com/crucial707/blog-api/internal/db"
	"github.com/crucial707/blog-api/internal/middleware"
	"github.com/crucial707/blog-api/internal/notify"
	"github.com/crucial707/blog-api/internal/repo"
	"github.com/crucial707/blog-api/internal/revocation"
	"github.com/crucial707/blog-api/internal/scheduler"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/crucial707/blog-api/internal/token"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load configuration
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.LogFormat, cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		slog.Warn("using the default JWT secret; set JWT_SECRET outside development")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	if err := auth.SeedUsers(ctx, stores.Users, auth.DefaultSeeds(cfg.SeedAdminPassword, cfg.SeedAuthorPassword), bcrypt.DefaultCost); err != nil {
		return err
	}
	if err := blog.SeedWelcomePost(ctx, stores.Posts, time.Now().UTC()); err != nil {
		return err
	}

	codec, err := token.NewCodec([]byte(cfg.JWTSecret), time.Duration(cfg.JWTExpireHours)*time.Hour, token.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return err
	}
	denylist, closeDenylist, err := openDenylist(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDenylist()

	mailer, err := newMailer(cfg)
	if err != nil {
		return err
	}

	apiLimiter := middleware.APIRateLimiter(cfg.RateLimitRequests, cfg.RateLimitBurst)
	loginLimiter := middleware.LoginRateLimiter(cfg.LoginRateLimitRequests, cfg.LoginRateLimitBurst)

	jobs := []scheduler.Job{
		scheduler.LimiterPrune("api", apiLimiter),
		scheduler.LimiterPrune("login", loginLimiter),
	}
	if cfg.AuditRetentionDays > 0 {
		jobs = append(jobs, scheduler.AuditRetention(stores.Audit, cfg.AuditRetentionDays, time.Now))
	}
	if mem, ok := denylist.(*revocation.Memory); ok {
		jobs = append(jobs, scheduler.DenylistPurge(mem))
	}
	cr, err := scheduler.Start(ctx, jobs)
	if err != nil {
		return err
	}
	defer cr.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler: newRouter(app{
			cfg: cfg, stores: stores, codec: codec, denylist: denylist, mailer: mailer,
			apiLimiter: apiLimiter, loginLimiter: loginLimiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		// Start server LAST
		if cfg.TLSCertFile != "" {
			slog.Info("starting server", "addr", srv.Addr, "tls", true, "store", cfg.StoreDriver)
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		slog.Info("starting server", "addr", srv.Addr, "tls", false, "store", cfg.StoreDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStores returns the configured backend and a function that releases it.
func openStores(ctx context.Context, cfg config.Config) (store.Set, func(), error) {
	if cfg.StoreDriver != config.DriverPostgres {
		slog.Info("using in-memory store")
		return store.NewMemory(), func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.DSN(), db.Options{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns})
	if err != nil {
		return store.Set{}, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("connected to the database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Migrate(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		database.Close()
		return store.Set{}, nil, err
	}
	return repo.NewSet(database), func() { database.Close() }, nil
}

func openDenylist(ctx context.Context, cfg config.Config) (revocation.Denylist, func(), error) {
	if cfg.RedisAddr == "" {
		return revocation.NewMemory(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	slog.Info("using redis token denylist", "addr", cfg.RedisAddr)
	return revocation.NewRedis(client), func() { client.Close() }, nil
}

func newMailer(cfg config.Config) (notify.Mailer, error) {
	if !cfg.SMTPEnabled() {
		return notify.LogMailer{Logger: slog.Default()}, nil
	}
	m, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		Security: cfg.SMTPSecurity,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("sending approval e-mails via smtp", "host", cfg.SMTPHost)
	return m, nil
}
