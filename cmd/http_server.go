package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal"
	"github.com/mystore/product-catalog/internal/auth"
	authPostgres "github.com/mystore/product-catalog/internal/auth/postgres"
	"github.com/mystore/product-catalog/internal/core/events"
	"github.com/mystore/product-catalog/internal/employee"
	employeePostgres "github.com/mystore/product-catalog/internal/employee/postgres"
	"github.com/mystore/product-catalog/internal/mailer"
	"github.com/mystore/product-catalog/internal/product"
	productPostgres "github.com/mystore/product-catalog/internal/product/postgres"
	"github.com/mystore/product-catalog/internal/transport/middleware"
	"github.com/mystore/product-catalog/internal/transport/rest"
	"github.com/mystore/product-catalog/internal/user"
	userPostgres "github.com/mystore/product-catalog/internal/user/postgres"
	"github.com/mystore/product-catalog/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Format)
	log := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		log.Error("failed to open gorm", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	// Event bus with the mailer subscribed; auth and employee flows publish
	// into it.
	bus := events.NewEventBus(log)
	var sender mailer.Sender
	if cfg.Mail.APIURL != "" {
		sender = mailer.NewAPIClient(mailer.APIClientConfig{
			APIURL:    cfg.Mail.APIURL,
			APIKey:    cfg.Mail.APIKey,
			FromEmail: cfg.Mail.FromEmail,
			FromName:  cfg.Mail.FromName,
			Timeout:   cfg.Mail.Timeout,
		}, log)
	} else {
		sender = mailer.NewLogSender(log)
	}
	mailer.NewSubscriber(sender, log).RegisterHandlers(bus)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, bus, auth.Config{
		BCryptCost: cfg.Security.BCryptCost,
		OTPTTL:     cfg.Security.OTPDuration,
		ResetTTL:   cfg.Security.ResetTokenDuration,
		ClientURL:  cfg.Server.ClientURL,
	}, log)
	productService := product.NewService(productPostgres.NewRepository(gormDB), log)
	employeeService := employee.NewService(employeePostgres.NewRepository(gormDB), bus, cfg.Security.BCryptCost, log)
	userService := user.NewService(userPostgres.NewRepository(gormDB), log)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil && cfg.Redis.RateLimitEnabled() {
		rateLimiter = middleware.NewRateLimiter(redisClient, cfg.Redis.AuthRateLimit, cfg.Redis.AuthRateWindow, log)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.RouterDeps{
		DB:              db.DB,
		Redis:           redisClient,
		AuthHandler:     auth.NewHandler(authService),
		Gate:            auth.NewGate(),
		ProductHandler:  product.NewHandler(productService),
		EmployeeHandler: employee.NewHandler(employeeService),
		UserHandler:     user.NewHandler(userService),
		RateLimiter:     rateLimiter,
		AllowedOrigins:  allowedOrigins(cfg.Server.AllowedOrigins),
		Logger:          log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		if err := db.Close(); err != nil {
			log.Error("database close error", "error", err)
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Error("redis close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("server stopped")
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func allowedOrigins(raw string) []string {
	if raw == "" || raw == "*" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
