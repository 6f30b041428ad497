package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedmart-pos/config"
	"feedmart-pos/internal/catalog"
	"feedmart-pos/internal/checkout"
	"feedmart-pos/internal/database"
	"feedmart-pos/internal/gateway"
	"feedmart-pos/internal/gateway/handlers"
	"feedmart-pos/internal/gateway/middleware"
	"feedmart-pos/internal/journal"
	"feedmart-pos/internal/logging"
	"feedmart-pos/internal/session"
	"feedmart-pos/internal/telemetry"
	"feedmart-pos/internal/upstream"
	"feedmart-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMetrics(telemetry.DefaultNamespace, prometheus.DefaultRegisterer)

	var redisClient *redis.Client
	var store session.Store
	if cfg.Redis.Enabled {
		redisClient, err = config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, carts will live in memory", zap.Error(err))
		} else {
			defer redisClient.Close()
			store = session.NewRedisStore(redisClient, session.CART_TTL)
		}
	}
	if store == nil {
		store = session.NewMemoryStore()
	}
	sessions := session.NewManager(store)

	api := upstream.NewClient(cfg.API.BaseURL, cfg.API.Timeout, upstream.WithToken(cfg.API.Token))

	var saleJournal journal.Journal = journal.NewMemory()
	if cfg.Journal.DSN != "" {
		db, err := database.NewConnection(cfg.Journal.DSN)
		if err != nil {
			logger.Fatal("failed to connect to journal db", zap.Error(err))
		}
		if err := database.MigrateJournalDB(db); err != nil {
			logger.Fatal("failed to migrate journal db", zap.Error(err))
		}
		saleJournal = journal.NewGormJournal(db)
	} else {
		logger.Info("JOURNAL_DSN not set, receipts are kept in memory")
	}

	cat := catalog.NewService(api, redisClient, logger, metrics)
	checkoutService := checkout.NewService(sessions, api, saleJournal, cat, checkout.Config{
		TaxRate: cfg.Sales.TaxRate,
	}, logger, metrics)

	issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	rateLimit, err := middleware.RateLimit(cfg.App.RateLimit)
	if err != nil {
		logger.Fatal("invalid rate limit", zap.Error(err))
	}

	router := gateway.NewRouter(gateway.RouterConfig{
		Issuer:      issuer,
		Metrics:     metrics,
		MetricsPath: cfg.App.PrometheusEnabled,
		RateLimit:   rateLimit,
		CORSOrigins: cfg.App.CORSOrigins,
		Health:      dependencyHealth(redisClient),
	}, gateway.Handlers{
		User:      handlers.NewUserHTTPHandler(api, issuer, logger),
		Inventory: handlers.NewInventoryHTTPHandler(cat),
		POS:       handlers.NewPOSHTTPHandler(sessions, cat, checkoutService, cfg.Sales.TaxRate, metrics),
		Closure:   handlers.NewClosureHTTPHandler(api, logger, metrics),
	})

	grpcServer, healthServer, err := startGRPC(cfg.App.GRPCPort, logger)
	if err != nil {
		logger.Fatal("failed to start grpc health server", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("terminal listening", zap.String("addr", srv.Addr), zap.String("api", cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
}

func startGRPC(port string, logger *zap.Logger) (*grpc.Server, *health.Server, error) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, nil, err
	}

	s := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(s)

	go func() {
		logger.Info("grpc health listening", zap.String("addr", lis.Addr().String()))
		if err := s.Serve(lis); err != nil {
			logger.Error("grpc server stopped", zap.Error(err))
		}
	}()
	return s, healthServer, nil
}

func dependencyHealth(redisClient *redis.Client) func() (bool, map[string]string) {
	return func() (bool, map[string]string) {
		deps := map[string]string{"session_store": "memory"}
		if redisClient == nil {
			return true, deps
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			deps["session_store"] = "redis unavailable"
			return false, deps
		}
		deps["session_store"] = "redis"
		return true, deps
	}
}
