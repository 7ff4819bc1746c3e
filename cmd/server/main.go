package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/app"
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/config"
	"github.com/wonderless/Test-autoestima-sub000/internal/logger"
	"github.com/wonderless/Test-autoestima-sub000/internal/metrics"
	"github.com/wonderless/Test-autoestima-sub000/internal/service"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/rest"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/rest/middleware"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/ws"
)

// @title Autoestima Results API
// @version 1.0
// @description Self-esteem questionnaire scoring, recommendations and progress
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		// no logger yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	cat := catalog.Default()
	log.Info("catalog loaded",
		zap.Int("questions", len(cat.Questions())),
		zap.Int("recommendations", len(cat.ItemIDs())),
	)

	stores, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)

	// Initialize services
	clock := service.SystemClock()
	locks := service.NewUserLocks()
	persister := service.NewPersister(stores.Users, log, cfg.Persist.Timeout, cfg.Persist.Retries)

	authSvc := service.NewAuthService(cfg.JWT)
	testSvc := service.NewTestService(cat, persister, stores.Sessions, stores.Dashboard, locks, clock, log)
	resultsSvc := service.NewResultsService(cat, stores.Users, stores.Sessions, stores.Dashboard, persister, locks, clock, log,
		service.ResultsOptions{LoadAttempts: cfg.Results.LoadAttempts, LoadDelay: cfg.Results.LoadDelay})
	adminSvc := service.NewAdminService(cat, stores.Users, stores.Dashboard, clock, log)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	testSvc.SetBroadcaster(wsHub)
	resultsSvc.SetBroadcaster(wsHub)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	stopCleanup := make(chan struct{})
	go limiter.Cleanup(stopCleanup)

	router := rest.NewRouter(&rest.Container{
		Config:         cfg,
		Catalog:        cat,
		AuthService:    authSvc,
		TestService:    testSvc,
		ResultsService: resultsSvc,
		AdminService:   adminSvc,
		WSHub:          wsHub,
		RateLimiter:    limiter,
		Gatherer:       registry,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("store", cfg.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	close(stopCleanup)
	wsHub.Close()
	// drain background progress writes before the stores go away
	persister.Wait()
	if err := stores.Close(shutdownCtx); err != nil {
		log.Warn("failed to close storage", zap.Error(err))
	}

	log.Info("server exited")
}
