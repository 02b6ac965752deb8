package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/config"
	elasticrepo "github.com/beeloyalty/engine/internal/repository/elastic"
	"github.com/beeloyalty/engine/internal/repository/mongodb"
	"github.com/beeloyalty/engine/internal/scheduler"
	"github.com/beeloyalty/engine/internal/server/handlers"
	"github.com/beeloyalty/engine/internal/server/router"
	"github.com/beeloyalty/engine/internal/service/inventory"
	"github.com/beeloyalty/engine/internal/service/transactions"
	"github.com/beeloyalty/engine/pkg/clients/elastic"
	"github.com/beeloyalty/engine/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	storeClient := elastic.NewClient(cfg.Elastic, baseLogger.Named("client.elastic"))
	repository := elasticrepo.NewRepository(storeClient, cfg.Indices, cfg.Elastic.ElserModelID, baseLogger.Named("repo.elastic"))
	writer := elasticrepo.NewWriter(storeClient, cfg.Indices, cfg.Bulk.FailureTolerance, baseLogger.Named("repo.elastic.writer"))

	resolver := inventory.NewResolver(repository, baseLogger.Named("svc.inventory"))
	txnSvc := transactions.NewService(repository, writer, resolver, baseLogger.Named("svc.transactions"))

	// Snapshot archival is optional; without MongoDB the sweep only logs.
	var archive mongodb.Repository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archive = mongoRepo
		baseLogger.Info("inventory snapshot archive enabled")
	} else {
		baseLogger.Warn("mongodb uri missing, inventory snapshot archival disabled")
	}

	loyaltyHandler := handlers.NewLoyaltyHandler(txnSvc, repository, writer, storeClient, baseLogger.Named("handlers.loyalty"))
	engine := router.New(loyaltyHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Sweep, repository, archive, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
