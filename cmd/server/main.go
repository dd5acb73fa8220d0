package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"droneMedicalDelivery/internal/api"
	"droneMedicalDelivery/internal/audit"
	"droneMedicalDelivery/internal/config"
	"droneMedicalDelivery/internal/db"
	"droneMedicalDelivery/internal/fleet"
	"droneMedicalDelivery/internal/logging"
	"droneMedicalDelivery/internal/meds"
	"droneMedicalDelivery/internal/users"
	"droneMedicalDelivery/repository"
)

func main() {
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Error("close database", zap.Error(err))
		}
	}()

	droneRepo := repository.NewDroneRepository(d)
	medRepo := repository.NewMedicationRepository(d)
	loadRepo := repository.NewDroneMedicationRepository(d)
	userRepo := repository.NewUserRepository(d)
	logRepo := repository.NewAuditLogRepository(d)

	sink := audit.NewRepoSink(logRepo, logger)
	fleetSvc := fleet.NewService(droneRepo, medRepo, loadRepo, sink, logger)
	medsSvc := meds.NewService(medRepo, sink, logger)
	usersSvc := users.NewService(userRepo, sink, logger, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	monitor := fleet.NewBatteryMonitor(droneRepo, sink, logger, cfg.Battery.SweepInterval, cfg.Battery.SweepTimeout)
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	monitor.Start(monitorCtx)
	logger.Info("battery monitor started", zap.Duration("interval", cfg.Battery.SweepInterval))

	handler := api.New(fleetSvc, monitor, medsSvc, usersSvc, logRepo, logger, cfg.Auth.JWTSecret)
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info("shutting down")

	stopMonitor()
	monitor.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}
