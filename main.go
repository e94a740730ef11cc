package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/worldsync/config"
	"github.com/wfunc/worldsync/logger"
	"github.com/wfunc/worldsync/monitor"
	"github.com/wfunc/worldsync/persistence"
	"github.com/wfunc/worldsync/room"
	"github.com/wfunc/worldsync/server"
	"github.com/wfunc/worldsync/services"
	"github.com/wfunc/worldsync/timer"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Log.File != "" {
		logger.InitWithFile(cfg.Log.File)
	}
	defer logger.Sync()

	// Initialize persistence backend
	store, err := newStore(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer store.Close()

	playerService := services.NewPlayerService(store, time.Duration(cfg.Persistence.SaveDebounceMs)*time.Millisecond)

	// Monitoring endpoint on its own address
	mon := monitor.NewMonitor("worldsync")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Room table and shared tick scheduler
	timers := timer.NewTimerManager()
	defer timers.Stop()
	rooms := room.NewManager(cfg.World, timers, mon)

	gameServer := server.NewGameServer(cfg, rooms, playerService, mon)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("Shutting down...")
		gameServer.Shutdown()
		logger.Sync()
		os.Exit(0)
	}()

	logger.Log.Infof("Starting world sync server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func newStore(cfg *config.Config) (persistence.Store, error) {
	switch cfg.Persistence.Backend {
	case "postgres":
		return persistence.NewPostgreSQL(
			cfg.Persistence.Postgres.Host,
			cfg.Persistence.Postgres.Port,
			cfg.Persistence.Postgres.User,
			cfg.Persistence.Postgres.Password,
			cfg.Persistence.Postgres.DBName,
		)
	case "gorm":
		return persistence.NewGormPostgreSQL(
			cfg.Persistence.Postgres.Host,
			cfg.Persistence.Postgres.Port,
			cfg.Persistence.Postgres.User,
			cfg.Persistence.Postgres.Password,
			cfg.Persistence.Postgres.DBName,
		)
	default:
		return persistence.NewFileStore(cfg.Persistence.File.Path)
	}
}
