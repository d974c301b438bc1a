package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"windward/internal/config"
	"windward/internal/game"
	"windward/internal/sim"
	"windward/internal/telemetry"
	"windward/internal/transport/ws"
	"windward/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("не удалось загрузить конфигурацию")
	}

	logger := newLogger(cfg.Log)
	logger.Info().
		Str("addr", cfg.Server.Addr).
		Int64("seed", cfg.World.Seed).
		Str("difficulty", cfg.World.Difficulty).
		Msg("запуск сервера")

	// Мир: детерминированная генерация по seed и сложности
	worldCfg := world.ConfigForDifficulty(cfg.World.Difficulty)
	worldCfg.WorldSize = cfg.World.Size
	w := world.Generate(cfg.World.Seed, worldCfg, logger)

	params := sim.DefaultParams()
	simulation := sim.New(w, params, logger)
	tm := telemetry.NewManager(logger)
	server := ws.NewServer(simulation, tm, logger)

	// Игровой цикл: физика -> коллизии -> трансляция -> телеметрия
	ticker := game.NewGameTicker(cfg.Server.TargetTPS, logger)
	ticker.RegisterSystem(game.NewSimulationSystem(simulation, cfg.Performance))
	ticker.RegisterSystem(game.NewCollisionSystem(simulation, params.VesselRadius))
	ticker.RegisterSystem(game.NewNetworkSyncSystem(simulation, server,
		time.Duration(cfg.Server.BroadcastIntervalMS)*time.Millisecond))
	ticker.RegisterSystem(game.NewTelemetrySystem(simulation, tm, logger))
	ticker.Start()
	defer ticker.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/stats", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		stats := ticker.GetStats()
		stats["clients"] = server.ClientCount()
		stats["systems"] = ticker.GetSystemsStats()
		if err := json.NewEncoder(rw).Encode(stats); err != nil {
			logger.Error().Err(err).Msg("ошибка сериализации статистики")
		}
	})
	mux.HandleFunc("/telemetry", func(rw http.ResponseWriter, r *http.Request) {
		data, err := tm.JSON()
		if err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		rw.Write(data)
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("HTTP-сервер слушает")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP-сервер упал")
		}
	}()

	// Ожидание сигнала завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("получен сигнал завершения")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("ошибка остановки HTTP-сервера")
	}
	logger.Info().Msg("сервер остановлен")
}

// newLogger настраивает zerolog по конфигурации
func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger
}
