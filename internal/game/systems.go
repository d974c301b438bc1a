package game

import (
	"time"

	"github.com/rs/zerolog"

	"windward/internal/sim"
	"windward/internal/telemetry"
)

// SimulationSystem продвигает физику и энергобаланс судна.
// Коэффициенты корпуса запрашиваются каждый тик: их источник -
// внешняя подсистема конфигурации, ядро их не кэширует.
type SimulationSystem struct {
	name     string
	priority int
	sim      *sim.Simulation
	perf     func() sim.Performance
}

// NewSimulationSystem создает систему симуляции. perf может быть nil -
// тогда используются коэффициенты по умолчанию.
func NewSimulationSystem(s *sim.Simulation, perf func() sim.Performance) *SimulationSystem {
	if perf == nil {
		perf = sim.DefaultPerformance
	}
	return &SimulationSystem{
		name:     "SimulationSystem",
		priority: 5, // высокий приоритет - физика первой
		sim:      s,
		perf:     perf,
	}
}

func (ss *SimulationSystem) Update(deltaTime time.Duration) error {
	ss.sim.Tick(deltaTime.Seconds(), ss.perf())
	return nil
}

func (ss *SimulationSystem) GetName() string { return ss.name }

func (ss *SimulationSystem) GetPriority() int { return ss.priority }

// CollisionSystem проверяет столкновения с ледовыми препятствиями.
// Идет после движения, чтобы работать по свежей позиции.
type CollisionSystem struct {
	name         string
	priority     int
	sim          *sim.Simulation
	vesselRadius float64
}

// NewCollisionSystem создает систему коллизий с радиусом судна
func NewCollisionSystem(s *sim.Simulation, vesselRadius float64) *CollisionSystem {
	return &CollisionSystem{
		name:         "CollisionSystem",
		priority:     10,
		sim:          s,
		vesselRadius: vesselRadius,
	}
}

func (cs *CollisionSystem) Update(deltaTime time.Duration) error {
	cs.sim.CheckCollisions(cs.vesselRadius)
	return nil
}

func (cs *CollisionSystem) GetName() string { return cs.name }

func (cs *CollisionSystem) GetPriority() int { return cs.priority }

// StateBroadcaster - интерфейс отправки снимка состояния клиентам
type StateBroadcaster interface {
	BroadcastState(snap sim.Snapshot)
}

// NetworkSyncSystem транслирует снимок состояния клиентам.
// Частота отправки ограничена отдельно от частоты тиков.
type NetworkSyncSystem struct {
	name     string
	priority int
	sim      *sim.Simulation
	server   StateBroadcaster

	lastBroadcast     time.Time
	broadcastInterval time.Duration
}

// NewNetworkSyncSystem создает систему сетевой синхронизации
func NewNetworkSyncSystem(s *sim.Simulation, server StateBroadcaster, interval time.Duration) *NetworkSyncSystem {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &NetworkSyncSystem{
		name:              "NetworkSyncSystem",
		priority:          100, // низкий приоритет - отправляем в конце тика
		sim:               s,
		server:            server,
		broadcastInterval: interval,
	}
}

func (nss *NetworkSyncSystem) Update(deltaTime time.Duration) error {
	now := time.Now()
	if now.Sub(nss.lastBroadcast) < nss.broadcastInterval {
		return nil
	}
	nss.lastBroadcast = now

	nss.server.BroadcastState(nss.sim.Snapshot())
	return nil
}

func (nss *NetworkSyncSystem) GetName() string { return nss.name }

func (nss *NetworkSyncSystem) GetPriority() int { return nss.priority }

// TelemetrySystem снимает запись телеметрии и периодически пишет сводку
type TelemetrySystem struct {
	name     string
	priority int
	sim      *sim.Simulation
	manager  *telemetry.Manager
	logger   zerolog.Logger

	lastSample     time.Time
	sampleInterval time.Duration
}

// NewTelemetrySystem создает систему телеметрии
func NewTelemetrySystem(s *sim.Simulation, manager *telemetry.Manager, logger zerolog.Logger) *TelemetrySystem {
	return &TelemetrySystem{
		name:           "TelemetrySystem",
		priority:       200, // метрики в самом конце
		sim:            s,
		manager:        manager,
		logger:         logger,
		sampleInterval: time.Second,
	}
}

func (ts *TelemetrySystem) Update(deltaTime time.Duration) error {
	now := time.Now()
	if now.Sub(ts.lastSample) < ts.sampleInterval {
		return nil
	}
	ts.lastSample = now

	ts.manager.Record(ts.sim.Snapshot())
	ts.manager.PrintSummary()
	return nil
}

func (ts *TelemetrySystem) GetName() string { return ts.name }

func (ts *TelemetrySystem) GetPriority() int { return ts.priority }
