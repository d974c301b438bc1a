package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TickSystem - интерфейс для всех систем игрового цикла
type TickSystem interface {
	Update(deltaTime time.Duration) error
	GetName() string
	GetPriority() int // Приоритет выполнения (меньше = раньше)
}

// GameTicker - основной менеджер игрового цикла. Держит
// зарегистрированные системы и гонит их с целевой частотой.
type GameTicker struct {
	// Конфигурация
	targetTPS    int
	tickDuration time.Duration
	maxTickTime  time.Duration // максимальное время на один тик

	// Состояние
	isRunning    bool
	tickCount    uint64
	startTime    time.Time
	lastTickTime time.Time
	stateMutex   sync.RWMutex

	// Системы
	systems      []TickSystem
	systemsMutex sync.RWMutex

	// Мониторинг производительности
	perfMonitor *PerformanceMonitor

	// Управление
	ctx    context.Context
	cancel context.CancelFunc

	// Метрики
	averageTickTime time.Duration
	maxObservedTick time.Duration
	slowTicks       uint64

	logger           zerolog.Logger
	warningThreshold time.Duration
}

// NewGameTicker создает игровой цикл с целевой частотой тиков
func NewGameTicker(targetTPS int, logger zerolog.Logger) *GameTicker {
	if targetTPS <= 0 {
		targetTPS = 20
	}

	tickDuration := time.Second / time.Duration(targetTPS)
	ctx, cancel := context.WithCancel(context.Background())

	return &GameTicker{
		targetTPS:    targetTPS,
		tickDuration: tickDuration,
		maxTickTime:  tickDuration * 2,
		systems:      make([]TickSystem, 0),
		// Предупреждение при 25% от тика на систему
		perfMonitor:      NewPerformanceMonitor(50, tickDuration/4),
		ctx:              ctx,
		cancel:           cancel,
		logger:           logger,
		warningThreshold: tickDuration / 2,
	}
}

// RegisterSystem добавляет систему в цикл, сохраняя сортировку
// по приоритету (меньше = выше)
func (gt *GameTicker) RegisterSystem(system TickSystem) {
	gt.systemsMutex.Lock()
	defer gt.systemsMutex.Unlock()

	gt.systems = append(gt.systems, system)
	for i := len(gt.systems) - 1; i > 0; i-- {
		if gt.systems[i].GetPriority() < gt.systems[i-1].GetPriority() {
			gt.systems[i], gt.systems[i-1] = gt.systems[i-1], gt.systems[i]
		} else {
			break
		}
	}

	gt.perfMonitor.initSystemMetrics(system.GetName())

	gt.logger.Info().
		Str("system", system.GetName()).
		Int("priority", system.GetPriority()).
		Msg("зарегистрирована система")
}

// Start запускает игровой цикл в отдельной горутине
func (gt *GameTicker) Start() {
	gt.stateMutex.Lock()
	if gt.isRunning {
		gt.stateMutex.Unlock()
		return
	}
	gt.isRunning = true
	gt.startTime = time.Now()
	gt.lastTickTime = gt.startTime
	gt.stateMutex.Unlock()

	gt.logger.Info().
		Int("target_tps", gt.targetTPS).
		Dur("tick_duration", gt.tickDuration).
		Msg("запуск игрового цикла")

	go gt.gameLoop()
}

// Stop останавливает игровой цикл
func (gt *GameTicker) Stop() {
	gt.stateMutex.Lock()
	defer gt.stateMutex.Unlock()
	if !gt.isRunning {
		return
	}

	gt.logger.Info().Uint64("ticks", gt.tickCount).Msg("остановка игрового цикла")
	gt.cancel()
	gt.isRunning = false
}

func (gt *GameTicker) gameLoop() {
	ticker := time.NewTicker(gt.tickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-gt.ctx.Done():
			return
		case tickTime := <-ticker.C:
			gt.executeTick(tickTime)
		}
	}
}

// executeTick выполняет один тик: все системы по приоритету с замером
func (gt *GameTicker) executeTick(tickTime time.Time) {
	tickStart := time.Now()
	deltaTime := tickTime.Sub(gt.lastTickTime)

	if deltaTime > gt.tickDuration*2 {
		gt.logger.Warn().
			Dur("delta", deltaTime).
			Dur("expected", gt.tickDuration).
			Msg("большая задержка между тиками")
		gt.slowTicks++
	}

	gt.tickCount++
	gt.lastTickTime = tickTime

	gt.executeAllSystems(deltaTime)

	totalTickTime := time.Since(tickStart)
	gt.updateTickMetrics(totalTickTime)
	gt.checkPerformance(totalTickTime)
}

func (gt *GameTicker) executeAllSystems(deltaTime time.Duration) {
	gt.systemsMutex.RLock()
	systems := make([]TickSystem, len(gt.systems))
	copy(systems, gt.systems)
	gt.systemsMutex.RUnlock()

	for _, system := range systems {
		gt.executeSystem(system, deltaTime)
	}
}

// executeSystem выполняет одну систему. Паника внутри системы не
// роняет весь цикл - фиксируется как ошибка и тик продолжается.
func (gt *GameTicker) executeSystem(system TickSystem, deltaTime time.Duration) {
	systemStart := time.Now()
	systemName := system.GetName()

	defer func() {
		if r := recover(); r != nil {
			gt.logger.Error().
				Str("system", systemName).
				Interface("panic", r).
				Msg("паника в системе")
			gt.perfMonitor.recordError(systemName)
		}
	}()

	err := system.Update(deltaTime)

	gt.perfMonitor.recordExecution(systemName, time.Since(systemStart))

	if err != nil {
		gt.logger.Error().Err(err).Str("system", systemName).Msg("ошибка в системе")
		gt.perfMonitor.recordError(systemName)
	}
}

// GetTickCount возвращает текущее количество тиков
func (gt *GameTicker) GetTickCount() uint64 {
	gt.stateMutex.RLock()
	defer gt.stateMutex.RUnlock()
	return gt.tickCount
}

// GetStats возвращает статистику игрового цикла
func (gt *GameTicker) GetStats() map[string]interface{} {
	gt.stateMutex.RLock()
	defer gt.stateMutex.RUnlock()

	uptime := time.Since(gt.startTime)
	actualTPS := 0.0
	if uptime > 0 {
		actualTPS = float64(gt.tickCount) / uptime.Seconds()
	}

	gt.systemsMutex.RLock()
	systemsCount := len(gt.systems)
	gt.systemsMutex.RUnlock()

	return map[string]interface{}{
		"target_tps":        gt.targetTPS,
		"actual_tps":        actualTPS,
		"tick_count":        gt.tickCount,
		"uptime_seconds":    uptime.Seconds(),
		"average_tick_time": gt.averageTickTime,
		"max_observed_tick": gt.maxObservedTick,
		"slow_ticks":        gt.slowTicks,
		"is_running":        gt.isRunning,
		"systems_count":     systemsCount,
	}
}

// GetSystemsStats возвращает метрики производительности по системам
func (gt *GameTicker) GetSystemsStats() map[string]interface{} {
	return gt.perfMonitor.GetSystemsStats()
}

func (gt *GameTicker) updateTickMetrics(tickTime time.Duration) {
	if tickTime > gt.maxObservedTick {
		gt.maxObservedTick = tickTime
	}

	// Простое скользящее среднее
	if gt.averageTickTime == 0 {
		gt.averageTickTime = tickTime
	} else {
		gt.averageTickTime = (gt.averageTickTime*9 + tickTime) / 10
	}
}

func (gt *GameTicker) checkPerformance(tickTime time.Duration) {
	if tickTime > gt.maxTickTime {
		gt.logger.Warn().
			Dur("tick_time", tickTime).
			Dur("max", gt.maxTickTime).
			Msg("тик превысил максимальное время")
	} else if tickTime > gt.warningThreshold {
		gt.logger.Warn().
			Dur("tick_time", tickTime).
			Dur("target", gt.tickDuration).
			Msg("медленный тик")
	}
}
