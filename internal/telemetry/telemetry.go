package telemetry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"windward/internal/sim"
)

// Sample - одна запись телеметрии: срез состояния судна на момент тика
type Sample struct {
	Timestamp  int64   `json:"timestamp"` // миллисекунды
	SimTimeSec float64 `json:"sim_time_sec"`
	X          float64 `json:"x"`
	Z          float64 `json:"z"`
	SpeedKnots float64 `json:"speed_knots"`
	Heading    float64 `json:"heading"`
	BatteryPct float64 `json:"battery_pct"`
	NetKW      float64 `json:"net_kw"`
	Hull       float64 `json:"hull"`
	Weather    string  `json:"weather"`
	TimeOfDay  float64 `json:"time_of_day"`
}

// Manager собирает телеметрию в кольцевой буфер и периодически
// пишет сводку в лог. Хранятся только последние maxEntries записей.
type Manager struct {
	enabled    bool
	data       []Sample
	mutex      sync.RWMutex
	maxEntries int

	// Счетчики для статистики между сводками
	counters      map[string]int
	lastPrint     time.Time
	printInterval time.Duration

	logger zerolog.Logger
}

// NewManager создает менеджер телеметрии
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		enabled:       true,
		data:          make([]Sample, 0),
		maxEntries:    200,
		counters:      make(map[string]int),
		lastPrint:     time.Now(),
		printInterval: 10 * time.Second,
		logger:        logger,
	}
}

// Record снимает запись со снимка симуляции
func (m *Manager) Record(snap sim.Snapshot) {
	if !m.IsEnabled() {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data = append(m.data, Sample{
		Timestamp:  time.Now().UnixMilli(),
		SimTimeSec: snap.Time,
		X:          snap.Vessel.X,
		Z:          snap.Vessel.Z,
		SpeedKnots: snap.Vessel.SpeedKnots,
		Heading:    snap.Vessel.Rotation,
		BatteryPct: snap.Energy.Percent,
		NetKW:      snap.Energy.NetKW,
		Hull:       snap.Damage.Hull,
		Weather:    snap.Environment.Weather,
		TimeOfDay:  snap.Environment.TimeOfDay,
	})

	// Ограничиваем размер буфера
	if len(m.data) > m.maxEntries {
		m.data = m.data[1:]
	}

	m.counters["samples"]++
	if snap.Burst.Active {
		m.counters["burst_ticks"]++
	}
	if snap.Docked {
		m.counters["docked_ticks"]++
	}
}

// CountEvent увеличивает именованный счетчик (столкновение, ремонт и т.п.)
func (m *Manager) CountEvent(name string) {
	if !m.IsEnabled() {
		return
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.counters[name]++
}

// PrintSummary пишет сводку в лог не чаще printInterval
// и сбрасывает счетчики
func (m *Manager) PrintSummary() {
	if !m.IsEnabled() {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	if now.Sub(m.lastPrint) < m.printInterval {
		return
	}

	ev := m.logger.Info().Int("entries", len(m.data))
	for key, count := range m.counters {
		ev = ev.Int(key, count)
	}
	if last := m.latest(); last != nil {
		ev = ev.
			Float64("speed_knots", last.SpeedKnots).
			Float64("battery_pct", last.BatteryPct).
			Float64("net_kw", last.NetKW).
			Float64("hull", last.Hull).
			Str("weather", last.Weather)
	}
	ev.Msg("сводка телеметрии")

	m.counters = make(map[string]int)
	m.lastPrint = now
}

// latest возвращает последнюю запись; вызывается под мьютексом
func (m *Manager) latest() *Sample {
	if len(m.data) == 0 {
		return nil
	}
	return &m.data[len(m.data)-1]
}

// JSON возвращает буфер телеметрии в JSON для отладочной ручки
func (m *Manager) JSON() ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return json.MarshalIndent(m.data, "", "  ")
}

// SetEnabled включает или выключает сбор
func (m *Manager) SetEnabled(enabled bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.enabled = enabled
	m.logger.Info().Bool("enabled", enabled).Msg("телеметрия переключена")
}

// IsEnabled сообщает текущее состояние сбора
func (m *Manager) IsEnabled() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.enabled
}

// Clear очищает буфер и счетчики
func (m *Manager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make([]Sample, 0)
	m.counters = make(map[string]int)
}

// Len возвращает количество записей в буфере
func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}
