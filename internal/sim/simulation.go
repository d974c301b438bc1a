package sim

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"windward/internal/world"
)

// Mode - режим игры, гейтирующий физику. Передается явно через
// SetMode, а не читается из окружения.
type Mode int

const (
	ModeSail  Mode = iota // обычное плавание
	ModeBuild             // режим постройки: физика и коллизии приостановлены
)

func (m Mode) String() string {
	if m == ModeBuild {
		return "build"
	}
	return "sail"
}

// BurstState - одноразовое ускорение с кулдауном
type BurstState struct {
	Active        bool
	activeUntil   float64
	cooldownUntil float64
}

// RaceProgress - прохождение гоночного маршрута
type RaceProgress struct {
	RouteID    int
	NextIndex  int
	startedAt  float64
	Finished   bool
	ElapsedSec float64
}

// Simulation - единый владелец всего пер-тикового состояния.
// Порядок мутаций внутри тика фиксирован: движение -> среда ->
// энергия; коллизии проверяет внешний цикл через CheckCollisions.
// Мьютекс сериализует тик и внешние сеттеры: ядро однопоточное по
// смыслу, но транспорт дергает сеттеры из своих горутин.
type Simulation struct {
	mu     sync.Mutex
	logger zerolog.Logger
	params Params

	world *world.World
	rng   *rand.Rand
	now   float64 // накопленное время симуляции, сек

	mode   Mode
	vessel Vessel
	env    Environment
	energy EnergyState
	damage DamageState
	burst  BurstState

	autoDock AutoDock
	race     *RaceProgress
	docked   bool

	// Открытые точки интереса и ведомость наград - вне снимка мира
	discovered map[int]bool
	credits    int

	currentZone        int // id зоны, в которой судно сейчас; -1 вне зон
	lastCollisionCheck float64
}

// New создает симуляцию над сгенерированным миром. Судно стартует
// у марины с полной батареей.
func New(w *world.World, params Params, logger zerolog.Logger) *Simulation {
	rng := rand.New(rand.NewPCG(uint64(w.Seed), 0x5EAFA11))

	s := &Simulation{
		logger:      logger,
		params:      params,
		world:       w,
		rng:         rng,
		damage:      newDamageState(),
		discovered:  make(map[int]bool),
		currentZone: -1,
		// Первая проверка коллизий не должна отсекаться дросселем
		lastCollisionCheck: math.Inf(-1),
	}
	s.env = NewEnvironment(params.DefaultWeather, params, rng, logger)
	s.energy = EnergyState{
		Capacity:  params.BatteryCapacityKWh,
		ChargeKWh: params.BatteryCapacityKWh,
		Percent:   100,
	}
	s.vessel.Position = mgl64.Vec3{w.Marina.Position.X(), 0, w.Marina.Position.Y() + w.Marina.DockingRadius}
	return s
}

// World возвращает снимок мира (только чтение)
func (s *Simulation) World() *world.World {
	return s.world
}

// Tick продвигает симуляцию на dt секунд. Коэффициенты судна
// приходят снаружи на каждый кадр. В режиме постройки тик
// пропускается целиком, состояние замораживается без сброса.
// Отрицательный dt обрезается до нуля.
func (s *Simulation) Tick(dt float64, perf Performance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeBuild {
		return
	}
	if dt < 0 {
		dt = 0
	}
	s.now += dt

	// Автовозврат пересчитывает руль каждый тик
	if s.autoDock.Active {
		if s.autoDock.steerTowards(&s.vessel, s.params.AutoDockArriveDist) {
			s.autoDock.Active = false
			s.vessel.Throttle = 0
			s.vessel.Steering = 0
			s.logger.Info().Msg("автовозврат завершен")
		}
	}

	// Таймер ускорения
	if s.burst.Active && s.now >= s.burst.activeUntil {
		s.burst.Active = false
	}

	burstMult := 1.0
	if s.burst.Active {
		burstMult = s.params.BurstMultiplier
	}

	// 1. Движение
	s.vessel.Integrate(dt, perf, burstMult)

	// 2. Среда: время суток, порывы, дрейф, ветровые зоны
	s.env.Advance(dt, s.params, s.rng)
	if zone := s.world.ZoneAt(s.vessel.Position2D()); zone != nil {
		s.applyZoneOnce(zone)
	} else {
		s.currentZone = -1
	}

	// 3. Энергия и батарея
	s.docked = s.vessel.Position2D().Sub(s.world.Marina.Position).Len() <= s.world.Marina.DockingRadius
	s.tickEnergy(dt, perf)

	// Сопутствующие проверки: открытие точек интереса и гонка
	s.tickDiscovery()
	s.tickRace()
}

// applyZoneOnce применяет зону только при входе: пока судно остается
// внутри одной зоны, погода не переустанавливается каждый тик
func (s *Simulation) applyZoneOnce(zone *world.WindZone) {
	if s.currentZone == zone.ID {
		return
	}
	s.currentZone = zone.ID
	s.env.ApplyZone(zone, s.rng, s.logger)
	s.logger.Debug().Int("zone", zone.ID).Str("pattern", string(zone.Pattern)).Msg("вход в ветровую зону")
}

// tickDiscovery отмечает точки интереса в радиусе открытия и
// начисляет фиксированную награду. Каждая точка открывается один раз.
func (s *Simulation) tickDiscovery() {
	pos := s.vessel.Position2D()
	for i := range s.world.POIs {
		poi := &s.world.POIs[i]
		if s.discovered[poi.ID] {
			continue
		}
		if pos.Sub(poi.Position).Len() <= s.params.POIDiscoverRadius {
			s.discovered[poi.ID] = true
			s.credits += poi.Reward
			s.logger.Info().
				Int("poi", poi.ID).
				Str("type", poi.Type.String()).
				Int("reward", poi.Reward).
				Msg("точка интереса открыта")
		}
	}
}

// StartRace включает прохождение маршрута с нулевой точки.
// Возвращает false для неизвестного маршрута.
func (s *Simulation) StartRace(routeID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.world.Routes {
		if s.world.Routes[i].ID == routeID {
			s.race = &RaceProgress{RouteID: routeID, startedAt: s.now}
			s.logger.Info().Int("route", routeID).Msg("гонка начата")
			return true
		}
	}
	return false
}

// tickRace захватывает контрольные точки строго по порядку
func (s *Simulation) tickRace() {
	if s.race == nil || s.race.Finished {
		return
	}

	var route *world.RaceRoute
	for i := range s.world.Routes {
		if s.world.Routes[i].ID == s.race.RouteID {
			route = &s.world.Routes[i]
			break
		}
	}
	if route == nil || s.race.NextIndex >= len(route.Checkpoints) {
		return
	}

	cp := &route.Checkpoints[s.race.NextIndex]
	if s.vessel.Position2D().Sub(cp.Position).Len() <= cp.Radius {
		s.race.NextIndex++
		if s.race.NextIndex >= len(route.Checkpoints) {
			s.race.Finished = true
			s.race.ElapsedSec = s.now - s.race.startedAt
			s.logger.Info().
				Int("route", route.ID).
				Float64("elapsed_sec", s.race.ElapsedSec).
				Msg("гонка завершена")
		}
	}
}

// ActivateBurst включает ускорение. Молча не делает ничего, если
// кулдаун не истек или заряд батареи на пороге или ниже.
func (s *Simulation) ActivateBurst() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now < s.burst.cooldownUntil {
		return false
	}
	if s.energy.Percent <= s.params.BurstMinBatteryPct {
		return false
	}

	s.burst.Active = true
	s.burst.activeUntil = s.now + s.params.BurstDurationSec
	s.burst.cooldownUntil = s.now + s.params.BurstCooldownSec
	return true
}

// SetThrottle устанавливает газ, значение обрезается в [0,100].
// Внешние значения не валидируются жестче: ядро доверяет границе.
func (s *Simulation) SetThrottle(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vessel.Throttle = clamp(v, 0, 100)
}

// SetSteering устанавливает руль, значение обрезается в [-1,1]
func (s *Simulation) SetSteering(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.autoDock.Active {
		s.vessel.Steering = clamp(v, -1, 1)
	}
}

// SetMode переключает режим. Вход в режим постройки атомарно
// замораживает физику и коллизии, ничего не сбрасывая.
func (s *Simulation) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// SetAutoDock включает или выключает автовозврат. Без явной цели
// судно идет к марине. При включении газ ставится на полный один раз.
func (s *Simulation) SetAutoDock(enabled bool, target *mgl64.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !enabled {
		s.autoDock.Active = false
		return
	}

	dst := s.world.Marina.Position
	if target != nil {
		dst = *target
	}
	s.autoDock = AutoDock{Active: true, Target: dst}
	s.vessel.Throttle = 100
}
