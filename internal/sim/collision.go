package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"windward/internal/world"
)

// DamageState - прочность корпуса и учет столкновений
type DamageState struct {
	Hull       float64 `json:"hull"` // 0..100
	Collisions int     `json:"collisions"`
	lastHitID  int
	lastHitAt  float64 // секунды симуляции
}

func newDamageState() DamageState {
	return DamageState{Hull: 100, lastHitID: -1, lastHitAt: math.Inf(-1)}
}

// CheckCollisions проверяет судно против препятствий мира.
// Позиция судна не передается: симуляция владеет ею сама, внешний
// цикл сообщает только радиус корпуса.
// Вызывается с любой частотой: внутренний дроссель пропускает не чаще
// одного прохода за минимальный интервал - это сознательный обмен
// задержки обнаружения на экономию CPU.
// В режиме постройки и до генерации мира - no-op.
func (s *Simulation) CheckCollisions(vesselRadius float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeBuild || s.world == nil {
		return
	}
	if s.now-s.lastCollisionCheck < s.params.CollisionMinIntervalSec {
		return
	}
	s.lastCollisionCheck = s.now

	pos := s.vessel.Position2D()

	// Первый проход: крупные айсберги, полная модель урона.
	// Обрабатывается не больше одного удара за вызов.
	for i := range s.world.Ice {
		obs := &s.world.Ice[i]
		if obs.Kind != world.IceIceberg {
			continue
		}
		overlap := (obs.Radius + vesselRadius) - pos.Sub(obs.Position).Len()
		if overlap > 0 {
			s.resolveCollision(obs, overlap, false)
			return
		}
	}

	// Второй проход: льдины, уменьшенная модель
	for i := range s.world.Ice {
		obs := &s.world.Ice[i]
		if obs.Kind != world.IceFloe {
			continue
		}
		overlap := (obs.Radius + vesselRadius) - pos.Sub(obs.Position).Len()
		if overlap > 0 {
			s.resolveCollision(obs, overlap, true)
			return
		}
	}
}

// resolveCollision применяет урон и отклик на столкновение.
// reduced - уменьшенная модель льдин: половинный выталкивающий сдвиг
// и половинный эффективный радиус в факторе размера.
func (s *Simulation) resolveCollision(obs *world.IceObstacle, penetration float64, reduced bool) {
	pos := s.vessel.Position2D()
	delta := pos.Sub(obs.Position)
	dist := delta.Len()

	var normal mgl64.Vec2
	if dist > 0 {
		normal = delta.Mul(1 / dist)
	} else {
		normal = mgl64.Vec2{0, 1}
	}

	pushPen := penetration
	sizeRadius := obs.Radius
	if reduced {
		pushPen /= 2
		sizeRadius /= 2
	}

	// Кулдаун: повторный удар об тот же объект в окне не наносит
	// нового урона, только выталкивание и сброс скорости
	if obs.ID == s.damage.lastHitID && s.now-s.damage.lastHitAt < s.params.CollisionCooldownSec {
		s.pushOut(normal, pushPen)
		s.vessel.SpeedKnots *= 0.5
		return
	}

	speedFactor := math.Max(1, s.vessel.SpeedKnots/5)
	sizeFactor := math.Max(1, sizeRadius/20)
	dmg := (5 + penetration*0.5) * speedFactor * sizeFactor

	s.damage.Hull = math.Max(0, s.damage.Hull-dmg)
	s.damage.Collisions++
	s.damage.lastHitID = obs.ID
	s.damage.lastHitAt = s.now

	s.pushOut(normal, pushPen)

	// Если курс направлен внутрь препятствия, подруливаем в сторону
	heading := s.vessel.HeadingVector()
	if heading.Dot(normal) < 0 {
		cross := heading.X()*normal.Y() - heading.Y()*normal.X()
		s.vessel.Rotation = wrapAngle(s.vessel.Rotation + math.Copysign(math.Pi*0.3, cross))
	}

	s.vessel.SpeedKnots *= 0.3

	s.logger.Info().
		Int("obstacle", obs.ID).
		Str("kind", obs.Kind.String()).
		Float64("damage", dmg).
		Float64("hull", s.damage.Hull).
		Msg("столкновение")
}

// pushOut выталкивает судно вдоль контактной нормали
func (s *Simulation) pushOut(normal mgl64.Vec2, penetration float64) {
	shift := normal.Mul(penetration * 1.5)
	s.vessel.Position = mgl64.Vec3{
		s.vessel.Position.X() + shift.X(),
		s.vessel.Position.Y(),
		s.vessel.Position.Z() + shift.Y(),
	}
}

// Repair восстанавливает корпус за фиксированную стоимость энергии.
// При нехватке заряда состояние не меняется, возвращается false.
func (s *Simulation) Repair() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.energy.ChargeKWh < s.params.RepairCostKWh {
		return false
	}

	s.energy.ChargeKWh -= s.params.RepairCostKWh
	s.energy.Percent = s.energy.ChargeKWh / s.energy.Capacity * 100
	s.damage = newDamageState()

	s.logger.Info().Float64("cost_kwh", s.params.RepairCostKWh).Msg("корпус отремонтирован")
	return true
}
