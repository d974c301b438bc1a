package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vessel - кинематическое состояние судна. Y зарезервирован под
// визуальную качку, симуляция работает в плоскости X/Z.
type Vessel struct {
	Position   mgl64.Vec3
	Rotation   float64 // курс в радианах, нормализован в (-pi, pi]
	SpeedKnots float64
	Throttle   float64 // 0..100
	Steering   float64 // -1..1
}

// Position2D - проекция позиции на плоскость симуляции
func (v *Vessel) Position2D() mgl64.Vec2 {
	return mgl64.Vec2{v.Position.X(), v.Position.Z()}
}

// HeadingVector - единичный вектор курса в плоскости X/Z
func (v *Vessel) HeadingVector() mgl64.Vec2 {
	return mgl64.Vec2{math.Sin(v.Rotation), math.Cos(v.Rotation)}
}

// VelocityMS - вектор скорости в м/с
func (v *Vessel) VelocityMS() mgl64.Vec2 {
	return v.HeadingVector().Mul(v.SpeedKnots * knotsToMS)
}

// Integrate выполняет один шаг интегрирования движения.
// Подход к целевой скорости критически демпфирован: шаг не
// перескакивает цель независимо от dt.
func (v *Vessel) Integrate(dt float64, perf Performance, burstMult float64) {
	targetSpeed := (v.Throttle / 100) * perf.MaxSpeedKnots * burstMult

	speedRatio := math.Abs(v.SpeedKnots) / perf.MaxSpeedKnots
	dragFactor := 1 + 2*speedRatio*speedRatio
	thrustFactor := math.Max(0.2, 1-0.5*speedRatio)
	accelRate := perf.BaseAcceleration * thrustFactor / dragFactor

	v.SpeedKnots += (targetSpeed - v.SpeedKnots) * math.Min(1, dt*accelRate)

	// Руль работает только на ходу
	if math.Abs(v.SpeedKnots) > 0.1 {
		v.Rotation += v.Steering * perf.TurnRate * dt * (v.SpeedKnots / perf.MaxSpeedKnots)
		v.Rotation = wrapAngle(v.Rotation)
	}

	// Продвижение вдоль курса, узлы переводятся в м/с
	step := v.SpeedKnots * knotsToMS * dt
	v.Position = mgl64.Vec3{
		v.Position.X() + math.Sin(v.Rotation)*step,
		v.Position.Y(),
		v.Position.Z() + math.Cos(v.Rotation)*step,
	}
}

// AutoDock - режим автовозврата к цели (по умолчанию к марине)
type AutoDock struct {
	Active bool
	Target mgl64.Vec2
}

// steerTowards пересчитывает руль пропорциональным регулятором по
// ошибке пеленга. Возвращает true, когда цель достигнута.
func (a *AutoDock) steerTowards(v *Vessel, arriveDist float64) bool {
	delta := a.Target.Sub(v.Position2D())
	if delta.Len() <= arriveDist {
		return true
	}

	bearing := math.Atan2(delta.X(), delta.Y())
	err := wrapAngle(bearing - v.Rotation)
	v.Steering = clamp(err*2, -1, 1)
	return false
}

// wrapAngle нормализует угол в (-pi, pi]
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
