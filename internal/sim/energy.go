package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EnergyState - мгновенные мощности и состояние батареи.
// Мощности в кВт, заряд в кВтч.
type EnergyState struct {
	TurbineKW  float64 `json:"turbine_kw"`
	SolarKW    float64 `json:"solar_kw"`
	MotorKW    float64 `json:"motor_kw"`
	SystemsKW  float64 `json:"systems_kw"`
	NetKW      float64 `json:"net_kw"`
	ChargeKWh  float64 `json:"charge_kwh"`
	Capacity   float64 `json:"capacity_kwh"`
	Percent    float64 `json:"percent"`
	// Накопительный счетчик выработки: учитывает только положительную
	// генерацию, не нетто, и не зависит от обрезки батареи. Это
	// ведомость заработанных кредитов, а не физическая величина.
	TotalGeneratedKWh float64 `json:"total_generated_kwh"`
}

// apparentWindMS возвращает модуль кажущегося ветра в м/с:
// вектор истинного ветра минус вектор скорости судна
func apparentWindMS(env *Environment, v *Vessel) float64 {
	dirRad := env.WindDirectionDeg * math.Pi / 180
	// Направление "откуда дует": воздушный поток идет в противоположную сторону
	trueWind := mgl64.Vec2{-math.Sin(dirRad), -math.Cos(dirRad)}.Mul(env.WindSpeedKnots * knotsToMS)
	apparent := trueWind.Sub(v.VelocityMS())
	return apparent.Len()
}

// turbinePowerKW - кубический закон мощности турбины. Эффективная
// скорость ветра берет максимум из истинной и 0.7 кажущейся; вне полосы
// [cutIn, cutOut] турбина не вырабатывает ничего.
func turbinePowerKW(env *Environment, v *Vessel, p Params) float64 {
	trueMS := env.WindSpeedKnots * knotsToMS
	effective := math.Max(trueMS, 0.7*apparentWindMS(env, v))
	if effective < p.TurbineCutInMS || effective > p.TurbineCutOutMS {
		return 0
	}
	return 0.5 * p.AirDensity * p.TurbineSweptArea * effective * effective * effective * p.TurbineEfficiency / 1000
}

// solarIrradianceKW - инсоляция на квадратный метр по времени суток.
// Синусоида от рассвета (0.25) до заката (0.75), ночью ноль.
func solarIrradianceKW(timeOfDay float64, p Params) float64 {
	sun := math.Sin((timeOfDay - 0.25) * 2 * math.Pi)
	if sun <= 0 {
		return 0
	}
	return p.PeakIrradianceKW * sun
}

// solarPowerKW - мощность панелей с учетом облачности и КПД инвертора
func solarPowerKW(env *Environment, p Params) float64 {
	return solarIrradianceKW(env.TimeOfDay, p) * env.CloudFactor() *
		p.PanelArea * p.PanelEfficiency * p.InverterEfficiency
}

// motorPowerKW - потребление мотора от газа и ступени двигателя
func motorPowerKW(v *Vessel, perf Performance, p Params) float64 {
	return (v.Throttle / 100) * ratedMotorPowerKW(perf.EngineTier) / p.MotorEfficiency
}

// systemsPowerKW - базовая нагрузка систем плюс ночная надбавка
func systemsPowerKW(env *Environment, p Params) float64 {
	draw := p.SystemsBaseKW
	if env.IsNight() {
		draw += p.SystemsNightKW
	}
	return draw
}

// tickEnergy пересчитывает мощности и интегрирует батарею за шаг dt.
// КПД заряда применяется только к положительному нетто; заряд всегда
// остается в [0, capacity].
func (s *Simulation) tickEnergy(dt float64, perf Performance) {
	e := &s.energy

	e.TurbineKW = turbinePowerKW(&s.env, &s.vessel, s.params)
	e.SolarKW = solarPowerKW(&s.env, s.params)
	e.MotorKW = motorPowerKW(&s.vessel, perf, s.params)
	e.SystemsKW = systemsPowerKW(&s.env, s.params)
	e.NetKW = e.TurbineKW + e.SolarKW - e.MotorKW - e.SystemsKW

	// Ведомость выработки: только генерация, без вычета потребления
	e.TotalGeneratedKWh += (e.TurbineKW + e.SolarKW) * dt / 3600

	deltaKWh := e.NetKW * dt / 3600
	if deltaKWh > 0 {
		deltaKWh *= s.params.ChargeEfficiency
	}
	e.ChargeKWh = clamp(e.ChargeKWh+deltaKWh, 0, e.Capacity)

	// Ускорение тянет батарею напрямую и гаснет на нуле заряда
	if s.burst.Active {
		e.ChargeKWh = math.Max(0, e.ChargeKWh-s.params.BurstDrainKW*dt/3600)
		if e.ChargeKWh == 0 {
			s.burst.Active = false
		}
	}

	// Зарядка у причала марины
	if s.docked && s.world != nil {
		marinaKWh := s.world.Marina.ChargeRateKW * dt / 3600 * s.params.ChargeEfficiency
		e.ChargeKWh = clamp(e.ChargeKWh+marinaKWh, 0, e.Capacity)
	}

	e.Percent = e.ChargeKWh / e.Capacity * 100
}
