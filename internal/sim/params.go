package sim

import (
	"windward/internal/world"
)

// Узлы в метры в секунду
const knotsToMS = 0.514

// Performance - внешние коэффициенты судна. Их считает отдельная
// подсистема конфигурации корпуса, ядро их не пересчитывает.
type Performance struct {
	MaxSpeedKnots    float64 // максимальная скорость, узлы
	TurnRate         float64 // скорость поворота, рад/с
	BaseAcceleration float64 // базовый темп набора скорости, 1/с
	EngineTier       int     // ступень двигателя для расчета потребления
}

// DefaultPerformance - разумный корпус среднего класса
func DefaultPerformance() Performance {
	return Performance{
		MaxSpeedKnots:    20,
		TurnRate:         1.2,
		BaseAcceleration: 0.6,
		EngineTier:       1,
	}
}

// Params - настройки симуляции, не зависящие от корпуса
type Params struct {
	// Среда
	DayCycleSeconds    float64       // полный цикл суток
	WindDriftDegPerSec float64       // медленный дрейф направления ветра
	DefaultWeather     world.Weather // подстановка при неизвестной категории

	// Ветрогенератор
	AirDensity        float64 // кг/м3
	TurbineSweptArea  float64 // м2
	TurbineEfficiency float64
	TurbineCutInMS    float64 // порог включения, м/с
	TurbineCutOutMS   float64 // порог отключения, м/с

	// Солнечные панели
	PanelArea          float64 // м2
	PanelEfficiency    float64
	InverterEfficiency float64
	PeakIrradianceKW   float64 // кВт/м2 в зените при ясном небе

	// Потребление
	MotorEfficiency float64
	SystemsBaseKW   float64 // постоянная нагрузка бортовых систем
	SystemsNightKW  float64 // ночная надбавка (освещение, обогрев)

	// Батарея
	BatteryCapacityKWh float64
	ChargeEfficiency   float64 // КПД заряда, применяется только при net > 0

	// Ускорение (burst)
	BurstMultiplier    float64
	BurstDurationSec   float64
	BurstCooldownSec   float64
	BurstMinBatteryPct float64
	BurstDrainKW       float64

	// Автовозврат
	AutoDockArriveDist float64 // метры до цели, на которых режим гаснет

	// Коллизии и ремонт
	VesselRadius            float64
	CollisionMinIntervalSec float64 // самодросселирование проверок
	CollisionCooldownSec    float64 // окно повторного удара об тот же объект
	RepairCostKWh           float64

	// Точки интереса
	POIDiscoverRadius float64
}

// DefaultParams возвращает настройки по умолчанию
func DefaultParams() Params {
	return Params{
		DayCycleSeconds:    600,
		WindDriftDegPerSec: 2.0,
		DefaultWeather:     world.WeatherClear,

		AirDensity:        1.225,
		TurbineSweptArea:  6.0,
		TurbineEfficiency: 0.35,
		TurbineCutInMS:    3.0,
		TurbineCutOutMS:   25.0,

		PanelArea:          8.0,
		PanelEfficiency:    0.22,
		InverterEfficiency: 0.95,
		PeakIrradianceKW:   1.0,

		MotorEfficiency: 0.85,
		SystemsBaseKW:   0.5,
		SystemsNightKW:  0.3,

		BatteryCapacityKWh: 40,
		ChargeEfficiency:   0.92,

		BurstMultiplier:    1.5,
		BurstDurationSec:   5,
		BurstCooldownSec:   30,
		BurstMinBatteryPct: 20,
		BurstDrainKW:       15,

		AutoDockArriveDist: 30,

		VesselRadius:            8,
		CollisionMinIntervalSec: 0.05,
		CollisionCooldownSec:    2.0,
		RepairCostKWh:           5.0,

		POIDiscoverRadius: 80,
	}
}

// ratedMotorPowerKW - номинальная мощность мотора по ступеням
func ratedMotorPowerKW(tier int) float64 {
	switch {
	case tier <= 1:
		return 20
	case tier == 2:
		return 35
	default:
		return 60
	}
}
