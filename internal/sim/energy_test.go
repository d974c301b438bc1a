package sim

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"windward/internal/world"
)

// testWorld строит маленький мир вручную: без льда и зон, чтобы
// тесты энергии и кинематики не зависели от генерации
func testWorld() *world.World {
	half := 4000.0
	return &world.World{
		Seed:   1,
		Config: world.DefaultConfig(),
		Bounds: world.Bounds{Min: mgl64.Vec2{-half, -half}, Max: mgl64.Vec2{half, half}},
		Marina: world.Marina{DockingRadius: 120, ChargeRateKW: 12},
	}
}

func testSim() *Simulation {
	return New(testWorld(), DefaultParams(), zerolog.Nop())
}

// awayFromMarina уводит судно из зоны зарядки, чтобы не искажать баланс
func awayFromMarina(s *Simulation) {
	s.vessel.Position = mgl64.Vec3{1500, 0, 1500}
}

func TestBatteryChargesOnPositiveNet(t *testing.T) {
	s := testSim()
	awayFromMarina(s)

	// Сильный ветер днем, мотор выключен: нетто положительное
	s.env.WindSpeedKnots = 25
	s.env.TimeOfDay = 0.5
	s.energy.ChargeKWh = 20

	before := s.energy.ChargeKWh
	s.Tick(1.0, DefaultPerformance())

	if s.energy.NetKW <= 0 {
		t.Fatalf("Ожидали положительное нетто, получили %.3f кВт", s.energy.NetKW)
	}
	if s.energy.ChargeKWh <= before {
		t.Errorf("При положительном нетто заряд должен строго расти: %.6f -> %.6f",
			before, s.energy.ChargeKWh)
	}
}

func TestBatteryDrainsOnNegativeNet(t *testing.T) {
	s := testSim()
	awayFromMarina(s)

	// Штиль, ночь, полный газ: нетто отрицательное
	s.env.WindSpeedKnots = 0
	s.env.GustFactor = 0
	s.env.TimeOfDay = 0.0
	s.vessel.Throttle = 100

	before := s.energy.ChargeKWh
	s.Tick(1.0, DefaultPerformance())

	if s.energy.NetKW >= 0 {
		t.Fatalf("Ожидали отрицательное нетто, получили %.3f кВт", s.energy.NetKW)
	}
	if s.energy.ChargeKWh >= before {
		t.Errorf("При отрицательном нетто заряд должен строго падать: %.6f -> %.6f",
			before, s.energy.ChargeKWh)
	}
}

func TestBatteryClamped(t *testing.T) {
	s := testSim()
	awayFromMarina(s)
	perf := DefaultPerformance()

	// Заряд не выходит за емкость при любой длительности генерации
	s.env.WindSpeedKnots = 30
	s.env.TimeOfDay = 0.5
	for i := 0; i < 500; i++ {
		s.Tick(10.0, perf)
		if s.energy.ChargeKWh > s.energy.Capacity || s.energy.ChargeKWh < 0 {
			t.Fatalf("Заряд %.3f вне [0, %.1f]", s.energy.ChargeKWh, s.energy.Capacity)
		}
	}

	// И не уходит ниже нуля при любом потреблении
	s.env.WindSpeedKnots = 0
	s.env.GustFactor = 0
	s.env.TimeOfDay = 0.0
	s.vessel.Throttle = 100
	for i := 0; i < 500; i++ {
		s.Tick(10.0, perf)
		if s.energy.ChargeKWh < 0 {
			t.Fatalf("Заряд ушел в минус: %.3f", s.energy.ChargeKWh)
		}
	}
}

func TestTurbineCutBand(t *testing.T) {
	p := DefaultParams()
	env := Environment{}
	v := Vessel{}

	// Ниже порога включения - ноль
	env.WindSpeedKnots = 2 // ~1 м/с
	if got := turbinePowerKW(&env, &v, p); got != 0 {
		t.Errorf("Ниже cut-in турбина должна молчать, получили %.3f", got)
	}

	// Выше порога отключения - тоже ноль
	env.WindSpeedKnots = 60 // ~31 м/с
	if got := turbinePowerKW(&env, &v, p); got != 0 {
		t.Errorf("Выше cut-out турбина должна молчать, получили %.3f", got)
	}

	// В рабочей полосе - кубический закон
	env.WindSpeedKnots = 20 // 10.28 м/с
	eff := 20 * knotsToMS
	want := 0.5 * p.AirDensity * p.TurbineSweptArea * eff * eff * eff * p.TurbineEfficiency / 1000
	if got := turbinePowerKW(&env, &v, p); math.Abs(got-want) > 1e-9 {
		t.Errorf("Мощность турбины %.4f, ожидали %.4f", got, want)
	}
}

func TestSolarNightAndNoon(t *testing.T) {
	p := DefaultParams()

	if got := solarIrradianceKW(0.0, p); got != 0 {
		t.Errorf("В полночь инсоляция должна быть нулевой, получили %.4f", got)
	}
	if got := solarIrradianceKW(0.5, p); math.Abs(got-p.PeakIrradianceKW) > 1e-9 {
		t.Errorf("В полдень инсоляция должна быть пиковой, получили %.4f", got)
	}
	if got := solarIrradianceKW(0.25, p); got != 0 {
		t.Errorf("На рассвете инсоляция еще нулевая, получили %.4f", got)
	}
}

func TestGenerationLedgerIgnoresClamp(t *testing.T) {
	s := testSim()
	awayFromMarina(s)

	// Батарея полна, но ведомость выработки продолжает расти:
	// это кредиты, а не физический заряд
	s.env.WindSpeedKnots = 25
	s.env.TimeOfDay = 0.5
	s.energy.ChargeKWh = s.energy.Capacity

	before := s.energy.TotalGeneratedKWh
	s.Tick(1.0, DefaultPerformance())

	if s.energy.TotalGeneratedKWh <= before {
		t.Error("Счетчик выработки должен расти даже при полной батарее")
	}
	if s.energy.ChargeKWh > s.energy.Capacity {
		t.Errorf("Заряд %.3f превысил емкость", s.energy.ChargeKWh)
	}
}

func TestMarinaCharging(t *testing.T) {
	s := testSim()
	perf := DefaultPerformance()

	// У причала, штиль, ночь: бортовые системы тянут в минус,
	// но марина перекрывает потребление
	s.vessel.Position = mgl64.Vec3{0, 0, 0}
	s.env.WindSpeedKnots = 0
	s.env.GustFactor = 0
	s.env.TimeOfDay = 0.0
	s.energy.ChargeKWh = 10

	before := s.energy.ChargeKWh
	s.Tick(1.0, perf)

	if !s.docked {
		t.Fatal("Судно в начале координат должно считаться пришвартованным")
	}
	if s.energy.ChargeKWh <= before {
		t.Errorf("Марина должна заряжать батарею: %.6f -> %.6f", before, s.energy.ChargeKWh)
	}
}
