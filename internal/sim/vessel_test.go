package sim

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestThrottleZeroDecay(t *testing.T) {
	// Судно на 10 узлах с нулевым газом должно замедляться по формуле
	// ускорения, а не мгновенно
	v := Vessel{SpeedKnots: 10}
	perf := DefaultPerformance()

	v.Integrate(1.0, perf, 1.0)

	// ratio=0.5, drag=1.5, thrust=0.75, rate=0.6*0.75/1.5=0.3
	// speed = 10 + (0-10)*0.3 = 7
	if math.Abs(v.SpeedKnots-7.0) > 1e-9 {
		t.Errorf("Ожидали скорость 7.0 после секунды замедления, получили %.4f", v.SpeedKnots)
	}
	if v.SpeedKnots <= 0 {
		t.Error("Замедление не должно быть мгновенным")
	}
}

func TestSpeedNeverOvershoots(t *testing.T) {
	// Критически демпфированный подход: даже гигантский dt не
	// перескакивает целевую скорость
	v := Vessel{Throttle: 100}
	perf := DefaultPerformance()

	for i := 0; i < 100; i++ {
		v.Integrate(10.0, perf, 1.0)
		if v.SpeedKnots > perf.MaxSpeedKnots+1e-9 {
			t.Fatalf("Скорость %.4f превысила максимум %.1f", v.SpeedKnots, perf.MaxSpeedKnots)
		}
	}
}

func TestSteeringRequiresSpeed(t *testing.T) {
	perf := DefaultPerformance()

	// Почти стоячее судно не поворачивает
	v := Vessel{SpeedKnots: 0.05, Steering: 1}
	v.Integrate(0.1, perf, 1.0)
	if v.Rotation != 0 {
		t.Errorf("Руль не должен работать на скорости 0.05, курс %.4f", v.Rotation)
	}

	// На ходу поворачивает
	v = Vessel{SpeedKnots: 10, Steering: 1}
	v.Integrate(0.1, perf, 1.0)
	if v.Rotation <= 0 {
		t.Errorf("Ожидали поворот вправо, курс %.4f", v.Rotation)
	}
}

func TestRotationWraps(t *testing.T) {
	v := Vessel{SpeedKnots: 20, Steering: 1, Throttle: 100, Rotation: math.Pi - 0.01}
	perf := DefaultPerformance()

	for i := 0; i < 50; i++ {
		v.Integrate(0.1, perf, 1.0)
		if v.Rotation > math.Pi || v.Rotation <= -math.Pi {
			t.Fatalf("Курс %.4f вне диапазона (-pi, pi]", v.Rotation)
		}
	}
}

func TestPositionAdvancesAlongHeading(t *testing.T) {
	// Курс 0 - движение вдоль +Z, узлы переводятся в м/с
	v := Vessel{SpeedKnots: 10, Throttle: 50}
	perf := DefaultPerformance()

	v.Integrate(1.0, perf, 1.0)

	if v.Position.X() != 0 {
		t.Errorf("При курсе 0 X не должен меняться, получили %.4f", v.Position.X())
	}
	if v.Position.Z() <= 0 {
		t.Errorf("При курсе 0 Z должен расти, получили %.4f", v.Position.Z())
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{math.Pi + 0.5, -math.Pi + 0.5},
		{-math.Pi - 0.5, math.Pi - 0.5},
	}
	for _, tt := range tests {
		got := wrapAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("wrapAngle(%.4f) = %.4f, ожидали %.4f", tt.in, got, tt.want)
		}
	}
}

func TestAutoDockSteering(t *testing.T) {
	// Цель ровно на севере, судно смотрит на восток:
	// ошибка пеленга -pi/2, руль должен упереться в -1
	v := Vessel{Rotation: math.Pi / 2, SpeedKnots: 5}
	ad := AutoDock{Active: true, Target: mgl64.Vec2{0, 1000}}

	arrived := ad.steerTowards(&v, 30)
	if arrived {
		t.Fatal("Цель в километре не может быть достигнута")
	}
	if v.Steering != -1 {
		t.Errorf("Ожидали руль -1, получили %.4f", v.Steering)
	}

	// Внутри дистанции прибытия режим гаснет
	ad.Target = mgl64.Vec2{v.Position.X(), v.Position.Z() + 10}
	if !ad.steerTowards(&v, 30) {
		t.Error("В 10 метрах от цели режим должен завершиться")
	}
}
