package game

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeSystem - управляемая система для тестов цикла
type fakeSystem struct {
	name     string
	priority int
	calls    int
	order    *[]string
	err      error
	panics   bool
}

func (f *fakeSystem) Update(dt time.Duration) error {
	f.calls++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	if f.panics {
		panic("испытательная паника")
	}
	return f.err
}

func (f *fakeSystem) GetName() string  { return f.name }
func (f *fakeSystem) GetPriority() int { return f.priority }

func TestSystemsExecuteByPriority(t *testing.T) {
	gt := NewGameTicker(20, zerolog.Nop())
	var order []string

	// Регистрируем в обратном порядке приоритетов
	gt.RegisterSystem(&fakeSystem{name: "last", priority: 100, order: &order})
	gt.RegisterSystem(&fakeSystem{name: "middle", priority: 10, order: &order})
	gt.RegisterSystem(&fakeSystem{name: "first", priority: 5, order: &order})

	gt.executeAllSystems(50 * time.Millisecond)

	want := []string{"first", "middle", "last"}
	if len(order) != len(want) {
		t.Fatalf("Ожидали %d вызовов, получили %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Позиция %d: ожидали %s, получили %s", i, want[i], order[i])
		}
	}
}

func TestPanicDoesNotStopTick(t *testing.T) {
	gt := NewGameTicker(20, zerolog.Nop())
	after := &fakeSystem{name: "after", priority: 50}

	gt.RegisterSystem(&fakeSystem{name: "broken", priority: 5, panics: true})
	gt.RegisterSystem(after)

	gt.executeAllSystems(50 * time.Millisecond)

	if after.calls != 1 {
		t.Errorf("Система после паники должна выполниться, вызовов %d", after.calls)
	}

	stats := gt.GetSystemsStats()
	broken := stats["broken"].(map[string]interface{})
	if broken["errors"].(uint64) != 1 {
		t.Errorf("Паника должна учитываться как ошибка, получили %v", broken["errors"])
	}
}

func TestSystemErrorRecorded(t *testing.T) {
	gt := NewGameTicker(20, zerolog.Nop())
	failing := &fakeSystem{name: "failing", priority: 5, err: errors.New("сбой")}
	gt.RegisterSystem(failing)

	gt.executeAllSystems(50 * time.Millisecond)
	gt.executeAllSystems(50 * time.Millisecond)

	stats := gt.GetSystemsStats()
	metrics := stats["failing"].(map[string]interface{})
	if metrics["errors"].(uint64) != 2 {
		t.Errorf("Ожидали 2 ошибки, получили %v", metrics["errors"])
	}
	if metrics["total_executions"].(uint64) != 2 {
		t.Errorf("Ожидали 2 выполнения, получили %v", metrics["total_executions"])
	}
}

func TestTickerDefaultsTPS(t *testing.T) {
	gt := NewGameTicker(0, zerolog.Nop())
	if gt.targetTPS != 20 {
		t.Errorf("Нулевая частота должна замениться на 20, получили %d", gt.targetTPS)
	}
	if gt.tickDuration != 50*time.Millisecond {
		t.Errorf("Ожидали тик 50мс, получили %v", gt.tickDuration)
	}
}

func TestTickCountAdvances(t *testing.T) {
	gt := NewGameTicker(20, zerolog.Nop())
	gt.RegisterSystem(&fakeSystem{name: "noop", priority: 5})

	base := time.Now()
	gt.lastTickTime = base
	for i := 1; i <= 5; i++ {
		gt.executeTick(base.Add(time.Duration(i) * 50 * time.Millisecond))
	}

	if gt.GetTickCount() != 5 {
		t.Errorf("Ожидали 5 тиков, получили %d", gt.GetTickCount())
	}
}

func TestPerformanceMonitorAverage(t *testing.T) {
	pm := NewPerformanceMonitor(4, time.Millisecond)
	pm.initSystemMetrics("sys")

	for _, d := range []time.Duration{10, 20, 30, 40} {
		pm.recordExecution("sys", d*time.Millisecond)
	}

	stats := pm.GetSystemsStats()
	metrics := stats["sys"].(map[string]interface{})
	if metrics["average_time"].(time.Duration) != 25*time.Millisecond {
		t.Errorf("Среднее по окну должно быть 25мс, получили %v", metrics["average_time"])
	}
	if metrics["max_time"].(time.Duration) != 40*time.Millisecond {
		t.Errorf("Максимум должен быть 40мс, получили %v", metrics["max_time"])
	}

	// Окно скользит: новые записи вытесняют старые
	pm.recordExecution("sys", 50*time.Millisecond)
	stats = pm.GetSystemsStats()
	metrics = stats["sys"].(map[string]interface{})
	if metrics["average_time"].(time.Duration) != 35*time.Millisecond {
		t.Errorf("После сдвига окна среднее 35мс, получили %v", metrics["average_time"])
	}
}
