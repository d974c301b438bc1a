package ws

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"windward/internal/sim"
	"windward/internal/world"
)

func handlerWorld() *world.World {
	half := 4000.0
	return &world.World{
		Seed:   1,
		Config: world.DefaultConfig(),
		Bounds: world.Bounds{Min: mgl64.Vec2{-half, -half}, Max: mgl64.Vec2{half, half}},
		Marina: world.Marina{DockingRadius: 120, ChargeRateKW: 12},
		Routes: []world.RaceRoute{{
			ID:    0,
			Start: mgl64.Vec2{0, 500},
			End:   mgl64.Vec2{0, 2000},
			Checkpoints: []world.Checkpoint{
				{ID: 0, Position: mgl64.Vec2{0, 800}, Radius: 60, Order: 0},
			},
		}},
	}
}

func newHandler() (*ControlHandler, *sim.Simulation) {
	s := sim.New(handlerWorld(), sim.DefaultParams(), zerolog.Nop())
	return NewControlHandler(s, nil, zerolog.Nop()), s
}

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }
func iptr(v int) *int         { return &v }

func TestHandleControlAppliesValues(t *testing.T) {
	h, s := newHandler()

	h.HandleControl(&ControlMessage{
		Type:     MessageTypeControl,
		Throttle: fptr(80),
		Steering: fptr(0.5),
	})

	snap := s.Snapshot()
	if snap.Vessel.Throttle != 80 {
		t.Errorf("Газ должен примениться, получили %.1f", snap.Vessel.Throttle)
	}
	if snap.Vessel.Steering != 0.5 {
		t.Errorf("Руль должен примениться, получили %.2f", snap.Vessel.Steering)
	}
}

func TestHandleControlPartialKeepsOther(t *testing.T) {
	h, s := newHandler()
	h.HandleControl(&ControlMessage{Throttle: fptr(60), Steering: fptr(0.3)})

	// Сообщение только с газом не трогает руль
	h.HandleControl(&ControlMessage{Throttle: fptr(90)})

	snap := s.Snapshot()
	if snap.Vessel.Throttle != 90 {
		t.Errorf("Газ должен обновиться, получили %.1f", snap.Vessel.Throttle)
	}
	if snap.Vessel.Steering != 0.3 {
		t.Errorf("Руль не должен измениться, получили %.2f", snap.Vessel.Steering)
	}
}

func TestHandleActionBurst(t *testing.T) {
	h, _ := newHandler()

	ack := h.HandleAction(&ActionMessage{Action: ActionBurst, ClientTime: 5})
	if ack.Status != AckStatusOK {
		t.Errorf("Ускорение с полной батареей должно подтвердиться, статус %s", ack.Status)
	}
	if ack.Action != ActionBurst || ack.ClientTime != 5 {
		t.Errorf("Подтверждение должно нести действие и время клиента: %+v", ack)
	}

	// Повтор в кулдауне отклоняется
	ack = h.HandleAction(&ActionMessage{Action: ActionBurst})
	if ack.Status != AckStatusRejected {
		t.Errorf("Повтор в кулдауне должен отклониться, статус %s", ack.Status)
	}
}

func TestHandleActionBuildMode(t *testing.T) {
	h, s := newHandler()

	ack := h.HandleAction(&ActionMessage{Action: ActionBuildMode, Enabled: bptr(true)})
	if ack.Status != AckStatusOK {
		t.Fatalf("Переключение режима должно подтвердиться, статус %s", ack.Status)
	}
	if s.Snapshot().Mode != "build" {
		t.Errorf("Ожидали режим build, получили %s", s.Snapshot().Mode)
	}

	h.HandleAction(&ActionMessage{Action: ActionBuildMode, Enabled: bptr(false)})
	if s.Snapshot().Mode != "sail" {
		t.Errorf("Ожидали режим sail, получили %s", s.Snapshot().Mode)
	}
}

func TestHandleActionRaceStart(t *testing.T) {
	h, s := newHandler()

	ack := h.HandleAction(&ActionMessage{Action: ActionRaceStart, RouteID: iptr(0)})
	if ack.Status != AckStatusOK {
		t.Errorf("Известный маршрут должен стартовать, статус %s", ack.Status)
	}
	if s.Snapshot().Race == nil {
		t.Error("После старта в снимке должна быть гонка")
	}

	ack = h.HandleAction(&ActionMessage{Action: ActionRaceStart, RouteID: iptr(99)})
	if ack.Status != AckStatusRejected {
		t.Errorf("Неизвестный маршрут должен отклониться, статус %s", ack.Status)
	}

	// Без route_id тоже отклоняется
	ack = h.HandleAction(&ActionMessage{Action: ActionRaceStart})
	if ack.Status != AckStatusRejected {
		t.Errorf("Старт без маршрута должен отклониться, статус %s", ack.Status)
	}
}

func TestHandleActionAutoDock(t *testing.T) {
	h, s := newHandler()

	ack := h.HandleAction(&ActionMessage{Action: ActionAutoDock, Enabled: bptr(true)})
	if ack.Status != AckStatusOK {
		t.Fatalf("Автовозврат должен подтвердиться, статус %s", ack.Status)
	}
	snap := s.Snapshot()
	if !snap.Vessel.AutoDock {
		t.Error("Автовозврат должен включиться")
	}
	if snap.Vessel.Throttle != 100 {
		t.Errorf("Автовозврат ставит полный газ, получили %.1f", snap.Vessel.Throttle)
	}

	h.HandleAction(&ActionMessage{Action: ActionAutoDock, Enabled: bptr(false)})
	if s.Snapshot().Vessel.AutoDock {
		t.Error("Автовозврат должен выключиться")
	}
}

func TestHandleActionUnknown(t *testing.T) {
	h, _ := newHandler()

	ack := h.HandleAction(&ActionMessage{Action: "teleport"})
	if ack.Status != AckStatusRejected {
		t.Errorf("Неизвестное действие должно отклониться, статус %s", ack.Status)
	}
}

func TestStateMessageFlattensSnapshot(t *testing.T) {
	_, s := newHandler()

	data, err := json.Marshal(NewStateMessage(s.Snapshot()))
	if err != nil {
		t.Fatalf("Сериализация снимка не должна падать: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Обратный разбор не должен падать: %v", err)
	}
	// Поля снимка поднимаются на верхний уровень рядом с type
	if out["type"] != MessageTypeState {
		t.Errorf("Ожидали тип state, получили %v", out["type"])
	}
	if _, ok := out["vessel"]; !ok {
		t.Error("Снимок должен содержать судно на верхнем уровне")
	}
	if _, ok := out["energy"]; !ok {
		t.Error("Снимок должен содержать энергию на верхнем уровне")
	}
}

func TestWorldMessageSerialization(t *testing.T) {
	w := handlerWorld()
	w.Ice = []world.IceObstacle{
		{ID: 0, Kind: world.IceIceberg, Position: mgl64.Vec2{100, 200}, Radius: 20, Height: 15, Seed: 7},
	}

	msg := NewWorldMessage(w)
	if msg.Type != MessageTypeWorld {
		t.Errorf("Ожидали тип world, получили %s", msg.Type)
	}
	if len(msg.Ice) != 1 || msg.Ice[0].Kind != "iceberg" || msg.Ice[0].Z != 200 {
		t.Errorf("Лед сериализован неверно: %+v", msg.Ice)
	}
	if len(msg.Routes) != 1 || len(msg.Routes[0].Checkpoints) != 1 {
		t.Errorf("Маршруты сериализованы неверно: %+v", msg.Routes)
	}

	if _, err := json.Marshal(msg); err != nil {
		t.Fatalf("Мир должен сериализоваться: %v", err)
	}
}
