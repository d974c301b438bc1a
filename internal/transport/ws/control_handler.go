package ws

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"windward/internal/sim"
	"windward/internal/telemetry"
)

// Статусы подтверждения действий
const (
	AckStatusOK       = "ok"
	AckStatusRejected = "rejected"
)

// ControlHandler транслирует сообщения протокола в вызовы симуляции.
// Сам ничего не валидирует сверх протокола: границы значений
// обрезает ядро.
type ControlHandler struct {
	sim       *sim.Simulation
	telemetry *telemetry.Manager
	logger    zerolog.Logger
}

// NewControlHandler создает обработчик управления
func NewControlHandler(s *sim.Simulation, tm *telemetry.Manager, logger zerolog.Logger) *ControlHandler {
	return &ControlHandler{sim: s, telemetry: tm, logger: logger}
}

// HandleControl применяет газ и руль. Отсутствующие поля не трогают
// текущие значения.
func (h *ControlHandler) HandleControl(msg *ControlMessage) {
	if msg.Throttle != nil {
		h.sim.SetThrottle(*msg.Throttle)
	}
	if msg.Steering != nil {
		h.sim.SetSteering(*msg.Steering)
	}
}

// HandleAction выполняет дискретное действие и возвращает подтверждение
func (h *ControlHandler) HandleAction(msg *ActionMessage) *AckMessage {
	status := AckStatusOK

	switch msg.Action {
	case ActionBurst:
		if !h.sim.ActivateBurst() {
			status = AckStatusRejected
		} else if h.telemetry != nil {
			h.telemetry.CountEvent("burst_activations")
		}

	case ActionRepair:
		if !h.sim.Repair() {
			status = AckStatusRejected
		} else if h.telemetry != nil {
			h.telemetry.CountEvent("repairs")
		}

	case ActionAutoDock:
		enabled := true
		if msg.Enabled != nil {
			enabled = *msg.Enabled
		}
		var target *mgl64.Vec2
		if msg.TargetX != nil && msg.TargetZ != nil {
			target = &mgl64.Vec2{*msg.TargetX, *msg.TargetZ}
		}
		h.sim.SetAutoDock(enabled, target)

	case ActionBuildMode:
		enabled := true
		if msg.Enabled != nil {
			enabled = *msg.Enabled
		}
		if enabled {
			h.sim.SetMode(sim.ModeBuild)
		} else {
			h.sim.SetMode(sim.ModeSail)
		}

	case ActionRaceStart:
		if msg.RouteID == nil || !h.sim.StartRace(*msg.RouteID) {
			status = AckStatusRejected
		}

	default:
		h.logger.Warn().Str("action", msg.Action).Msg("неизвестное действие")
		status = AckStatusRejected
	}

	return NewAckMessage(msg.Action, status, msg.ClientTime)
}
