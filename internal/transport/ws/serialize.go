package ws

import (
	"windward/internal/sim"
	"windward/internal/world"
)

// IslandDTO - остров для клиента. Рельеф не сериализуется: клиент
// восстанавливает его по seed мира тем же генератором шума.
type IslandDTO struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Z          float64 `json:"z"`
	Radius     float64 `json:"radius"`
	PeakHeight float64 `json:"peak_height"`
	Type       string  `json:"type"`
}

// IceDTO - ледяное препятствие для клиента
type IceDTO struct {
	ID     int     `json:"id"`
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
	Seed   int64   `json:"seed"`
}

// WindZoneDTO - ветровая зона для клиента
type WindZoneDTO struct {
	ID           int     `json:"id"`
	X            float64 `json:"x"`
	Z            float64 `json:"z"`
	Radius       float64 `json:"radius"`
	DirectionDeg float64 `json:"direction_deg"`
	BaseSpeed    float64 `json:"base_speed"`
	Pattern      string  `json:"pattern"`
}

// POIDTO - точка интереса для клиента
type POIDTO struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Type   string  `json:"type"`
	Reward int     `json:"reward"`
}

// CheckpointDTO - контрольная точка маршрута
type CheckpointDTO struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
	Order  int     `json:"order"`
}

// RouteDTO - гоночный маршрут
type RouteDTO struct {
	ID          int             `json:"id"`
	StartX      float64         `json:"start_x"`
	StartZ      float64         `json:"start_z"`
	EndX        float64         `json:"end_x"`
	EndZ        float64         `json:"end_z"`
	Checkpoints []CheckpointDTO `json:"checkpoints"`
}

// MarinaDTO - марина
type MarinaDTO struct {
	X             float64 `json:"x"`
	Z             float64 `json:"z"`
	DockingRadius float64 `json:"docking_radius"`
	ChargeRateKW  float64 `json:"charge_rate_kw"`
}

// WorldMessage отправляется один раз при подключении клиента
type WorldMessage struct {
	Type      string        `json:"type"`
	Seed      int64         `json:"seed"`
	WorldSize float64       `json:"world_size"`
	Islands   []IslandDTO   `json:"islands"`
	Ice       []IceDTO      `json:"ice"`
	WindZones []WindZoneDTO `json:"wind_zones"`
	POIs      []POIDTO      `json:"pois"`
	Marina    MarinaDTO     `json:"marina"`
	Routes    []RouteDTO    `json:"routes"`
}

// StateMessage - периодический снимок состояния симуляции
type StateMessage struct {
	Type string `json:"type"`
	sim.Snapshot
}

// NewWorldMessage собирает описание мира для отправки клиенту
func NewWorldMessage(w *world.World) *WorldMessage {
	msg := &WorldMessage{
		Type:      MessageTypeWorld,
		Seed:      w.Seed,
		WorldSize: w.Config.WorldSize,
		Islands:   make([]IslandDTO, 0, len(w.Islands)),
		Ice:       make([]IceDTO, 0, len(w.Ice)),
		WindZones: make([]WindZoneDTO, 0, len(w.WindZones)),
		POIs:      make([]POIDTO, 0, len(w.POIs)),
		Routes:    make([]RouteDTO, 0, len(w.Routes)),
		Marina: MarinaDTO{
			X:             w.Marina.Position.X(),
			Z:             w.Marina.Position.Y(),
			DockingRadius: w.Marina.DockingRadius,
			ChargeRateKW:  w.Marina.ChargeRateKW,
		},
	}

	for i := range w.Islands {
		isl := &w.Islands[i]
		msg.Islands = append(msg.Islands, IslandDTO{
			ID:         isl.ID,
			X:          isl.Position.X(),
			Z:          isl.Position.Y(),
			Radius:     isl.Radius,
			PeakHeight: isl.PeakHeight,
			Type:       isl.Type.String(),
		})
	}

	for i := range w.Ice {
		ice := &w.Ice[i]
		msg.Ice = append(msg.Ice, IceDTO{
			ID:     ice.ID,
			Kind:   ice.Kind.String(),
			X:      ice.Position.X(),
			Z:      ice.Position.Y(),
			Radius: ice.Radius,
			Height: ice.Height,
			Seed:   ice.Seed,
		})
	}

	for i := range w.WindZones {
		z := &w.WindZones[i]
		msg.WindZones = append(msg.WindZones, WindZoneDTO{
			ID:           z.ID,
			X:            z.Position.X(),
			Z:            z.Position.Y(),
			Radius:       z.Radius,
			DirectionDeg: z.DirectionDeg,
			BaseSpeed:    z.BaseSpeed,
			Pattern:      string(z.Pattern),
		})
	}

	for i := range w.POIs {
		p := &w.POIs[i]
		msg.POIs = append(msg.POIs, POIDTO{
			ID:     p.ID,
			X:      p.Position.X(),
			Z:      p.Position.Y(),
			Type:   p.Type.String(),
			Reward: p.Reward,
		})
	}

	for i := range w.Routes {
		r := &w.Routes[i]
		route := RouteDTO{
			ID:          r.ID,
			StartX:      r.Start.X(),
			StartZ:      r.Start.Y(),
			EndX:        r.End.X(),
			EndZ:        r.End.Y(),
			Checkpoints: make([]CheckpointDTO, 0, len(r.Checkpoints)),
		}
		for _, cp := range r.Checkpoints {
			route.Checkpoints = append(route.Checkpoints, CheckpointDTO{
				ID:     cp.ID,
				X:      cp.Position.X(),
				Z:      cp.Position.Y(),
				Radius: cp.Radius,
				Order:  cp.Order,
			})
		}
		msg.Routes = append(msg.Routes, route)
	}

	return msg
}

// NewStateMessage оборачивает снимок в сообщение протокола
func NewStateMessage(snap sim.Snapshot) *StateMessage {
	return &StateMessage{Type: MessageTypeState, Snapshot: snap}
}
