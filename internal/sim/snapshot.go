package sim

import (
	"math"
)

// VesselSnapshot - сериализуемый вид состояния судна
type VesselSnapshot struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Rotation   float64 `json:"rotation"`
	SpeedKnots float64 `json:"speed_knots"`
	Throttle   float64 `json:"throttle"`
	Steering   float64 `json:"steering"`
	AutoDock   bool    `json:"auto_dock"`
}

// EnvironmentSnapshot - сериализуемый вид среды
type EnvironmentSnapshot struct {
	TimeOfDay        float64 `json:"time_of_day"`
	Weather          string  `json:"weather"`
	WindDirectionDeg float64 `json:"wind_direction_deg"`
	WindSpeedKnots   float64 `json:"wind_speed_knots"`
	GustFactor       float64 `json:"gust_factor"`
}

// DamageSnapshot - сериализуемый вид урона
type DamageSnapshot struct {
	Hull       float64 `json:"hull"`
	Collisions int     `json:"collisions"`
}

// BurstSnapshot - состояние ускорения для клиента
type BurstSnapshot struct {
	Active            bool    `json:"active"`
	CooldownRemaining float64 `json:"cooldown_remaining"`
}

// RaceSnapshot - прогресс активной гонки
type RaceSnapshot struct {
	RouteID        int     `json:"route_id"`
	NextCheckpoint int     `json:"next_checkpoint"`
	Finished       bool    `json:"finished"`
	ElapsedSec     float64 `json:"elapsed_sec"`
}

// Snapshot - полный срез состояния симуляции для трансляции клиентам.
// Снимается под мьютексом, копия не ссылается на живое состояние.
type Snapshot struct {
	Time        float64             `json:"time"`
	Mode        string              `json:"mode"`
	Vessel      VesselSnapshot      `json:"vessel"`
	Energy      EnergyState         `json:"energy"`
	Damage      DamageSnapshot      `json:"damage"`
	Environment EnvironmentSnapshot `json:"environment"`
	Burst       BurstSnapshot       `json:"burst"`
	Docked      bool                `json:"docked"`
	Credits     int                 `json:"credits"`
	Discovered  []int               `json:"discovered"`
	Race        *RaceSnapshot       `json:"race,omitempty"`
}

// Snapshot возвращает согласованный срез всего состояния
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Time: s.now,
		Mode: s.mode.String(),
		Vessel: VesselSnapshot{
			X:          s.vessel.Position.X(),
			Y:          s.vessel.Position.Y(),
			Z:          s.vessel.Position.Z(),
			Rotation:   s.vessel.Rotation,
			SpeedKnots: s.vessel.SpeedKnots,
			Throttle:   s.vessel.Throttle,
			Steering:   s.vessel.Steering,
			AutoDock:   s.autoDock.Active,
		},
		Energy: s.energy,
		Damage: DamageSnapshot{
			Hull:       s.damage.Hull,
			Collisions: s.damage.Collisions,
		},
		Environment: EnvironmentSnapshot{
			TimeOfDay:        s.env.TimeOfDay,
			Weather:          string(s.env.Weather),
			WindDirectionDeg: s.env.WindDirectionDeg,
			WindSpeedKnots:   s.env.WindSpeedKnots,
			GustFactor:       s.env.GustFactor,
		},
		Burst: BurstSnapshot{
			Active:            s.burst.Active,
			CooldownRemaining: math.Max(0, s.burst.cooldownUntil-s.now),
		},
		Docked:  s.docked,
		Credits: s.credits,
	}

	snap.Discovered = make([]int, 0, len(s.discovered))
	for i := range s.world.POIs {
		if s.discovered[s.world.POIs[i].ID] {
			snap.Discovered = append(snap.Discovered, s.world.POIs[i].ID)
		}
	}

	if s.race != nil {
		snap.Race = &RaceSnapshot{
			RouteID:        s.race.RouteID,
			NextCheckpoint: s.race.NextIndex,
			Finished:       s.race.Finished,
			ElapsedSec:     s.race.ElapsedSec,
		}
	}

	return snap
}
