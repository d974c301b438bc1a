package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// IslandType - категория острова
type IslandType int

const (
	IslandVolcanic IslandType = iota
	IslandCoral
	IslandSandy

	islandTypeCount = 3
)

// String возвращает имя категории для логов и сериализации
func (t IslandType) String() string {
	switch t {
	case IslandVolcanic:
		return "volcanic"
	case IslandCoral:
		return "coral"
	case IslandSandy:
		return "sandy"
	default:
		return "unknown"
	}
}

// IceKind - вариант ледяного препятствия
type IceKind int

const (
	IceIceberg IceKind = iota // крупный айсберг, полная модель урона
	IceFloe                   // плавучая льдина, уменьшенная модель
)

func (k IceKind) String() string {
	if k == IceFloe {
		return "floe"
	}
	return "iceberg"
}

// Weather - категория погоды, общая для ветровых зон и состояния среды
type Weather string

const (
	WeatherClear  Weather = "clear"
	WeatherCloudy Weather = "cloudy"
	WeatherRain   Weather = "rain"
	WeatherStorm  Weather = "storm"
	WeatherFog    Weather = "fog"
)

// WeatherPatterns - порядок, в котором зоны циклически получают погоду
var WeatherPatterns = []Weather{WeatherClear, WeatherCloudy, WeatherRain, WeatherStorm, WeatherFog}

// POIType - категория точки интереса
type POIType int

const (
	POIShipwreck POIType = iota
	POIReef
	POILighthouse
	POICove

	poiTypeCount = 4
)

func (t POIType) String() string {
	switch t {
	case POIShipwreck:
		return "shipwreck"
	case POIReef:
		return "reef"
	case POILighthouse:
		return "lighthouse"
	case POICove:
		return "cove"
	default:
		return "unknown"
	}
}

// poiRewards - фиксированная награда за открытие по категориям
var poiRewards = map[POIType]int{
	POIShipwreck:  250,
	POIReef:       100,
	POILighthouse: 150,
	POICove:       120,
}

// Island - остров. Создается генератором и больше не изменяется.
// Elevation возвращает высоту рельефа в точке (x, z): ноль за пределами
// радиуса, конечное значение везде (NaN/Inf обрезаются до нуля).
type Island struct {
	ID         int
	Position   mgl64.Vec2
	Radius     float64
	PeakHeight float64
	Type       IslandType
	Elevation  func(x, z float64) float64
}

// IceObstacle - айсберг или льдина. Seed используется внешним рендером
// для вариации меша, физика читает только Radius и Height.
type IceObstacle struct {
	ID       int
	Kind     IceKind
	Position mgl64.Vec2
	Radius   float64
	Height   float64
	Seed     int64
}

// WindZone - область с собственным ветром и погодой
type WindZone struct {
	ID           int
	Position     mgl64.Vec2
	Radius       float64
	DirectionDeg float64
	BaseSpeed    float64 // узлы
	Pattern      Weather
}

// Contains сообщает, лежит ли точка внутри зоны
func (z *WindZone) Contains(p mgl64.Vec2) bool {
	return p.Sub(z.Position).Len() <= z.Radius
}

// PointOfInterest - точка интереса. Отметка "открыта" хранится
// вне мира (в симуляции), сам мир неизменяем.
type PointOfInterest struct {
	ID       int
	Position mgl64.Vec2
	Type     POIType
	Reward   int
}

// Marina - единственная марина в начале координат
type Marina struct {
	Position      mgl64.Vec2
	DockingRadius float64
	ChargeRateKW  float64
}

// Checkpoint - контрольная точка гоночного маршрута
type Checkpoint struct {
	ID       int
	Position mgl64.Vec2
	Radius   float64
	Order    int
}

// RaceRoute - гоночный маршрут: старт, финиш и упорядоченные точки
type RaceRoute struct {
	ID          int
	Start       mgl64.Vec2
	End         mgl64.Vec2
	Checkpoints []Checkpoint
}

// Bounds - прямоугольные границы мира
type Bounds struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// Contains сообщает, лежит ли точка внутри границ
func (b Bounds) Contains(p mgl64.Vec2) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y()
}

// Clamp прижимает точку к границам
func (b Bounds) Clamp(p mgl64.Vec2) mgl64.Vec2 {
	x := math.Min(math.Max(p.X(), b.Min.X()), b.Max.X())
	y := math.Min(math.Max(p.Y(), b.Min.Y()), b.Max.Y())
	return mgl64.Vec2{x, y}
}

// World - неизменяемый снимок сгенерированного мира.
// Повторная генерация с теми же seed и config дает идентичный мир.
type World struct {
	Seed      int64
	Config    Config
	Bounds    Bounds
	Islands   []Island
	Ice       []IceObstacle
	WindZones []WindZone
	POIs      []PointOfInterest
	Marina    Marina
	Routes    []RaceRoute
}

// ZoneAt возвращает первую ветровую зону, содержащую точку, либо nil
func (w *World) ZoneAt(p mgl64.Vec2) *WindZone {
	for i := range w.WindZones {
		if w.WindZones[i].Contains(p) {
			return &w.WindZones[i]
		}
	}
	return nil
}
