package sim

import (
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"windward/internal/world"
)

// WeatherPreset - границы ветра и коэффициенты для категории погоды
type WeatherPreset struct {
	MinWindKnots float64
	MaxWindKnots float64
	GustFactor   float64
	CloudFactor  float64 // доля солнечной радиации, доходящей до панелей
}

// weatherPresets покрывает все категории из генератора мира
var weatherPresets = map[world.Weather]WeatherPreset{
	world.WeatherClear:  {MinWindKnots: 4, MaxWindKnots: 12, GustFactor: 0.5, CloudFactor: 1.0},
	world.WeatherCloudy: {MinWindKnots: 8, MaxWindKnots: 18, GustFactor: 1.0, CloudFactor: 0.55},
	world.WeatherRain:   {MinWindKnots: 10, MaxWindKnots: 22, GustFactor: 1.5, CloudFactor: 0.35},
	world.WeatherStorm:  {MinWindKnots: 18, MaxWindKnots: 35, GustFactor: 3.0, CloudFactor: 0.2},
	world.WeatherFog:    {MinWindKnots: 2, MaxWindKnots: 8, GustFactor: 0.3, CloudFactor: 0.45},
}

// Environment - состояние среды: время суток, погода, ветер.
// Владелец - контекст симуляции, мутация только из тика.
type Environment struct {
	TimeOfDay        float64 // [0,1), 0 - полночь, 0.5 - полдень
	Weather          world.Weather
	WindDirectionDeg float64 // откуда дует, градусы [0,360)
	WindSpeedKnots   float64
	GustFactor       float64

	// Подстановка при неизвестной категории погоды
	defaultWeather world.Weather
}

// NewEnvironment создает среду с заданной стартовой погодой
func NewEnvironment(weather world.Weather, p Params, rng *rand.Rand, logger zerolog.Logger) Environment {
	env := Environment{
		TimeOfDay:        0.35, // утро
		WindDirectionDeg: rng.Float64() * 360,
		defaultWeather:   p.DefaultWeather,
	}
	env.SetWeather(weather, rng, logger)
	return env
}

// Advance продвигает время суток и применяет случайные порывы ветра.
// Скорость ветра не опускается ниже нуля, направление заворачивается
// по модулю 360.
func (e *Environment) Advance(dt float64, p Params, rng *rand.Rand) {
	e.TimeOfDay += dt / p.DayCycleSeconds
	e.TimeOfDay -= math.Floor(e.TimeOfDay)

	// Порыв: случайное смещение скорости, масштабированное фактором порывов
	gust := (rng.Float64()*2 - 1) * e.GustFactor * dt
	e.WindSpeedKnots = math.Max(0, e.WindSpeedKnots+gust)

	// Медленный дрейф направления
	drift := (rng.Float64()*2 - 1) * p.WindDriftDegPerSec * dt
	e.WindDirectionDeg = math.Mod(e.WindDirectionDeg+drift+360, 360)
}

// ApplyZone переопределяет ветер и погоду по ветровой зоне.
// Зоны не смешиваются: действует первая, накрывшая судно.
func (e *Environment) ApplyZone(z *world.WindZone, rng *rand.Rand, logger zerolog.Logger) {
	e.SetWeather(z.Pattern, rng, logger)
	e.WindDirectionDeg = z.DirectionDeg
	e.WindSpeedKnots = z.BaseSpeed
}

// SetWeather устанавливает категорию погоды: скорость ветра выбирается
// равномерно внутри диапазона пресета, фактор порывов берется из него же.
// Неизвестная категория не фатальна - подставляется дефолтная с warning.
func (e *Environment) SetWeather(w world.Weather, rng *rand.Rand, logger zerolog.Logger) {
	preset, ok := weatherPresets[w]
	if !ok {
		fallback := e.defaultWeather
		if _, known := weatherPresets[fallback]; !known {
			fallback = world.WeatherClear
		}
		logger.Warn().
			Str("weather", string(w)).
			Str("fallback", string(fallback)).
			Msg("неизвестная категория погоды, подставляем дефолтную")
		w = fallback
		preset = weatherPresets[w]
	}

	e.Weather = w
	e.WindSpeedKnots = preset.MinWindKnots + rng.Float64()*(preset.MaxWindKnots-preset.MinWindKnots)
	e.GustFactor = preset.GustFactor
}

// CloudFactor возвращает долю солнечной радиации для текущей погоды
func (e *Environment) CloudFactor() float64 {
	if preset, ok := weatherPresets[e.Weather]; ok {
		return preset.CloudFactor
	}
	return 1.0
}

// IsNight - ночью бортовые системы потребляют больше
func (e *Environment) IsNight() bool {
	return e.TimeOfDay < 0.25 || e.TimeOfDay > 0.75
}
