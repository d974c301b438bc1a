package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

const (
	// Отступ островов от границ мира
	islandBoundsMargin = 400.0

	// Золотой угол pi*(3-sqrt(5)) для равномерного углового распределения
	goldenAngle = math.Pi * (3.0 - 2.2360679774997896)

	// Множитель бюджета попыток rejection sampling
	iceAttemptFactor = 3

	// Отступ контрольных точек от островов и границ
	checkpointIslandMargin = 80.0
	checkpointBoundsMargin = 50.0

	// Базовый радиус захвата контрольной точки; растет с индексом
	checkpointBaseRadius = 60.0
)

// Generate строит мир из сида и конфигурации. Функция чистая:
// один и тот же вход дает побайтно идентичные коллекции.
// Источник шума создается заново на каждый вызов, общего состояния нет.
func Generate(seed int64, cfg Config, logger zerolog.Logger) *World {
	noise := NewNoise(seed)

	half := cfg.WorldSize / 2
	w := &World{
		Seed:   seed,
		Config: cfg,
		Bounds: Bounds{
			Min: mgl64.Vec2{-half, -half},
			Max: mgl64.Vec2{half, half},
		},
		Marina: Marina{
			Position:      mgl64.Vec2{0, 0},
			DockingRadius: cfg.MarinaDockingRadius,
			ChargeRateKW:  cfg.MarinaChargeRateKW,
		},
	}

	generateIslands(w, noise)
	generateIce(w, noise, logger)
	generateWindZones(w, noise)
	generatePOIs(w, noise)
	generateRoutes(w, noise)

	logger.Info().
		Int64("seed", seed).
		Int("islands", len(w.Islands)).
		Int("ice", len(w.Ice)).
		Int("wind_zones", len(w.WindZones)).
		Int("pois", len(w.POIs)).
		Int("routes", len(w.Routes)).
		Msg("мир сгенерирован")

	return w
}

// categoricalIndex отображает значение шума в индекс категории:
// floor(|noise| * n) mod n. NaN и выход за диапазон дают 0.
func categoricalIndex(sample float64, n int) int {
	if n <= 0 || math.IsNaN(sample) || math.IsInf(sample, 0) {
		return 0
	}
	idx := int(math.Floor(math.Abs(sample)*float64(n))) % n
	if idx < 0 {
		return 0
	}
	return idx
}

// sanitize обрезает NaN/Inf до нуля. Одиночная плохая выборка не должна
// срывать генерацию мира, поэтому восстановление молчаливое.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// rangeSample растягивает шум [-1,1] на диапазон [min,max]
func rangeSample(noise *Noise, x, y, min, max float64) float64 {
	t := (noise.Sample2D(x, y) + 1) / 2
	return min + t*(max-min)
}

// generateIslands расставляет острова по равным углам вокруг начала
// координат с зашумленной радиальной дистанцией
func generateIslands(w *World, noise *Noise) {
	cfg := w.Config
	half := cfg.WorldSize / 2

	w.Islands = make([]Island, 0, cfg.IslandCount)
	for i := 0; i < cfg.IslandCount; i++ {
		angle := 2 * math.Pi * float64(i) / float64(cfg.IslandCount)

		radius := rangeSample(noise, float64(i)*1.31, 7.7, cfg.IslandMinRadius, cfg.IslandMaxRadius)
		peak := rangeSample(noise, float64(i)*2.17, 3.3, cfg.IslandMinPeak, cfg.IslandMaxPeak)

		dist := half*0.35 + noise.Sample2D(float64(i)*0.73, 0.5)*half*0.25
		// Прижимаем внутрь от границ с фиксированным отступом
		maxDist := half - islandBoundsMargin - radius
		if dist > maxDist {
			dist = maxDist
		}
		if dist < radius*2 {
			dist = radius * 2
		}

		pos := mgl64.Vec2{math.Cos(angle) * dist, math.Sin(angle) * dist}
		typ := IslandType(categoricalIndex(noise.Sample2D(float64(i)*4.9, 11.1), islandTypeCount))

		isl := Island{
			ID:         i,
			Position:   pos,
			Radius:     radius,
			PeakHeight: peak,
			Type:       typ,
		}
		isl.Elevation = makeElevation(noise, pos, radius, peak)
		w.Islands = append(w.Islands, isl)
	}
}

// makeElevation строит функцию высоты острова: косинус-квадратное
// затухание от пика к границе, модулированное шумом. За радиусом ноль.
func makeElevation(noise *Noise, center mgl64.Vec2, radius, peak float64) func(x, z float64) float64 {
	return func(x, z float64) float64 {
		dx := x - center.X()
		dz := z - center.Y()
		dist := math.Sqrt(dx*dx + dz*dz)
		if dist > radius {
			return 0
		}
		// falloff = cos^2(t*pi/2): единица в центре, ноль на границе
		t := dist / radius
		c := math.Cos(t * math.Pi / 2)
		falloff := c * c
		h := peak * falloff * (0.8 + 0.5*noise.Sample2D(x*0.01, z*0.01))
		return sanitize(h)
	}
}

// generateIce расставляет айсберги и льдины методом rejection sampling
// с ограниченным бюджетом попыток. Кандидаты идут по спирали золотого
// угла в кольце [MinSpawnDist, MaxSpawnDist] от марины. При исчерпании
// бюджета мир получает меньше препятствий, чем запрошено - это штатный
// исход, а не ошибка.
func generateIce(w *World, noise *Noise, logger zerolog.Logger) {
	cfg := w.Config
	w.Ice = make([]IceObstacle, 0, cfg.IcebergCount+cfg.FloeCount)

	placed := placeIceKind(w, noise, IceIceberg, cfg.IcebergCount, 0)
	if placed < cfg.IcebergCount {
		logger.Warn().
			Int("placed", placed).
			Int("requested", cfg.IcebergCount).
			Msg("бюджет попыток исчерпан, айсбергов меньше запрошенного")
	}

	placedFloes := placeIceKind(w, noise, IceFloe, cfg.FloeCount, 1000)
	if placedFloes < cfg.FloeCount {
		logger.Warn().
			Int("placed", placedFloes).
			Int("requested", cfg.FloeCount).
			Msg("бюджет попыток исчерпан, льдин меньше запрошенного")
	}
}

// placeIceKind размещает препятствия одного вида, возвращает число принятых.
// salt разводит шумовые координаты айсбергов и льдин.
func placeIceKind(w *World, noise *Noise, kind IceKind, target, salt int) int {
	cfg := w.Config

	minRadius := cfg.IceMinRadius
	maxRadius := cfg.IceMaxRadius
	minHeight := cfg.IceMinHeight
	maxHeight := cfg.IceMaxHeight
	if kind == IceFloe {
		// Льдины заметно мельче айсбергов
		maxRadius = minRadius + (maxRadius-minRadius)*0.4
		maxHeight = minHeight + (maxHeight-minHeight)*0.25
	}

	placed := 0
	budget := target * iceAttemptFactor
	for attempt := 0; attempt < budget && placed < target; attempt++ {
		n := float64(attempt + salt)

		angle := n*goldenAngle + noise.Sample2D(n*0.31, 4.2)*0.35
		dist := rangeSample(noise, n*0.57, 9.4, cfg.MinSpawnDist, cfg.MaxSpawnDist)
		candRadius := rangeSample(noise, n*0.83, 15.8, minRadius, maxRadius)

		pos := mgl64.Vec2{math.Cos(angle) * dist, math.Sin(angle) * dist}
		if !w.Bounds.Contains(pos) {
			continue
		}
		// Кольцо минимальной дистанции вокруг марины
		if pos.Len() < cfg.MinSpawnDist {
			continue
		}
		if nearIsland(w, pos, candRadius+cfg.IceMarginIsland) {
			continue
		}
		if nearIce(w, pos, candRadius, cfg.IceMarginIce) {
			continue
		}

		height := rangeSample(noise, n*1.07, 21.6, minHeight, maxHeight)
		id := len(w.Ice)
		w.Ice = append(w.Ice, IceObstacle{
			ID:       id,
			Kind:     kind,
			Position: pos,
			Radius:   candRadius,
			Height:   height,
			// Сид экземпляра для вариации меша на стороне рендера
			Seed: w.Seed*31 + int64(id)*131,
		})
		placed++
	}
	return placed
}

func nearIsland(w *World, pos mgl64.Vec2, margin float64) bool {
	for i := range w.Islands {
		if pos.Sub(w.Islands[i].Position).Len() < w.Islands[i].Radius+margin {
			return true
		}
	}
	return false
}

func nearIce(w *World, pos mgl64.Vec2, candRadius, margin float64) bool {
	for i := range w.Ice {
		if pos.Sub(w.Ice[i].Position).Len() < w.Ice[i].Radius+candRadius+margin {
			return true
		}
	}
	return false
}

// generateWindZones расставляет зоны по равным углам на фиксированном
// кольце, циклически назначая погодные паттерны
func generateWindZones(w *World, noise *Noise) {
	cfg := w.Config
	half := cfg.WorldSize / 2
	ringRadius := half * 0.55

	w.WindZones = make([]WindZone, 0, cfg.WindZoneCount)
	for i := 0; i < cfg.WindZoneCount; i++ {
		angle := 2 * math.Pi * float64(i) / float64(cfg.WindZoneCount)
		n := float64(i)

		dist := ringRadius + noise.Sample2D(n*0.67, 31.5)*half*0.1
		pos := mgl64.Vec2{math.Cos(angle) * dist, math.Sin(angle) * dist}

		w.WindZones = append(w.WindZones, WindZone{
			ID:           i,
			Position:     pos,
			Radius:       rangeSample(noise, n*0.91, 37.2, 500, 900),
			DirectionDeg: math.Mod(angle*180/math.Pi+noise.Sample2D(n*1.13, 41.9)*40+360, 360),
			BaseSpeed:    rangeSample(noise, n*1.37, 47.4, 8, 22),
			Pattern:      WeatherPatterns[i%len(WeatherPatterns)],
		})
	}
}

// generatePOIs расставляет точки интереса: количество берется из базы
// с шумовой добавкой, позиция и тип выбираются шумом
func generatePOIs(w *World, noise *Noise) {
	cfg := w.Config
	half := cfg.WorldSize / 2

	count := cfg.POIBaseCount + int(math.Round(noise.Sample2D(51.3, 53.7)*2))
	if count < 1 {
		count = 1
	}

	w.POIs = make([]PointOfInterest, 0, count)
	for i := 0; i < count; i++ {
		n := float64(i)
		angle := noise.Sample2D(n*1.61, 59.1) * math.Pi * 2
		dist := rangeSample(noise, n*1.87, 61.8, half*0.15, half*0.45)
		typ := POIType(categoricalIndex(noise.Sample2D(n*2.03, 67.3), poiTypeCount))

		w.POIs = append(w.POIs, PointOfInterest{
			ID:       i,
			Position: mgl64.Vec2{math.Cos(angle) * dist, math.Sin(angle) * dist},
			Type:     typ,
			Reward:   poiRewards[typ],
		})
	}
}

// generateRoutes строит гоночные маршруты: старт и финиш разнесены
// примерно на pi радиан, промежуточные точки лежат на отрезке
// старт-финиш со смещением перпендикулярно оси - маршрут извилистый,
// а не прямой
func generateRoutes(w *World, noise *Noise) {
	cfg := w.Config
	half := cfg.WorldSize / 2

	w.Routes = make([]RaceRoute, 0, cfg.RaceCount)
	for r := 0; r < cfg.RaceCount; r++ {
		n := float64(r)

		startAngle := noise.Sample2D(n*2.31, 71.2) * math.Pi * 2
		startDist := rangeSample(noise, n*2.57, 73.9, half*0.2, half*0.4)
		endAngle := startAngle + math.Pi + noise.Sample2D(n*2.83, 79.6)*0.4
		endDist := rangeSample(noise, n*3.07, 83.1, half*0.2, half*0.4)

		start := mgl64.Vec2{math.Cos(startAngle) * startDist, math.Sin(startAngle) * startDist}
		end := mgl64.Vec2{math.Cos(endAngle) * endDist, math.Sin(endAngle) * endDist}

		route := RaceRoute{
			ID:          r,
			Start:       start,
			End:         end,
			Checkpoints: make([]Checkpoint, 0, cfg.CheckpointsPerRace),
		}

		axis := end.Sub(start)
		axisLen := axis.Len()
		var perp mgl64.Vec2
		if axisLen > 0 {
			unit := axis.Mul(1 / axisLen)
			perp = mgl64.Vec2{-unit.Y(), unit.X()}
		}

		for i := 0; i < cfg.CheckpointsPerRace; i++ {
			t := float64(i+1) / float64(cfg.CheckpointsPerRace+1)
			base := start.Add(axis.Mul(t))
			offset := noise.Sample2D(n*3.31+float64(i)*0.47, 89.5) * half * 0.12
			pos := base.Add(perp.Mul(offset))

			pos = pushOutOfIslands(w, pos)
			// Прижим к границам после выталкивания. Повторный выход
			// внутрь другого острова после двойного сдвига теоретически
			// возможен и здесь сознательно не итерируется (см. DESIGN.md).
			pos = w.Bounds.Clamp(mgl64.Vec2{
				clampAbs(pos.X(), half-checkpointBoundsMargin),
				clampAbs(pos.Y(), half-checkpointBoundsMargin),
			})

			route.Checkpoints = append(route.Checkpoints, Checkpoint{
				ID:       r*100 + i,
				Position: pos,
				// Радиус захвата слегка растет с индексом
				Radius: checkpointBaseRadius * (1 + 0.1*float64(i)),
				Order:  i,
			})
		}

		w.Routes = append(w.Routes, route)
	}
}

// pushOutOfIslands выталкивает точку из первого накрывшего ее острова
// вдоль вектора центр-точка на радиус плюс отступ. Один проход без
// ревалидации против остальных островов.
func pushOutOfIslands(w *World, pos mgl64.Vec2) mgl64.Vec2 {
	for i := range w.Islands {
		isl := &w.Islands[i]
		delta := pos.Sub(isl.Position)
		dist := delta.Len()
		if dist >= isl.Radius+checkpointIslandMargin {
			continue
		}
		if dist == 0 {
			// Точка ровно в центре: выталкиваем на восток
			delta = mgl64.Vec2{1, 0}
			dist = 1
		}
		dir := delta.Mul(1 / dist)
		return isl.Position.Add(dir.Mul(isl.Radius + checkpointIslandMargin))
	}
	return pos
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
