package world

// Config - параметры генерации мира. Пара (seed, Config) полностью
// определяет результат Generate.
type Config struct {
	// Размер стороны квадратного мира в метрах, границы [-size/2, size/2]
	WorldSize float64 `mapstructure:"world_size"`

	// Острова
	IslandCount     int     `mapstructure:"island_count"`
	IslandMinRadius float64 `mapstructure:"island_min_radius"`
	IslandMaxRadius float64 `mapstructure:"island_max_radius"`
	IslandMinPeak   float64 `mapstructure:"island_min_peak"`
	IslandMaxPeak   float64 `mapstructure:"island_max_peak"`

	// Ледяные препятствия. Counts - целевые значения, не гарантии:
	// при исчерпании бюджета попыток мир получает меньше препятствий.
	IcebergCount    int     `mapstructure:"iceberg_count"`
	FloeCount       int     `mapstructure:"floe_count"`
	IceMinRadius    float64 `mapstructure:"ice_min_radius"`
	IceMaxRadius    float64 `mapstructure:"ice_max_radius"`
	IceMinHeight    float64 `mapstructure:"ice_min_height"`
	IceMaxHeight    float64 `mapstructure:"ice_max_height"`
	MinSpawnDist    float64 `mapstructure:"min_spawn_dist"`
	MaxSpawnDist    float64 `mapstructure:"max_spawn_dist"`
	IceMarginIsland float64 `mapstructure:"ice_margin_island"`
	IceMarginIce    float64 `mapstructure:"ice_margin_ice"`

	// Ветровые зоны
	WindZoneCount int `mapstructure:"wind_zone_count"`

	// Точки интереса: базовое количество, шум добавляет разброс
	POIBaseCount int `mapstructure:"poi_base_count"`

	// Гоночные маршруты
	RaceCount          int `mapstructure:"race_count"`
	CheckpointsPerRace int `mapstructure:"checkpoints_per_race"`

	// Марина
	MarinaDockingRadius float64 `mapstructure:"marina_docking_radius"`
	MarinaChargeRateKW  float64 `mapstructure:"marina_charge_rate_kw"`
}

// DefaultConfig возвращает сбалансированную конфигурацию среднего мира
func DefaultConfig() Config {
	return Config{
		WorldSize:           8000,
		IslandCount:         7,
		IslandMinRadius:     120,
		IslandMaxRadius:     320,
		IslandMinPeak:       25,
		IslandMaxPeak:       90,
		IcebergCount:        24,
		FloeCount:           36,
		IceMinRadius:        12,
		IceMaxRadius:        45,
		IceMinHeight:        8,
		IceMaxHeight:        30,
		MinSpawnDist:        600,
		MaxSpawnDist:        3600,
		IceMarginIsland:     150,
		IceMarginIce:        100,
		WindZoneCount:       5,
		POIBaseCount:        6,
		RaceCount:           3,
		CheckpointsPerRace:  5,
		MarinaDockingRadius: 120,
		MarinaChargeRateKW:  12,
	}
}

// ConfigForDifficulty возвращает пресет под именованную сложность.
// Неизвестное имя дает конфигурацию по умолчанию.
func ConfigForDifficulty(difficulty string) Config {
	cfg := DefaultConfig()
	switch difficulty {
	case "peaceful":
		cfg.IcebergCount = 12
		cfg.FloeCount = 18
		cfg.MinSpawnDist = 800
	case "normal":
		// значения по умолчанию
	case "hardcore":
		cfg.IcebergCount = 40
		cfg.FloeCount = 60
		cfg.MinSpawnDist = 400
		cfg.IceMaxRadius = 60
	}
	return cfg
}
