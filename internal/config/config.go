package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"windward/internal/sim"
)

// Config - конфигурация сервера. Читается из YAML, любое поле можно
// перекрыть переменной окружения с префиксом WINDWARD_.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	World  WorldConfig  `mapstructure:"world"`
	Vessel VesselConfig `mapstructure:"vessel"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig - сетевые настройки и частота тиков
type ServerConfig struct {
	Addr                string `mapstructure:"addr"`
	TargetTPS           int    `mapstructure:"target_tps"`
	BroadcastIntervalMS int    `mapstructure:"broadcast_interval_ms"`
}

// WorldConfig - параметры генерации мира
type WorldConfig struct {
	Seed       int64   `mapstructure:"seed"`
	Size       float64 `mapstructure:"size"`
	Difficulty string  `mapstructure:"difficulty"` // peaceful | normal | hardcore
}

// VesselConfig - коэффициенты судна по умолчанию
type VesselConfig struct {
	MaxSpeedKnots    float64 `mapstructure:"max_speed_knots"`
	TurnRate         float64 `mapstructure:"turn_rate"`
	BaseAcceleration float64 `mapstructure:"base_acceleration"`
	EngineTier       int     `mapstructure:"engine_tier"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Default возвращает конфигурацию по умолчанию
func Default() Config {
	perf := sim.DefaultPerformance()
	return Config{
		Server: ServerConfig{
			Addr:                ":8080",
			TargetTPS:           20,
			BroadcastIntervalMS: 100,
		},
		World: WorldConfig{
			Seed:       1,
			Size:       8000,
			Difficulty: "normal",
		},
		Vessel: VesselConfig{
			MaxSpeedKnots:    perf.MaxSpeedKnots,
			TurnRate:         perf.TurnRate,
			BaseAcceleration: perf.BaseAcceleration,
			EngineTier:       perf.EngineTier,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load читает конфигурацию из файла. Пустой путь дает дефолты плюс
// переменные окружения. Отсутствие файла по явному пути - ошибка.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("WINDWARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("чтение конфигурации %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("разбор конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.target_tps", d.Server.TargetTPS)
	v.SetDefault("server.broadcast_interval_ms", d.Server.BroadcastIntervalMS)
	v.SetDefault("world.seed", d.World.Seed)
	v.SetDefault("world.size", d.World.Size)
	v.SetDefault("world.difficulty", d.World.Difficulty)
	v.SetDefault("vessel.max_speed_knots", d.Vessel.MaxSpeedKnots)
	v.SetDefault("vessel.turn_rate", d.Vessel.TurnRate)
	v.SetDefault("vessel.base_acceleration", d.Vessel.BaseAcceleration)
	v.SetDefault("vessel.engine_tier", d.Vessel.EngineTier)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
}

// Validate проверяет согласованность значений
func (c Config) Validate() error {
	if c.Server.TargetTPS <= 0 {
		return fmt.Errorf("server.target_tps должен быть положительным, получен %d", c.Server.TargetTPS)
	}
	if c.World.Size <= 0 {
		return fmt.Errorf("world.size должен быть положительным, получен %.1f", c.World.Size)
	}
	switch c.World.Difficulty {
	case "peaceful", "normal", "hardcore":
	default:
		return fmt.Errorf("неизвестная сложность %q", c.World.Difficulty)
	}
	// Нулевая максимальная скорость дает деление на ноль в кинематике
	if c.Vessel.MaxSpeedKnots <= 0 {
		return fmt.Errorf("vessel.max_speed_knots должен быть положительным, получен %.1f", c.Vessel.MaxSpeedKnots)
	}
	return nil
}

// Performance собирает коэффициенты судна для симуляции
func (c Config) Performance() sim.Performance {
	return sim.Performance{
		MaxSpeedKnots:    c.Vessel.MaxSpeedKnots,
		TurnRate:         c.Vessel.TurnRate,
		BaseAcceleration: c.Vessel.BaseAcceleration,
		EngineTier:       c.Vessel.EngineTier,
	}
}
