package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration of the simulator.
type Config struct {
	Game          GameConfig          `mapstructure:"game"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Cards         CardsConfig         `mapstructure:"cards"`
	Replay        ReplayConfig        `mapstructure:"replay"`
	Transposition TranspositionConfig `mapstructure:"transposition"`
	Inspector     InspectorConfig     `mapstructure:"inspector"`
}

// GameConfig holds the limits every zone derives its capacity from.
type GameConfig struct {
	MaxMinionsOnBoard int   `mapstructure:"max_minions_on_board"`
	MaxHandSize       int   `mapstructure:"max_hand_size"`
	UnboundedZoneSize int   `mapstructure:"unbounded_zone_size"`
	Seed              int64 `mapstructure:"seed"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CardsConfig points at the card definitions.
type CardsConfig struct {
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database_url"`
}

// ReplayConfig controls where recorded replays are written.
type ReplayConfig struct {
	Directory string `mapstructure:"directory"`
}

// TranspositionConfig selects the backing store for state digests.
type TranspositionConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// InspectorConfig configures the websocket zone inspector.
type InspectorConfig struct {
	Address string `mapstructure:"address"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.max_minions_on_board", 7)
	v.SetDefault("game.max_hand_size", 10)
	v.SetDefault("game.unbounded_zone_size", 9999)
	v.SetDefault("game.seed", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("cards.path", "data/cards.yaml")
	v.SetDefault("cards.database_url", "")

	v.SetDefault("replay.directory", "replays")

	v.SetDefault("transposition.driver", "memory")
	v.SetDefault("transposition.path", "transpositions.db")

	v.SetDefault("inspector.address", "127.0.0.1:8089")
}

// Default returns the built-in configuration without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults only; decoding plain scalars cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads the configuration file at path (if it exists) and applies
// SABBER_* environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SABBER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects limits that would make zones unusable.
func (c *Config) Validate() error {
	if c.Game.MaxMinionsOnBoard <= 0 {
		return fmt.Errorf("game.max_minions_on_board must be positive, got %d", c.Game.MaxMinionsOnBoard)
	}
	if c.Game.MaxHandSize <= 0 {
		return fmt.Errorf("game.max_hand_size must be positive, got %d", c.Game.MaxHandSize)
	}
	if c.Game.UnboundedZoneSize < c.Game.MaxMinionsOnBoard || c.Game.UnboundedZoneSize < c.Game.MaxHandSize {
		return fmt.Errorf("game.unbounded_zone_size (%d) must not be below the board or hand limit", c.Game.UnboundedZoneSize)
	}
	switch c.Transposition.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("transposition.driver must be memory or sqlite, got %q", c.Transposition.Driver)
	}
	return nil
}
