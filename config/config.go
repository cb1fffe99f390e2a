package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the demo driver configuration, loaded from lumendrift.yaml
// next to the binary when present
type Config struct {
	Audio     AudioConfig     `yaml:"audio"`
	Soundbed  SoundbedConfig  `yaml:"soundbed"`
	Responses ResponsesConfig `yaml:"responses"`
}

// AudioConfig covers the engine startup knobs
type AudioConfig struct {
	MasterDB   float64 `yaml:"master_db"`
	StartMuted bool    `yaml:"start_muted"`
	Tempo      float64 `yaml:"tempo"`
	ReverbMix  float64 `yaml:"reverb_mix"`
	DelayMix   float64 `yaml:"delay_mix"`
}

// SoundbedConfig covers the ambient layer demo defaults
type SoundbedConfig struct {
	Intensity float64 `yaml:"intensity"`
	Level     int     `yaml:"level"`
	AutoStart bool    `yaml:"auto_start"`
}

// ResponsesConfig covers the simulated game-event drive of the demo
type ResponsesConfig struct {
	CollectVelocity float64 `yaml:"collect_velocity"`
	SwellSeconds    float64 `yaml:"swell_seconds"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			MasterDB:   -6,
			StartMuted: false,
			Tempo:      1,
			ReverbMix:  0.35,
			DelayMix:   0.2,
		},
		Soundbed: SoundbedConfig{
			Intensity: 0.5,
			Level:     1,
			AutoStart: true,
		},
		Responses: ResponsesConfig{
			CollectVelocity: 0.7,
			SwellSeconds:    3,
		},
	}
}

// LoadConfig loads the configuration from a file, falling back to the
// defaults when the file is missing or malformed
func LoadConfig(filePath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, fmt.Errorf("config file not found, using defaults: %v", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("error parsing config: %v", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration back out, for seeding a tunable
// starting point
func SaveConfig(cfg *Config, filePath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error serializing config: %v", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}

	return nil
}
