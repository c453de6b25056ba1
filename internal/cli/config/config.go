// Package config loads tool configuration from psykal.yml with environment
// variable overrides.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the psykal tool configuration
type Config struct {
	ProjectName string       `mapstructure:"project_name"`
	Output      OutputConfig `mapstructure:"output"`
	Mesh        MeshConfig   `mapstructure:"mesh"`
}

// OutputConfig controls where synthesized schedules are written
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// MeshConfig carries the standalone mesh facts used when no mesh runtime is
// attached: spaces with per-call disjoint dof ownership, clean halo depths,
// and the deepest exchangeable halo.
type MeshConfig struct {
	DisjointSpaces []string       `mapstructure:"disjoint_spaces"`
	CleanDepths    map[string]int `mapstructure:"clean_depths"`
	MaxHaloDepth   int            `mapstructure:"max_halo_depth"`
}

// Load loads the configuration from psykal.yml or psykal.yaml
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("output.dir", "build/psy")
	v.SetDefault("output.format", "text")
	v.SetDefault("mesh.max_halo_depth", 2)

	v.SetConfigName("psykal")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PSYKAL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
