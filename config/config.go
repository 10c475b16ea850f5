// Package config loads the resize CLI's configuration surface: wire RC
// models, sizing/repair knobs, and the optional jobstore/statusserver
// addresses, from file and environment via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the Configuration Surface every resize entry point is driven
// from, loaded once at CLI startup.
type Config struct {
	WireRes    float64 `mapstructure:"wire_res"`
	WireCap    float64 `mapstructure:"wire_cap"`
	WireClkRes float64 `mapstructure:"wire_clk_res"`
	WireClkCap float64 `mapstructure:"wire_clk_cap"`

	MaxUtilization float64 `mapstructure:"max_utilization"`

	DontUse             []string `mapstructure:"dont_use"`
	DontUsePatternsPath string   `mapstructure:"dont_use_patterns_path"`

	WireDeratingPath string `mapstructure:"wire_derating_path"`

	Separation    float64 `mapstructure:"separation"`
	MaxWireLength float64 `mapstructure:"max_wire_length"`

	AllowSetupViolations bool `mapstructure:"allow_setup_violations"`

	MongoServer string `mapstructure:"mongo_server"`
	StatusAddr  string `mapstructure:"status_addr"`
}

// Load reads path if non-empty, otherwise a `.sart.yaml`/`.sart.json` from
// the working directory if one exists, then overlays `SART_<FIELD>`
// environment variables, matching spec.md §6's configuration surface.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".sart")
	v.AddConfigPath(".")
	v.SetEnvPrefix("SART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows, so bind each field's
	// environment variable explicitly.
	for _, key := range []string{"wire_res", "wire_cap", "wire_clk_res", "wire_clk_cap",
		"max_utilization", "dont_use", "dont_use_patterns_path", "wire_derating_path",
		"separation", "max_wire_length", "allow_setup_violations", "mongo_server", "status_addr"} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("max_utilization", 1.0)

	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.MaxUtilization <= 0 {
		cfg.MaxUtilization = 1.0
	}
	return &cfg, nil
}
