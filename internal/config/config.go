// Package config loads the test agent's runtime configuration from the
// process environment. The surface is deliberately small: configuration
// selects behavior (scenario, pacing), never protocol shape, and is read
// once at startup.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pixell-labs/workflow-testagent/internal/scenario"
	apperrors "github.com/pixell-labs/workflow-testagent/pkg/agenterrors"
)

// Environment variable names.
const (
	EnvPort     = "TEST_AGENT_PORT"
	EnvScenario = "TEST_SCENARIO"
	EnvDelayMS  = "TEST_AGENT_DELAY_MS"
	EnvHost     = "HOST"
	EnvLogLevel = "LOG_LEVEL"
)

// Config holds the agent's runtime configuration.
type Config struct {
	Host     string
	Port     int
	Scenario string
	DelayMS  int
	LogLevel string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() *Config {
	v := viper.New()
	v.SetDefault(EnvPort, 9999)
	v.SetDefault(EnvScenario, scenario.FullPlanMode)
	v.SetDefault(EnvDelayMS, 50)
	v.SetDefault(EnvHost, "0.0.0.0")
	v.SetDefault(EnvLogLevel, "info")
	v.AutomaticEnv()

	return &Config{
		Host:     v.GetString(EnvHost),
		Port:     v.GetInt(EnvPort),
		Scenario: v.GetString(EnvScenario),
		DelayMS:  v.GetInt(EnvDelayMS),
		LogLevel: v.GetString(EnvLogLevel),
	}
}

// Validate checks the configuration for values the server cannot run with.
// Unknown scenario names are accepted: dispatch falls back to direct
// execution for them.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, fmt.Sprintf("invalid port %d", c.Port), nil)
	}
	if c.DelayMS < 0 {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, fmt.Sprintf("negative event delay %dms", c.DelayMS), nil)
	}
	if c.Host == "" {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "host must not be empty", nil)
	}
	return nil
}

// Delay returns the inter-event delay as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
