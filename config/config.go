package config

import (
	"encoding/json"

	"github.com/creasty/defaults"
	"github.com/webhookx-io/hookdash/config/modules"
	"github.com/webhookx-io/hookdash/config/types"
)

var _ types.Config = &Config{}

// Config Configuration
type Config struct {
	modules.BaseConfig
	Log      modules.LogConfig      `yaml:"log" json:"log" envconfig:"LOG"`
	Database modules.DatabaseConfig `yaml:"database" json:"database" envconfig:"DATABASE"`
	Redis    modules.RedisConfig    `yaml:"redis" json:"redis" envconfig:"REDIS"`
	Admin    modules.AdminConfig    `yaml:"admin" json:"admin" envconfig:"ADMIN"`
	Status   modules.StatusConfig   `yaml:"status" json:"status" envconfig:"STATUS"`
	Trigger  modules.TriggerConfig  `yaml:"trigger" json:"trigger" envconfig:"TRIGGER"`
	Counter  modules.CounterConfig  `yaml:"counter" json:"counter" envconfig:"COUNTER"`
	Client   modules.ClientConfig   `yaml:"client" json:"client" envconfig:"CLIENT"`
	Metrics  modules.MetricsConfig  `yaml:"metrics" json:"metrics" envconfig:"METRICS"`
	Tracing  modules.TracingConfig  `yaml:"tracing" json:"tracing" envconfig:"TRACING"`
}

func (cfg Config) String() string {
	bytes, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (cfg Config) Validate() error {
	if err := cfg.Log.Validate(); err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	if err := cfg.Redis.Validate(); err != nil {
		return err
	}
	if err := cfg.Admin.Validate(); err != nil {
		return err
	}
	if err := cfg.Status.Validate(); err != nil {
		return err
	}
	if err := cfg.Trigger.Validate(); err != nil {
		return err
	}
	if err := cfg.Counter.Validate(); err != nil {
		return err
	}
	if err := cfg.Client.Validate(); err != nil {
		return err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}
	if err := cfg.Tracing.Validate(); err != nil {
		return err
	}
	return nil
}

func New() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}
