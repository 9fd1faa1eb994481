package modules

import (
	"fmt"
	"slices"
)

type TriggerSource string

const (
	TriggerSourceQueue TriggerSource = "queue"
	TriggerSourceHTTP  TriggerSource = "http"
	TriggerSourceOff   TriggerSource = "off"
)

type DedupConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" default:"false"`
	TTL     uint32 `yaml:"ttl" json:"ttl" default:"86400"`
}

// TriggerConfig configures how webhook change events reach the counter.
type TriggerConfig struct {
	BaseConfig
	Source            TriggerSource `yaml:"source" json:"source" default:"queue"`
	Listen            string        `yaml:"listen" json:"listen" default:"127.0.0.1:9702"`
	Workers           uint32        `yaml:"workers" json:"workers" default:"10"`
	QueueSize         uint32        `yaml:"queue_size" json:"queue_size" default:"1000" envconfig:"QUEUE_SIZE"`
	BatchSize         uint32        `yaml:"batch_size" json:"batch_size" default:"20" envconfig:"BATCH_SIZE"`
	VisibilityTimeout uint32        `yaml:"visibility_timeout" json:"visibility_timeout" default:"60" envconfig:"VISIBILITY_TIMEOUT"`
	Dedup             DedupConfig   `yaml:"dedup" json:"dedup"`
}

func (cfg TriggerConfig) Validate() error {
	if !slices.Contains([]TriggerSource{TriggerSourceQueue, TriggerSourceHTTP, TriggerSourceOff}, cfg.Source) {
		return fmt.Errorf("invalid trigger source: %s", cfg.Source)
	}
	if cfg.Workers == 0 {
		return fmt.Errorf("trigger.workers must be at least 1")
	}
	if cfg.BatchSize == 0 {
		return fmt.Errorf("trigger.batch_size must be at least 1")
	}
	if cfg.Source == TriggerSourceHTTP && cfg.Listen == "" {
		return fmt.Errorf("trigger.listen is required for source http")
	}
	return nil
}

func (cfg TriggerConfig) IsEnabled() bool {
	return cfg.Source != TriggerSourceOff
}
