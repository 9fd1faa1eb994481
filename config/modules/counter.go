package modules

import (
	"fmt"
	"slices"
)

type CounterBackend string

const (
	CounterBackendPostgres  CounterBackend = "postgres"
	CounterBackendFirestore CounterBackend = "firestore"
)

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id" json:"project_id" envconfig:"PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	Collection      string `yaml:"collection" json:"collection" default:"endpoints"`
	Field           string `yaml:"field" json:"field" default:"webhookCount"`
}

type CounterConfig struct {
	BaseConfig
	Backend   CounterBackend  `yaml:"backend" json:"backend" default:"postgres"`
	Firestore FirestoreConfig `yaml:"firestore" json:"firestore"`
}

func (cfg CounterConfig) Validate() error {
	if !slices.Contains([]CounterBackend{CounterBackendPostgres, CounterBackendFirestore}, cfg.Backend) {
		return fmt.Errorf("invalid counter backend: %s", cfg.Backend)
	}
	if cfg.Backend == CounterBackendFirestore {
		if cfg.Firestore.Collection == "" || cfg.Firestore.Field == "" {
			return fmt.Errorf("counter.firestore.collection and counter.firestore.field are required")
		}
	}
	return nil
}
