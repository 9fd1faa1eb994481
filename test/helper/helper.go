package helper

import (
	"context"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/webhookx-io/hookdash/app"
	"github.com/webhookx-io/hookdash/config"
	"github.com/webhookx-io/hookdash/db"
	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/db/migrator"
	"go.uber.org/zap"
)

var defaultEnvs = map[string]string{
	"HOOKDASH_LOG_LEVEL":  "debug",
	"HOOKDASH_LOG_FORMAT": "text",
	"HOOKDASH_LOG_FILE":   "hookdash.log",
}

// Start starts hookdash with given environment variables
func Start(envs map[string]string) (*app.Application, error) {
	merged := Env()
	for name, value := range defaultEnvs {
		merged[name] = value
	}
	for name, value := range envs {
		merged[name] = value
	}

	cfg, err := LoadConfig(LoadConfigOptions{Envs: merged})
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(defaultEnvs["HOOKDASH_LOG_FILE"]); err == nil {
		TruncateFile(defaultEnvs["HOOKDASH_LOG_FILE"])
	}

	app, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := app.Start(); err != nil {
		return nil, err
	}

	go app.Wait()

	time.Sleep(time.Second)
	return app, nil
}

func AdminClient() *resty.Client {
	c := resty.New()
	c.SetBaseURL("http://localhost:9701")
	return c
}

func TriggerClient() *resty.Client {
	c := resty.New()
	c.SetBaseURL("http://localhost:9702")
	return c
}

func defaultConfig() *config.Config {
	cfg, err := LoadConfig(LoadConfigOptions{})
	if err != nil {
		panic(err)
	}
	return cfg
}

func DB() *db.DB {
	sqlDB, err := db.NewSqlDB(defaultConfig().Database)
	if err != nil {
		panic(err)
	}
	return db.NewDB(sqlDB, zap.S())
}

type EntitiesConfig struct {
	Endpoints []*entities.Endpoint
	Webhooks  []*entities.Webhook
}

func InitDB(truncated bool, entities *EntitiesConfig) *db.DB {
	if truncated {
		err := ResetDB()
		if err != nil {
			panic(err)
		}
	}

	db := DB()

	if entities == nil {
		return db
	}

	for _, e := range entities.Endpoints {
		if err := db.Endpoints.Insert(context.TODO(), e); err != nil {
			panic(err)
		}
	}

	for _, e := range entities.Webhooks {
		if err := db.Webhooks.Insert(context.TODO(), e); err != nil {
			panic(err)
		}
	}

	return db
}

func ResetDB() error {
	cfg := defaultConfig()
	sqlDB, err := db.NewSqlDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	m := migrator.New(sqlDB, cfg.Database.Database)
	if err := m.Reset(); err != nil {
		return err
	}
	return m.Up()
}

func TruncateFile(filename string) {
	err := os.Truncate(filename, 0)
	if err != nil {
		panic("failed to truncate file: " + err.Error())
	}
}
