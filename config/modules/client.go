package modules

import (
	"fmt"
	"net/url"
	"time"

	"github.com/webhookx-io/hookdash/config/types"
)

type ClientCacheConfig struct {
	Size    uint32 `yaml:"size" json:"size" default:"100"`
	TTL     uint32 `yaml:"ttl" json:"ttl" default:"300"`
	Persist bool   `yaml:"persist" json:"persist" default:"false"`
}

// ClientConfig configures the GraphQL client used by the watch command.
type ClientConfig struct {
	BaseConfig
	HTTPURL   string            `yaml:"http_url" json:"http_url" default:"http://localhost:8000/graphql" envconfig:"HTTP_URL"`
	WSURL     string            `yaml:"ws_url" json:"ws_url" default:"ws://localhost:8000/graphql" envconfig:"WS_URL"`
	Token     types.Password    `yaml:"token" json:"token"`
	Timeout   int64             `yaml:"timeout" json:"timeout" default:"10000"`
	Reconnect []int64           `yaml:"reconnect" json:"reconnect" default:"[1,2,5,10,30]"`
	Cache     ClientCacheConfig `yaml:"cache" json:"cache"`
}

func (cfg ClientConfig) Validate() error {
	u, err := url.Parse(cfg.HTTPURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid client.http_url: '%s'", cfg.HTTPURL)
	}
	u, err = url.Parse(cfg.WSURL)
	if err != nil || u.Host == "" || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("invalid client.ws_url: '%s'", cfg.WSURL)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("client.timeout cannot be negative")
	}
	return nil
}

func (cfg ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(cfg.Timeout) * time.Millisecond
}
