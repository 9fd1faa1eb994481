package modules

type StatusConfig struct {
	BaseConfig
	Listen         string `yaml:"listen" json:"listen" default:"127.0.0.1:9703"`
	DebugEndpoints bool   `yaml:"debug_endpoints" json:"debug_endpoints" default:"false" envconfig:"DEBUG_ENDPOINTS"`
}

func (cfg StatusConfig) IsEnabled() bool {
	if cfg.Listen == "" || cfg.Listen == "off" {
		return false
	}
	return true
}
