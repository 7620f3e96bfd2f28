package generatedocument

import (
	"time"

	"docugen-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	CacheEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      60 * time.Second,
		CacheEnabled: true,
	}
}

// FromWorkerConfig overlays the worker entry from config.yaml on the defaults.
func FromWorkerConfig(wc config.WorkerConfig, dc config.DocuGenConfig) *Config {
	c := LoadConfig()
	if wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	c.CacheEnabled = dc.CacheEnabled
	return c
}
