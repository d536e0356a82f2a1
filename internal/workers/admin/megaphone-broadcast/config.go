package megaphonebroadcast

import (
	"time"

	"findvax-notifier/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	DefaultRegion string
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:       config.GetDuration(wc.Timeout),
		DefaultRegion: cfg.Pipeline.DefaultRegion,
	}
}
