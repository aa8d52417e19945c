// internal/workers/intelligence/send-report/config.go
package sendreport

import (
	"time"

	"workforce-intelligence/internal/common/config"
)

type Config struct {
	DefaultRecipient string
	Timeout          time.Duration
}

// LoadConfig takes the fallback recipient from notifications.email.default_to.
func LoadConfig(wcfg config.WorkerConfig, notifications config.NotificationConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		DefaultRecipient: notifications.Email.DefaultTo,
		Timeout:          timeout,
	}
}
