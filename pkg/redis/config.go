package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                            // ConnectionURL in "redis://:password@localhost:6379/0" format; empty disables Redis-backed features.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`  // RetryAttempts is the number of connection attempts at startup.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"` // RetryInterval is the pause between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether a Redis connection is configured.
func (c Config) Enabled() bool { return c.ConnectionURL != "" }
