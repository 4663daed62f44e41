package shardqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config controls the executor. Zero values fall back to defaults in
// NewShardExecutor, so Config{} is always usable.
type Config struct {
	// Shards is the number of worker goroutines / queues.
	Shards int `envconfig:"SHARDS" default:"4"`

	// QueueSize is the buffered capacity of each shard queue.
	QueueSize int `envconfig:"QUEUE_SIZE" default:"128"`

	// EnqueueTimeout bounds how long Submit waits for queue space before
	// reporting back-pressure.
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	// MaxAttempts caps executions per job. Posts in this SDK are never
	// retried automatically (retry is a user-initiated re-submission), so
	// the default is a single attempt.
	MaxAttempts int `envconfig:"MAX_ATTEMPTS" default:"1"`

	// BaseBackoff and MaxInterval shape the exponential backoff between
	// attempts when MaxAttempts is raised above one.
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"100ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"20s"`

	// ErrorHandler, when set, receives every terminal job error.
	ErrorHandler func(error) `ignored:"true"`
}

// LoadConfig reads Config from SQ_-prefixed environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("SQ", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
