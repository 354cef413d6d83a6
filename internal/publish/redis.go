package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config selects the Redis server and channel. An empty Addr disables
// publishing.
type Config struct {
	Addr     string        `yaml:"redis_addr"`
	Password string        `yaml:"redis_password"`
	DB       int           `yaml:"redis_db"`
	Channel  string        `yaml:"channel"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultConfig returns publishing disabled with the standard channel name.
func DefaultConfig() Config {
	return Config{
		Channel: "heropose:labels",
		Timeout: 2 * time.Second,
	}
}

// LatestKey holds the most recent message so late subscribers can catch up.
func (c Config) LatestKey() string {
	return c.Channel + ":latest"
}

// RedisPublisher publishes label changes on a Redis pub/sub channel and
// keeps the latest one under LatestKey.
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedis creates a publisher for cfg. It does not dial until the first
// Publish.
func NewRedis(cfg Config) *RedisPublisher {
	if cfg.Channel == "" {
		cfg.Channel = DefaultConfig().Channel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		MaxRetries:   1,
	})
	return &RedisPublisher{client: client, config: cfg}
}

// New returns a Redis publisher when an address is configured, otherwise Nop.
func New(cfg Config) Publisher {
	if cfg.Addr == "" {
		return Nop{}
	}
	return NewRedis(cfg)
}

// Ping checks connectivity to the server.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish sends msg on the channel and stores it under LatestKey.
func (p *RedisPublisher) Publish(ctx context.Context, msg Message) error {
	payload, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	pipe := p.client.TxPipeline()
	pipe.Publish(ctx, p.config.Channel, payload)
	pipe.Set(ctx, p.config.LatestKey(), payload, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", p.config.Channel, err)
	}
	return nil
}

// Latest returns the most recently published message.
func (p *RedisPublisher) Latest(ctx context.Context) (*Message, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	data, err := p.client.Get(ctx, p.config.LatestKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoMessage
		}
		return nil, err
	}
	return decode(data)
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
