// Package config holds the bot configuration: the core sections plus storage,
// locking, question service and quiz settings.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/roadbuddy/quizbot/core/config"
	coredatabase "github.com/roadbuddy/quizbot/core/database"
)

// Lock backends.
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// RedisConfig describes the Redis server used by the redis lock backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// LockConfig selects how concurrent updates of one chat are serialised.
type LockConfig struct {
	Backend     string `yaml:"backend" envconfig:"LOCK_BACKEND"`
	Prefix      string `yaml:"prefix" envconfig:"LOCK_PREFIX"`
	TTLSeconds  int    `yaml:"ttl_seconds" envconfig:"LOCK_TTL_SECONDS"`
	WaitSeconds int    `yaml:"wait_seconds" envconfig:"LOCK_WAIT_SECONDS"`
}

// QuestionAPIConfig points at the question generation service.
type QuestionAPIConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"QUESTION_API_BASE_URL"`
	// City is sent with every request.
	City           string `yaml:"city" envconfig:"QUESTION_API_CITY"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"QUESTION_API_TIMEOUT_SECONDS"`
}

// QuizConfig bounds the retries of one question sequence.
type QuizConfig struct {
	MaxAttempts    int     `yaml:"max_attempts" envconfig:"QUIZ_MAX_ATTEMPTS"`
	InitialDelayMS int     `yaml:"initial_delay_ms" envconfig:"QUIZ_INITIAL_DELAY_MS"`
	MaxDelayMS     int     `yaml:"max_delay_ms" envconfig:"QUIZ_MAX_DELAY_MS"`
	Multiplier     float64 `yaml:"multiplier" envconfig:"QUIZ_MULTIPLIER"`
}

// MessagesConfig locates optional template overrides.
type MessagesConfig struct {
	TemplatesPath string `yaml:"templates_path" envconfig:"MESSAGES_TEMPLATES_PATH"`
}

// Config is the complete bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database    coredatabase.Config `yaml:"database"`
	Redis       RedisConfig         `yaml:"redis"`
	Lock        LockConfig          `yaml:"lock"`
	QuestionAPI QuestionAPIConfig   `yaml:"question_api"`
	Quiz        QuizConfig          `yaml:"quiz"`
	Messages    MessagesConfig      `yaml:"messages"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}

	c.Lock.Backend = strings.ToLower(strings.TrimSpace(c.Lock.Backend))
	switch c.Lock.Backend {
	case "":
		c.Lock.Backend = LockMemory
	case LockMemory:
	case LockRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return fmt.Errorf("redis.addr is required when lock.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid lock.backend %q; allowed: memory, redis", c.Lock.Backend)
	}
	if c.Lock.TTLSeconds < 0 || c.Lock.WaitSeconds < 0 {
		return fmt.Errorf("lock.ttl_seconds and lock.wait_seconds must be >= 0")
	}

	if strings.TrimSpace(c.QuestionAPI.City) == "" {
		c.QuestionAPI.City = "Paris"
	}
	if c.QuestionAPI.TimeoutSeconds <= 0 {
		c.QuestionAPI.TimeoutSeconds = 60
	}

	if c.Quiz.MaxAttempts < 0 || c.Quiz.InitialDelayMS < 0 || c.Quiz.MaxDelayMS < 0 {
		return fmt.Errorf("quiz retry settings must be >= 0")
	}
	if c.Quiz.Multiplier != 0 && c.Quiz.Multiplier < 1 {
		return fmt.Errorf("quiz.multiplier must be >= 1")
	}
	if c.Quiz.InitialDelayMS > 0 && c.Quiz.MaxDelayMS > 0 && c.Quiz.MaxDelayMS < c.Quiz.InitialDelayMS {
		return fmt.Errorf("quiz.max_delay_ms must be >= quiz.initial_delay_ms")
	}
	return nil
}

// LockTTL is the lease of a redis lock; zero selects the backend default.
func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Lock.TTLSeconds) * time.Second
}

// LockWait bounds how long an update waits for its chat; zero selects the backend default.
func (c *Config) LockWait() time.Duration {
	return time.Duration(c.Lock.WaitSeconds) * time.Second
}
