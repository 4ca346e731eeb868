package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      string          `yaml:"port"`
	Env       string          `yaml:"env"`
	JWTSecret string          `yaml:"jwt_secret"`
	DB        DBConfig        `yaml:"db"`
	Recompute RecomputeConfig `yaml:"recompute"`
	Redis     RedisConfig     `yaml:"redis"`
	Matching  MatchingConfig  `yaml:"matching"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN renders the lib/pq keyword/value connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// URL renders the postgres:// form golang-migrate expects.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RecomputeConfig sizes the background pool that rebuilds group aggregates.
type RecomputeConfig struct {
	Queue       string        `yaml:"queue"` // memory or redis
	MinWorkers  int           `yaml:"min_workers"`
	MaxWorkers  int           `yaml:"max_workers"`
	QueueSize   int           `yaml:"queue_size"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type MatchingConfig struct {
	TopGroupsLimit int `yaml:"top_groups_limit"`
}

func Default() Config {
	return Config{
		Port:      "8080",
		Env:       "development",
		JWTSecret: "studymatch-dev-signing-key",
		DB: DBConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "studymatch",
			Password: "studymatch",
			Name:     "studymatch",
			SSLMode:  "disable",
		},
		Recompute: RecomputeConfig{
			Queue:       "memory",
			MinWorkers:  2,
			MaxWorkers:  5,
			QueueSize:   100,
			IdleTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			Key:  "studymatch:group-recompute",
		},
		Matching: MatchingConfig{TopGroupsLimit: 10},
	}
}

// Load starts from defaults, overlays the YAML file named by CONFIG_FILE (if
// any), then applies environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)

	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", cfg.DB.SSLMode)

	cfg.Recompute.Queue = strings.ToLower(getEnv("RECOMPUTE_QUEUE", cfg.Recompute.Queue))
	cfg.Recompute.MinWorkers = getEnvInt("RECOMPUTE_MIN_WORKERS", cfg.Recompute.MinWorkers)
	cfg.Recompute.MaxWorkers = getEnvInt("RECOMPUTE_MAX_WORKERS", cfg.Recompute.MaxWorkers)
	cfg.Recompute.QueueSize = getEnvInt("RECOMPUTE_QUEUE_SIZE", cfg.Recompute.QueueSize)
	cfg.Recompute.IdleTimeout = getEnvDuration("RECOMPUTE_IDLE_TIMEOUT", cfg.Recompute.IdleTimeout)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Key = getEnv("REDIS_RECOMPUTE_KEY", cfg.Redis.Key)

	cfg.Matching.TopGroupsLimit = getEnvInt("TOP_GROUPS_LIMIT", cfg.Matching.TopGroupsLimit)
}

func (c Config) Validate() error {
	r := c.Recompute
	if r.MinWorkers < 1 {
		return fmt.Errorf("recompute.min_workers must be at least 1, got %d", r.MinWorkers)
	}
	if r.MaxWorkers < r.MinWorkers {
		return fmt.Errorf("recompute.max_workers (%d) must be >= min_workers (%d)", r.MaxWorkers, r.MinWorkers)
	}
	if r.QueueSize < 1 {
		return fmt.Errorf("recompute.queue_size must be at least 1, got %d", r.QueueSize)
	}
	if r.Queue != "memory" && r.Queue != "redis" {
		return fmt.Errorf("recompute.queue must be 'memory' or 'redis', got %q", r.Queue)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
