package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// DevSessionSecret is the default secret. It is refused in production.
const DevSessionSecret = "dev_secret_change_me"

// Target word selection modes.
const (
	TargetReservoir = "reservoir" // one pass over the answers source per game
	TargetMemory    = "memory"    // uniform pick from the loaded answers list
	TargetDaily     = "daily"     // same word for everyone per UTC day
)

type Config struct {
	LogLevel     string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogPretty    bool    `yaml:"log-pretty" env:"LOG_PRETTY" env-default:"false"`
	Port         string  `yaml:"port" env:"PORT" env-default:"5175"`
	ClientOrigin string  `yaml:"client-origin" env:"CLIENT_ORIGIN" env-default:"http://localhost:5173"`
	Production   bool    `yaml:"production" env:"PRODUCTION" env-default:"false"`
	Session      Session `yaml:"session"`
	Store        Store   `yaml:"store"`
	Words        Words   `yaml:"words"`
}

type Session struct {
	Secret     string        `yaml:"secret" env:"SESSION_SECRET" env-default:"dev_secret_change_me"`
	CookieName string        `yaml:"cookie-name" env:"SESSION_COOKIE" env-default:"wordle_session"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"720h"`
}

type Store struct {
	Backend       string        `yaml:"backend" env:"STORE_BACKEND" env-default:"memory"`
	RedisHost     string        `yaml:"redis-host" env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     string        `yaml:"redis-port" env:"REDIS_PORT" env-default:"6379"`
	SQLitePath    string        `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"./data/sessions.db"`
	PurgeInterval time.Duration `yaml:"purge-interval" env:"STORE_PURGE_INTERVAL" env-default:"1h"`
}

type Words struct {
	AnswersFile string `yaml:"answers-file" env:"WORDS_ANSWERS_FILE"`
	AllowedFile string `yaml:"allowed-file" env:"WORDS_ALLOWED_FILE"`
	TargetMode  string `yaml:"target-mode" env:"WORDS_TARGET_MODE" env-default:"reservoir"`
	DailySalt   string `yaml:"daily-salt" env:"DAILY_SALT" env-default:"local_dev_salt"`
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then the environment, which wins over the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	switch c.Words.TargetMode {
	case TargetReservoir, TargetMemory, TargetDaily:
	default:
		return fmt.Errorf("config: unknown target mode %q", c.Words.TargetMode)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("config: session secret is empty")
	}
	if c.Production && c.Session.Secret == DevSessionSecret {
		return fmt.Errorf("config: SESSION_SECRET must be set in production")
	}
	return nil
}

// RedisAddr is host:port for the redis client.
func (that *Store) RedisAddr() string {
	return fmt.Sprintf("%s:%s", that.RedisHost, that.RedisPort)
}
